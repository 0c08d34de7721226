// Package youtube publishes videos through the YouTube Data API using the
// resumable upload protocol in single-shot mode: one session init, one body
// transfer.
package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"quizcast/internal/settings"
)

const (
	defaultUploadBaseURL = "https://www.googleapis.com/upload/youtube/v3"
	defaultTokenURL      = "https://oauth2.googleapis.com/token"
	defaultCategoryID    = "22" // People & Blogs
	defaultPrivacy       = "public"
	videoContentType     = "video/mp4"
)

// Video is one file to publish.
type Video struct {
	Path        string
	Data        []byte // read from Path when nil
	Title       string
	Description string
	Tags        []string
	Privacy     string // falls back to the client default
}

type Client struct {
	store         settings.Store
	httpClient    *http.Client
	uploadBaseURL string
	tokenURL      string
	apiEndpoint   string
	categoryID    string
	privacy       string
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

func WithUploadBaseURL(u string) Option {
	return func(c *Client) { c.uploadBaseURL = strings.TrimSuffix(u, "/") }
}

func WithTokenURL(u string) Option {
	return func(c *Client) { c.tokenURL = u }
}

// WithAPIEndpoint overrides the Data API endpoint used for metadata reads.
func WithAPIEndpoint(u string) Option {
	return func(c *Client) { c.apiEndpoint = u }
}

func WithCategory(id string) Option {
	return func(c *Client) { c.categoryID = id }
}

func WithPrivacy(p string) Option {
	return func(c *Client) { c.privacy = p }
}

func NewClient(store settings.Store, opts ...Option) *Client {
	c := &Client{
		store:         store,
		httpClient:    http.DefaultClient,
		uploadBaseURL: defaultUploadBaseURL,
		tokenURL:      defaultTokenURL,
		categoryID:    defaultCategoryID,
		privacy:       defaultPrivacy,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type videoSnippet struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	CategoryID  string   `json:"categoryId"`
	Tags        []string `json:"tags,omitempty"`
}

type videoStatus struct {
	PrivacyStatus           string `json:"privacyStatus"`
	SelfDeclaredMadeForKids bool   `json:"selfDeclaredMadeForKids"`
}

type videoMetadata struct {
	Snippet videoSnippet `json:"snippet"`
	Status  videoStatus  `json:"status"`
}

type uploadResponse struct {
	ID string `json:"id"`
}

// Upload publishes one video and returns its id. An authorization failure
// is refreshed and retried once; any other failure, or a second one, is
// returned as-is.
func (c *Client) Upload(ctx context.Context, video Video) (string, error) {
	data := video.Data
	if data == nil {
		var err error
		data, err = os.ReadFile(video.Path)
		if err != nil {
			return "", fmt.Errorf("failed to read video file: %w", err)
		}
	}

	var videoID string
	err := c.execWithReauth(ctx, func(ctx context.Context) error {
		id, err := c.tryUpload(ctx, video, data)
		if err != nil {
			return err
		}
		videoID = id
		return nil
	})
	return videoID, err
}

func (c *Client) tryUpload(ctx context.Context, video Video, data []byte) (string, error) {
	token, err := c.accessToken()
	if err != nil {
		return "", err
	}

	privacy := video.Privacy
	if privacy == "" {
		privacy = c.privacy
	}
	metadata, err := json.Marshal(videoMetadata{
		Snippet: videoSnippet{
			Title:       video.Title,
			Description: video.Description,
			CategoryID:  c.categoryID,
			Tags:        video.Tags,
		},
		Status: videoStatus{
			PrivacyStatus:           privacy,
			SelfDeclaredMadeForKids: false,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal metadata: %w", err)
	}

	initURL := c.uploadBaseURL + "/videos?uploadType=resumable&part=snippet,status"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, initURL, bytes.NewReader(metadata))
	if err != nil {
		return "", fmt.Errorf("failed to create init request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Upload-Content-Length", strconv.Itoa(len(data)))
	req.Header.Set("X-Upload-Content-Type", videoContentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	sessionURL := resp.Header.Get("Location")
	if sessionURL == "" {
		return "", &APIError{StatusCode: resp.StatusCode, Body: "no upload session URL in response"}
	}

	putReq, err := http.NewRequestWithContext(ctx, http.MethodPut, sessionURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	putReq.Header.Set("Content-Type", videoContentType)
	putReq.ContentLength = int64(len(data))

	putResp, err := c.httpClient.Do(putReq)
	if err != nil {
		return "", &NetworkError{Err: err}
	}
	defer func() { _ = putResp.Body.Close() }()

	putBody, err := io.ReadAll(putResp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read upload response: %w", err)
	}
	if putResp.StatusCode < 200 || putResp.StatusCode >= 300 {
		return "", &APIError{StatusCode: putResp.StatusCode, Body: string(putBody)}
	}

	var uploaded uploadResponse
	if err := json.Unmarshal(putBody, &uploaded); err != nil {
		return "", fmt.Errorf("failed to parse upload response: %w", err)
	}
	return uploaded.ID, nil
}

// SetThumbnail replaces the video's thumbnail. Callers treat a failure here
// as non-fatal: the video is already published.
func (c *Client) SetThumbnail(ctx context.Context, videoID string, image []byte) error {
	return c.execWithReauth(ctx, func(ctx context.Context) error {
		token, err := c.accessToken()
		if err != nil {
			return err
		}

		setURL := fmt.Sprintf("%s/thumbnails/set?videoId=%s", c.uploadBaseURL, url.QueryEscape(videoID))
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, setURL, bytes.NewReader(image))
		if err != nil {
			return fmt.Errorf("failed to create thumbnail request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "image/jpeg")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return &NetworkError{Err: err}
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			body, _ := io.ReadAll(resp.Body)
			return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return nil
	})
}

// Refresh exchanges the stored refresh token for a new access token and
// persists it. Stored tokens are left untouched on failure.
func (c *Client) Refresh(ctx context.Context) error {
	clientID, _, err := c.store.Get(settings.KeyClientID)
	if err != nil {
		return fmt.Errorf("read client id: %w", err)
	}
	clientSecret, _, err := c.store.Get(settings.KeyClientSecret)
	if err != nil {
		return fmt.Errorf("read client secret: %w", err)
	}
	refreshToken, _, err := c.store.Get(settings.KeyRefreshToken)
	if err != nil {
		return fmt.Errorf("read refresh token: %w", err)
	}
	if clientID == "" || clientSecret == "" || refreshToken == "" {
		return fmt.Errorf("%w: no refresh token stored", ErrNotAuthorized)
	}

	form := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"refresh_token": {refreshToken},
		"grant_type":    {"refresh_token"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read refresh response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: token refresh rejected (status %d): %s",
			ErrNotAuthorized, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &refreshed); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if refreshed.AccessToken == "" {
		return fmt.Errorf("%w: refresh response carried no access token", ErrNotAuthorized)
	}

	if err := c.store.Set(settings.KeyAccessToken, refreshed.AccessToken); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}
	return nil
}

// ChannelTitle returns the authenticated channel's display name.
func (c *Client) ChannelTitle(ctx context.Context) (string, error) {
	token, err := c.accessToken()
	if err != nil {
		return "", err
	}

	opts := []option.ClientOption{
		option.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})),
	}
	if c.apiEndpoint != "" {
		opts = append(opts, option.WithEndpoint(c.apiEndpoint))
	}
	service, err := yt.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create youtube service: %w", err)
	}

	resp, err := service.Channels.List([]string{"snippet"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to list channels: %w", err)
	}
	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", fmt.Errorf("no channel found for this account")
	}
	return resp.Items[0].Snippet.Title, nil
}

// WatchURL is the public link for an uploaded video.
func WatchURL(videoID string) string {
	return "https://youtube.com/watch?v=" + videoID
}

func (c *Client) accessToken() (string, error) {
	token, ok, err := c.store.Get(settings.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("read access token: %w", err)
	}
	if !ok || token == "" {
		return "", ErrNotAuthorized
	}
	return token, nil
}
