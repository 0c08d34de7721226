package youtube

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quizcast/internal/settings"
)

type memStore struct {
	values map[string]string
}

func newMemStore(values map[string]string) *memStore {
	if values == nil {
		values = make(map[string]string)
	}
	return &memStore{values: values}
}

func (m *memStore) Get(key string) (string, bool, error) {
	value, ok := m.values[key]
	return value, ok, nil
}

func (m *memStore) Set(key, value string) error {
	m.values[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	delete(m.values, key)
	return nil
}

func authedStore() *memStore {
	return newMemStore(map[string]string{
		settings.KeyClientID:     "client-123",
		settings.KeyClientSecret: "secret-456",
		settings.KeyAccessToken:  "stale-token",
		settings.KeyRefreshToken: "refresh-tok",
	})
}

// uploadServer fakes the resumable endpoint pair plus the token endpoint.
type uploadServer struct {
	*httptest.Server
	initCalls    int
	putCalls     int
	refreshCalls int

	rejectInits int // respond 401 to this many init calls before succeeding
}

func newUploadServer(t *testing.T) *uploadServer {
	t.Helper()

	us := &uploadServer{}
	mux := http.NewServeMux()

	mux.HandleFunc("/upload/videos", func(w http.ResponseWriter, r *http.Request) {
		us.initCalls++

		if r.Method != http.MethodPost {
			t.Errorf("init method = %s, want POST", r.Method)
		}
		if got := r.URL.Query().Get("uploadType"); got != "resumable" {
			t.Errorf("uploadType = %q, want resumable", got)
		}
		if got := r.URL.Query().Get("part"); got != "snippet,status" {
			t.Errorf("part = %q, want snippet,status", got)
		}
		if got := r.Header.Get("X-Upload-Content-Type"); got != "video/mp4" {
			t.Errorf("X-Upload-Content-Type = %q", got)
		}
		if r.Header.Get("X-Upload-Content-Length") == "" {
			t.Error("X-Upload-Content-Length missing")
		}

		if us.initCalls <= us.rejectInits {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":{"status":"UNAUTHENTICATED"}}`)
			return
		}

		var metadata videoMetadata
		if err := json.NewDecoder(r.Body).Decode(&metadata); err != nil {
			t.Errorf("decode metadata: %v", err)
		}
		if metadata.Snippet.CategoryID != "22" {
			t.Errorf("categoryId = %q, want 22", metadata.Snippet.CategoryID)
		}

		w.Header().Set("Location", us.URL+"/upload/session")
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/upload/session", func(w http.ResponseWriter, r *http.Request) {
		us.putCalls++

		if r.Method != http.MethodPut {
			t.Errorf("transfer method = %s, want PUT", r.Method)
		}
		if got := r.Header.Get("Content-Type"); got != "video/mp4" {
			t.Errorf("transfer Content-Type = %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if len(body) == 0 {
			t.Error("transfer body empty")
		}
		fmt.Fprint(w, `{"id":"vid-123"}`)
	})

	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		us.refreshCalls++

		if err := r.ParseForm(); err != nil {
			t.Errorf("parse refresh form: %v", err)
		}
		if got := r.PostForm.Get("grant_type"); got != "refresh_token" {
			t.Errorf("grant_type = %q", got)
		}
		if got := r.PostForm.Get("refresh_token"); got != "refresh-tok" {
			t.Errorf("refresh_token = %q", got)
		}
		fmt.Fprint(w, `{"access_token":"fresh-token","expires_in":3599}`)
	})

	us.Server = httptest.NewServer(mux)
	t.Cleanup(us.Close)
	return us
}

func newTestClient(store settings.Store, server *uploadServer) *Client {
	return NewClient(store,
		WithUploadBaseURL(server.URL+"/upload"),
		WithTokenURL(server.URL+"/token"),
	)
}

func TestUploadSuccess(t *testing.T) {
	server := newUploadServer(t)
	store := authedStore()
	client := newTestClient(store, server)

	id, err := client.Upload(t.Context(), Video{
		Data:        []byte("video-bytes"),
		Title:       "Can You Pass This Quiz? 10 Questions",
		Description: "quiz description",
		Tags:        []string{"quiz", "trivia"},
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "vid-123" {
		t.Errorf("Upload() id = %q, want vid-123", id)
	}
	if server.initCalls != 1 || server.putCalls != 1 {
		t.Errorf("calls = %d init, %d put, want 1/1", server.initCalls, server.putCalls)
	}
	if server.refreshCalls != 0 {
		t.Errorf("refresh calls = %d, want 0", server.refreshCalls)
	}
}

func TestUploadFromFile(t *testing.T) {
	server := newUploadServer(t)
	client := newTestClient(authedStore(), server)

	path := filepath.Join(t.TempDir(), "clip.mp4")
	if err := os.WriteFile(path, []byte("file-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := client.Upload(t.Context(), Video{Path: path, Title: "t"}); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
}

func TestUploadRefreshesOnceOn401(t *testing.T) {
	server := newUploadServer(t)
	server.rejectInits = 1
	store := authedStore()
	client := newTestClient(store, server)

	id, err := client.Upload(t.Context(), Video{Data: []byte("x"), Title: "t"})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if id != "vid-123" {
		t.Errorf("Upload() id = %q", id)
	}
	if server.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", server.refreshCalls)
	}
	if server.initCalls != 2 {
		t.Errorf("init calls = %d, want 2", server.initCalls)
	}
	if tok := store.values[settings.KeyAccessToken]; tok != "fresh-token" {
		t.Errorf("stored access token = %q, want fresh-token", tok)
	}
}

func TestUploadBoundedRetry(t *testing.T) {
	server := newUploadServer(t)
	server.rejectInits = 10 // auth failure on every attempt
	client := newTestClient(authedStore(), server)

	_, err := client.Upload(t.Context(), Video{Data: []byte("x"), Title: "t"})
	if err == nil {
		t.Fatal("Upload() expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("error = %v, want 401 APIError", err)
	}
	if server.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want exactly 1", server.refreshCalls)
	}
	if server.initCalls != 2 {
		t.Errorf("init calls = %d, want exactly 2", server.initCalls)
	}
}

func TestUploadNonAuthErrorNotRetried(t *testing.T) {
	store := authedStore()

	var initCalls, refreshCalls int
	mux := http.NewServeMux()
	mux.HandleFunc("/upload/videos", func(w http.ResponseWriter, r *http.Request) {
		initCalls++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, "backend exploded")
	})
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		refreshCalls++
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client := NewClient(store,
		WithUploadBaseURL(server.URL+"/upload"),
		WithTokenURL(server.URL+"/token"),
	)

	_, err := client.Upload(t.Context(), Video{Data: []byte("x"), Title: "t"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("error = %v, want 500 APIError", err)
	}
	if !strings.Contains(apiErr.Body, "backend exploded") {
		t.Errorf("APIError body = %q, want response text", apiErr.Body)
	}
	if initCalls != 1 || refreshCalls != 0 {
		t.Errorf("calls = %d init, %d refresh, want 1/0", initCalls, refreshCalls)
	}
}

func TestUploadWithoutToken(t *testing.T) {
	client := NewClient(newMemStore(nil))

	_, err := client.Upload(t.Context(), Video{Data: []byte("x"), Title: "t"})
	if !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("error = %v, want ErrNotAuthorized", err)
	}
}

func TestUploadMissingSessionURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK) // no Location header
	}))
	defer server.Close()

	client := NewClient(authedStore(), WithUploadBaseURL(server.URL))

	_, err := client.Upload(t.Context(), Video{Data: []byte("x"), Title: "t"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || !strings.Contains(apiErr.Body, "no upload session URL") {
		t.Errorf("error = %v, want missing-session APIError", err)
	}
}

func TestSetThumbnail(t *testing.T) {
	var gotVideoID, gotContentType string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/thumbnails/set" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotVideoID = r.URL.Query().Get("videoId")
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(authedStore(), WithUploadBaseURL(server.URL))

	if err := client.SetThumbnail(t.Context(), "vid-123", []byte("jpeg")); err != nil {
		t.Fatalf("SetThumbnail() error = %v", err)
	}
	if gotVideoID != "vid-123" {
		t.Errorf("videoId = %q", gotVideoID)
	}
	if gotContentType != "image/jpeg" {
		t.Errorf("Content-Type = %q", gotContentType)
	}
}

func TestRefreshRejectedLeavesTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"invalid_grant"}`)
	}))
	defer server.Close()

	store := authedStore()
	client := NewClient(store, WithTokenURL(server.URL))

	err := client.Refresh(t.Context())
	if !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("Refresh() error = %v, want ErrNotAuthorized", err)
	}
	if tok := store.values[settings.KeyAccessToken]; tok != "stale-token" {
		t.Errorf("access token = %q, want untouched stale-token", tok)
	}
	if tok := store.values[settings.KeyRefreshToken]; tok != "refresh-tok" {
		t.Errorf("refresh token = %q, want untouched", tok)
	}
}

func TestRefreshWithoutStoredToken(t *testing.T) {
	client := NewClient(newMemStore(map[string]string{
		settings.KeyClientID:     "client-123",
		settings.KeyClientSecret: "secret-456",
	}))

	if err := client.Refresh(t.Context()); !errors.Is(err, ErrNotAuthorized) {
		t.Errorf("Refresh() error = %v, want ErrNotAuthorized", err)
	}
}

func TestChannelTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/channels") {
			t.Errorf("path = %q, want /channels", r.URL.Path)
		}
		if got := r.URL.Query().Get("mine"); got != "true" {
			t.Errorf("mine = %q, want true", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"items":[{"snippet":{"title":"Quiz Masters"}}]}`)
	}))
	defer server.Close()

	client := NewClient(authedStore(), WithAPIEndpoint(server.URL))

	title, err := client.ChannelTitle(t.Context())
	if err != nil {
		t.Fatalf("ChannelTitle() error = %v", err)
	}
	if title != "Quiz Masters" {
		t.Errorf("ChannelTitle() = %q, want Quiz Masters", title)
	}
}

func TestIsAuthFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"status 401", &APIError{StatusCode: 401, Body: "nope"}, true},
		{"unauthenticated body", &APIError{StatusCode: 403, Body: `{"status":"UNAUTHENTICATED"}`}, true},
		{"invalid credentials body", &APIError{StatusCode: 400, Body: "Invalid Credentials"}, true},
		{"server error", &APIError{StatusCode: 500, Body: "boom"}, false},
		{"wrapped api error", fmt.Errorf("upload: %w", &APIError{StatusCode: 401}), true},
		{"network error", &NetworkError{Err: errors.New("dial tcp: refused")}, false},
		{"plain error", errors.New("401 but not an api error"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isAuthFailure(tt.err); got != tt.want {
				t.Errorf("isAuthFailure() = %v, want %v", got, tt.want)
			}
		})
	}
}
