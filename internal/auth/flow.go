// Package auth drives the browser-based OAuth2 connection to YouTube:
// authorization-code grant with PKCE, captured by a one-shot local redirect
// listener.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/browser"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"quizcast/internal/settings"
)

// ErrNotConfigured means the OAuth client credentials are missing from the
// settings store.
var ErrNotConfigured = errors.New("youtube client id and secret are not configured")

// ErrListenerBusy means the callback port is already bound, almost always by
// a previous authorization attempt that has not finished.
var ErrListenerBusy = errors.New("authorization callback port is busy")

var youtubeScopes = []string{
	"https://www.googleapis.com/auth/youtube.upload",
	"https://www.googleapis.com/auth/youtube.readonly",
}

// State tracks one authorization attempt.
type State string

const (
	StateIdle          State = "idle"
	StateAwaiting      State = "awaiting_redirect"
	StateExchanging    State = "exchanging_code"
	StateAuthenticated State = "authenticated"
	StateFailed        State = "failed"
	StateTimedOut      State = "timed_out"
)

const (
	defaultListenAddr   = "127.0.0.1:8085"
	defaultCallbackPath = "/callback"
	defaultWait         = 5 * time.Minute
	exchangeTimeout     = 30 * time.Second
)

// Options tunes a Flow. The zero value works against the real Google
// endpoints.
type Options struct {
	ListenAddr   string
	CallbackPath string
	// Wait bounds how long the listener stays up for the browser redirect
	// before the attempt is abandoned as timed out.
	Wait time.Duration

	// AuthURL/TokenURL override Google's endpoints in tests.
	AuthURL  string
	TokenURL string

	// OpenBrowser launches the authorization URL; defaults to the system
	// browser.
	OpenBrowser func(url string) error

	// ChannelTitle, when set, is called after a successful exchange to
	// resolve the connected channel's display name for storage.
	ChannelTitle func(ctx context.Context) (string, error)
}

// Flow owns the per-attempt OAuth session. Begin returns as soon as the
// browser is dispatched; the redirect capture and code exchange run in the
// background and report through the settings store and State.
type Flow struct {
	store settings.Store
	opts  Options

	mu      sync.Mutex
	session *oauthSession
	state   State
	done    chan struct{}
}

// oauthSession is the ephemeral state of one attempt; consumed by the
// exchange, discarded on timeout or failure.
type oauthSession struct {
	verifier string
	state    string
}

func New(store settings.Store, opts Options) *Flow {
	if opts.ListenAddr == "" {
		opts.ListenAddr = defaultListenAddr
	}
	if opts.CallbackPath == "" {
		opts.CallbackPath = defaultCallbackPath
	}
	if opts.Wait <= 0 {
		opts.Wait = defaultWait
	}
	if opts.OpenBrowser == nil {
		opts.OpenBrowser = browser.OpenURL
	}

	return &Flow{
		store: store,
		opts:  opts,
		state: StateIdle,
	}
}

// Begin starts one authorization attempt: it binds the redirect listener,
// opens the browser, and returns. Configuration problems and a busy
// callback port are the only synchronous failures; everything after the
// browser opens is reported asynchronously.
func (f *Flow) Begin() error {
	clientID, _, err := f.store.Get(settings.KeyClientID)
	if err != nil {
		return fmt.Errorf("read client id: %w", err)
	}
	clientSecret, _, err := f.store.Get(settings.KeyClientSecret)
	if err != nil {
		return fmt.Errorf("read client secret: %w", err)
	}
	if clientID == "" || clientSecret == "" {
		return ErrNotConfigured
	}

	listener, err := net.Listen("tcp", f.opts.ListenAddr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrListenerBusy, err)
	}

	verifier := oauth2.GenerateVerifier()
	stateToken, err := newStateToken()
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("generate state token: %w", err)
	}

	// The redirect URL reflects the bound address, so a ":0" listen addr
	// still produces a reachable callback.
	cfg := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     f.endpoint(),
		Scopes:       youtubeScopes,
		RedirectURL:  fmt.Sprintf("http://%s%s", listener.Addr(), f.opts.CallbackPath),
	}

	done := make(chan struct{})

	// A new attempt silently discards any unconsumed prior session.
	f.mu.Lock()
	f.session = &oauthSession{verifier: verifier, state: stateToken}
	f.state = StateAwaiting
	f.done = done
	f.mu.Unlock()

	result := make(chan error, 1)
	server := &http.Server{
		ReadHeaderTimeout: 10 * time.Second,
		Handler:           f.callbackHandler(cfg, result),
	}

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case result <- fmt.Errorf("callback server: %w", err):
			default:
			}
		}
	}()

	go func() {
		defer close(done)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()

		select {
		case err := <-result:
			if err != nil {
				slog.Error("YouTube authorization failed", "error", err)
			}
		case <-time.After(f.opts.Wait):
			f.abandon(StateTimedOut)
			slog.Warn("YouTube authorization timed out waiting for the browser redirect",
				"wait", f.opts.Wait)
		}
	}()

	authURL := cfg.AuthCodeURL(stateToken,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
	)
	if err := f.opts.OpenBrowser(authURL); err != nil {
		slog.Warn("Failed to open browser, visit the URL manually", "url", authURL, "error", err)
	}

	slog.Info("Waiting for YouTube authorization", "listen", f.opts.ListenAddr)
	return nil
}

// callbackHandler serves exactly one redirect. The exchange happens before
// the response is written so the browser page reflects the real outcome.
func (f *Flow) callbackHandler(cfg *oauth2.Config, result chan<- error) http.Handler {
	var once sync.Once

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != f.opts.CallbackPath {
			http.NotFound(w, r)
			return
		}

		once.Do(func() {
			err := f.handleRedirect(w, r, cfg)
			select {
			case result <- err:
			default:
			}
		})
	})
}

func (f *Flow) handleRedirect(w http.ResponseWriter, r *http.Request, cfg *oauth2.Config) error {
	query := r.URL.Query()

	code := query.Get("code")
	if code == "" {
		f.abandon(StateFailed)
		writePage(w, http.StatusBadRequest, invalidRequestPage)
		return fmt.Errorf("no authorization code in callback")
	}

	sess := f.takeSession()
	if sess == nil {
		writePage(w, http.StatusBadRequest, invalidRequestPage)
		return fmt.Errorf("no authorization attempt in progress")
	}
	if query.Get("state") != sess.state {
		f.setState(StateFailed)
		writePage(w, http.StatusBadRequest, invalidRequestPage)
		return fmt.Errorf("state token mismatch in callback")
	}

	f.setState(StateExchanging)

	ctx, cancel := context.WithTimeout(context.Background(), exchangeTimeout)
	defer cancel()

	token, err := cfg.Exchange(ctx, code, oauth2.VerifierOption(sess.verifier))
	if err != nil {
		f.setState(StateFailed)
		writePage(w, http.StatusInternalServerError, failurePage)
		return fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := f.persistToken(ctx, token); err != nil {
		f.setState(StateFailed)
		writePage(w, http.StatusInternalServerError, failurePage)
		return err
	}

	f.setState(StateAuthenticated)
	writePage(w, http.StatusOK, successPage)
	slog.Info("YouTube account connected")
	return nil
}

func (f *Flow) persistToken(ctx context.Context, token *oauth2.Token) error {
	if err := f.store.Set(settings.KeyAccessToken, token.AccessToken); err != nil {
		return fmt.Errorf("store access token: %w", err)
	}
	if token.RefreshToken != "" {
		if err := f.store.Set(settings.KeyRefreshToken, token.RefreshToken); err != nil {
			return fmt.Errorf("store refresh token: %w", err)
		}
	}

	// The channel name is display sugar; failing to resolve it must not
	// fail the connection.
	if f.opts.ChannelTitle != nil {
		name, err := f.opts.ChannelTitle(ctx)
		if err != nil {
			slog.Warn("Could not fetch channel name", "error", err)
			return nil
		}
		if err := f.store.Set(settings.KeyChannelName, name); err != nil {
			return fmt.Errorf("store channel name: %w", err)
		}
	}
	return nil
}

// Disconnect drops the stored tokens and channel name, keeping the client
// credentials. Safe to call repeatedly.
func (f *Flow) Disconnect() error {
	return settings.Disconnect(f.store)
}

// State reports where the current (or last) attempt stands.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Done returns a channel closed when the current attempt finishes, whatever
// the outcome. Returns nil if Begin was never called.
func (f *Flow) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

func (f *Flow) endpoint() oauth2.Endpoint {
	if f.opts.AuthURL != "" || f.opts.TokenURL != "" {
		return oauth2.Endpoint{AuthURL: f.opts.AuthURL, TokenURL: f.opts.TokenURL}
	}
	return google.Endpoint
}

func (f *Flow) setState(s State) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

// abandon ends the attempt without an exchange, discarding the session.
func (f *Flow) abandon(s State) {
	f.mu.Lock()
	f.session = nil
	f.state = s
	f.mu.Unlock()
}

// takeSession consumes the pending session; a second caller gets nil.
func (f *Flow) takeSession() *oauthSession {
	f.mu.Lock()
	defer f.mu.Unlock()
	sess := f.session
	f.session = nil
	return sess
}

func newStateToken() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

const (
	successPage = `<html><body><h1>Authentication Successful!</h1><p>You can close this window and return to the app.</p><script>setTimeout(() => window.close(), 2000);</script></body></html>`
	failurePage = `<html><body><h1>Authentication Failed</h1><p>Please try again.</p></body></html>`

	invalidRequestPage = `<html><body><h1>Invalid Request</h1></body></html>`
)

func writePage(w http.ResponseWriter, status int, page string) {
	w.Header().Set("Content-Type", "text/html")
	w.WriteHeader(status)
	_, _ = fmt.Fprint(w, page)
}
