package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"quizcast/internal/auth"
	"quizcast/internal/automation"
	"quizcast/internal/content"
	"quizcast/internal/generate"
	"quizcast/internal/settings"
	"quizcast/internal/youtube"
	"quizcast/pkg/templates"
)

type memStore struct {
	mu sync.Mutex
	m  map[string]string
}

func newMemStore() *memStore {
	return &memStore{m: map[string]string{}}
}

func (s *memStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *memStore) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}

func (s *memStore) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
	return nil
}

type stubFlow struct {
	beginErr     error
	begun        int
	disconnected int
}

func (f *stubFlow) Begin() error {
	f.begun++
	return f.beginErr
}

func (f *stubFlow) Disconnect() error {
	f.disconnected++
	return nil
}

type nopGenerator struct {
	mu   sync.Mutex
	jobs []generate.Job
}

func (g *nopGenerator) Generate(_ context.Context, job generate.Job) (generate.Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.jobs = append(g.jobs, job)
	return generate.Result{VideoPath: "output/" + job.OutputName + ".mp4"}, nil
}

type gateUploader struct {
	entered chan struct{}
	release chan struct{}
}

func (u *gateUploader) Upload(_ context.Context, _ youtube.Video) (string, error) {
	if u.entered != nil {
		u.entered <- struct{}{}
	}
	if u.release != nil {
		<-u.release
	}
	return "vid-1", nil
}

func (u *gateUploader) SetThumbnail(_ context.Context, _ string, _ []byte) error {
	return nil
}

func newTestController(t *testing.T, gen generate.Generator, up automation.Uploader) *automation.Controller {
	t.Helper()

	planner, err := content.New("studio", templates.Default())
	if err != nil {
		t.Fatalf("content.New() error = %v", err)
	}

	return automation.NewController(automation.ControllerOptions{
		Generator: gen,
		Uploader:  up,
		Planner:   planner,
		Delay:     time.Millisecond,
	})
}

func newTestServer(store settings.Store, flow Authorizer, ctrl *automation.Controller) *Server {
	return New(Options{
		Addr:       "127.0.0.1:0",
		Store:      store,
		Flow:       flow,
		Controller: ctrl,
		Defaults: automation.Config{
			VideoType:    "general_knowledge",
			QuestionTime: 10,
			AnswerTime:   5,
		},
		DefaultCount: 1,
	})
}

func doRequest(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestGetSettings(t *testing.T) {
	store := newMemStore()
	_ = store.Set(settings.KeyClientID, "id-123")
	_ = store.Set(settings.KeyClientSecret, "secret-456")
	_ = store.Set(settings.KeyAccessToken, "token")
	_ = store.Set(settings.KeyChannelName, "Quiz Channel")

	s := newTestServer(store, &stubFlow{}, newTestController(t, &nopGenerator{}, &gateUploader{}))
	rec := doRequest(t, s, http.MethodGet, "/api/settings", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", rec.Code, rec.Body.String())
	}

	var got settings.Settings
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.ClientID != "id-123" || !got.IsAuthenticated || got.ChannelName != "Quiz Channel" {
		t.Errorf("settings = %+v, want authenticated id-123 / Quiz Channel", got)
	}
}

func TestSaveSettings(t *testing.T) {
	store := newMemStore()
	s := newTestServer(store, &stubFlow{}, newTestController(t, &nopGenerator{}, &gateUploader{}))

	rec := doRequest(t, s, http.MethodPost, "/api/settings", map[string]string{
		"client_id":     "id-123",
		"client_secret": "secret-456",
	})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204, body %s", rec.Code, rec.Body.String())
	}

	if v, _, _ := store.Get(settings.KeyClientID); v != "id-123" {
		t.Errorf("stored client id = %q, want id-123", v)
	}
	if v, _, _ := store.Get(settings.KeyClientSecret); v != "secret-456" {
		t.Errorf("stored client secret = %q, want secret-456", v)
	}
}

func TestSaveSettingsRejectsIncomplete(t *testing.T) {
	s := newTestServer(newMemStore(), &stubFlow{}, newTestController(t, &nopGenerator{}, &gateUploader{}))

	rec := doRequest(t, s, http.MethodPost, "/api/settings", map[string]string{"client_id": "only-id"})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/settings", bytes.NewReader([]byte("{not json")))
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d for invalid JSON, want 400", rec.Code)
	}
}

func TestConnectStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		beginErr error
		want     int
	}{
		{name: "started", beginErr: nil, want: http.StatusAccepted},
		{name: "notConfigured", beginErr: auth.ErrNotConfigured, want: http.StatusBadRequest},
		{name: "listenerBusy", beginErr: auth.ErrListenerBusy, want: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow := &stubFlow{beginErr: tt.beginErr}
			s := newTestServer(newMemStore(), flow, newTestController(t, &nopGenerator{}, &gateUploader{}))

			rec := doRequest(t, s, http.MethodPost, "/api/auth/connect", nil)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d, body %s", rec.Code, tt.want, rec.Body.String())
			}
			if flow.begun != 1 {
				t.Errorf("Begin calls = %d, want 1", flow.begun)
			}
		})
	}
}

func TestDisconnect(t *testing.T) {
	flow := &stubFlow{}
	s := newTestServer(newMemStore(), flow, newTestController(t, &nopGenerator{}, &gateUploader{}))

	rec := doRequest(t, s, http.MethodPost, "/api/auth/disconnect", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if flow.disconnected != 1 {
		t.Errorf("Disconnect calls = %d, want 1", flow.disconnected)
	}
}

func TestAutomationLifecycle(t *testing.T) {
	up := &gateUploader{
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	ctrl := newTestController(t, &nopGenerator{}, up)
	s := newTestServer(newMemStore(), &stubFlow{}, ctrl)

	rec := doRequest(t, s, http.MethodPost, "/api/automation/start", map[string]int{"count": 1})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}
	<-up.entered

	// A second start while the first run is active conflicts.
	rec = doRequest(t, s, http.MethodPost, "/api/automation/start", map[string]int{"count": 1})
	if rec.Code != http.StatusConflict {
		t.Errorf("second start status = %d, want 409", rec.Code)
	}

	rec = doRequest(t, s, http.MethodGet, "/api/automation/status", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status endpoint = %d, want 200", rec.Code)
	}
	var status automation.Status
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if !status.Running || status.VideosGenerated != 1 {
		t.Errorf("status = %+v, want running with one generated", status)
	}

	rec = doRequest(t, s, http.MethodPost, "/api/automation/stop", nil)
	if rec.Code != http.StatusAccepted {
		t.Errorf("stop status = %d, want 202", rec.Code)
	}

	close(up.release)
	ctrl.Wait()

	rec = doRequest(t, s, http.MethodGet, "/api/automation/status", nil)
	status = automation.Status{}
	if err := json.NewDecoder(rec.Body).Decode(&status); err != nil {
		t.Fatalf("decode status: %v", err)
	}
	if status.Running {
		t.Error("status.Running = true after stop and wait")
	}
}

func TestStartUsesConfiguredDefaults(t *testing.T) {
	gen := &nopGenerator{}
	ctrl := newTestController(t, gen, &gateUploader{})
	s := newTestServer(newMemStore(), &stubFlow{}, ctrl)

	rec := doRequest(t, s, http.MethodPost, "/api/automation/start", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, want 202, body %s", rec.Code, rec.Body.String())
	}
	ctrl.Wait()

	gen.mu.Lock()
	defer gen.mu.Unlock()
	if len(gen.jobs) != 1 {
		t.Fatalf("jobs = %d, want the default count of 1", len(gen.jobs))
	}
	if gen.jobs[0].VideoType != "general_knowledge" {
		t.Errorf("VideoType = %q, want configured default", gen.jobs[0].VideoType)
	}
	if gen.jobs[0].QuestionTime != 10 || gen.jobs[0].AnswerTime != 5 {
		t.Errorf("timings = %d/%d, want configured defaults 10/5",
			gen.jobs[0].QuestionTime, gen.jobs[0].AnswerTime)
	}
}

func TestStartRejectsNegativeCount(t *testing.T) {
	s := newTestServer(newMemStore(), &stubFlow{}, newTestController(t, &nopGenerator{}, &gateUploader{}))

	rec := doRequest(t, s, http.MethodPost, "/api/automation/start", map[string]int{"count": -2})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer(newMemStore(), &stubFlow{}, newTestController(t, &nopGenerator{}, &gateUploader{}))

	rec := doRequest(t, s, http.MethodGet, "/api/auth/connect", nil)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow header = %q, want POST", allow)
	}
}
