package server

import (
	"errors"
	"net/http"

	"quizcast/internal/auth"
	"quizcast/internal/automation"
	"quizcast/internal/settings"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleSettings handles GET and POST /api/settings.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.getSettings(w)
	case http.MethodPost:
		s.saveSettings(w, r)
	default:
		requireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) getSettings(w http.ResponseWriter) {
	snapshot, err := settings.Snapshot(s.store)
	if err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

func (s *Server) saveSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ClientID     string `json:"client_id"`
		ClientSecret string `json:"client_secret"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ClientID == "" || req.ClientSecret == "" {
		writeError(w, http.StatusBadRequest, "client_id and client_secret are required")
		return
	}

	if err := settings.SaveClient(s.store, req.ClientID, req.ClientSecret); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleConnect handles POST /api/auth/connect. A 202 means the browser
// flow was dispatched; the outcome lands in the settings store.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.flow.Begin(); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "authorization started"})
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	if err := s.flow.Disconnect(); err != nil {
		s.writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleStart handles POST /api/automation/start. Fields missing from the
// body fall back to the configured automation defaults; the body itself is
// optional.
func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		VideoType    string `json:"video_type"`
		NumQuestions int    `json:"num_questions"`
		QuestionTime int    `json:"question_time"`
		AnswerTime   int    `json:"answer_time"`
		Shorts       *bool  `json:"shorts"`
		Resolution   string `json:"resolution"`
		Count        int    `json:"count"`
	}
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}
	if req.Count < 0 || req.NumQuestions < 0 {
		writeError(w, http.StatusBadRequest, "count and num_questions must be positive")
		return
	}

	cfg := s.defaults
	if req.VideoType != "" {
		cfg.VideoType = req.VideoType
	}
	if req.NumQuestions > 0 {
		cfg.NumQuestions = req.NumQuestions
	}
	if req.QuestionTime > 0 {
		cfg.QuestionTime = req.QuestionTime
	}
	if req.AnswerTime > 0 {
		cfg.AnswerTime = req.AnswerTime
	}
	if req.Shorts != nil {
		cfg.Shorts = *req.Shorts
	}
	if req.Resolution != "" {
		cfg.Resolution = req.Resolution
	}
	count := req.Count
	if count == 0 {
		count = s.count
	}

	if err := s.controller.Start(cfg, count); err != nil {
		s.writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "started"})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodPost) {
		return
	}

	s.controller.Stop()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "stopping"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Status())
}

// writeFailure maps component errors onto HTTP status codes.
func (s *Server) writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrNotConfigured):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrListenerBusy),
		errors.Is(err, automation.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
