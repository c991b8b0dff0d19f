package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/korssa/gong34/internal/admin"
	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/translate"
)

type loginRequest struct {
	Password string `json:"password"`
}

type loginResult struct {
	Success   bool      `json:"success"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type tapResult struct {
	Success  bool        `json:"success"`
	Unlocked bool        `json:"unlocked"`
	State    admin.State `json:"state"`
}

type stateResult struct {
	Visible   bool            `json:"visible"`
	State     admin.State     `json:"state"`
	Translate translate.Hints `json:"translate"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, fmt.Errorf("%w: malformed login body", common.ErrValidation))
		return
	}
	password := []byte(req.Password)
	defer common.WipeByteArray(password)

	token, id, err := s.deps.Auth.Login(password)
	if err != nil {
		s.logger.Warn(r.Context(), "admin login failed")
		s.writeError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  id.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	s.writeJSON(w, r, http.StatusOK, loginResult{Success: true, Token: token, ExpiresAt: id.ExpiresAt})
}

func (s *Server) tap(w http.ResponseWriter, r *http.Request) {
	unlocked, err := s.deps.Gate.Tap(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tapResult{Success: true, Unlocked: unlocked, State: s.deps.Gate.State()})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Gate.EndSession(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: TokenCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	s.writeJSON(w, r, http.StatusOK, ack{Success: true})
}

func (s *Server) adminState(w http.ResponseWriter, r *http.Request) {
	var hints translate.Hints
	if s.deps.Translate != nil {
		hints = s.deps.Translate.Hints()
	}
	s.writeJSON(w, r, http.StatusOK, stateResult{
		Visible:   s.deps.Gate.Visible(r.Context()),
		State:     s.deps.Gate.State(),
		Translate: hints,
	})
}
