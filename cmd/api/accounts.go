package main

import (
	"net/http"
	"time"

	"storefront/pkg/account"
	"storefront/pkg/auth"
	"storefront/pkg/otel"
)

// loginRequest represents login credentials.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// sessionResponse is returned by register and login. Token may be sent back
// as a bearer token instead of the session cookie.
type sessionResponse struct {
	account.Account
	Token string `json:"token"`
}

func (s *server) setSession(w http.ResponseWriter, sid string) {
	ttl := s.auth.Sessions().TTL()
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    sid,
		Path:     "/",
		Expires:  time.Now().Add(ttl),
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// registerHandler creates an account and signs it in.
// @Summary Register
// @Tags auth
// @Accept json
// @Produce json
// @Param account body auth.RegisterRequest true "Account"
// @Success 201 {object} sessionResponse
// @Failure 400 {object} messageResponse
// @Router /register [post]
func (s *server) registerHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "registerHandler")
	defer span.End()

	var req auth.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	a, sid, err := s.auth.Register(ctx, req)
	if err != nil {
		s.fail(ctx, w, "register", err)
		return
	}
	s.setSession(w, sid)
	writeJSON(w, http.StatusCreated, sessionResponse{Account: a, Token: sid})
}

// loginHandler handles user login and session creation.
// @Summary Login
// @Description Authenticates user and sets session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param creds body loginRequest true "Credentials"
// @Success 200 {object} sessionResponse
// @Failure 401 {object} messageResponse
// @Router /login [post]
func (s *server) loginHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "loginHandler")
	defer span.End()

	var req loginRequest
	if err := decode(r, &req); err != nil || req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "invalid credentials")
		return
	}
	a, sid, err := s.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		s.fail(ctx, w, "login", err)
		return
	}
	s.setSession(w, sid)
	writeJSON(w, http.StatusOK, sessionResponse{Account: a, Token: sid})
}

// logoutHandler ends the caller's session.
// @Summary Logout
// @Tags auth
// @Produce json
// @Success 200 {object} messageResponse
// @Security ApiKeyAuth
// @Router /logout [post]
func (s *server) logoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "logoutHandler")
	defer span.End()

	if err := s.auth.Logout(ctx, auth.SessionID(r)); err != nil {
		s.fail(ctx, w, "logout", err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: auth.CookieName, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	writeMessage(w, http.StatusOK, "Logged out")
}

// meHandler returns the caller's account.
// @Summary Current account
// @Tags auth
// @Produce json
// @Success 200 {object} account.Account
// @Security ApiKeyAuth
// @Router /me [get]
func (s *server) meHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.AddSpan(r.Context(), "meHandler")
	defer span.End()

	a, err := s.auth.Me(ctx, actor(r))
	if err != nil {
		s.fail(ctx, w, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}
