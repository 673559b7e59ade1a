package httpapi

import (
	"net/http"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/auth"
	"github.com/Spok95/school-words/internal/ctxutil"
)

type signupRequest struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Username  string  `json:"username"`
	Password  string  `json:"password"`
	Grade     flexInt `json:"grade"`
	IsGuest   bool    `json:"is_guest"`
	GuestCode string  `json:"guest_code"`
}

type signupResponse struct {
	OK      bool   `json:"ok"`
	Next    string `json:"next"`
	Message string `json:"message,omitempty"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK     bool   `json:"ok"`
	Active bool   `json:"active"`
	Next   string `json:"next"`
}

func (a *API) signup(w http.ResponseWriter, r *http.Request) error {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := a.auth.Signup(r.Context(), auth.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Username:  req.Username,
		Password:  req.Password,
		Grade:     int(req.Grade),
		IsGuest:   req.IsGuest,
		GuestCode: req.GuestCode,
	})
	if err != nil {
		return err
	}
	return respond(w, signupResponse{OK: true, Next: res.Next, Message: res.Message})
}

func (a *API) login(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return err
	}
	res, err := a.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		return err
	}
	a.setSessionCookie(w, res.Token, res.Session.ExpiresAt)
	return respond(w, loginResponse{OK: true, Active: res.User.IsActive, Next: auth.NextApp})
}

func (a *API) logout(w http.ResponseWriter, r *http.Request) error {
	id, ok := ctxutil.SessionID(r.Context())
	if !ok {
		return apperr.ErrLoginRequired
	}
	if err := a.auth.Logout(r.Context(), id); err != nil {
		return err
	}
	a.clearSessionCookie(w)
	return respond(w, okResponse{OK: true})
}
