package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/export"
	"github.com/Spok95/school-words/internal/models"
	"go.uber.org/zap"
)

type activateRequest struct {
	AdminKey string   `json:"admin_key"`
	Username string   `json:"username"`
	Active   flexBool `json:"active"`
}

type activateResponse struct {
	OK       bool   `json:"ok"`
	Username string `json:"username"`
	Active   bool   `json:"active"`
}

type usersRequest struct {
	AdminKey string `json:"admin_key"`
	Pending  bool   `json:"pending"`
}

type userView struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Grade     int    `json:"grade"`
	Active    bool   `json:"active"`
	Guest     bool   `json:"guest"`
	CreatedAt int64  `json:"created_at"`
}

type usersResponse struct {
	Count int        `json:"count"`
	Users []userView `json:"users"`
}

func toUserView(u models.User) userView {
	return userView{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Grade:     u.Grade,
		Active:    u.IsActive,
		Guest:     u.IsGuest,
		CreatedAt: u.CreatedAt.Unix(),
	}
}

func (a *API) adminActivate(w http.ResponseWriter, r *http.Request) error {
	var req activateRequest
	if err := a.adminBody(w, r, &req, func() string { return req.AdminKey }); err != nil {
		return err
	}
	u, err := a.auth.SetActive(r.Context(), req.Username, req.Active.Or(true))
	if err != nil {
		return err
	}
	return respond(w, activateResponse{OK: true, Username: u.Username, Active: u.IsActive})
}

func (a *API) adminUsers(w http.ResponseWriter, r *http.Request) error {
	var req usersRequest
	if err := a.adminBody(w, r, &req, func() string { return req.AdminKey }); err != nil {
		return err
	}
	users, err := a.auth.ListUsers(r.Context(), req.Pending)
	if err != nil {
		return err
	}
	out := make([]userView, 0, len(users))
	for _, u := range users {
		out = append(out, toUserView(u))
	}
	return respond(w, usersResponse{Count: len(out), Users: out})
}

func (a *API) adminUsersExport(w http.ResponseWriter, r *http.Request) error {
	var req usersRequest
	if err := a.adminBody(w, r, &req, func() string { return req.AdminKey }); err != nil {
		return err
	}
	users, err := a.auth.ListUsers(r.Context(), req.Pending)
	if err != nil {
		return err
	}
	data, err := export.UsersXLSX(users)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.UsersFilename(time.Now())+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, err = w.Write(data)
	return err
}

// adminBody: общая часть админских ручек: 404 без ADMIN_KEY, затем тело, затем ключ.
func (a *API) adminBody(w http.ResponseWriter, r *http.Request, dst any, key func() string) error {
	if !a.auth.AdminEnabled() {
		return apperr.ErrAdminDisabled
	}
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := a.auth.CheckAdminKey(key()); err != nil {
		a.log.Warn("admin key rejected", zap.String("remote", r.RemoteAddr))
		return err
	}
	return nil
}
