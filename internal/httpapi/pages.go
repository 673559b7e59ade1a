package httpapi

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/ctxutil"
	"github.com/Spok95/school-words/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticRoot embed.FS

var pageNames = []string{"index", "signup", "login", "app", "study", "quest", "words"}

type pageData struct {
	Title   string
	Pending bool
	User    *models.User
}

func staticFS() fs.FS {
	sub, err := fs.Sub(staticRoot, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

func loadPages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

func (a *API) render(w http.ResponseWriter, name string, data pageData) error {
	t, ok := a.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, "layout", data)
}

// currentUser: пользователь по cookie, если он есть; отсутствие сессии не ошибка.
func (a *API) currentUser(r *http.Request) (*models.User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}
	u, _, err := a.auth.Authenticate(r.Context(), c.Value)
	if errors.Is(err, apperr.ErrLoginRequired) {
		return nil, nil
	}
	return u, err
}

func (a *API) index(w http.ResponseWriter, r *http.Request) error {
	u, err := a.currentUser(r)
	if err != nil {
		return err
	}
	if u != nil {
		http.Redirect(w, r, "/app", http.StatusFound)
		return nil
	}
	return a.render(w, "index", pageData{Title: "School Words"})
}

func (a *API) page(name string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		return a.render(w, name, pageData{Title: "School Words"})
	}
}

func (a *API) loginPage(w http.ResponseWriter, r *http.Request) error {
	return a.render(w, "login", pageData{Title: "School Words", Pending: r.URL.Query().Get("pending") != ""})
}

func (a *API) userPage(name string) HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		u, ok := ctxutil.User(r.Context())
		if !ok {
			return apperr.ErrLoginRequired
		}
		return a.render(w, name, pageData{Title: "School Words", User: u})
	}
}

// manifest отдаётся с корня: scope PWA не шире пути самого файла.
func manifest(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/manifest+json")
	http.ServeFileFS(w, r, staticFS(), "manifest.webmanifest")
}
