package httpapi

import (
	"context"
	"html/template"
	"net/http"

	"github.com/Spok95/school-words/internal/auth"
	"github.com/Spok95/school-words/internal/metrics"
	"github.com/Spok95/school-words/internal/models"
	"go.uber.org/zap"
)

type AuthService interface {
	Signup(ctx context.Context, in auth.SignupInput) (*auth.SignupResult, error)
	Login(ctx context.Context, username, password string) (*auth.LoginResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error)
	Logout(ctx context.Context, sessionID string) error
	AdminEnabled() bool
	CheckAdminKey(key string) error
	SetActive(ctx context.Context, username string, active bool) (*models.User, error)
	ListUsers(ctx context.Context, pendingOnly bool) ([]models.User, error)
}

type WordSource interface {
	Words(grade int) []string
}

type Translator interface {
	Translate(ctx context.Context, text, target string) (string, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

type Deps struct {
	Auth         AuthService
	Words        WordSource
	Translator   Translator
	DB           Pinger
	Log          *zap.Logger
	CookieSecure bool
}

type API struct {
	auth         AuthService
	words        WordSource
	translator   Translator
	db           Pinger
	log          *zap.Logger
	cookieSecure bool
	pages        map[string]*template.Template
}

func New(d Deps) (*API, error) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	pages, err := loadPages()
	if err != nil {
		return nil, err
	}
	return &API{
		auth:         d.Auth,
		words:        d.Words,
		translator:   d.Translator,
		db:           d.DB,
		log:          log,
		cookieSecure: d.CookieSecure,
		pages:        pages,
	}, nil
}

// Routes собирает все маршруты приложения в один mux.
func (a *API) Routes() http.Handler {
	mux := http.NewServeMux()

	// auth
	mux.Handle("POST /auth/signup", a.handle("/auth/signup", a.signup))
	mux.Handle("POST /auth/login", a.handle("/auth/login", a.login))
	mux.Handle("POST /auth/logout", a.handle("/auth/logout", a.requireUser(a.logout)))

	// admin
	mux.Handle("POST /admin/activate", a.handle("/admin/activate", a.adminActivate))
	mux.Handle("POST /admin/users", a.handle("/admin/users", a.adminUsers))
	mux.Handle("POST /admin/users/export", a.handle("/admin/users/export", a.adminUsersExport))

	// контент: сессия + активный аккаунт
	content := func(h HandlerFunc) HandlerFunc { return a.requireUser(requireActive(h)) }
	mux.Handle("GET /api/words", a.handle("/api/words", content(a.apiWords)))
	mux.Handle("POST /api/translate", a.handle("/api/translate", content(a.apiTranslate)))
	mux.Handle("POST /api/hint", a.handle("/api/hint", content(a.apiHint)))

	// страницы
	mux.Handle("GET /{$}", a.handle("/", a.index))
	mux.Handle("GET /signup", a.handle("/signup", a.page("signup")))
	mux.Handle("GET /login", a.handle("/login", a.loginPage))
	for _, name := range []string{"app", "study", "quest", "words"} {
		mux.Handle("GET /"+name, a.handle("/"+name, a.requirePageUser(a.userPage(name))))
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS())))
	mux.HandleFunc("GET /manifest.webmanifest", manifest)

	// служебные
	mux.HandleFunc("GET /healthz", a.healthz)
	mux.Handle("GET /metrics", metrics.Handler())

	return mux
}
