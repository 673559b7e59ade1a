package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Spok95/school-words/internal/apperr"
	"github.com/Spok95/school-words/internal/config"
	"github.com/Spok95/school-words/internal/db"
	"github.com/Spok95/school-words/internal/metrics"
	"github.com/Spok95/school-words/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	SetUserActive(ctx context.Context, username string, active bool) (*models.User, error)
	ListUsers(ctx context.Context, pendingOnly bool) ([]models.User, error)
}

type SessionStore interface {
	CreateSession(ctx context.Context, sess models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, userID int64, now time.Time) (int64, error)
}

// SignupNotifier узнаёт о регистрациях, которые ждут активации.
type SignupNotifier interface {
	NotifySignup(ctx context.Context, u *models.User)
}

type nopNotifier struct{}

func (nopNotifier) NotifySignup(context.Context, *models.User) {}

const (
	NextLogin        = "/login"
	NextLoginPending = "/login?pending=1"
	NextApp          = "/app"

	pendingMessage = "Cuenta creada. Pendiente de activación por el administrador."
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// класс: от models.MinGrade до models.MaxGrade
	_ = v.RegisterValidation("grade", func(fl validator.FieldLevel) bool {
		return models.ValidGrade(int(fl.Field().Int()))
	})
	return v
}

type SignupInput struct {
	FirstName string `validate:"required,max=80"`
	LastName  string `validate:"required,max=80"`
	Username  string `validate:"required,max=80"`
	Password  string `validate:"required"`
	Grade     int    `validate:"grade"`
	IsGuest   bool
	GuestCode string
}

type SignupResult struct {
	User    *models.User
	Next    string
	Message string
}

type LoginResult struct {
	User    *models.User
	Session models.Session
	Token   string
}

type Service struct {
	users    UserStore
	sessions SessionStore
	notifier SignupNotifier
	log      *zap.Logger

	guestCode  string
	adminKey   string
	secret     []byte
	sessionTTL time.Duration
	cost       int

	now   func() time.Time
	newID func() string
}

func NewService(users UserStore, sessions SessionStore, notifier SignupNotifier, cfg *config.Config, log *zap.Logger) *Service {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		users:      users,
		sessions:   sessions,
		notifier:   notifier,
		log:        log,
		guestCode:  cfg.GuestCode,
		adminKey:   cfg.AdminKey,
		secret:     []byte(cfg.SecretKey),
		sessionTTL: cfg.SessionTTL,
		cost:       bcrypt.DefaultCost,
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

// NormalizeUsername: логин хранится и ищется только в нижнем регистре.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func (in *SignupInput) normalize() {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Username = NormalizeUsername(in.Username)
	in.GuestCode = strings.TrimSpace(in.GuestCode)
}

func secretEqual(given, want string) bool {
	return subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*SignupResult, error) {
	in.normalize()
	if err := validate.Struct(in); err != nil {
		return nil, apperr.ErrInvalidFields
	}

	exists, err := s.users.UsernameExists(ctx, in.Username)
	if err != nil {
		return nil, fmt.Errorf("signup: %w", err)
	}
	if exists {
		return nil, apperr.ErrUsernameTaken
	}

	// гостевой код проверяется даже при включённой фиче: пустой код тоже отказ
	if in.IsGuest && (s.guestCode == "" || !secretEqual(in.GuestCode, s.guestCode)) {
		return nil, apperr.ErrInvalidGuestCode
	}

	hash, err := hashPassword(in.Password, s.cost)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Username:     in.Username,
		PasswordHash: hash,
		Grade:        in.Grade,
		IsActive:     in.IsGuest,
		IsGuest:      in.IsGuest,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, db.ErrUsernameTaken) {
			return nil, apperr.ErrUsernameTaken
		}
		return nil, fmt.Errorf("signup: %w", err)
	}
	metrics.ObserveSignup(u.IsGuest)
	s.log.Info("user signed up",
		zap.String("username", u.Username), zap.Int("grade", u.Grade), zap.Bool("guest", u.IsGuest))

	if u.IsGuest {
		return &SignupResult{User: u, Next: NextLogin}, nil
	}
	s.notifier.NotifySignup(ctx, u)
	return &SignupResult{User: u, Next: NextLoginPending, Message: pendingMessage}, nil
}

// Login: неизвестный логин и неверный пароль неразличимы для клиента.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.GetUserByUsername(ctx, NormalizeUsername(username))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			checkPassword(dummyHash, password)
			return nil, apperr.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if !checkPassword(u.PasswordHash, password) {
		return nil, apperr.ErrInvalidCredentials
	}

	now := s.now().UTC().Truncate(time.Second)
	if n, err := s.sessions.DeleteExpiredSessions(ctx, u.ID, now); err != nil {
		s.log.Warn("purge expired sessions", zap.Int64("user_id", u.ID), zap.Error(err))
	} else if n > 0 {
		s.log.Debug("purged expired sessions", zap.Int64("user_id", u.ID), zap.Int64("count", n))
	}

	sess := models.Session{
		ID:        s.newID(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}
	if err := s.sessions.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	token, err := IssueToken(s.secret, sess)
	if err != nil {
		return nil, fmt.Errorf("login: sign token: %w", err)
	}
	return &LoginResult{User: u, Session: sess, Token: token}, nil
}

// Authenticate возвращает свежего пользователя и сессию по токену из cookie.
func (s *Service) Authenticate(ctx context.Context, token string) (*models.User, *models.Session, error) {
	if token == "" {
		return nil, nil, apperr.ErrLoginRequired
	}
	claims, err := ParseToken(token, s.secret)
	if err != nil {
		return nil, nil, apperr.ErrLoginRequired
	}
	sess, err := s.sessions.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperr.ErrLoginRequired
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	if sess.UserID != claims.UserID || sess.Expired(s.now()) {
		return nil, nil, apperr.ErrLoginRequired
	}
	u, err := s.users.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, nil, apperr.ErrLoginRequired
		}
		return nil, nil, fmt.Errorf("authenticate: %w", err)
	}
	return u, sess, nil
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *Service) AdminEnabled() bool { return s.adminKey != "" }

// CheckAdminKey: без ADMIN_KEY админка считается выключенной (404), иначе ключ обязан совпасть.
func (s *Service) CheckAdminKey(key string) error {
	if !s.AdminEnabled() {
		return apperr.ErrAdminDisabled
	}
	if !secretEqual(strings.TrimSpace(key), s.adminKey) {
		return apperr.ErrUnauthorized
	}
	return nil
}

// SetActive: единственный путь изменить is_active. Повторный вызов с тем же значением безвреден.
func (s *Service) SetActive(ctx context.Context, username string, active bool) (*models.User, error) {
	username = NormalizeUsername(username)
	if username == "" {
		return nil, apperr.ErrMissingUsername
	}
	u, err := s.users.SetUserActive(ctx, username, active)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("set active: %w", err)
	}
	s.log.Info("user activation changed", zap.String("username", u.Username), zap.Bool("active", u.IsActive))
	return u, nil
}

// SetActiveByID: активация по id, которым пользуется кнопка в боте.
func (s *Service) SetActiveByID(ctx context.Context, id int64, active bool) (*models.User, error) {
	u, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, apperr.ErrUserNotFound
		}
		return nil, fmt.Errorf("set active: %w", err)
	}
	return s.SetActive(ctx, u.Username, active)
}

func (s *Service) ListUsers(ctx context.Context, pendingOnly bool) ([]models.User, error) {
	users, err := s.users.ListUsers(ctx, pendingOnly)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
