package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Spok95/school-words/internal/auth"
	"github.com/Spok95/school-words/internal/bot"
	"github.com/Spok95/school-words/internal/config"
	"github.com/Spok95/school-words/internal/db"
	"github.com/Spok95/school-words/internal/httpapi"
	"github.com/Spok95/school-words/internal/logging"
	"github.com/Spok95/school-words/internal/observability"
	"github.com/Spok95/school-words/internal/translate"
	"github.com/Spok95/school-words/internal/wordbank"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("не удалось загрузить .env файл, используем переменные окружения")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logging.Init(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}

	flush, err := observability.InitSentry(cfg.SentryDSN, cfg.Env, cfg.Release)
	if err != nil {
		lg.Base.Warn("sentry init failed", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, lg)
	stop()

	if err != nil {
		lg.Base.Error("server stopped with error", zap.Error(err))
		observability.CaptureErr(err)
	} else {
		lg.Base.Info("server stopped")
	}
	flush()
	lg.Closer()
	if err != nil {
		os.Exit(1)
	}
}

const (
	botPollTimeout = 60
	// клиент long polling должен ждать дольше, чем сам getUpdates
	botPollHTTPTimeout   = (botPollTimeout + 15) * time.Second
	botNotifyHTTPTimeout = 10 * time.Second
)

func run(ctx context.Context, cfg *config.Config, lg *logging.Log) error {
	store, err := db.Open(ctx, cfg.DatabaseURL, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer func() { _ = store.Close() }()
	lg.Base.Info("db ready", zap.String("dialect", string(store.Dialect())))

	var (
		notifier auth.SignupNotifier
		tgAPI    *tgbotapi.BotAPI
	)
	if cfg.BotEnabled() {
		tgAPI, err = tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
			&http.Client{Timeout: botPollHTTPTimeout})
		if err != nil {
			return fmt.Errorf("telegram bot: %w", err)
		}
		notifyAPI, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint,
			&http.Client{Timeout: botNotifyHTTPTimeout})
		if err != nil {
			return fmt.Errorf("telegram notifier: %w", err)
		}
		lg.Base.Info("admin bot started", zap.String("username", tgAPI.Self.UserName))
		n := bot.NewNotifier(notifyAPI, cfg.AdminIDs, lg.Named("bot"))
		defer n.Wait()
		notifier = n
	}

	svc := auth.NewService(store, store, notifier, cfg, lg.Named("auth"))
	if !svc.AdminEnabled() {
		lg.Base.Info("ADMIN_KEY not set, admin endpoints disabled")
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if tgAPI != nil {
		u := tgbotapi.NewUpdate(0)
		u.Timeout = botPollTimeout
		updates := tgAPI.GetUpdatesChan(u)
		adminBot := bot.New(tgAPI, svc, cfg.AdminIDs, lg.Named("bot"))

		wg.Add(1)
		go func() {
			defer wg.Done()
			adminBot.Run(ctx, updates)
		}()
		go func() {
			<-ctx.Done()
			tgAPI.StopReceivingUpdates()
		}()
	}

	api, err := httpapi.New(httpapi.Deps{
		Auth:         svc,
		Words:        wordbank.New(cfg.WordsPath, lg.Named("wordbank")),
		Translator:   translate.New(cfg.TranslateURL, cfg.TranslateSource, cfg.TranslateTimeout),
		DB:           store,
		Log:          lg.Named("http"),
		CookieSecure: cfg.CookieSecure,
	})
	if err != nil {
		return fmt.Errorf("http api: %w", err)
	}

	srv := httpapi.NewServer(cfg.Addr(), api.Routes(), lg.Named("http"))
	return srv.Run(ctx)
}
