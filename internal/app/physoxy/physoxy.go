// Package physoxy собирает HTTP API: хранилище, кеш, очередь писем, сервисы и маршруты.
package physoxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/physoxy/internal/bootstrap"
	"github.com/magabrotheeeer/physoxy/internal/cache"
	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/lib/clock"
	"github.com/magabrotheeeer/physoxy/internal/lib/jwt"
	"github.com/magabrotheeeer/physoxy/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/physoxy/internal/lib/sl"
	"github.com/magabrotheeeer/physoxy/internal/metrics"
	"github.com/magabrotheeeer/physoxy/internal/migrations"
	"github.com/magabrotheeeer/physoxy/internal/paymentprovider"
	"github.com/magabrotheeeer/physoxy/internal/services/access"
	"github.com/magabrotheeeer/physoxy/internal/services/auth"
	"github.com/magabrotheeeer/physoxy/internal/services/content"
	"github.com/magabrotheeeer/physoxy/internal/services/mailer"
	"github.com/magabrotheeeer/physoxy/internal/services/subscription"
	"github.com/magabrotheeeer/physoxy/internal/services/throttle"
	"github.com/magabrotheeeer/physoxy/internal/storage/repository"
)

// App — HTTP API вместе с его соединениями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	conn   *amqp.Connection
	ch     *amqp.Channel
}

// Services — сервисы, из которых собираются маршруты.
type Services struct {
	Auth         *auth.Service
	Subscription *subscription.Service
	Content      *content.Service
}

// New подключается к зависимостям, применяет миграции и назначает администратора.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.physoxy.New"

	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Retries, cfg.RabbitMQ.RetryDelay)
	if err != nil {
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.MailExchange, rabbitmq.GetMailQueues())
	if err != nil {
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	clk := clock.Real{}
	tokens, err := jwt.NewJWTMaker(map[jwt.Kind]jwt.KeyConfig{
		jwt.KindMagic:   {Secret: cfg.Tokens.MagicSecret, TTL: cfg.Tokens.MagicTTL},
		jwt.KindAccess:  {Secret: cfg.Tokens.AccessSecret, TTL: cfg.Tokens.AccessTTL},
		jwt.KindRefresh: {Secret: cfg.Tokens.RefreshSecret, TTL: cfg.Tokens.RefreshTTL},
	}, clk)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		_ = cacheRedis.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rec := metrics.New(prometheus.DefaultRegisterer)
	publisher := mailer.NewPublisher(ch, cfg.Branding.Name, cfg.Tokens.MagicTTL, logger)

	subscriptionService := subscription.New(db, db, cacheRedis, cfg.Redis.PackageTTL,
		paymentprovider.NewClient(cfg.Payment.Latency, clk), clk, rec, logger)
	services := Services{
		Auth: auth.New(auth.Deps{
			Users:     db,
			Throttle:  throttle.New(db, throttle.LimitsFromConfig(cfg.Throttle)),
			Mailer:    publisher,
			Tokens:    tokens,
			Clock:     clk,
			Metrics:   rec,
			Log:       logger,
			PublicURL: cfg.HTTPServer.PublicURL,
		}),
		Subscription: subscriptionService,
		Content:      content.New(db, db, db, access.New(db, clk), subscriptionService, clk, logger),
	}

	if err = bootstrap.PromoteAdmin(ctx, db, cfg.AdminEmail, logger); err != nil {
		logger.Error("failed to promote admin", sl.Err(err))
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, cfg, services, db.DB)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout + cfg.Payment.Latency,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		conn:   conn,
		ch:     ch,
	}, nil
}

// Run обслуживает запросы до отмены ctx, затем плавно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var err error
	select {
	case err = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err = a.server.Shutdown(timeoutCtx)
	}
	a.close()
	return err
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close database", sl.Err(err))
	}
}
