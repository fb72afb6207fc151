// Package promptvault wires the application together: the CMS gateway,
// the session and access services, the optional redis lock and rabbitmq
// publisher, and the HTTP server.
package promptvault

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/redis/go-redis/v9"

	"github.com/promptvault/promptvault/internal/cms"
	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/events"
	"github.com/promptvault/promptvault/internal/http/cookies"
	"github.com/promptvault/promptvault/internal/lib/rabbitmq"
	"github.com/promptvault/promptvault/internal/services/access"
	"github.com/promptvault/promptvault/internal/services/session"
	"github.com/streadway/amqp"
)

// App holds the HTTP server and the connections it owns.
type App struct {
	server *http.Server
	logger *slog.Logger
	rdb    *redis.Client
	amqp   *amqp.Connection
}

// New builds the application from config. Redis and RabbitMQ are
// optional: an empty address leaves the corresponding feature off.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	gateway := cms.NewClient(cfg.CMS)
	jar := cookies.New(cfg.Cookies)

	var rdb *redis.Client
	var locker *session.RefreshLock
	if cfg.RedisConnection.AddressRedis != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:         cfg.RedisConnection.AddressRedis,
			Password:     cfg.RedisConnection.Password,
			Username:     cfg.RedisConnection.User,
			DB:           cfg.RedisConnection.DB,
			MaxRetries:   cfg.RedisConnection.MaxRetries,
			DialTimeout:  cfg.RedisConnection.DialTimeout,
			ReadTimeout:  cfg.RedisConnection.TimeoutRedis,
			WriteTimeout: cfg.RedisConnection.TimeoutRedis,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			return nil, err
		}
		locker = session.NewRefreshLock(rdb, logger)
	}

	var amqpConn *amqp.Connection
	var publisher events.Publisher
	if cfg.RabbitMQ.URL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQ.URL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		ch, err := rabbitmq.SetupChannel(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			return nil, err
		}
		amqpConn = conn
		publisher = events.NewAMQPPublisher(ch, cfg.RabbitMQ.Exchange)
	}

	sessionService := session.New(logger, gateway, jar, locker, publisher)
	accessPolicy := access.New(logger, gateway, cfg.FreeTier.Limit)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, jar, gateway, sessionService, accessPolicy)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		rdb:    rdb,
		amqp:   amqpConn,
	}, nil
}

// Run serves HTTP until the context is cancelled, then shuts down
// gracefully and closes the owned connections.
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

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.rdb != nil {
			_ = a.rdb.Close()
		}
		if a.amqp != nil {
			_ = a.amqp.Close()
		}
		return err
	}
}
