package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	trhttp "github.com/Strob0t/TaskRelay/internal/adapter/http"
	trnats "github.com/Strob0t/TaskRelay/internal/adapter/nats"
	"github.com/Strob0t/TaskRelay/internal/adapter/natskv"
	"github.com/Strob0t/TaskRelay/internal/adapter/otel"
	"github.com/Strob0t/TaskRelay/internal/adapter/ristretto"
	"github.com/Strob0t/TaskRelay/internal/adapter/tiered"
	"github.com/Strob0t/TaskRelay/internal/adapter/webex"
	"github.com/Strob0t/TaskRelay/internal/adapter/wrike"
	"github.com/Strob0t/TaskRelay/internal/adapter/ws"
	"github.com/Strob0t/TaskRelay/internal/config"
	"github.com/Strob0t/TaskRelay/internal/domain"
	"github.com/Strob0t/TaskRelay/internal/domain/message"
	"github.com/Strob0t/TaskRelay/internal/logger"
	"github.com/Strob0t/TaskRelay/internal/port/cache"
	"github.com/Strob0t/TaskRelay/internal/port/messagequeue"
	"github.com/Strob0t/TaskRelay/internal/port/notifier"
	"github.com/Strob0t/TaskRelay/internal/resilience"
	"github.com/Strob0t/TaskRelay/internal/secrets"
	"github.com/Strob0t/TaskRelay/internal/service"
)

const shutdownTimeout = 10 * time.Second

func main() {
	args := os.Args[1:]
	var err error
	switch {
	case len(args) > 0 && args[0] == "serve":
		err = run(args[1:])
	case len(args) > 0 && isAdminCommand(args[0]):
		err = runAdmin(args)
	default:
		err = run(args)
	}
	if err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags, err := config.ParseFlags(args)
	if err != nil {
		return fmt.Errorf("flags: %w", err)
	}
	cfg, cfgPath, err := config.LoadWithCLI(flags)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, closeLog := logger.New(cfg.Logging)
	defer closeLog.Close()
	slog.SetDefault(log)

	slog.Info("config loaded",
		"config_file", cfgPath,
		"port", cfg.Server.Port,
		"log_level", cfg.Logging.Level,
		"room_source", cfg.RoomSource,
		"rooms", cfg.Rooms.Len(),
		"resolve_assignees", cfg.Wrike.ResolveAssignees,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Observability ---

	shutdownOTEL, err := otel.Setup(ctx, cfg.OTEL, cfg.Logging.Service)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTEL(sctx); err != nil {
			slog.Warn("otel shutdown", "error", err)
		}
	}()

	metrics, err := otel.NewMetrics()
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	// --- Secrets ---

	vault, err := newVault(cfg)
	if err != nil {
		return fmt.Errorf("secrets: %w", err)
	}
	vault.ReloadOnSignal(ctx)

	// --- Upstream APIs ---

	wrikeBreaker := newBreaker("wrike", cfg.Breaker)
	webexBreaker := newBreaker("webex", cfg.Breaker)

	wrikeClient := wrike.NewClient(cfg.Wrike.BaseURL, vault.Source(secrets.KeyWrikeToken), cfg.Wrike.Timeout,
		wrike.WithBreaker(wrikeBreaker),
		wrike.WithMetrics(metrics),
	)
	webexNotifier := webex.NewNotifier(cfg.Webex.BaseURL, vault.Source(secrets.KeyWebexToken), cfg.Webex.Timeout,
		webex.WithBreaker(webexBreaker),
		webex.WithLimiter(resilience.NewLimiter(cfg.Webex.MaxConcurrent)),
		webex.WithMetrics(metrics),
	)

	// --- NATS (optional) ---

	var queue messagequeue.Publisher
	var l2 cache.Cache
	if cfg.NATS.URL != "" {
		q, err := trnats.Connect(ctx, cfg.NATS.URL)
		if err != nil {
			return fmt.Errorf("nats: %w", err)
		}
		defer q.Close()
		defer func() {
			if err := q.Drain(); err != nil {
				slog.Warn("nats drain", "error", err)
			}
		}()
		queue = q

		if cfg.Cache.L2Bucket != "" {
			kv, err := q.KeyValue(ctx, cfg.Cache.L2Bucket, cfg.Cache.TTL)
			if err != nil {
				slog.Warn("nats kv unavailable, using L1 cache only", "bucket", cfg.Cache.L2Bucket, "error", err)
			} else {
				l2 = natskv.New(kv)
			}
		}
	}

	// --- Services ---

	var contacts *service.ContactResolver
	if cfg.Wrike.ResolveAssignees {
		l1, err := ristretto.New(cfg.Cache.L1MaxSizeMB)
		if err != nil {
			return fmt.Errorf("cache: %w", err)
		}
		defer l1.Close()
		contacts = service.NewContactResolver(wrikeClient, tiered.New(l1, l2, cfg.Cache.TTL), cfg.Cache.TTL, metrics)
	}

	deps := service.RelayDeps{
		Tasks:    wrikeClient,
		Contacts: contacts,
		Notifier: webexNotifier,
		Rooms:    cfg.Rooms,
		Format:   formatOptions(cfg),
		Queue:    queue,
		Subject:  cfg.NATS.SubjectPrefix,
		Metrics:  metrics,
	}

	var live http.HandlerFunc
	if cfg.Server.LiveFeed {
		hub := ws.NewHub()
		defer hub.Close()
		deps.Hub = hub
		live = hub.HandleWS
	}

	relaySvc := service.NewRelayService(deps)

	// --- HTTP ---

	handlers := &trhttp.Handlers{
		Relay:     relaySvc,
		Rooms:     cfg.Rooms.Len(),
		Breakers:  []trhttp.BreakerState{wrikeBreaker, webexBreaker},
		BodyLimit: cfg.Server.BodyLimit,
	}
	r := trhttp.NewRouter(handlers, cfg.Server, cfg.Logging.Service, live)

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newVault builds the token vault. Environment tokens win over config-file
// tokens.
func newVault(cfg *config.Config) (*secrets.Vault, error) {
	loader := secrets.WithFallback(
		secrets.EnvLoader(secrets.KeyWrikeToken, secrets.KeyWebexToken),
		map[string]string{
			secrets.KeyWrikeToken: cfg.Wrike.Token,
			secrets.KeyWebexToken: cfg.Webex.Token,
		},
	)
	return secrets.NewVault(loader)
}

// newBreaker creates a breaker that only counts upstream faults.
func newBreaker(name string, cfg config.Breaker) *resilience.Breaker {
	return resilience.NewBreaker(name, cfg.MaxFailures, cfg.Timeout,
		resilience.WithFailureFilter(isUpstreamFault),
		resilience.WithStateChange(func(name string, from, to resilience.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", string(from), "to", string(to))
		}),
	)
}

func isUpstreamFault(err error) bool {
	switch {
	case errors.Is(err, context.Canceled),
		errors.Is(err, domain.ErrNotFound),
		errors.Is(err, notifier.ErrNotConfigured),
		errors.Is(err, wrike.ErrNoToken):
		return false
	}
	return true
}

func formatOptions(cfg *config.Config) message.Options {
	return message.Options{
		Fields: message.Fields{
			TaskType:   cfg.Fields.TaskType,
			Priority:   cfg.Fields.Priority,
			Technology: cfg.Fields.Technology,
			Customer:   cfg.Fields.Customer,
		},
		CustomerFolders: cfg.CustomerFolderSet(),
		PermalinkBase:   cfg.Wrike.PermalinkBase,
	}
}
