package server

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

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"fieldforce/internal/domain/attendance"
	"fieldforce/internal/domain/audit"
	"fieldforce/internal/domain/auth"
	"fieldforce/internal/domain/directory"
	"fieldforce/internal/domain/leave"
	"fieldforce/internal/domain/notifications"
	"fieldforce/internal/platform/config"
	"fieldforce/internal/platform/db"
	"fieldforce/internal/platform/email"
	"fieldforce/internal/platform/jobs"
	"fieldforce/internal/platform/lock"
	"fieldforce/internal/platform/metrics"
	"fieldforce/internal/transport/http/api"
	attendancehandler "fieldforce/internal/transport/http/handlers/attendance"
	audithandler "fieldforce/internal/transport/http/handlers/audit"
	authhandler "fieldforce/internal/transport/http/handlers/auth"
	leavehandler "fieldforce/internal/transport/http/handlers/leave"
	notificationshandler "fieldforce/internal/transport/http/handlers/notifications"
	"fieldforce/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Redis   *lock.RedisLock
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Router  http.Handler

	Leave      *leave.Service
	Attendance *attendance.Service
}

// Pinger reports backend readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services is everything the router needs. Nil handlers are not mounted.
type Services struct {
	Auth          authhandler.Authenticator
	Leave         leavehandler.Service
	Attendance    attendancehandler.Service
	Notifications notificationshandler.Service
	Audit         audithandler.Lister
	Metrics       *metrics.Collector
	Ready         []Pinger
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, err := shiftPolicy(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg, auth.RoleAdmin, auth.HashPassword); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	app := &App{Config: cfg, DB: pool, Jobs: jobs.New(256), Metrics: metrics.New()}

	var locker lock.Locker = lock.Noop{}
	var counter leave.Counter
	ready := []Pinger{pool}
	if cfg.RedisAddr != "" {
		redisLock, err := lock.NewRedisLock(cfg.RedisAddr)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("redis: %w", err)
		}
		app.Redis = redisLock
		locker, counter = redisLock, redisLock
		ready = append(ready, redisLock)
	}

	txm := db.NewTransactionManager(pool)
	dir := directory.NewStore(pool)
	auditSvc := audit.New(pool)

	notifySvc := notifications.New(notifications.NewStore(pool), email.New(cfg), app.Jobs)
	notifySvc.DefaultFrom = cfg.EmailFrom

	leaveSvc := leave.NewService(leave.NewStore(pool), dir, leave.NewAdminResolver(cfg.AdminResolution, dir, counter))
	leaveSvc.Tx = txm
	leaveSvc.Locker = locker
	leaveSvc.LockTTL = cfg.LockTTL
	leaveSvc.Location = policy.Location
	leaveSvc.Notifier = notifySvc
	leaveSvc.Audit = auditSvc
	leaveSvc.Metrics = app.Metrics
	if len(cfg.LeaveEntitlements) > 0 {
		leaveSvc.Entitlements = mergeEntitlements(cfg.LeaveEntitlements)
	}

	attendanceSvc := attendance.NewService(attendance.NewStore(pool), dir, policy)
	attendanceSvc.Tx = txm
	attendanceSvc.Locker = locker
	attendanceSvc.LockTTL = cfg.LockTTL
	attendanceSvc.Notifier = notifySvc
	attendanceSvc.Audit = auditSvc
	attendanceSvc.Metrics = app.Metrics

	app.Leave, app.Attendance = leaveSvc, attendanceSvc

	services := Services{
		Auth:          auth.NewService(auth.NewStore(pool), cfg.JWTSecret, cfg.TokenTTL),
		Leave:         leaveSvc,
		Attendance:    attendanceSvc,
		Notifications: notifySvc,
		Audit:         auditSvc,
		Ready:         ready,
	}
	if cfg.MetricsEnabled {
		services.Metrics = app.Metrics
	}
	app.Router = NewRouter(cfg, services)
	return app, nil
}

// NewRouter assembles middleware and mounts every handler under /api/v1.
func NewRouter(cfg config.Config, svc Services) http.Handler {
	perms := auth.RolePermissionStore{}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimw.RealIP)
	router.Use(middleware.Logger(slog.Default(), observer(svc.Metrics)))
	router.Use(chimw.Recoverer)
	router.Use(middleware.SecureHeaders(cfg.Environment == "production"))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		for _, p := range svc.Ready {
			if err := p.Ping(ctx); err != nil {
				slog.Warn("readiness check failed", "err", err)
				http.Error(w, "not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if svc.Metrics != nil {
		router.With(middleware.RequirePermission(auth.PermMetricsRead, perms)).Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		if svc.Auth != nil {
			authhandler.NewHandler(svc.Auth).RegisterRoutes(r)
		}
		if svc.Leave != nil {
			leavehandler.NewHandler(svc.Leave, perms).RegisterRoutes(r)
		}
		if svc.Attendance != nil {
			attendancehandler.NewHandler(svc.Attendance, perms).RegisterRoutes(r)
		}
		if svc.Notifications != nil {
			notificationshandler.NewHandler(svc.Notifications).RegisterRoutes(r)
		}
		if svc.Audit != nil {
			audithandler.NewHandler(svc.Audit, perms).RegisterRoutes(r)
		}
	})

	return router
}

func observer(c *metrics.Collector) middleware.StatusObserver {
	if c == nil {
		return nil
	}
	return c
}

func shiftPolicy(cfg config.Config) (attendance.ShiftPolicy, error) {
	loc, err := cfg.Location()
	if err != nil {
		return attendance.ShiftPolicy{}, err
	}
	start, err := config.ParseClock(cfg.ShiftStart)
	if err != nil {
		return attendance.ShiftPolicy{}, err
	}
	end, err := config.ParseClock(cfg.ShiftEnd)
	if err != nil {
		return attendance.ShiftPolicy{}, err
	}
	return attendance.ShiftPolicy{
		Location:                 loc,
		Start:                    start,
		End:                      end,
		LateGrace:                time.Duration(cfg.LateGraceMinutes) * time.Minute,
		EarlyGrace:               time.Duration(cfg.EarlyGraceMinutes) * time.Minute,
		HalfDayHours:             cfg.HalfDayHours,
		CloseOpenBreakOnCheckout: cfg.CloseOpenBreakOnCheckout,
	}, nil
}

// mergeEntitlements overlays configured allowances on the defaults so a
// partial override keeps every leave type.
func mergeEntitlements(overrides map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(leave.DefaultEntitlements))
	for k, v := range leave.DefaultEntitlements {
		out[k] = v
	}
	for k, v := range overrides {
		if leave.IsValidType(k) {
			out[k] = v
		}
	}
	return out
}

func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			slog.Warn("redis close failed", "err", err)
		}
	}
	if a.DB != nil {
		a.DB.Close()
	}
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests and
// queued notification jobs.
func Run(ctx context.Context, cfg config.Config) error {
	app, err := New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobsCtx, cancelJobs := context.WithCancel(context.Background())
	app.Jobs.Start(jobsCtx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		slog.Info("fieldforce server listening", "addr", cfg.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		cancelJobs()
		app.Jobs.Wait()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown failed", "err", err)
	}
	cancelJobs()
	app.Jobs.Wait()
	return nil
}
