package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/sync/errgroup"

	"c2ms/internal/domain/attendance"
	"c2ms/internal/domain/audit"
	"c2ms/internal/domain/auth"
	"c2ms/internal/domain/chat"
	"c2ms/internal/domain/clients"
	"c2ms/internal/domain/employees"
	"c2ms/internal/domain/expenses"
	"c2ms/internal/domain/fleets"
	"c2ms/internal/domain/invoices"
	"c2ms/internal/domain/payroll"
	"c2ms/internal/domain/reports"
	"c2ms/internal/domain/transactions"
	"c2ms/internal/domain/voyages"
	"c2ms/internal/platform/config"
	"c2ms/internal/platform/db"
	"c2ms/internal/platform/docstore"
	"c2ms/internal/platform/jobs"
	"c2ms/internal/platform/metrics"
	"c2ms/internal/transport/http/api"
	attendancehandler "c2ms/internal/transport/http/handlers/attendance"
	audithandler "c2ms/internal/transport/http/handlers/audit"
	authhandler "c2ms/internal/transport/http/handlers/auth"
	chathandler "c2ms/internal/transport/http/handlers/chat"
	clientshandler "c2ms/internal/transport/http/handlers/clients"
	employeeshandler "c2ms/internal/transport/http/handlers/employees"
	expenseshandler "c2ms/internal/transport/http/handlers/expenses"
	fleetshandler "c2ms/internal/transport/http/handlers/fleets"
	invoiceshandler "c2ms/internal/transport/http/handlers/invoices"
	livehandler "c2ms/internal/transport/http/handlers/live"
	payrollhandler "c2ms/internal/transport/http/handlers/payroll"
	reportshandler "c2ms/internal/transport/http/handlers/reports"
	transactionshandler "c2ms/internal/transport/http/handlers/transactions"
	voyageshandler "c2ms/internal/transport/http/handlers/voyages"
	"c2ms/internal/transport/http/middleware"
)

const shutdownTimeout = 15 * time.Second

// Services is the set of domain services behind the HTTP surface. Tests build
// one over the in-memory backend.
type Services struct {
	Backend      docstore.Backend
	Clients      *clients.Service
	Transactions *transactions.Service
	Expenses     *expenses.Service
	Invoices     *invoices.Service
	Voyages      *voyages.Service
	Fleets       *fleets.Service
	Employees    *employees.Service
	Attendance   *attendance.Service
	Payroll      *payroll.Service
	Reports      *reports.Service
	Audit        *audit.Service
	Jobs         *jobs.Service
	Idempotency  *middleware.IdempotencyStore
	Chat         *chat.Bridge
	Users        authhandler.UserStore
	Metrics      *metrics.Collector
}

// NewServices wires every domain service over one document backend.
func NewServices(backend docstore.Backend, profile config.Profile, pool *pgxpool.Pool, collector *metrics.Collector) *Services {
	clientSvc := clients.NewService(backend)
	txSvc := transactions.NewService(backend, clientSvc, profile.Rate())
	expenseSvc := expenses.NewService(backend)
	employeeSvc := employees.NewService(backend)
	attendanceSvc := attendance.NewService(backend, employeeSvc, profile)

	s := &Services{
		Backend:      backend,
		Clients:      clientSvc,
		Transactions: txSvc,
		Expenses:     expenseSvc,
		Invoices:     invoices.NewService(backend, clientSvc, txSvc, profile),
		Voyages:      voyages.NewService(backend, txSvc),
		Fleets:       fleets.NewService(backend, expenseSvc),
		Employees:    employeeSvc,
		Attendance:   attendanceSvc,
		Payroll:      payroll.NewService(backend, employeeSvc, attendanceSvc, expenseSvc, profile),
		Reports:      reports.NewService(txSvc, expenseSvc, clientSvc, profile),
		Audit:        audit.New(pool),
		Jobs:         jobs.New(pool, collector),
		Metrics:      collector,
	}
	if pool != nil {
		s.Idempotency = middleware.NewIdempotencyStore(pool)
		s.Users = auth.NewStore(pool)
	}
	return s
}

// RouterOptions carries the transport settings of Config that shape the router.
type RouterOptions struct {
	JWTSecret          string
	FrontendDir        string
	Production         bool
	MaxBodyBytes       int64
	RateLimitPerMinute int
	AllowedOrigins     []string
	MetricsEnabled     bool
	Ready              func(context.Context) error
}

func routerOptions(cfg config.Config, pool *pgxpool.Pool) RouterOptions {
	return RouterOptions{
		JWTSecret:          cfg.JWTSecret,
		FrontendDir:        cfg.FrontendDir,
		Production:         cfg.IsProduction(),
		MaxBodyBytes:       cfg.MaxBodyBytes,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		AllowedOrigins:     cfg.AllowedOrigins,
		MetricsEnabled:     cfg.MetricsEnabled,
		Ready:              pool.Ping,
	}
}

// NewRouter builds the HTTP surface: health probes, the versioned API and the
// single page frontend.
func NewRouter(svc *Services, opts RouterOptions) http.Handler {
	perms := auth.Permissions{}
	loc := svc.Reports.Location()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger(svc.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(opts.Production))
	router.Use(middleware.CORS(opts.AllowedOrigins))
	if opts.MaxBodyBytes > 0 {
		router.Use(middleware.BodyLimit(opts.MaxBodyBytes))
	}
	router.Use(middleware.Auth(opts.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if opts.Ready != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := opts.Ready(ctx); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	if opts.MetricsEnabled && svc.Metrics != nil {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			api.Success(w, svc.Metrics.Snapshot(), middleware.GetRequestID(r.Context()))
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(middleware.RateLimit(opts.RateLimitPerMinute, time.Minute))
			r.Use(middleware.SensitiveMutationRateLimit(opts.RateLimitPerMinute, time.Minute))
		}

		authHandler := authhandler.NewHandler(svc.Users, opts.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)
			r.Get("/me", authHandler.HandleMe)

			clientshandler.NewHandler(svc.Clients, perms, svc.Audit).RegisterRoutes(r)
			transactionshandler.NewHandler(svc.Transactions, perms, svc.Audit, loc).RegisterRoutes(r)
			expenseshandler.NewHandler(svc.Expenses, perms, svc.Audit, loc).RegisterRoutes(r)
			invoiceshandler.NewHandler(svc.Invoices, perms, svc.Audit, svc.Jobs, svc.Idempotency, loc).RegisterRoutes(r)
			voyageshandler.NewHandler(svc.Voyages, perms, svc.Audit, loc).RegisterRoutes(r)
			fleetshandler.NewHandler(svc.Fleets, perms, svc.Audit, loc).RegisterRoutes(r)
			employeeshandler.NewHandler(svc.Employees, perms, svc.Audit, loc).RegisterRoutes(r)
			attendancehandler.NewHandler(svc.Attendance, perms, svc.Audit, loc).RegisterRoutes(r)
			payrollhandler.NewHandler(svc.Payroll, perms, svc.Audit, svc.Idempotency).RegisterRoutes(r)
			reportshandler.NewHandler(svc.Reports, svc.Attendance, svc.Jobs, perms).RegisterRoutes(r)
			audithandler.NewHandler(svc.Audit, perms).RegisterRoutes(r)
			chathandler.NewHandler(svc.Chat, perms).RegisterRoutes(r)
			livehandler.NewHandler(svc.Backend, perms, svc.Metrics, opts.AllowedOrigins).RegisterRoutes(r)
		})
	})

	if opts.FrontendDir != "" {
		router.Mount("/", spaHandler{staticPath: opts.FrontendDir, indexPath: "index.html"})
	}
	return router
}

type App struct {
	Config   config.Config
	DB       *pgxpool.Pool
	Docs     *docstore.Postgres
	Services *Services
	Router   http.Handler
}

// New connects to Postgres, applies migrations and the admin seed when
// enabled, and wires services and routes.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, cfg.MigrationsDir); err != nil {
			pool.Close()
			return nil, err
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, err
		}
	}

	docs := docstore.NewPostgres(pool)
	svc := NewServices(docs, cfg.Profile, pool, metrics.New())
	if cfg.ChatEnabled() {
		model, err := chat.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			pool.Close()
			return nil, err
		}
		svc.Chat = chat.NewBridge(model, chat.SystemPrompt, cfg.ChatMaxToolRounds, svc.Metrics,
			chat.Tools(svc.Reports, svc.Transactions, time.Now)...)
	} else {
		slog.Info("chat disabled, GEMINI_API_KEY not set")
	}

	return &App{
		Config:   cfg,
		DB:       pool,
		Docs:     docs,
		Services: svc,
		Router:   NewRouter(svc, routerOptions(cfg, pool)),
	}, nil
}

// Run serves HTTP, the change feed listener and the job scheduler until ctx
// is cancelled or one of them fails.
func (a *App) Run(ctx context.Context) error {
	a.Services.Jobs.Every(jobs.JobInvoiceOverdue, a.Config.OverdueInterval, func(ctx context.Context) (any, error) {
		return a.Services.Invoices.SweepOverdue(ctx)
	})

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Docs.Listen(ctx)
		return nil
	})
	g.Go(func() error {
		a.Services.Jobs.Start(ctx)
		<-ctx.Done()
		return nil
	})

	srv := &http.Server{
		Addr:              a.Config.Addr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		slog.Info("C2-MS server listening", "addr", a.Config.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}

// NewLogger returns the process logger: JSON in production, text otherwise.
func NewLogger(cfg config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

type spaHandler struct {
	staticPath string
	indexPath  string
}

func (h spaHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	path := filepath.Join(h.staticPath, r.URL.Path)
	_, err := os.Stat(path)
	if err == nil {
		http.FileServer(http.Dir(h.staticPath)).ServeHTTP(w, r)
		return
	}

	if os.IsNotExist(err) {
		http.ServeFile(w, r, filepath.Join(h.staticPath, h.indexPath))
		return
	}

	http.NotFound(w, r)
}
