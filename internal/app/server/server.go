package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imlinkk/QLNS/internal/domain/attendance"
	"github.com/imlinkk/QLNS/internal/domain/auth"
	"github.com/imlinkk/QLNS/internal/domain/department"
	"github.com/imlinkk/QLNS/internal/domain/employee"
	"github.com/imlinkk/QLNS/internal/domain/leave"
	"github.com/imlinkk/QLNS/internal/domain/performance"
	"github.com/imlinkk/QLNS/internal/domain/position"
	"github.com/imlinkk/QLNS/internal/domain/salary"
	"github.com/imlinkk/QLNS/internal/platform/config"
	"github.com/imlinkk/QLNS/internal/platform/db"
	"github.com/imlinkk/QLNS/internal/platform/metrics"
	attendancehandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/attendance"
	authhandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/auth"
	departmenthandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/departments"
	employeehandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/employees"
	leavehandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/leaves"
	performancehandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/performance"
	positionhandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/positions"
	salaryhandler "github.com/imlinkk/QLNS/internal/transport/http/handlers/salaries"
	"github.com/imlinkk/QLNS/internal/transport/http/middleware"
)

type App struct {
	Config  config.Config
	DB      *pgxpool.Pool
	Metrics *metrics.Collector
	Router  http.Handler
}

// New builds a fully wired application against an existing configuration.
// Integration tests use it directly; Run adds process concerns on top.
func New(ctx context.Context, cfg config.Config) (*App, error) {
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

	app := &App{Config: cfg, DB: pool, Metrics: metrics.New()}
	app.Router = app.buildRouter()
	return app, nil
}

func (a *App) Close() {
	a.DB.Close()
}

func Run() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	ctx := context.Background()
	app, err := New(ctx, cfg)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer app.Close()

	log.Printf("QLNS server listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, app.Router); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func (a *App) buildRouter() http.Handler {
	cfg := a.Config
	isProd := cfg.Environment == "production"

	authStore := auth.NewStore(a.DB)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(middleware.Metrics(a.Metrics))
	router.Use(middleware.Recoverer)
	router.Use(middleware.SecureHeaders(isProd))
	router.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  func(r *http.Request, origin string) bool { return true },
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	// Session runs first so the limiter can key on the authenticated user
	// instead of a spoofable forwarded address.
	router.Use(middleware.Session(cfg.SessionSecret, authStore))
	router.Use(middleware.RateLimit(cfg.RateLimitPerMinute, time.Minute, nil))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	if cfg.MetricsEnabled {
		router.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(a.Metrics.Snapshot())
		})
	}

	router.Route("/api/v1", func(r chi.Router) {
		authhandler.NewHandler(authStore, cfg.SessionSecret, cfg.SessionTTL, isProd).RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			employeehandler.NewHandler(employee.NewStore(a.DB)).RegisterRoutes(r)
			departmenthandler.NewHandler(department.NewStore(a.DB)).RegisterRoutes(r)
			positionhandler.NewHandler(position.NewStore(a.DB)).RegisterRoutes(r)
			salaryhandler.NewHandler(salary.NewStore(a.DB)).RegisterRoutes(r)
			attendancehandler.NewHandler(attendance.NewStore(a.DB)).RegisterRoutes(r)
			leavehandler.NewHandler(leave.NewStore(a.DB)).RegisterRoutes(r)
			performancehandler.NewHandler(performance.NewStore(a.DB)).RegisterRoutes(r)
		})
	})

	router.Mount("/", spaHandler{staticPath: cfg.FrontendDir, indexPath: "index.html"})

	return router
}

// spaHandler serves the static frontend, falling back to index.html so
// client-side routes deep-link correctly.
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
