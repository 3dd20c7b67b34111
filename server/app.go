package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wrtcloud/config"
	"wrtcloud/internal/audit"
	"wrtcloud/internal/db"
	"wrtcloud/internal/devices"
	"wrtcloud/internal/health"
	"wrtcloud/internal/logs"
	"wrtcloud/internal/middleware"
	"wrtcloud/internal/models"
	"wrtcloud/internal/provisioning"
	"wrtcloud/internal/repo"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

// fleetStore is what both the provisioning pipeline and the admin API need
// from one backing store.
type fleetStore interface {
	provisioning.Store
	devices.Store
}

type App struct {
	cfg        *config.Config
	Router     *mux.Router
	httpServer *http.Server

	db     *gorm.DB
	ctx    context.Context
	cancel context.CancelFunc
}

func (a *App) Initialize(cfg *config.Config) {
	a.cfg = cfg

	logs.Init(logs.Options{
		Level:  a.cfg.Logging.Level,
		Format: a.cfg.Logging.Format,
		File:   a.cfg.Logging.File,
	})

	// DB is optional: without a driver the app runs on the in-memory store.
	if drv := a.cfg.Database.Driver; drv != "" {
		d, err := db.Open(drv, a.cfg.Database.DSN)
		if err != nil {
			log.Fatalf("db open failed: %v", err)
		}
		a.db = d
	}

	if a.db != nil {
		if err := a.db.AutoMigrate(
			&models.Device{},
			&models.Configuration{},
			&models.Statistics{},
			&models.AuditEntry{},
		); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
		if err := db.EnsureDeviceMACIndex(a.db); err != nil {
			logs.Logger.Warnf("mac index migration: %v", err)
		}
	}

	a.Router = mux.NewRouter()
	a.Router.Use(middleware.RequestID)
	a.Router.Use(middleware.Recoverer)
	a.Router.Use(middleware.LoggerMW)

	if a.db != nil {
		health.RegisterRoutesWithDB(a.Router, a.db) // /healthz and /readyz
	} else {
		health.RegisterRoutes(a.Router) // /healthz only
	}

	aud := audit.New(a.db, a.cfg.Audit.NotifyURLs)

	var store fleetStore
	if a.db != nil {
		store = repo.NewStore(a.db)
	} else {
		logs.Logger.Warn("no database configured, using in-memory store")
		store = provisioning.NewMemStore()
	}

	svc := provisioning.NewService(store)
	provHTTP := provisioning.NewHandler(svc, a.cfg.Provisioning.SharedSecret, aud)
	provHTTP.RegisterRoutes(a.Router)

	devHTTP := devices.NewHTTP(store, aud)
	devHTTP.RegisterRoutes(a.Router)

	a.Router.Walk(func(rt *mux.Route, r *mux.Router, ancestors []*mux.Route) error {
		path, _ := rt.GetPathTemplate()
		methods, _ := rt.GetMethods()
		log.Printf("route: %-6v %s", methods, path)
		return nil
	})
}

func (a *App) Run() error {
	if a.Router == nil || a.cfg == nil {
		return ErrNotInitialized
	}
	bind := net.JoinHostPort(a.cfg.Server.Address, a.cfg.Server.HTTPPort)

	a.ctx, a.cancel = context.WithCancel(context.Background())
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() { <-sigs; a.cancel() }()

	a.httpServer = &http.Server{
		Addr:         bind,
		Handler:      a.Router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP listening on %s", bind)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	<-a.ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = a.httpServer.Shutdown(ctx)
	return nil
}

var ErrNotInitialized = &initError{"server not initialized (call Initialize(cfg) first)"}

type initError struct{ s string }

func (e *initError) Error() string { return e.s }
