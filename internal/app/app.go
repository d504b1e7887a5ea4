package app

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/tailor/internal/pkg/clock"
	"github.com/shandysiswandi/tailor/internal/pkg/config"
	"github.com/shandysiswandi/tailor/internal/pkg/docstore"
	"github.com/shandysiswandi/tailor/internal/pkg/goroutine"
	"github.com/shandysiswandi/tailor/internal/pkg/idempotency"
	"github.com/shandysiswandi/tailor/internal/pkg/instrument"
	"github.com/shandysiswandi/tailor/internal/pkg/jwt"
	"github.com/shandysiswandi/tailor/internal/pkg/messaging"
	"github.com/shandysiswandi/tailor/internal/pkg/router"
	"github.com/shandysiswandi/tailor/internal/pkg/storage"
	"github.com/shandysiswandi/tailor/internal/pkg/uid"
	"github.com/shandysiswandi/tailor/internal/pkg/validator"
)

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine *goroutine.Manager
	validator validator.Validator
	clock     clock.Clocker
	uuid      uid.StringID
	jwt       jwt.JWT

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	idemp     idempotency.Guard
	storage   storage.Bucket
	docs      docstore.Store
	messaging messaging.Broker
	casbin    *casbin.Enforcer

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initCache()
	app.initDocStore()
	app.initMessaging()
	app.initCasbin()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
