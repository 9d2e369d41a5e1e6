package router

import (
	"database/sql"
	"net/http"

	"adoptme-adoption-process/internal/adapters/local"
	mem "adoptme-adoption-process/internal/adapters/storage/memory"
	pg "adoptme-adoption-process/internal/adapters/storage/postgres"
	"adoptme-adoption-process/internal/domain/processes"
	"adoptme-adoption-process/internal/middleware"
	"adoptme-adoption-process/internal/platform/logger"
	"adoptme-adoption-process/internal/ports/auth"
	"adoptme-adoption-process/internal/ports/notify"
	"adoptme-adoption-process/internal/ports/petcatalog"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Opcionales: nil => adapters locales (notificaciones logueadas,
	// catálogo no-op). En producción van los adapters del core API.
	Dispatcher notify.Dispatcher
	Catalog    petcatalog.Catalog

	Log logger.Logger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	log := opts.Log
	if log == nil {
		log = logger.New(logger.Options{App: "adoptme-adoption-process"})
	}

	var repo processes.Repository
	if opts.DB != nil {
		repo = pg.NewProcessesRepo(opts.DB)
	} else {
		repo = mem.NewProcessRepo()
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = local.NewDispatcher(log)
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = local.NewCatalog(log)
	}

	svc := processes.NewService(repo, dispatcher, catalog, log)
	processes.RegisterRoutes(r, svc)

	return r
}
