package router

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/afero"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "pethouse/docs"
	mem "pethouse/internal/adapters/storage/memory"
	"pethouse/internal/adapters/storage/photos"
	pg "pethouse/internal/adapters/storage/postgres"
	"pethouse/internal/domain/dashboard"
	"pethouse/internal/domain/pets"
	"pethouse/internal/domain/users"
	"pethouse/internal/domain/visits"
	"pethouse/internal/middleware"
	"pethouse/internal/platform/logger"
	"pethouse/internal/session"
)

const loginPath = "/login"

type Options struct {
	Logger logger.Logger

	// Optional: with a DB everything lives in Postgres, otherwise in memory.
	DB *sqlx.DB

	// Optional: defaults to an in-memory filesystem.
	Photos *photos.Store

	Session       session.Options
	BcryptCost    int
	MaxPhotoBytes int64
}

type storage struct {
	users    users.Repository
	pets     pets.Repository
	visits   visits.Repository
	sessions session.Store
	petsTx   pets.TxRunner
	visitsTx visits.TxRunner
}

func newStorage(db *sqlx.DB) storage {
	if db != nil {
		tx := pg.NewTxRunner(db)
		return storage{
			users:    pg.NewUsersRepo(db),
			pets:     pg.NewPetsRepo(db),
			visits:   pg.NewVisitsRepo(db),
			sessions: pg.NewSessionsRepo(db),
			petsTx:   tx,
			visitsTx: tx,
		}
	}

	st := mem.NewStore()
	return storage{
		users:    st.Users(),
		pets:     st.Pets(),
		visits:   st.Visits(),
		sessions: st.Sessions(),
		petsTx:   st,
		visitsTx: st,
	}
}

func NewRouter(opts Options) (http.Handler, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	photoStore := opts.Photos
	if photoStore == nil {
		s, err := photos.NewStore(afero.NewMemMapFs(), "/uploads")
		if err != nil {
			return nil, fmt.Errorf("photo store: %w", err)
		}
		photoStore = s
	}

	st := newStorage(opts.DB)
	sessions := session.NewManager(st.sessions, opts.Session, log)

	usersSvc := users.NewService(st.users, opts.BcryptCost)
	petsSvc := pets.NewService(st.pets, st.petsTx, photoStore, pets.Options{
		MaxPhotoBytes: opts.MaxPhotoBytes,
		Logger:        log,
	})
	visitsSvc := visits.NewService(st.visits, st.pets, st.visitsTx)
	dashboardSvc := dashboard.NewService(petsSvc, visitsSvc)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recover(log))
	r.Use(sessions.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
	})
	r.Handle("/uploads/*", http.StripPrefix("/uploads", photoStore.Handler()))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	users.RegisterRoutes(r, usersSvc, log)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(usersSvc, loginPath, log))

		pets.RegisterRoutes(r, petsSvc, log)
		visits.RegisterRoutes(r, visitsSvc, log)
		dashboard.RegisterRoutes(r, dashboardSvc, log)
	})

	return r, nil
}
