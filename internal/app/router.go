package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/almanar-edu/almanar/internal/adminfn"
	"github.com/almanar-edu/almanar/internal/content"
	"github.com/almanar-edu/almanar/internal/dashboard"
	"github.com/almanar-edu/almanar/internal/elearning"
	"github.com/almanar-edu/almanar/internal/fees"
	"github.com/almanar-edu/almanar/internal/guard"
	"github.com/almanar-edu/almanar/internal/identity"
	"github.com/almanar-edu/almanar/internal/observability"
	"github.com/almanar-edu/almanar/internal/staff"
	"github.com/almanar-edu/almanar/internal/students"
	"github.com/almanar-edu/almanar/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Guard            guard.Middleware
	IdentityHandler  *identity.Handler
	AdminFnHandler   *adminfn.Handler
	StudentsHandler  *students.Handler
	StaffHandler     *staff.Handler
	FeesHandler      *fees.Handler
	ElearningHandler *elearning.Handler
	ContentHandler   *content.Handler
	DashboardHandler *dashboard.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with Almanar defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	// Public surface: landing content and authentication.
	r.Route("/api/public", func(pub chi.Router) {
		if params.ContentHandler != nil {
			params.ContentHandler.MountPublicRoutes(pub)
		}
	})
	r.Route("/api/auth", func(auth chi.Router) {
		if params.IdentityHandler != nil {
			params.IdentityHandler.MountRoutes(auth)
		}
	})

	// Privileged function endpoints with their own CORS and auth handling.
	r.Route("/functions/v1", func(fn chi.Router) {
		if params.AdminFnHandler != nil {
			params.AdminFnHandler.MountRoutes(fn)
		}
	})

	// Authenticated application surface.
	r.Route("/api", func(api chi.Router) {
		if params.StudentsHandler != nil {
			api.Route("/students", func(sr chi.Router) {
				sr.Group(func(read chi.Router) {
					read.Use(params.Guard.RequireTeacher())
					params.StudentsHandler.MountReadRoutes(read)
				})
				sr.Group(func(write chi.Router) {
					write.Use(params.Guard.RequireAdmin())
					params.StudentsHandler.MountWriteRoutes(write)
				})
			})
		}
		if params.StaffHandler != nil {
			api.Route("/staff", func(sr chi.Router) {
				sr.Use(params.Guard.RequireAdmin())
				params.StaffHandler.MountRoutes(sr)
			})
		}
		if params.FeesHandler != nil {
			api.Route("/fees", func(fr chi.Router) {
				fr.Use(params.Guard.RequireAccountant())
				params.FeesHandler.MountRoutes(fr)
			})
		}
		if params.ElearningHandler != nil {
			api.Route("/lessons", func(lr chi.Router) {
				lr.Use(params.Guard.RequireTeacher())
				params.ElearningHandler.MountRoutes(lr)
			})
		}
		if params.ContentHandler != nil {
			api.Route("/content/sections", func(cr chi.Router) {
				cr.Use(params.Guard.RequireAdmin())
				params.ContentHandler.MountAdminRoutes(cr)
			})
		}
		if params.DashboardHandler != nil {
			api.Route("/dashboard", func(dr chi.Router) {
				dr.Use(params.Guard.RequireAuth())
				params.DashboardHandler.MountRoutes(dr)
			})
		}
		if params.JobHandler != nil {
			api.Route("/jobs", func(jr chi.Router) {
				jr.Use(params.Guard.RequireAdmin())
				params.JobHandler.MountRoutes(jr)
			})
		}
	})

	return r
}
