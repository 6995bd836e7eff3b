package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/tutorwise/tutorwise-platform/internal/availability"
	"github.com/tutorwise/tutorwise-platform/internal/bookings"
	"github.com/tutorwise/tutorwise-platform/internal/catalog"
	"github.com/tutorwise/tutorwise-platform/internal/dashboard"
	"github.com/tutorwise/tutorwise-platform/internal/directory"
	httpmiddleware "github.com/tutorwise/tutorwise-platform/internal/http/middleware"
	"github.com/tutorwise/tutorwise-platform/internal/reminder"
	"github.com/tutorwise/tutorwise-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	BookingsHandler     *bookings.Handler
	DirectoryHandler    *directory.Handler
	CatalogHandler      *catalog.Handler
	AvailabilityHandler *availability.Handler
	DashboardHandler    *dashboard.Handler
	ReminderHandler     *reminder.Handler

	AdminAuthSecret    string
	CORSAllowedOrigins []string
	MetricsHandler     http.Handler

	// Requests per second and burst for the admin rate limiter.
	// Zero disables rate limiting.
	RateLimitPerSecond float64
	RateLimitBurst     int
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints
	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Admin routes. With no secret configured AdminJWT fails closed,
	// so the whole surface stays unreachable rather than open.
	r.Route("/admin", func(admin chi.Router) {
		admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
		if cfg.RateLimitPerSecond > 0 {
			admin.Use(httpmiddleware.RateLimit(cfg.RateLimitPerSecond, cfg.RateLimitBurst))
		}

		if cfg.BookingsHandler != nil {
			admin.Post("/validate-availability", cfg.BookingsHandler.ValidateAvailability)
			admin.Mount("/bookings", cfg.BookingsHandler.Routes())
			admin.Get("/calendar", cfg.BookingsHandler.Calendar)
		}
		if cfg.DirectoryHandler != nil {
			admin.Mount("/clients", cfg.DirectoryHandler.ClientRoutes())
			admin.Mount("/tutors", cfg.DirectoryHandler.TutorRoutes())
		}
		if cfg.CatalogHandler != nil {
			admin.Mount("/services", cfg.CatalogHandler.ServiceRoutes())
			admin.Mount("/specialties", cfg.CatalogHandler.SpecialtyRoutes())
		}
		if cfg.AvailabilityHandler != nil {
			admin.Mount("/availability", cfg.AvailabilityHandler.Routes())
		}
		if cfg.DashboardHandler != nil {
			admin.Get("/dashboard", cfg.DashboardHandler.GetStats)
		}
		if cfg.ReminderHandler != nil {
			admin.Post("/reminders/run", cfg.ReminderHandler.Run)
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
