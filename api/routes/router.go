package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/venuecast/venuecast-backend/api/controllers"
	"github.com/venuecast/venuecast-backend/api/middleware"
	"github.com/venuecast/venuecast-backend/internal/gifts"
	"github.com/venuecast/venuecast-backend/internal/playback"
	"github.com/venuecast/venuecast-backend/internal/rankings"
	"github.com/venuecast/venuecast-backend/internal/realtime"
	"github.com/venuecast/venuecast-backend/internal/reports"
	"github.com/venuecast/venuecast-backend/internal/settings"
	"github.com/venuecast/venuecast-backend/internal/submissions"
	"github.com/venuecast/venuecast-backend/internal/users"
	"github.com/venuecast/venuecast-backend/pkg/config"
	"github.com/venuecast/venuecast-backend/pkg/db"
	"github.com/venuecast/venuecast-backend/pkg/logger"
	"github.com/venuecast/venuecast-backend/pkg/redis"
)

// RouterParams carries everything the HTTP surface depends on.
type RouterParams struct {
	Config   *config.Config
	Log      *logger.Logger
	DB       db.Pinger
	Redis    *redis.Client
	Registry *prometheus.Registry

	Hub     *realtime.Hub
	Engine  *playback.Engine
	Uploads controllers.Uploader

	// UploadsDir is served statically under /uploads.
	UploadsDir string

	Users       users.Service
	Submissions submissions.Service
	Rankings    rankings.Service
	Gifts       gifts.Service
	Reports     reports.Service
	Settings    settings.Service
}

func NewRouter(p RouterParams) http.Handler {
	cfg := p.Config
	logg := p.Log

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	submitPolicy := middleware.NewRateLimitPolicy(
		"submit",
		cfg.RateLimit.SubmissionWindow,
		cfg.RateLimit.SubmissionIPLimit,
	)

	var redisP controllers.Pinger
	if p.Redis != nil {
		redisP = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, p.DB, redisP))
	})

	if p.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(p.Registry, promhttp.HandlerOpts{}))
	}

	if p.Hub != nil {
		r.Get("/ws", p.Hub.ServeWS)
	}

	if p.UploadsDir != "" {
		fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(p.UploadsDir)))
		r.Handle("/uploads/*", fs)
	}

	// Patron surface. Unauthenticated; submissions are throttled per IP.
	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/playback", controllers.PlaybackState(p.Engine, logg))
		r.Get("/rankings", controllers.RankingsList(p.Rankings, logg))
		r.Get("/settings", controllers.SettingsGet(p.Settings, logg))
		r.Get("/gifts", controllers.GiftCatalogList(p.Gifts, logg))
		r.Get("/gifts/settings", controllers.GiftSettingsGet(p.Gifts, logg))

		r.Group(func(r chi.Router) {
			if p.Redis != nil {
				r.Use(middleware.RateLimit(submitPolicy, p.Redis, logg))
			}
			r.Post("/submissions", controllers.SubmissionCreate(p.Submissions, logg))
			r.Post("/submissions/image", controllers.SubmissionUpload(p.Submissions, p.Uploads, cfg.Uploads.MaxUploadMB, logg))
			r.Post("/reports", controllers.ReportCreate(p.Reports, logg))
		})
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(p.Users, logg))
	})

	// Staff surface.
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Get("/queue", controllers.QueueList(p.Submissions, logg))
		r.Post("/queue/{id}/approve", controllers.QueueApprove(p.Submissions, logg))
		r.Post("/queue/{id}/reject", controllers.QueueReject(p.Submissions, logg))
		r.Delete("/queue/{id}", controllers.QueueDelete(p.Submissions, logg))
		r.Get("/history", controllers.HistoryList(p.Submissions, logg))
		r.Delete("/history/{id}", controllers.HistoryDelete(p.Submissions, logg))
		r.Delete("/history", controllers.HistoryClear(p.Submissions, logg))

		r.Get("/playback", controllers.PlaybackState(p.Engine, logg))
		r.Post("/playback/skip", controllers.PlaybackSkip(p.Engine, logg))
		r.Post("/playback/reset", controllers.PlaybackReset(p.Engine, logg))

		r.Delete("/rankings", controllers.RankingsReset(p.Rankings, logg))

		r.Post("/gifts", controllers.GiftCatalogCreate(p.Gifts, logg))
		r.Put("/gifts/{id}", controllers.GiftCatalogUpdate(p.Gifts, logg))
		r.Delete("/gifts/{id}", controllers.GiftCatalogDelete(p.Gifts, logg))
		r.Put("/gifts/settings", controllers.GiftSettingsUpdate(p.Gifts, logg))
		r.Post("/gifts/image", controllers.GiftImageUpload(p.Uploads, cfg.Uploads.MaxUploadMB, logg))

		r.Get("/reports", controllers.ReportList(p.Reports, logg))
		r.Patch("/reports/{id}/status", controllers.ReportUpdateStatus(p.Reports, logg))

		r.Put("/settings", controllers.SettingsUpdate(p.Settings, logg))
		r.Post("/settings/packages", controllers.SettingsPackageAdd(p.Settings, logg))
		r.Delete("/settings/packages/{name}", controllers.SettingsPackageRemove(p.Settings, logg))
	})

	return r
}
