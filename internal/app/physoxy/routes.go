package physoxy

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/physoxy/internal/config"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/admin/packagecreate"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/admin/packagedelete"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/admin/packageupdate"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/admin/subscribers"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/auth/verify"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/health"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/packages/cancel"
	packageslist "github.com/magabrotheeeer/physoxy/internal/http/handlers/packages/list"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/packages/me"
	"github.com/magabrotheeeer/physoxy/internal/http/handlers/packages/upgrade"
	resourcecreate "github.com/magabrotheeeer/physoxy/internal/http/handlers/resources/create"
	resourcelist "github.com/magabrotheeeer/physoxy/internal/http/handlers/resources/list"
	resourceread "github.com/magabrotheeeer/physoxy/internal/http/handlers/resources/read"
	resourceremove "github.com/magabrotheeeer/physoxy/internal/http/handlers/resources/remove"
	"github.com/magabrotheeeer/physoxy/internal/http/middlewarectx"
	"github.com/magabrotheeeer/physoxy/internal/models"
)

var resourceTypes = []models.ResourceType{models.ResourceBlog, models.ResourceEvent, models.ResourceCourse}

// RegisterRoutes вешает все маршруты API на router.
func RegisterRoutes(router chi.Router, logger *slog.Logger, cfg *config.Config, s Services, db health.Pinger) {
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.HTTPServer.ClientURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/docs/*", httpSwagger.WrapHandler)

	limiter := middlewarectx.NewIPLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	authRequired := middlewarectx.JWTMiddleware(s.Auth, logger)

	router.Route("/api", func(r chi.Router) {
		r.Get("/ping", health.New(logger, db).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.RateLimitMiddleware(limiter, logger))
			r.Post("/register", register.New(logger, s.Auth).ServeHTTP)
			r.Get("/verify", verify.New(logger, s.Auth, cfg.Branding.Name, cfg.HTTPServer.ClientURL).ServeHTTP)
			r.Post("/login", login.New(logger, s.Auth, cfg.Tokens.RefreshTTL).ServeHTTP)
			r.Post("/refresh", refresh.New(logger, s.Auth).ServeHTTP)
		})

		r.Get("/packages", packageslist.New(logger, s.Subscription).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(authRequired)
			r.Post("/logout", logout.New(logger, s.Auth).ServeHTTP)

			r.Get("/package/me", me.New(s.Subscription).ServeHTTP)
			r.Post("/package/upgrade/{id}", upgrade.New(logger, s.Subscription).ServeHTTP)
			r.Delete("/package/cancel", cancel.New(logger, s.Subscription).ServeHTTP)

			for _, typ := range resourceTypes {
				r.Get("/"+string(typ)+"s", resourcelist.New(logger, s.Content, typ).ServeHTTP)
				r.Get("/"+string(typ)+"s/{id}", resourceread.New(logger, s.Content, typ).ServeHTTP)
			}

			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnly(logger))
				r.Post("/package/new", packagecreate.New(logger, s.Content).ServeHTTP)
				r.Put("/package/update/{id}", packageupdate.New(logger, s.Content).ServeHTTP)
				r.Delete("/package/delete/{id}", packagedelete.New(logger, s.Content).ServeHTTP)
				r.Get("/subscribers", subscribers.New(logger, s.Content).ServeHTTP)

				for _, typ := range resourceTypes {
					r.Post("/"+string(typ)+"/new", resourcecreate.New(logger, s.Content, typ).ServeHTTP)
					r.Delete("/"+string(typ)+"/{id}", resourceremove.New(logger, s.Content, typ).ServeHTTP)
				}
			})
		})
	})
}
