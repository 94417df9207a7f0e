package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/jmspivey7/PlateSync-sub002/internal/domain"
	"github.com/jmspivey7/PlateSync-sub002/internal/http/handlers"
	"github.com/jmspivey7/PlateSync-sub002/internal/metrics"
	"github.com/jmspivey7/PlateSync-sub002/internal/middleware"
)

// Options configures the cross-cutting middleware.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
	Logger         zerolog.Logger

	// AuthRatePerMinute limits unauthenticated auth endpoints per client IP.
	AuthRatePerMinute int

	// Country resolves login countries; nil relies on proxy headers only.
	Country middleware.CountryLookup

	// StaticDir is served under /static/ when set.
	StaticDir string
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		metrics.InstrumentHandler,
		middleware.CORS(opts.AllowedOrigins),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
	}

	authRate := opts.AuthRatePerMinute
	if authRate <= 0 {
		authRate = 30
	}

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(authRate, time.Minute), middleware.Country(opts.Country))
			r.Post("/auth/register", app.AuthRegister)
			r.Post("/auth/login", app.AuthLogin)
			r.Post("/auth/password/forgot", app.AuthPasswordForgot)
			r.Post("/auth/password/reset", app.AuthPasswordReset)
			r.Post("/admin/auth/login", app.AdminLogin)
		})

		// Called by Stripe and by the Planning Center consent redirect.
		r.Post("/billing/webhook", app.StripeWebhook)
		r.Get("/integrations/planning-center/callback", app.PlanningCenterCallback)

		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthJWT(opts.JWTSecret), middleware.CurrentUser(app.CurrentUser))

			// Reachable while the subscription is lapsed so the church can pay.
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleUsher), middleware.RequireUsableChurch(app.ChurchActive))
				r.Get("/me", app.Me)
				r.Post("/auth/password/change", app.AuthChangePassword)
				r.Get("/subscription", app.SubscriptionGet)
				r.With(middleware.RequireRole(domain.RoleAccountOwner)).Post("/billing/checkout", app.BillingCheckout)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(domain.RoleUsher), middleware.RequireUsableChurch(app.ChurchAccess))
				churchRoutes(r, app)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireGlobalAdmin)
				r.Get("/churches", app.AdminChurchesList)
				r.Get("/churches/{id}", app.AdminChurchGet)
				r.Put("/churches/{id}/status", app.AdminChurchSetStatus)
				r.Put("/churches/{id}/subscription", app.AdminSubscriptionOverride)
				r.Get("/templates", app.AdminTemplatesList)
				r.Put("/templates/{type}", app.AdminTemplatesUpsert)
				r.Get("/settings/sendgrid", app.AdminSendGridKeyGet)
				r.Put("/settings/sendgrid", app.AdminSendGridKeySet)
			})
		})
	})

	return r
}

func churchRoutes(r chi.Router, app *handlers.App) {
	admin := middleware.RequireRole(domain.RoleAdmin)
	owner := middleware.RequireRole(domain.RoleAccountOwner)

	r.Get("/dashboard", app.Dashboard)

	r.Get("/church", app.ChurchGet)
	r.With(owner).Put("/church", app.ChurchUpdate)
	r.With(owner).Post("/church/logo", app.ChurchLogoUpload)

	r.Route("/users", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", app.UsersList)
		r.Post("/", app.UsersCreate)
		r.Patch("/{id}", app.UsersUpdate)
	})

	r.Route("/members", func(r chi.Router) {
		r.Get("/", app.MembersList)
		r.Get("/{id}", app.MembersGet)
		r.Get("/{id}/donations", app.MembersHistory)
		r.With(admin).Post("/", app.MembersCreate)
		r.With(admin).Post("/import", app.MembersImport)
		r.With(admin).Put("/{id}", app.MembersUpdate)
		r.With(admin).Delete("/{id}", app.MembersDelete)
	})

	r.Route("/integrations/planning-center", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", app.PlanningCenterStatus)
		r.Post("/connect", app.PlanningCenterConnect)
		r.Post("/sync", app.PlanningCenterSync)
		r.Delete("/", app.PlanningCenterDisconnect)
	})

	r.Route("/service-options", func(r chi.Router) {
		r.Get("/", app.ServiceOptionsList)
		r.With(admin).Post("/", app.ServiceOptionsCreate)
		r.With(admin).Delete("/{id}", app.ServiceOptionsDelete)
	})

	r.Route("/report-recipients", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", app.RecipientsList)
		r.Post("/", app.RecipientsCreate)
		r.Delete("/{id}", app.RecipientsDelete)
	})

	r.Route("/templates", func(r chi.Router) {
		r.Use(admin)
		r.Get("/", app.TemplatesList)
		r.Get("/{type}/preview", app.TemplatesPreview)
		r.Put("/{type}", app.TemplatesUpsert)
		r.Delete("/{type}", app.TemplatesReset)
	})

	r.Route("/batches", func(r chi.Router) {
		r.Get("/", app.BatchesList)
		r.Post("/", app.BatchesCreate)
		r.Get("/{id}", app.BatchesGet)
		r.Put("/{id}", app.BatchesUpdate)
		r.With(admin).Delete("/{id}", app.BatchesDelete)
		r.Post("/{id}/donations", app.DonationsCreate)
		r.Put("/{id}/donations/{donationID}", app.DonationsUpdate)
		r.Delete("/{id}/donations/{donationID}", app.DonationsDelete)
		r.Post("/{id}/close", app.BatchesClose)
		r.Post("/{id}/reopen", app.BatchesReopen)
		r.Post("/{id}/attest/primary", app.BatchesAttestPrimary)
		r.Post("/{id}/attest/secondary", app.BatchesAttestSecondary)
		r.Post("/{id}/finalize", app.BatchesFinalize)
		r.With(admin).Post("/{id}/resend", app.BatchesResend)
		r.Get("/{id}/report", app.BatchesReport)
	})
}
