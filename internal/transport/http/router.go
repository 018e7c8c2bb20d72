package http

import (
	"net/http"

	"github.com/go-blog-auth/internal/application/auth"
	"github.com/go-blog-auth/internal/application/credential"
	"github.com/go-blog-auth/internal/application/otp"
	"github.com/go-blog-auth/internal/application/user"
	"github.com/go-blog-auth/internal/config"
	jwtinfra "github.com/go-blog-auth/internal/infrastructure/jwt"
	"github.com/go-blog-auth/internal/pkg/cookie"
	"github.com/go-blog-auth/internal/transport/http/handler"
	appmiddleware "github.com/go-blog-auth/internal/transport/http/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	UserRepo    UserRepository
	OtpRepo     OtpRepository
	ProfileRepo ProfileRepository
	Dispatcher  Dispatcher
	Google      GoogleIdentity
	Tokens      *jwtinfra.Provider
	Cookies     *cookie.Signer
}

// userRouteNames are the static segments under /v1/user; a username equal to
// one of them would be shadowed by that route.
var userRouteNames = []string{
	"profile", "change-username", "change-email", "verify-email", "change-phone", "verify-phone",
}

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	if cfg.TrustProxy {
		r.Use(chimiddleware.RealIP)
	}
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	otpStore := otp.NewStore(otp.StoreDeps{
		OtpRepo:  deps.OtpRepo,
		UserRepo: deps.UserRepo,
		TTL:      cfg.OTPTTL,
	})
	authSvc := auth.NewService(auth.ServiceDeps{
		UserRepo:        deps.UserRepo,
		ProfileRepo:     deps.ProfileRepo,
		Otps:            otpStore,
		Credentials:     credential.NewResolver(deps.UserRepo, cfg.PhoneRegion),
		Tokens:          deps.Tokens,
		Dispatcher:      deps.Dispatcher,
		Production:      cfg.IsProduction(),
		DispatchTimeout: cfg.DispatchTimeout,
	})
	userSvc := user.NewService(user.ServiceDeps{
		UserRepo:          deps.UserRepo,
		ProfileRepo:       deps.ProfileRepo,
		PhoneRegion:       cfg.PhoneRegion,
		ReservedUsernames: userRouteNames,
	})

	guard := appmiddleware.NewAuthGuard(authSvc)
	guard.Public(http.MethodGet, "/v1/user/{username}")
	authRL := appmiddleware.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst)

	healthH := handler.NewHealthHandler()
	authH := handler.NewAuthHandler(authSvc, deps.Cookies, cfg.OTPTokenTTL, cfg.ChangeTokenTTL)
	googleH := handler.NewGoogleHandler(authSvc, deps.Google, deps.Cookies)
	userH := handler.NewUserHandler(userSvc)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health-check/{action}", healthH.Ping)

		r.Route("/auth", func(r chi.Router) {
			r.With(authRL.Limit).Post("/user-existence", authH.UserExistence)
			r.With(authRL.Limit).Post("/check-otp", authH.CheckOtp)
			r.With(guard.Require).Get("/check-login", authH.CheckLogin)

			r.Get("/google", googleH.Login)
			r.Get("/google/redirect", googleH.Callback)
			r.With(authRL.Limit).Post("/google/token", googleH.Token)
		})

		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(guard.Require)

				r.Get("/profile", userH.GetProfile)
				r.Put("/profile", userH.UpdateProfile)
				r.Patch("/change-username", userH.ChangeUsername)
				r.Patch("/change-email", authH.ChangeEmail)
				r.Post("/verify-email", authH.VerifyEmail)
				r.Patch("/change-phone", authH.ChangePhone)
				r.Post("/verify-phone", authH.VerifyPhone)
				r.Get("/{username}", userH.GetPublic)
			})
		})
	})

	return r
}
