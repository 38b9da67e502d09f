package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/ulule/limiter/v3"

	"github.com/stackit/qa-api/internal/api/handler"
	"github.com/stackit/qa-api/internal/api/middleware"
	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"

	_ "github.com/stackit/qa-api/docs"
)

// Dependencies bundles everything the router needs. Services are built by
// the caller so tests can swap any of them.
type Dependencies struct {
	Auth      ports.AuthService
	Users     ports.UserService
	Questions ports.QuestionService
	Answers   ports.AnswerService
	Votes     ports.VoteService
	Activity  ports.ActivityService

	// LoginLimiter guards POST /token. Nil disables rate limiting.
	LoginLimiter *limiter.Limiter
	// Checks feed the readiness probe.
	Checks []handler.DependencyCheck

	Log zerolog.Logger
	// DisableMetrics skips the prometheus middleware, for tests that build
	// several routers in one process.
	DisableMetrics bool
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Log))
	if !deps.DisableMetrics {
		e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
			Namespace: "stackit",
			Subsystem: "http",
			Skipper: func(c echo.Context) bool {
				return c.Path() == "/metrics"
			},
		}))
		e.GET("/metrics", echoprometheus.NewHandler())
	}

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	questionHandler := handler.NewQuestionHandler(deps.Questions)
	answerHandler := handler.NewAnswerHandler(deps.Answers)
	voteHandler := handler.NewVoteHandler(deps.Votes)
	activityHandler := handler.NewActivityHandler(deps.Activity)

	authn := middleware.Auth(deps.Auth, deps.Log)
	optionalAuthn := middleware.OptionalAuth(deps.Auth)
	asUser := middleware.RequireRole(domain.RoleUser)
	asAdmin := middleware.RequireRole(domain.RoleAdmin)

	// --- Auth routes ---
	if deps.LoginLimiter != nil {
		e.POST("/token", authHandler.Token, middleware.LoginRateLimit(deps.LoginLimiter, deps.Log))
	} else {
		e.POST("/token", authHandler.Token)
	}
	e.POST("/users", authHandler.Register)

	// --- Users ---
	users := e.Group("/users", authn)
	users.GET("/me", userHandler.Me)
	users.GET("", userHandler.List, asAdmin)
	users.PATCH("/:id/role", userHandler.SetRole, asAdmin)
	users.DELETE("/:id", userHandler.Delete)

	// --- Questions (reads are public) ---
	e.GET("/questions", questionHandler.List)
	e.GET("/questions/:id", questionHandler.Get, optionalAuthn)
	e.GET("/questions/:id/answers", answerHandler.List)
	e.GET("/tags", questionHandler.Tags)

	e.POST("/questions", questionHandler.Create, authn, asUser)
	e.DELETE("/questions/:id", questionHandler.Delete, authn)
	e.POST("/questions/:id/answers", answerHandler.Create, authn, asUser)
	e.POST("/questions/:id/vote", voteHandler.Cast, authn, asUser)
	e.DELETE("/questions/:id/vote", voteHandler.Retract, authn, asUser)

	// --- Answers ---
	e.POST("/answers/:id/accept", answerHandler.Accept, authn)
	e.DELETE("/answers/:id", answerHandler.Delete, authn)

	// --- Admin ---
	e.GET("/admin/activity", activityHandler.List, authn, asAdmin)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Checks...)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Docs ---
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

// requestLogger writes one zerolog event per request.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogRequestID: true,
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= 500 {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("request_id", v.RequestID).
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Msg("request")
			return nil
		},
	})
}
