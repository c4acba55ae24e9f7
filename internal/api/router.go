package api

import (
	"github.com/gin-gonic/gin"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/api/handler"
	"github.com/cryptoforce/platform/internal/api/middleware"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/identity"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Health    *handler.HealthHandler
	Levels    *handler.LevelsHandler
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Referral  *handler.ReferralHandler
	Admin     *handler.AdminHandler
	Feedback  *handler.FeedbackHandler
	Tribunal  *handler.TribunalHandler
	WebSocket *handler.WebSocketHandler
}

type Router struct {
	handlers *Handlers
	verifier identity.Verifier
	profiles middleware.ProfileLoader
	gate     *access.Gate
	cfg      *config.Config
}

func NewRouter(
	handlers *Handlers,
	verifier identity.Verifier,
	profiles middleware.ProfileLoader,
	gate *access.Gate,
	cfg *config.Config,
) *Router {
	return &Router{
		handlers: handlers,
		verifier: verifier,
		profiles: profiles,
		gate:     gate,
		cfg:      cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	if r.cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.Recover())
	engine.Use(middleware.Logging())
	engine.Use(middleware.CORS(r.cfg.CORS))

	h := r.handlers
	limiter := middleware.NewRateLimiter(r.cfg.RateLimit.RequestsPerSecond, r.cfg.RateLimit.Burst)
	authRequired := middleware.Auth(r.verifier, r.profiles)
	moderator := middleware.RequireModerator(r.gate)

	api := engine.Group("/api/v1")
	{
		api.GET("/health", h.Health.Check)
		api.GET("/levels", h.Levels.List)
		api.GET("/ws", h.WebSocket.Handle)

		auth := api.Group("/auth")
		{
			auth.POST("/register", middleware.IPRateLimit(limiter), h.Auth.Register)
			auth.POST("/login", middleware.IPRateLimit(limiter), h.Auth.Login)
			auth.GET("/session", authRequired, h.Auth.Session)
		}

		api.GET("/referrals/validate", middleware.IPRateLimit(limiter), h.Referral.Validate)

		authenticated := api.Group("")
		authenticated.Use(authRequired)
		{
			user := authenticated.Group("/user")
			{
				user.GET("/profile", h.User.GetProfile)
				user.PUT("/profile", h.User.UpdateProfile)
				user.POST("/avatar", h.User.UploadAvatar)
				user.GET("/referrals", h.Referral.Stats)
			}

			authenticated.POST("/referrals/process", h.Referral.Process)

			admin := authenticated.Group("/admin")
			admin.Use(middleware.RequireFounder(r.gate))
			{
				admin.PUT("/users/:id/level", h.Admin.SetLevel)
				admin.POST("/referral-codes/normalize", h.Admin.NormalizeCodes)
			}

			feedback := authenticated.Group("/feedback")
			{
				feedback.POST("", h.Feedback.Create)
				feedback.GET("/mine", h.Feedback.ListMine)
				feedback.GET("", moderator, h.Feedback.List)
				feedback.GET("/:id", h.Feedback.Get)
				feedback.GET("/:id/responses", h.Feedback.ListResponses)
				feedback.POST("/:id/respond", moderator, h.Feedback.Respond)
				feedback.POST("/:id/resolve", moderator, h.Feedback.Resolve)
				feedback.PUT("/:id/status", moderator, h.Feedback.UpdateStatus)
				feedback.DELETE("/:id", moderator, h.Feedback.Delete)
			}

			tribunal := authenticated.Group("/tribunal")
			{
				tribunal.GET("/content", h.Tribunal.List)
				tribunal.GET("/content/mine", h.Tribunal.ListMine)
				tribunal.GET("/content/:id", h.Tribunal.Get)
				tribunal.POST("/content", h.Tribunal.Submit)
				tribunal.PUT("/content/:id", h.Tribunal.Update)
				tribunal.DELETE("/content/:id", h.Tribunal.Delete)
				tribunal.GET("/review", moderator, h.Tribunal.ListPending)
				tribunal.POST("/content/:id/approve", moderator, h.Tribunal.Approve)
				tribunal.POST("/content/:id/reject", moderator, h.Tribunal.Reject)
				tribunal.POST("/content/:id/publish", moderator, h.Tribunal.Publish)
				tribunal.DELETE("/content/:id/publish", moderator, h.Tribunal.Unpublish)
			}
		}
	}

	return engine
}
