package router

import (
	"errors"
	"net/http"
	"time"

	"breadit/internal/handlers"
	"breadit/internal/metrics"
	"breadit/internal/middleware"
	"breadit/internal/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	errMissingService = errors.New("router: every service dependency is required")
	errShortSecret    = errors.New("router: session secret must be at least 16 bytes")
)

type Dependencies struct {
	Votes         *services.VoteService
	Comments      *services.CommentService
	Feed          *services.FeedService
	Posts         *services.PostService
	Subscriptions *services.SubscriptionService
	Communities   *services.CommunityService
	Users         *services.UserService
	Accounts      *services.AccountService
	Metrics       *metrics.Collector
	Logger        *zap.Logger

	SessionName   string
	SessionSecret string
	AllowOrigins  []string
	PageSize      int
}

// NewEngine builds the HTTP engine with sessions, CORS and request logging in
// front of the API routes.
func NewEngine(deps Dependencies) (*gin.Engine, error) {
	if deps.Votes == nil || deps.Comments == nil || deps.Feed == nil || deps.Posts == nil ||
		deps.Subscriptions == nil || deps.Communities == nil || deps.Users == nil || deps.Accounts == nil {
		return nil, errMissingService
	}
	if len(deps.SessionSecret) < 16 {
		return nil, errShortSecret
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.SessionName == "" {
		deps.SessionName = "breadit_session"
	}
	origins := deps.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: !(len(origins) == 1 && origins[0] == "*"),
		MaxAge:           12 * time.Hour,
	}))

	store := cookie.NewStore([]byte(deps.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(deps.SessionName, store))
	r.Use(middleware.LoadViewer())
	r.Use(middleware.RequestLogger(deps.Logger))

	RegisterRoutes(r, deps)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, deps Dependencies) {
	// Handlers
	authHandler := handlers.NewAuthHandler(deps.Accounts, deps.Logger)
	voteHandler := handlers.NewVoteHandler(deps.Votes, deps.Logger)
	postHandler := handlers.NewPostHandler(deps.Posts, deps.Feed, deps.PageSize, deps.Logger)
	commentHandler := handlers.NewCommentHandler(deps.Comments, deps.Logger)
	subbreaditHandler := handlers.NewSubbreaditHandler(deps.Communities, deps.Subscriptions, deps.Logger)
	userHandler := handlers.NewUserHandler(deps.Users, deps.Logger)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	if deps.Metrics != nil {
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	auth := r.Group("/auth")
	{
		auth.POST("/signup", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/logout", authHandler.Logout)
	}

	// Public reads
	api := r.Group("/api")
	{
		api.GET("/posts", postHandler.List)
		api.GET("/posts/:id", postHandler.Detail)
		api.GET("/posts/:id/comments", commentHandler.Threads)
		api.GET("/subbreadit/:name", subbreaditHandler.Show)
		api.GET("/search", subbreaditHandler.Search)
	}

	// Writes need a signed-in viewer
	authorized := r.Group("/api")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/me", authHandler.Me)
		authorized.GET("/me/subscriptions", subbreaditHandler.Subscribed)
		authorized.PATCH("/username", userHandler.ChangeUsername)

		authorized.POST("/subbreadit", subbreaditHandler.Create)
		authorized.POST("/subbreadit/subscribe", subbreaditHandler.Subscribe)
		authorized.POST("/subbreadit/unsubscribe", subbreaditHandler.Unsubscribe)
		authorized.POST("/subbreadit/post/create", postHandler.Create)
		authorized.PATCH("/subbreadit/post/vote", voteHandler.VotePost)
		authorized.PATCH("/subbreadit/post/comment", commentHandler.Create)
		authorized.PATCH("/subbreadit/post/comment/vote", voteHandler.VoteComment)
	}
}
