package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/raunak23427/mutual-skill-sync/internal/config"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/internal/metrics"
	"github.com/raunak23427/mutual-skill-sync/internal/middleware"
	"github.com/raunak23427/mutual-skill-sync/pkg/storage"

	adminHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/delivery/http"
	adminRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/repository"
	adminService "github.com/raunak23427/mutual-skill-sync/internal/modules/admin/service"

	feedbackHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/delivery/http"
	feedbackRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/repository"
	feedbackService "github.com/raunak23427/mutual-skill-sync/internal/modules/feedback/service"

	profileHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/delivery/http"
	profileRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/repository"
	profileService "github.com/raunak23427/mutual-skill-sync/internal/modules/profile/service"

	realtimeHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/delivery/http"
	realtimeService "github.com/raunak23427/mutual-skill-sync/internal/modules/realtime/service"

	searchService "github.com/raunak23427/mutual-skill-sync/internal/modules/search/service"

	skillHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/delivery/http"
	skillRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/repository"
	skillService "github.com/raunak23427/mutual-skill-sync/internal/modules/skill/service"

	swapHttp "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/delivery/http"
	swapRepo "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/repository"
	swapService "github.com/raunak23427/mutual-skill-sync/internal/modules/swap/service"
)

const shutdownTimeout = 30 * time.Second

type Server struct {
	engine      *gin.Engine
	cfg         *config.Config
	db          *gorm.DB
	redisClient *redis.Client
	swapSvc     swapService.SwapService
}

// NewServer wires repositories, services and handlers. redisClient may be
// nil; realtime events and rate limiting are then disabled.
func NewServer(ctx context.Context, cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	metrics.Register()

	imageStorage, err := storage.New(ctx, storage.Options{
		Provider:            cfg.StorageProvider,
		CloudinaryURL:       cfg.CloudinaryURL,
		CloudinaryCloudName: cfg.CloudinaryCloudName,
		UploadFolder:        cfg.CloudinaryUploadFolder,
		S3Bucket:            cfg.S3Bucket,
		S3Region:            cfg.S3Region,
		S3Endpoint:          cfg.S3Endpoint,
		S3AccessKeyID:       cfg.S3AccessKeyID,
		S3SecretAccessKey:   cfg.S3SecretAccessKey,
		S3PublicBaseURL:     cfg.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	if imageStorage == nil {
		log.Println("Photo storage disabled (STORAGE_PROVIDER=none)")
	}

	publisher := realtimeService.NewPublisher(redisClient)

	profileRepository := profileRepo.NewProfileRepository(db)
	indexer := searchService.NewIndexer(NewProfileIndex(cfg), profileRepository)

	profileSvc := profileService.NewProfileService(profileRepository, imageStorage, indexer, publisher)
	profileHandler := profileHttp.NewProfileHandler(profileSvc)

	skillRepository := skillRepo.NewSkillRepository(db)
	skillSvc := skillService.NewSkillService(skillRepository, indexer, publisher)
	skillHandler := skillHttp.NewSkillHandler(skillSvc)

	swapRepository := swapRepo.NewSwapRepository(db)
	swapSvc := swapService.NewSwapService(swapRepository, profileRepository, skillRepository, redisClient, publisher, swapService.Options{
		RateLimit:  cfg.RateLimitSwap,
		RequestTTL: cfg.SwapRequestTTL,
	})
	swapHandler := swapHttp.NewSwapHandler(swapSvc)

	feedbackRepository := feedbackRepo.NewFeedbackRepository(db)
	feedbackSvc := feedbackService.NewFeedbackService(feedbackRepository, swapRepository, profileRepository, indexer, publisher)
	feedbackHandler := feedbackHttp.NewFeedbackHandler(feedbackSvc)

	adminSvc := adminService.NewAdminService(adminRepo.NewAdminRepository(db), indexer, publisher)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	realtimeHandler := realtimeHttp.NewRealtimeHandler(publisher, cfg.Origins())

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	setupCORS(router, cfg.Origins())
	router.Use(gin.Recovery())
	router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	router.Use(middleware.Metrics())

	router.GET("/healthz", healthz(db, redisClient))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authMiddleware := middleware.NewAuthMiddleware(identity.NewVerifier(cfg.IdentityJWTSecret, cfg.IdentityIssuer), profileSvc)

	api := router.Group("/api")

	// Routes that only need a verified identity
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		protected.POST("/session/sync", profileHandler.SyncSession)
	}

	// Routes that need a synced, active profile
	profiled := protected.Group("")
	profiled.Use(authMiddleware.RequireProfile())
	{
		// Profile routes
		profiled.GET("/profile/me", profileHandler.GetCurrentProfile)
		profiled.PUT("/profile", profileHandler.UpdateProfile)
		profiled.POST("/profile/photo", profileHandler.UploadPhoto)
		profiled.DELETE("/profile/photo", profileHandler.DeletePhoto)
		profiled.GET("/profiles", profileHandler.BrowseProfiles)
		profiled.GET("/profiles/:id", profileHandler.GetProfileByID)
		profiled.GET("/profiles/:id/feedback/summary", feedbackHandler.ProfileSummary)
		profiled.GET("/search/token", profileHandler.SearchToken)

		// Skill routes
		profiled.GET("/skills", skillHandler.ListApproved)
		profiled.GET("/skills/categories", skillHandler.ListCategories)
		profiled.GET("/profile/skills/offered", skillHandler.ListOffered)
		profiled.POST("/profile/skills/offered", skillHandler.AddOffered)
		profiled.DELETE("/profile/skills/offered/:id", skillHandler.RemoveOffered)
		profiled.GET("/profile/skills/wanted", skillHandler.ListWanted)
		profiled.POST("/profile/skills/wanted", skillHandler.AddWanted)
		profiled.DELETE("/profile/skills/wanted/:id", skillHandler.RemoveWanted)

		// Swap routes
		profiled.POST("/swaps", swapHandler.CreateSwap)
		profiled.GET("/swaps/incoming", swapHandler.ListIncoming)
		profiled.GET("/swaps/outgoing", swapHandler.ListOutgoing)
		profiled.GET("/swaps/completed", swapHandler.ListCompleted)
		profiled.PUT("/swaps/:id/accept", swapHandler.Accept)
		profiled.PUT("/swaps/:id/reject", swapHandler.Reject)
		profiled.PUT("/swaps/:id/complete", swapHandler.Complete)
		profiled.DELETE("/swaps/:id", swapHandler.Delete)

		// Feedback routes
		profiled.POST("/feedback", feedbackHandler.CreateFeedback)
		profiled.GET("/feedback/received", feedbackHandler.ListReceived)
		profiled.GET("/feedback/summary", feedbackHandler.MySummary)

		profiled.GET("/messages", adminHandler.ListMessages)
		profiled.GET("/realtime/ws", realtimeHandler.HandleWebSocket)
	}

	adminGroup := api.Group("/admin")
	adminGroup.Use(authMiddleware.RequireAuth(), authMiddleware.RequireAdmin())
	{
		adminGroup.GET("/users", adminHandler.GetAllUsers)
		adminGroup.PUT("/users/:id/status", adminHandler.UpdateUserStatus)
		adminGroup.DELETE("/users/:id", adminHandler.DeleteUser)

		adminGroup.GET("/skills", adminHandler.GetAllSkills)
		adminGroup.POST("/skills", adminHandler.CreateSkill)
		adminGroup.PUT("/skills/:id/moderate", adminHandler.ModerateSkill)

		adminGroup.GET("/swaps", adminHandler.GetAllSwaps)
		adminGroup.GET("/stats", adminHandler.GetPlatformStats)
		adminGroup.GET("/stats/swaps", adminHandler.GetSwapStats)

		adminGroup.POST("/messages", adminHandler.SendMessage)
		adminGroup.GET("/messages", adminHandler.ListMessages)
		adminGroup.GET("/actions", adminHandler.GetActions)
		adminGroup.GET("/reports/:type", adminHandler.DownloadReport)
	}

	return &Server{
		engine:      router,
		cfg:         cfg,
		db:          db,
		redisClient: redisClient,
		swapSvc:     swapSvc,
	}, nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests. The
// swap expiry worker runs for the lifetime of ctx.
func (s *Server) Run(ctx context.Context) error {
	go s.swapSvc.StartExpiryWorker(ctx, s.cfg.SwapExpiryInterval)

	srv := &http.Server{
		Addr:              ":" + s.cfg.Port,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Println("Server exited")
	return nil
}

// NewProfileIndex returns the Meilisearch profile index, or nil when no host
// is configured.
func NewProfileIndex(cfg *config.Config) searchService.ProfileIndex {
	if cfg.MeiliSearchHost == "" {
		log.Println("MEILISEARCH_HOST not set, profile search index disabled")
		return nil
	}
	host := cfg.MeiliSearchHost
	if !strings.HasPrefix(host, "http") {
		host = "http://" + host + ":7700"
	}
	client := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
	return searchService.NewMeiliProfileIndex(client)
}

func healthz(db *gorm.DB, redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := gin.H{"database": "ok"}
		code := http.StatusOK

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status["database"] = "unavailable"
			code = http.StatusServiceUnavailable
		}
		if redisClient != nil {
			status["redis"] = "ok"
			if err := redisClient.Ping(c.Request.Context()).Err(); err != nil {
				status["redis"] = "unavailable"
			}
		}

		c.JSON(code, status)
	}
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
