package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const requestIDKey = "request_id"

// NewServer creates the gin engine with every route registered.
func NewServer(handler *Handler, mode string) *gin.Engine {
	if mode == "" {
		mode = gin.ReleaseMode
	}
	gin.SetMode(mode)

	r := gin.New()
	r.Use(requestID())
	r.Use(accessLog())
	r.Use(gin.Recovery())

	setupRoutes(r, handler)
	return r
}

func setupRoutes(r *gin.Engine, h *Handler) {
	r.GET("/health", h.Health)
	r.GET("/status", h.Status)

	public := r.Group("/api")
	{
		public.GET("/youtube", h.ListVideos)
		public.GET("/instagram", h.ListInstagramPosts)
		public.GET("/profile", h.GetProfile)
		public.POST("/contact", h.SubmitContact)
		public.POST("/admin/login", h.Login)
		public.POST("/admin/logout", h.Logout)
	}

	cron := r.Group("/api/cron", h.requireCronSecret)
	{
		cron.GET("/youtube", h.SyncYouTube)
		cron.GET("/profile", h.SyncProfile)
	}

	admin := r.Group("/api", h.requireSession)
	{
		admin.POST("/admin/analyze-reel", h.AnalyzeReel)
		admin.GET("/admin/reel-analyses", h.ListReelAnalyses)
		admin.GET("/admin/messages", h.ListMessages)
		admin.PATCH("/admin/messages", h.UpdateMessage)
		admin.DELETE("/admin/messages", h.DeleteMessage)
		admin.PUT("/profile", h.UpdateProfile)
		admin.POST("/sync/youtube", h.SyncYouTube)
		admin.POST("/sync/instagram", h.SyncInstagram)
		admin.POST("/sync/profile", h.SyncProfile)
		admin.GET("/sync/logs", h.ListSyncLogs)
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(log.Fields{
			"request_id": c.GetString(requestIDKey),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start),
			"client_ip":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			entry.Error("request failed")
			return
		}
		entry.Info("request")
	}
}

// requestLogger returns a logger tagged with the request id.
func requestLogger(c *gin.Context) *log.Entry {
	return log.WithField(requestIDKey, c.GetString(requestIDKey))
}
