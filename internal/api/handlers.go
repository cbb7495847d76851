package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	profilewriter "portfolio-stack/agents/profile-writer"
	youtubesync "portfolio-stack/agents/youtube-sync"
	"portfolio-stack/internal/apperr"
	"portfolio-stack/internal/models"
	"portfolio-stack/shared/config"
	"portfolio-stack/shared/monitoring"
	"portfolio-stack/shared/storage"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type VideoService interface {
	Sync(ctx context.Context) (*youtubesync.SyncResult, error)
	PublicVideos(ctx context.Context) ([]models.Video, error)
}

type ReelService interface {
	GetOrCreate(ctx context.Context, reelURL string) (*models.ReelAnalysis, bool, error)
}

type ProfileService interface {
	Regenerate(ctx context.Context) (*profilewriter.Result, error)
}

type InstagramService interface {
	Sync(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.InstagramPost, error)
}

// Notifier delivers contact-form notifications. It is optional.
type Notifier interface {
	NotifyContact(msg *models.ContactMessage) error
}

type Options struct {
	Store         storage.Store
	Videos        VideoService
	Reels         ReelService
	Profiles      ProfileService
	Instagram     InstagramService
	Notifier      Notifier
	Monitor       *monitoring.Monitor
	Admin         config.AdminConfig
	SecureCookies bool
}

// Handler serves the public, cron and admin routes.
type Handler struct {
	store         storage.Store
	videos        VideoService
	reels         ReelService
	profiles      ProfileService
	instagram     InstagramService
	notifier      Notifier
	monitor       *monitoring.Monitor
	admin         config.AdminConfig
	sessions      *sessions
	validate      *validator.Validate
	secureCookies bool
}

func NewHandler(opts Options) *Handler {
	monitor := opts.Monitor
	if monitor == nil {
		monitor = monitoring.NewMonitor()
	}
	return &Handler{
		store:         opts.Store,
		videos:        opts.Videos,
		reels:         opts.Reels,
		profiles:      opts.Profiles,
		instagram:     opts.Instagram,
		notifier:      opts.Notifier,
		monitor:       monitor,
		admin:         opts.Admin,
		sessions:      newSessions(opts.Admin.SessionTTL),
		validate:      newValidator(),
		secureCookies: opts.SecureCookies,
	}
}

func (h *Handler) Health(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if !h.monitor.IsHealthy() {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"healthy": h.monitor.IsHealthy(),
		"summary": h.monitor.GetStatusSummary(),
		"agents":  h.monitor.Status(),
	})
}

func (h *Handler) ListVideos(c *gin.Context) {
	videos, err := h.videos.PublicVideos(c.Request.Context())
	if err != nil {
		if youtubesync.IsBlocked(err) {
			requestLogger(c).Error("Blocked untrusted channel content")
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"videos": []models.Video{}, "error": apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *Handler) ListInstagramPosts(c *gin.Context) {
	posts, err := h.instagram.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.store.GetProfile(c.Request.Context())
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusOK, nil)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}

type profileRequest struct {
	Bio         string   `json:"bio" validate:"required,max=2000"`
	Tagline     string   `json:"tagline" validate:"required,max=200"`
	Skills      []string `json:"skills" validate:"max=20,dive,required,max=100"`
	Personality string   `json:"personality" validate:"max=2000"`
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if !h.bindJSON(c, &req, nil) {
		return
	}

	now := time.Now()
	profile := &models.Profile{
		Bio:         req.Bio,
		Tagline:     req.Tagline,
		Skills:      req.Skills,
		Personality: req.Personality,
		LastUpdated: now,
		GeneratedAt: now,
	}
	if profile.Skills == nil {
		profile.Skills = []string{}
	}
	if err := h.store.SaveProfile(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

type contactRequest struct {
	Name        string `json:"name" validate:"min=2,max=100"`
	ContactInfo string `json:"contactInfo" validate:"min=3,max=100"`
	Message     string `json:"message" validate:"min=3,max=1000"`
}

func (h *Handler) SubmitContact(c *gin.Context) {
	var req contactRequest
	if !h.bindJSON(c, &req, func() {
		req.Name = strings.TrimSpace(req.Name)
		req.ContactInfo = strings.TrimSpace(req.ContactInfo)
		req.Message = strings.TrimSpace(req.Message)
	}) {
		return
	}

	msg := &models.ContactMessage{
		Name:        req.Name,
		ContactInfo: req.ContactInfo,
		Message:     req.Message,
		Status:      models.MessageNew,
	}
	logger := requestLogger(c)
	if err := h.store.SaveContactMessage(c.Request.Context(), msg); err != nil {
		logger.WithError(err).Error("Failed to save contact message")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "DATABASE_ERROR",
			"message": "Failed to save message. Please try again later.",
		})
		return
	}
	logger.WithField("message_id", msg.ID).Info("Contact message saved")

	if h.notifier != nil {
		if err := h.notifier.NotifyContact(msg); err != nil {
			logger.WithError(err).Warn("Contact notification failed")
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message sent successfully"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if !h.bindJSON(c, &req, nil) {
		return
	}

	if h.admin.Email == "" || h.admin.Password == "" {
		requestLogger(c).Error("Admin credentials are not configured")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Server configuration error",
			"message": "Admin authentication is not properly configured",
		})
		return
	}

	if !credentialsMatch(h.admin, req.Email, req.Password) {
		requestLogger(c).Warn("Invalid admin login attempt")
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
			"message": "Email or password is incorrect",
		})
		return
	}

	token := h.sessions.create()
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, token, int(h.sessions.ttl.Seconds()), "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Login successful"})
}

func (h *Handler) Logout(c *gin.Context) {
	if token, err := c.Cookie(sessionCookie); err == nil {
		h.sessions.revoke(token)
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(sessionCookie, "", -1, "/", "", h.secureCookies, true)
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out successfully"})
}

type analyzeRequest struct {
	ReelURL string `json:"reelUrl" validate:"required"`
}

func (h *Handler) AnalyzeReel(c *gin.Context) {
	var req analyzeRequest
	if !h.bindJSON(c, &req, func() { req.ReelURL = strings.TrimSpace(req.ReelURL) }) {
		return
	}

	analysis, cached, err := h.reels.GetOrCreate(c.Request.Context(), req.ReelURL)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analysis": analysis, "cached": cached})
}

func (h *Handler) ListReelAnalyses(c *gin.Context) {
	analyses, err := h.store.ListReelAnalyses(c.Request.Context(), storage.DefaultReelLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "analyses": analyses})
}

func (h *Handler) ListMessages(c *gin.Context) {
	messages, err := h.store.ListContactMessages(c.Request.Context(), storage.DefaultMessageLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

type messageStatusRequest struct {
	ID     string `json:"id" validate:"required"`
	Status string `json:"status" validate:"required,oneof=new read"`
}

func (h *Handler) UpdateMessage(c *gin.Context) {
	var req messageStatusRequest
	if !h.bindJSON(c, &req, nil) {
		return
	}

	err := h.store.UpdateContactMessageStatus(c.Request.Context(), req.ID, models.MessageStatus(req.Status))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message status updated"})
}

func (h *Handler) DeleteMessage(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required parameter",
			"message": "Missing required parameter: id",
		})
		return
	}

	if err := h.store.DeleteContactMessage(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Message deleted"})
}

func (h *Handler) SyncYouTube(c *gin.Context) {
	result, err := h.videos.Sync(c.Request.Context())
	if err != nil {
		c.Error(err)
		requestLogger(c).WithError(err).Error("YouTube sync failed")
		c.JSON(statusFor(err), gin.H{"error": "Failed to sync YouTube videos", "message": apperr.Message(err)})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"count":    result.Count,
		"noVideos": result.NoVideos,
		"message":  result.Message,
		"debug":    result.Debug,
	})
}

func (h *Handler) SyncInstagram(c *gin.Context) {
	count, err := h.instagram.Sync(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

func (h *Handler) SyncProfile(c *gin.Context) {
	result, err := h.profiles.Regenerate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "profile": result.Profile, "fallback": result.FellBack})
}

func (h *Handler) ListSyncLogs(c *gin.Context) {
	logs, err := h.store.RecentSyncLogs(c.Request.Context(), storage.DefaultLogLimit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
