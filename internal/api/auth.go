package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"sync"
	"time"

	"portfolio-stack/shared/config"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const sessionCookie = "admin-session"

// sessions holds admin session tokens in memory. A restart logs everyone out.
type sessions struct {
	mu     sync.Mutex
	ttl    time.Duration
	tokens map[string]time.Time
	now    func() time.Time
}

func newSessions(ttl time.Duration) *sessions {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &sessions{ttl: ttl, tokens: make(map[string]time.Time), now: time.Now}
}

func (s *sessions) create() string {
	token := uuid.NewString()
	s.mu.Lock()
	s.tokens[token] = s.now().Add(s.ttl)
	s.mu.Unlock()
	return token
}

func (s *sessions) valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

func (s *sessions) revoke(token string) {
	s.mu.Lock()
	delete(s.tokens, token)
	s.mu.Unlock()
}

// credentialsMatch compares the email case-insensitively and the password in
// constant time.
func credentialsMatch(admin config.AdminConfig, email, password string) bool {
	emailOK := strings.EqualFold(strings.TrimSpace(email), strings.TrimSpace(admin.Email))
	passwordOK := subtle.ConstantTimeCompare([]byte(password), []byte(admin.Password)) == 1
	return emailOK && passwordOK
}

func (h *Handler) requireSession(c *gin.Context) {
	token, err := c.Cookie(sessionCookie)
	if err != nil || !h.sessions.valid(token) {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}

func (h *Handler) requireCronSecret(c *gin.Context) {
	secret := h.admin.CronSecret
	header := c.GetHeader("Authorization")
	if secret == "" || subtle.ConstantTimeCompare([]byte(header), []byte("Bearer "+secret)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.Next()
}
