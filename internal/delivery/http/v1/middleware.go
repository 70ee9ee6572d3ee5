package v1

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

const (
	userCtxKey      = "user"
	requestIDCtxKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

func (h *handlerImpl) HandleAuthMiddleware(c *gin.Context) {
	const authHeader = "Authorization"
	header := c.GetHeader(authHeader)
	if header == "" {
		h.logger.Error().Msg("authorization header required")
		abort(c, newUnauthorizedError(errNotAuthenticated.Error()))
		return
	}

	const bearerPrefix = "Bearer"
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], bearerPrefix) {
		h.logger.Error().Msg("invalid authorization header")
		abort(c, newUnauthorizedError(errNotAuthenticated.Error()))
		return
	}

	claims, err := h.auth.ParseJWTToken(parts[1])
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to parse token")
		abort(c, newUnauthorizedError(errNotAuthenticated.Error()))
		return
	}

	user, err := h.users.GetUserByID(c, claims.Subject)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			abort(c, newUnauthorizedError(errInactiveUser.Error()))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to fetch user")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.Set(userCtxKey, user)
	c.Next()
}

func (h *handlerImpl) HandleAdminMiddleware(c *gin.Context) {
	user := currentUser(c)
	if user == nil || !user.IsAdmin {
		h.logger.Error().Msg("admin privileges required")
		abort(c, newForbiddenError(errNotEnoughPrivileges.Error()))
		return
	}
	c.Next()
}

func currentUser(c *gin.Context) *models.User {
	value, exists := c.Get(userCtxKey)
	if !exists {
		return nil
	}
	user, _ := value.(*models.User)
	return user
}

func currentActor(c *gin.Context) services.Actor {
	user := currentUser(c)
	if user == nil {
		return services.Actor{}
	}
	return services.Actor{
		UserID:  user.ID,
		IsAdmin: user.IsAdmin,
	}
}

// HandleRequestLoggerMiddleware replaces gin's access log with a zerolog line
// per request, tagged with a request id echoed back to the caller.
func (h *handlerImpl) HandleRequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	requestID := c.GetHeader(requestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDCtxKey, requestID)
	c.Header(requestIDHeader, requestID)

	c.Next()

	event := h.logger.Info()
	if status := c.Writer.Status(); status >= http.StatusInternalServerError {
		event = h.logger.Error()
	} else if status >= http.StatusBadRequest {
		event = h.logger.Warn()
	}
	if user := currentUser(c); user != nil {
		event = event.Str("user_id", user.ID)
	}
	event.
		Str("request_id", requestID).
		Str("method", c.Request.Method).
		Str("path", c.Request.URL.Path).
		Int("status", c.Writer.Status()).
		Dur("latency", time.Since(start)).
		Str("client_ip", c.ClientIP()).
		Msg("handled request")
}

func (h *handlerImpl) HandleCORSMiddleware(c *gin.Context) {
	c.Writer.Header().Add("Vary", "Origin")

	origin := c.GetHeader("Origin")
	if origin == "" || !(slices.Contains(h.allowedOrigins, origin) || slices.Contains(h.allowedOrigins, "*")) {
		c.Next()
		return
	}

	c.Header("Access-Control-Allow-Origin", origin)
	c.Header("Access-Control-Allow-Credentials", "true")
	if c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != "" {
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

func (h *handlerImpl) HandleLoginRateLimitMiddleware(c *gin.Context) {
	if !h.loginLimiter.Allow(c.ClientIP()) {
		h.logger.Warn().
			Str("client_ip", c.ClientIP()).
			Msg("login rate limit exceeded")
		abort(c, newAPIError(http.StatusTooManyRequests, errRateLimitExceeded.Error()))
		return
	}
	c.Next()
}

const limiterIdleTTL = 3 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Buckets idle for
// limiterIdleTTL are dropped on the next Allow call.
type ipRateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	clients   map[string]*limiterEntry
	lastSweep time.Time
	now       func() time.Time
}

func newIPRateLimiter(perSecond float64, burst int) *ipRateLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	return &ipRateLimiter{
		limit:   limit,
		burst:   max(burst, 1),
		clients: make(map[string]*limiterEntry),
		now:     time.Now,
	}
}

func (l *ipRateLimiter) Allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= time.Minute {
		for key, entry := range l.clients {
			if now.Sub(entry.lastSeen) >= limiterIdleTTL {
				delete(l.clients, key)
			}
		}
		l.lastSweep = now
	}

	entry, ok := l.clients[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = entry
	}
	entry.lastSeen = now
	return entry.limiter.AllowN(now, 1)
}
