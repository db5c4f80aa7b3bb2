package rest

import (
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/common"
	"github.com/dmitrijs2005/tabliya/internal/logging"
	"github.com/dmitrijs2005/tabliya/internal/server/auth"
	"github.com/dmitrijs2005/tabliya/internal/server/models"
	"github.com/dmitrijs2005/tabliya/internal/server/ratelimit"
	"github.com/dmitrijs2005/tabliya/internal/server/services"
	"github.com/gin-gonic/gin"
)

const principalKey = "user"

const msgTooManyRequests = "Too many requests, please try again later."

// principalFrom returns the identity attached by Authenticate.
func principalFrom(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// errorHandler renders the last error recorded by a handler or middleware.
func errorHandler(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err
		status, message := statusFor(err)
		if status == http.StatusInternalServerError {
			l.Error(c.Request.Context(), "request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		}
		writeError(c, status, message)
	}
}

func abortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func notFound(c *gin.Context) {
	writeError(c, http.StatusNotFound, msgRouteNotFound)
}

// Authenticate resolves the caller from the token cookies and re-issues them
// when the refresh token was used.
func Authenticate(svc AuthService, cookies *auth.Cookies) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, refresh := cookies.Read(c.Request)
		id, err := svc.Authenticate(c.Request.Context(), access, refresh)
		if err != nil {
			abortWithError(c, err)
			return
		}
		if id.Tokens != nil {
			cookies.Attach(c.Writer, id.Tokens.AccessToken, id.Tokens.RefreshToken)
		}
		c.Set(principalKey, id.User)
		c.Next()
	}
}

// AuthorizePermissions lets through principals whose role is in roles.
// It must run after Authenticate.
func AuthorizePermissions(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principalFrom(c)
		if !ok {
			abortWithError(c, common.Unauthenticated(services.MsgAuthenticationInvalid))
			return
		}
		if !slices.Contains(roles, p.Role) {
			abortWithError(c, common.Forbidden(msgForbidden))
			return
		}
		c.Next()
	}
}

// rateLimit applies the fixed-window limiter per client IP. Store failures
// let the request through.
func rateLimit(l *ratelimit.Limiter, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			logger.Warn(c.Request.Context(), "rate limiter unavailable", "error", err)
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("RateLimit-Limit", strconv.Itoa(res.Limit))
		h.Set("RateLimit-Remaining", strconv.Itoa(res.Remaining))
		h.Set("RateLimit-Reset", strconv.Itoa(int(time.Until(res.Reset).Round(time.Second).Seconds())))

		if !res.Allowed {
			writeError(c, http.StatusTooManyRequests, msgTooManyRequests)
			c.Abort()
			return
		}
		c.Next()
	}
}

// securityHeaders sets a conservative set of browser hardening headers.
func securityHeaders(development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Content-Security-Policy", "default-src 'self';base-uri 'self';frame-ancestors 'self';object-src 'none'")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("X-XSS-Protection", "0")
		if !development {
			h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")
		}
		c.Next()
	}
}

// cors allows credentialed requests from the frontend origin only.
func cors(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")
		if origin != "" && c.GetHeader("Origin") == origin {
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requestLogger writes one debug line per request.
func requestLogger(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l.Debug(c.Request.Context(), "request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
