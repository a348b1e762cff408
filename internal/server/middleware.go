package server

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	obscontext "github.com/smallbiznis/hsekpi/internal/observability/context"
	"github.com/smallbiznis/hsekpi/internal/observability/logger"
	scopedomain "github.com/smallbiznis/hsekpi/internal/scope/domain"
	"go.uber.org/zap"
)

const (
	// HeaderUserID is set by the authenticating gateway in front of the API.
	HeaderUserID        = "X-User-Id"
	contextPrincipalKey = "principal"
)

// PrincipalRequired resolves the caller's role and project assignments.
func (s *Server) PrincipalRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}
		userID, err := snowflake.ParseString(raw)
		if err != nil || userID == 0 {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		principal, err := s.scopeSvc.LoadPrincipal(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, scopedomain.ErrNotFound) {
				err = ErrUnauthorized
			}
			AbortWithError(c, err)
			return
		}

		ctx := obscontext.WithUser(c.Request.Context(), principal.UserID.String(), string(principal.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Set(contextPrincipalKey, *principal)
		c.Next()
	}
}

func principalFrom(c *gin.Context) (scopedomain.Principal, bool) {
	value, ok := c.Get(contextPrincipalKey)
	if !ok {
		return scopedomain.Principal{}, false
	}
	principal, ok := value.(scopedomain.Principal)
	return principal, ok
}

// RollupRateLimit throttles monthly rollup requests per user when a limiter
// is configured.
func (s *Server) RollupRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.rollupLimiter == nil || !s.rollupLimiter.Enabled() {
			c.Next()
			return
		}

		principal, ok := principalFrom(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := c.Request.Context()
		result, err := s.rollupLimiter.AllowUser(ctx, principal.UserID.String())
		if err != nil {
			logger.FromContext(ctx).Warn("rollup rate limit check failed", zap.Error(err))
			AbortWithError(c, ErrServiceUnavailable)
			return
		}

		if result.Limit > 0 {
			c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
			c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		}
		if !result.Allowed {
			if result.RetryAfter > 0 {
				c.Header("Retry-After", strconv.Itoa(int(math.Ceil(result.RetryAfter.Seconds()))))
			}
			logger.FromContext(ctx).Info("rollup request rate limited")
			AbortWithError(c, ErrRateLimited)
			return
		}
		c.Next()
	}
}
