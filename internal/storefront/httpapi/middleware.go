package httpapi

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwikikusuma/storefront-cart/pkg/authtoken"
	"github.com/dwikikusuma/storefront-cart/pkg/metrics"
)

const userIDKey = "user_id"

// requireUser validates the bearer token and stores the user id on the context.
func requireUser(tokens *authtoken.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := authtoken.FromHeader(c.GetHeader("Authorization"))
		if !ok {
			abortWithError(c, authtoken.ErrInvalid)
			return
		}
		claims, err := tokens.Validate(raw)
		if err != nil {
			abortWithError(c, err)
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString(userIDKey)
}

func observe(log *slog.Logger, m *metrics.Server) gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(started)
		m.ObserveHTTP(route, strconv.Itoa(status), elapsed)

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("route", route),
			slog.Int("status", status),
			slog.Duration("duration", elapsed),
		}
		if uid := userID(c); uid != "" {
			attrs = append(attrs, slog.String("user_id", uid))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("err", c.Errors.String()))
			log.Error("request failed", attrs...)
			return
		}
		log.Info("request", attrs...)
	}
}
