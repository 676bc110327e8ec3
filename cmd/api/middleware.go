package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhishek622/interviewflow/internal/auth"
	"github.com/abhishek622/interviewflow/internal/handler"
	"github.com/abhishek622/interviewflow/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the bearer token and stores the caller's
// ActorContext for the handlers.
func (app *application) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifyClaimsFromAuthHeader(c, app.Config.JWT.Secret, app.Config.JWT.Issuer)
		if err != nil {
			response.Unauthorized(c, err.Error())
			c.Abort()
			return
		}

		c.Set(handler.ActorKey, claims.Actor())
		c.Next()
	}
}

func verifyClaimsFromAuthHeader(c *gin.Context, secret, issuer string) (*auth.Claims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, fmt.Errorf("authorization header is missing")
	}

	fields := strings.Fields(authHeader)
	if len(fields) != 2 || fields[0] != "Bearer" {
		return nil, fmt.Errorf("invalid authorization header")
	}

	claims, err := auth.ParseToken(secret, issuer, fields[1])
	if err != nil {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

func (app *application) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Limiter != nil && !app.Limiter.Allow(c.ClientIP()) {
			response.TooManyRequests(c, "")
			c.Abort()
			return
		}
		c.Next()
	}
}

func (app *application) LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		app.Logger.Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

// CORSMiddleware reflects the origin only when it is trusted.
func (app *application) CORSMiddleware() gin.HandlerFunc {
	trusted := make(map[string]bool)
	for _, o := range app.Config.GetCORSOrigins() {
		trusted[o] = true
	}
	return func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); trusted[origin] {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH")
			c.Writer.Header().Add("Vary", "Origin")
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
