package router

import (
	"context"
	"crypto/subtle"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"

	"jobai-go/internal/api/handler"
	"jobai-go/internal/config"
	"jobai-go/internal/metrics"
)

// APIKeyHeader carries the key when server.api_keys is set.
const APIKeyHeader = "X-API-Key"

// RegisterRoutes registers the API routes. The banner, health and metrics endpoints are
// never behind API-key auth.
func RegisterRoutes(h *server.Hertz, cfg *config.Config, resumeHandler *handler.ResumeHandler) {
	if cfg.Metrics.Enabled {
		h.Use(metrics.HertzMiddleware())
		path := cfg.Metrics.Path
		if path == "" {
			path = "/metrics"
		}
		h.GET(path, metrics.Handler())
	}

	h.GET("/", resumeHandler.HandleIndex)

	public := h.Group("/api/v1")
	public.GET("/health", resumeHandler.HandleHealth)

	api := h.Group("/api/v1", authMiddleware(cfg.Server.APIKeys)...)
	api.POST("/extract-resume", resumeHandler.HandleExtractResume)
	api.POST("/extract-text", resumeHandler.HandleExtractText)
	api.POST("/submit-resume", resumeHandler.HandleSubmitResume)
	api.GET("/extractions/:submission_uuid", resumeHandler.HandleGetExtraction)
}

func authMiddleware(keys []string) []app.HandlerFunc {
	if len(keys) == 0 {
		return nil
	}
	return []app.HandlerFunc{
		keyauth.New(
			keyauth.WithKeyLookUp("header:"+APIKeyHeader, ""),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				for _, k := range keys {
					if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
						return true, nil
					}
				}
				return false, nil
			}),
			keyauth.WithErrorHandler(func(ctx context.Context, c *app.RequestContext, err error) {
				c.AbortWithStatusJSON(consts.StatusUnauthorized, utils.H{"error": "missing or invalid API key"})
			}),
		),
	}
}
