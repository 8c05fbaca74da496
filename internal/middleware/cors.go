package middleware

import (
	"time"

	"hospital-equipment-tracker/internal/config"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS allows the configured origins with credentials. "*" or an empty list
// allows any origin without credentials.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()

	allowAll := false
	for _, origin := range cfg.AllowedOrigins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll || len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
		corsConfig.AllowCredentials = true
	}

	corsConfig.AddAllowMethods("PATCH")
	corsConfig.AddAllowHeaders("Authorization", "X-Requested-With", "X-Request-ID")
	corsConfig.AddExposeHeaders("Content-Disposition", "X-Request-ID")
	corsConfig.MaxAge = 24 * time.Hour

	return cors.New(corsConfig)
}
