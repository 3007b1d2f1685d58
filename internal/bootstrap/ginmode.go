package bootstrap

import (
	"github.com/gin-gonic/gin"

	"github.com/makerhub/innovation-wizard/config"
)

// GinMode maps the deployment environment onto gin's mode.
func GinMode(app config.AppConfig) string {
	switch {
	case app.IsProduction():
		return gin.ReleaseMode
	case app.Environment == "test":
		return gin.TestMode
	}
	return gin.DebugMode
}

func SetGinMode(app config.AppConfig) {
	gin.SetMode(GinMode(app))
}
