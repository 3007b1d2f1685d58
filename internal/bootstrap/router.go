package bootstrap

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/makerhub/innovation-wizard/internal/ai"
	httpapi "github.com/makerhub/innovation-wizard/internal/api/http"
	"github.com/makerhub/innovation-wizard/internal/api/http/middleware"
	"github.com/makerhub/innovation-wizard/internal/auth"
	authmw "github.com/makerhub/innovation-wizard/internal/auth/middleware"
	"github.com/makerhub/innovation-wizard/internal/catalyst"
	catalysthttp "github.com/makerhub/innovation-wizard/internal/catalyst/http"
	"github.com/makerhub/innovation-wizard/internal/notify"
	wizardhttp "github.com/makerhub/innovation-wizard/internal/wizard/http"
	"github.com/makerhub/innovation-wizard/internal/wizard/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	CORSOrigins []string

	DB    *pgxpool.Pool
	Redis *redis.Client

	// Verifier checks Firebase ID tokens. When nil, identity is taken from
	// X-User-Id headers.
	Verifier authmw.TokenVerifier

	Wizard    *service.Service
	Catalyst  *catalyst.Service
	Events    notify.Subscriber
	AIMetrics *ai.Metrics
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     dep.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-Id", "X-User-Email", "X-User-Name"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	api := r.Group("/api/v1")
	if dep.AIMetrics != nil {
		httpapi.NewMetricsHandler(dep.AIMetrics).RegisterRoutes(api)
	}

	if dep.Verifier != nil {
		api.Use(authmw.FirebaseAuthMiddleware(dep.Verifier))
	} else {
		api.Use(auth.OptionalUser())
	}

	if dep.Wizard != nil {
		wizardhttp.New(dep.Wizard, dep.Events).Register(api.Group("/wizard"))
	}
	if dep.Catalyst != nil {
		catalysthttp.New(dep.Catalyst).Register(api.Group("/catalyst"))
	}

	return r
}
