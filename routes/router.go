package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/TusharJoshi-11/crease/config"
	"github.com/TusharJoshi-11/crease/internal/auth"
	"github.com/TusharJoshi-11/crease/internal/broadcast"
	"github.com/TusharJoshi-11/crease/internal/match"
	"github.com/TusharJoshi-11/crease/internal/scoring"
	"github.com/TusharJoshi-11/crease/internal/team"
)

func SetupRoutes(db *gorm.DB, cfg *config.Config, hub *broadcast.Hub, log *logrus.Logger) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	// Welcome page
	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(`
			<html>
				<head><title>Crease</title></head>
				<body style="text-align:center; margin-top: 40px;">
					<h1>Crease 🏏 ball-by-ball scoring</h1>
					<div>
						<a href="/swagger/index.html">swagger</a>
					</div>
				</body>
			</html>
		`))
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes
	api := r.Group("/api")
	team.TeamRoutes(api, db)
	matchRepo := match.MatchRoutes(api, db, cfg.JWT.ScorerTokenSecret, log)
	auth.AuthRoutes(api, matchRepo, cfg.JWT.ScorerTokenSecret, cfg.JWT.ScorerTokenExpiryMinutes, log)
	scoring.ScoringRoutes(api, db, hub, cfg.JWT.ScorerTokenSecret, log)

	return r
}
