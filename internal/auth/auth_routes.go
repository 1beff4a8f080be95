package auth

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TusharJoshi-11/crease/internal/match"
)

// AuthRoutes wires the scorer authentication endpoint.
func AuthRoutes(router *gin.RouterGroup, matchRepo match.MatchRepository, jwtSecret string, expiryMinutes int, log *logrus.Logger) {
	controller := NewAuthController(matchRepo, jwtSecret, expiryMinutes, log)

	group := router.Group("/auth")
	{
		group.POST("/scorer", controller.ScorerLogin)
	}
}
