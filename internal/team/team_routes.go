package team

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// TeamRoutes sets up team and player administration routes.
func TeamRoutes(router *gin.RouterGroup, db *gorm.DB) TeamRepository {
	repo := NewGormTeamRepository(db)
	controller := NewTeamController(repo)

	teams := router.Group("/teams")
	{
		teams.POST("", controller.CreateTeam)
		teams.GET("", controller.GetTeams)
		teams.GET("/:id", controller.GetTeam)
		teams.POST("/:id/players", controller.AddPlayer)
	}
	router.GET("/players/:id", controller.GetPlayer)

	return repo
}
