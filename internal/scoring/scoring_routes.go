package scoring

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/TusharJoshi-11/crease/internal/broadcast"
	mw "github.com/TusharJoshi-11/crease/internal/middleware"
)

// ScoringRoutes wires the delivery engine endpoints. Mutating routes require
// a scorer token scoped to the match.
func ScoringRoutes(router *gin.RouterGroup, db *gorm.DB, hub *broadcast.Hub, jwtSecret string, log *logrus.Logger) {
	repo := NewGormScoringRepository(db)
	locks := newInningsLocks()
	processor := NewDeliveryProcessor(repo, NewRuleEngine(), hub, locks, log)
	undo := NewUndoEngine(repo, hub, locks, log)
	controller := NewScoringController(repo, processor, undo, hub, log)

	innings := router.Group("/innings")
	{
		innings.GET("/:id/deliveries", controller.GetRecentDeliveries)
		innings.GET("/:id/snapshot", controller.GetInningsSnapshot)

		scorer := innings.Group("")
		scorer.Use(mw.ScorerAuthMiddleware(jwtSecret))
		{
			scorer.POST("/:id/deliveries", controller.SubmitDelivery)
			scorer.POST("/:id/undo", controller.UndoDelivery)
		}
	}

	router.GET("/matches/:id/live", controller.StreamMatch)
}
