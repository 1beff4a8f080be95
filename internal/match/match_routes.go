package match

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/TusharJoshi-11/crease/internal/middleware"
	"github.com/TusharJoshi-11/crease/internal/scoring"
	"github.com/TusharJoshi-11/crease/internal/team"
)

// MatchRoutes wires the match lifecycle endpoints. Returns the repository so
// the auth routes can look up scorer code hashes.
func MatchRoutes(router *gin.RouterGroup, db *gorm.DB, jwtSecret string, log *logrus.Logger) MatchRepository {
	repo := NewGormMatchRepository(db)
	teamRepo := team.NewGormTeamRepository(db)
	scoringRepo := scoring.NewGormScoringRepository(db)
	controller := NewMatchController(repo, teamRepo, scoringRepo, log)

	matches := router.Group("/matches")
	{
		matches.POST("", controller.CreateMatch)
		matches.GET("/:id", controller.GetMatch)
		matches.GET("/:id/scorecard", controller.GetScorecard)

		scorer := matches.Group("")
		scorer.Use(middleware.ScorerAuthMiddleware(jwtSecret))
		{
			scorer.POST("/:id/toss", controller.RecordToss)
			scorer.POST("/:id/innings", controller.StartInnings)
			scorer.POST("/:id/complete", controller.CompleteMatch)
		}
	}

	return repo
}
