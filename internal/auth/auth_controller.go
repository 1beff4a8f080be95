package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TusharJoshi-11/crease/internal/match"
	"github.com/TusharJoshi-11/crease/pkg/responses"
	"github.com/TusharJoshi-11/crease/pkg/token"
	"github.com/TusharJoshi-11/crease/pkg/validator"
	"github.com/TusharJoshi-11/crease/utils"
)

// AuthController exchanges a match's scorer access code for a scorer token.
type AuthController struct {
	matchRepo     match.MatchRepository
	jwtSecret     string
	expiryMinutes int
	log           *logrus.Logger
}

func NewAuthController(matchRepo match.MatchRepository, jwtSecret string, expiryMinutes int, log *logrus.Logger) *AuthController {
	return &AuthController{matchRepo: matchRepo, jwtSecret: jwtSecret, expiryMinutes: expiryMinutes, log: log}
}

// ScorerLoginRequest defines the request payload for scorer login.
type ScorerLoginRequest struct {
	MatchID    uint   `json:"match_id" binding:"required"`
	AccessCode string `json:"access_code" binding:"required"`
}

// ScorerLogin godoc
// @Summary Authenticate as the scorer of a match
// @Description Exchanges the match's scorer access code for a bearer token scoped to that match.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body ScorerLoginRequest true "Credentials"
// @Success 200 {object} responses.SuccessResponse
// @Failure 401 {object} responses.ErrorResponse
// @Router /auth/scorer [post]
func (ac *AuthController) ScorerLogin(c *gin.Context) {
	var req ScorerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}

	m, err := ac.matchRepo.GetMatchByID(req.MatchID)
	if err != nil {
		ac.log.WithError(err).Error("scorer login lookup failed")
		responses.InternalServerError(c, "Could not verify credentials")
		return
	}
	if m == nil || !utils.CheckAccessCode(m.ScorerCodeHash, req.AccessCode) {
		responses.Unauthorized(c, "Invalid match or access code")
		return
	}

	tokenString, err := token.GenerateScorerToken(m.ID, ac.jwtSecret, ac.expiryMinutes)
	if err != nil {
		ac.log.WithError(err).Error("scorer token generation failed")
		responses.InternalServerError(c, "Could not issue token")
		return
	}

	responses.SendSuccess(c, http.StatusOK, "Scorer authenticated", gin.H{
		"token":    tokenString,
		"match_id": m.ID,
	})
}
