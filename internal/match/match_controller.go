package match

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TusharJoshi-11/crease/internal/middleware"
	"github.com/TusharJoshi-11/crease/internal/scoring"
	"github.com/TusharJoshi-11/crease/internal/team"
	"github.com/TusharJoshi-11/crease/pkg/responses"
	"github.com/TusharJoshi-11/crease/pkg/validator"
	"github.com/TusharJoshi-11/crease/utils"
)

// MatchController handles match lifecycle requests: creation, toss, innings
// start and scorecard reads. Ball-by-ball scoring lives in the scoring
// package.
type MatchController struct {
	repo        MatchRepository
	teamRepo    team.TeamRepository
	scoringRepo scoring.ScoringRepository
	log         *logrus.Logger
}

func NewMatchController(repo MatchRepository, teamRepo team.TeamRepository, scoringRepo scoring.ScoringRepository, log *logrus.Logger) *MatchController {
	return &MatchController{repo: repo, teamRepo: teamRepo, scoringRepo: scoringRepo, log: log}
}

// CreateMatchRequest defines the request payload for creating a match.
type CreateMatchRequest struct {
	HomeTeamID      uint   `json:"home_team_id" binding:"required"`
	AwayTeamID      uint   `json:"away_team_id" binding:"required"`
	OversPerInnings int    `json:"overs_per_innings" binding:"omitempty,min=1,max=50"`
	Venue           string `json:"venue,omitempty"`
	ScorerCode      string `json:"scorer_code" binding:"required,min=6,max=64"`
}

// RecordTossRequest defines the request payload for recording the toss.
type RecordTossRequest struct {
	WonByTeamID uint         `json:"won_by_team_id" binding:"required"`
	Decision    TossDecision `json:"decision" binding:"required,oneof=bat bowl"`
}

// StartInningsRequest defines the request payload for starting an innings.
type StartInningsRequest struct {
	OpenerIDs []uint `json:"opener_ids" binding:"required,len=2"`
	StrikerID uint   `json:"striker_id" binding:"required"`
}

func matchIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid match ID")
		return 0, false
	}
	return uint(id), true
}

// getMatch loads the match or responds with the appropriate error.
func (mc *MatchController) getMatch(c *gin.Context, id uint) *Match {
	m, err := mc.repo.GetMatchByID(id)
	if err != nil {
		mc.log.WithError(err).Error("fetch match failed")
		responses.InternalServerError(c, "Could not fetch match")
		return nil
	}
	if m == nil {
		responses.NotFound(c, "Match not found")
		return nil
	}
	return m
}

// requireScorer checks the scorer token scope against the match.
func requireScorer(c *gin.Context, matchID uint) bool {
	scope, ok := middleware.ScorerMatchID(c)
	if !ok || scope != matchID {
		responses.Forbidden(c, "Scorer token is not valid for this match")
		return false
	}
	return true
}

// CreateMatch godoc
// @Summary Create a match
// @Description Creates a fixture between two teams. The scorer access code set here is later exchanged for a scorer token.
// @Tags matches
// @Accept json
// @Produce json
// @Param match body CreateMatchRequest true "Match"
// @Success 201 {object} responses.SuccessResponse
// @Router /matches [post]
func (mc *MatchController) CreateMatch(c *gin.Context) {
	var req CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}
	if req.HomeTeamID == req.AwayTeamID {
		responses.BadRequest(c, "A match needs two different teams")
		return
	}

	for _, teamID := range []uint{req.HomeTeamID, req.AwayTeamID} {
		t, err := mc.teamRepo.GetTeamByID(teamID)
		if err != nil {
			responses.InternalServerError(c, "Could not verify teams")
			return
		}
		if t == nil {
			responses.NotFound(c, fmt.Sprintf("Team %d not found", teamID))
			return
		}
	}

	hash, err := utils.HashAccessCode(req.ScorerCode)
	if err != nil {
		responses.InternalServerError(c, "Could not secure scorer code")
		return
	}

	overs := req.OversPerInnings
	if overs == 0 {
		overs = 20
	}
	m := Match{
		HomeTeamID:      req.HomeTeamID,
		AwayTeamID:      req.AwayTeamID,
		OversPerInnings: overs,
		Venue:           req.Venue,
		Status:          StatusMatchCreated,
		ScorerCodeHash:  hash,
	}
	if err := mc.repo.CreateMatch(&m); err != nil {
		mc.log.WithError(err).Error("create match failed")
		responses.InternalServerError(c, "Could not create match")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Match created", m)
}

// GetMatch godoc
// @Summary Get a match
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /matches/{id} [get]
func (mc *MatchController) GetMatch(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	m := mc.getMatch(c, id)
	if m == nil {
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match retrieved", m)
}

// RecordToss godoc
// @Summary Record the toss
// @Tags matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param toss body RecordTossRequest true "Toss"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/toss [post]
func (mc *MatchController) RecordToss(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	if !requireScorer(c, id) {
		return
	}
	m := mc.getMatch(c, id)
	if m == nil {
		return
	}
	if m.Status != StatusMatchCreated {
		responses.SendError(c, http.StatusConflict, "Toss can only be recorded before play starts")
		return
	}

	var req RecordTossRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}
	if req.WonByTeamID != m.HomeTeamID && req.WonByTeamID != m.AwayTeamID {
		responses.BadRequest(c, "Toss winner must be one of the match teams")
		return
	}

	m.TossWonByTeamID = &req.WonByTeamID
	decision := req.Decision
	m.TossDecision = &decision
	m.Status = StatusMatchTossDone
	if err := mc.repo.UpdateMatch(m); err != nil {
		mc.log.WithError(err).Error("record toss failed")
		responses.InternalServerError(c, "Could not record toss")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Toss recorded", m)
}

// StartInnings godoc
// @Summary Start the next innings
// @Description Creates the innings with its two openers at the crease, striker flagged.
// @Tags matches
// @Accept json
// @Produce json
// @Param id path int true "Match ID"
// @Param innings body StartInningsRequest true "Openers"
// @Success 201 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/innings [post]
func (mc *MatchController) StartInnings(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	if !requireScorer(c, id) {
		return
	}
	m := mc.getMatch(c, id)
	if m == nil {
		return
	}
	if m.Status != StatusMatchTossDone && m.Status != StatusMatchLive {
		responses.SendError(c, http.StatusConflict, "Match is not ready for an innings")
		return
	}

	var req StartInningsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "errors": validator.ParseError(err)})
		return
	}
	if req.StrikerID != req.OpenerIDs[0] && req.StrikerID != req.OpenerIDs[1] {
		responses.BadRequest(c, "Striker must be one of the openers")
		return
	}
	if req.OpenerIDs[0] == req.OpenerIDs[1] {
		responses.BadRequest(c, "Openers must be two different players")
		return
	}

	existing, err := mc.scoringRepo.GetInningsByMatch(m.ID)
	if err != nil {
		responses.InternalServerError(c, "Could not inspect innings")
		return
	}
	number := len(existing) + 1
	if number > 2 {
		responses.SendError(c, http.StatusConflict, "Both innings have already been played")
		return
	}
	if number == 2 && !existing[0].Status.Completed() {
		responses.SendError(c, http.StatusConflict, "First innings is still in progress")
		return
	}

	battingTeamID, bowlingTeamID, ok := m.BattingOrder(number)
	if !ok {
		responses.SendError(c, http.StatusConflict, "Toss has not been recorded")
		return
	}

	innings := scoring.Innings{
		MatchID:       m.ID,
		Number:        number,
		BattingTeamID: battingTeamID,
		BowlingTeamID: bowlingTeamID,
		OversLimit:    m.OversPerInnings,
		Status:        scoring.InningsInProgress,
	}
	if number == 2 {
		target := existing[0].TotalRuns + 1
		innings.TargetScore = &target
	}

	err = mc.scoringRepo.WithTransaction(func(tx scoring.ScoringRepository) error {
		if err := tx.CreateInnings(&innings); err != nil {
			return err
		}
		for order, playerID := range req.OpenerIDs {
			stat := scoring.PlayerInningsStat{
				InningsID:    innings.ID,
				PlayerID:     playerID,
				BattingOrder: order + 1,
				OnStrike:     playerID == req.StrikerID,
			}
			if err := tx.CreatePlayerStat(&stat); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		mc.log.WithError(err).Error("start innings failed")
		responses.InternalServerError(c, "Could not start innings")
		return
	}

	inningsID := innings.ID
	if err := mc.repo.SetCurrentInnings(m.ID, &inningsID); err != nil {
		mc.log.WithError(err).Error("update match after innings start failed")
		responses.InternalServerError(c, "Could not update match")
		return
	}
	if err := mc.repo.UpdateMatchStatus(m.ID, StatusMatchLive); err != nil {
		mc.log.WithError(err).Error("update match after innings start failed")
		responses.InternalServerError(c, "Could not update match")
		return
	}
	responses.SendSuccess(c, http.StatusCreated, "Innings started", innings)
}

// CompleteMatch godoc
// @Summary Complete a match
// @Description Closes the match and derives the result summary from the two innings.
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse
// @Security BearerAuth
// @Router /matches/{id}/complete [post]
func (mc *MatchController) CompleteMatch(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	if !requireScorer(c, id) {
		return
	}
	m := mc.getMatch(c, id)
	if m == nil {
		return
	}
	if m.Status != StatusMatchLive {
		responses.SendError(c, http.StatusConflict, "Only a live match can be completed")
		return
	}

	allInnings, err := mc.scoringRepo.GetInningsByMatch(m.ID)
	if err != nil {
		responses.InternalServerError(c, "Could not inspect innings")
		return
	}

	m.ResultSummary = resultSummary(allInnings)
	m.Status = StatusMatchCompleted
	m.CurrentInningsID = nil
	if err := mc.repo.UpdateMatch(m); err != nil {
		mc.log.WithError(err).Error("complete match failed")
		responses.InternalServerError(c, "Could not complete match")
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Match completed", m)
}

// resultSummary renders a conventional result line from the innings totals.
func resultSummary(allInnings []scoring.Innings) string {
	if len(allInnings) < 2 {
		return "No result"
	}
	first, second := allInnings[0], allInnings[1]
	switch {
	case second.TotalRuns > first.TotalRuns:
		return fmt.Sprintf("Chasing side won by %d wicket(s)", scoring.MaxWickets-second.Wickets)
	case first.TotalRuns > second.TotalRuns:
		return fmt.Sprintf("Defending side won by %d run(s)", first.TotalRuns-second.TotalRuns)
	default:
		return "Match tied"
	}
}

// GetScorecard godoc
// @Summary Full scorecard for a match
// @Tags matches
// @Produce json
// @Param id path int true "Match ID"
// @Success 200 {object} responses.SuccessResponse
// @Router /matches/{id}/scorecard [get]
func (mc *MatchController) GetScorecard(c *gin.Context) {
	id, ok := matchIDParam(c)
	if !ok {
		return
	}
	m := mc.getMatch(c, id)
	if m == nil {
		return
	}

	allInnings, err := mc.scoringRepo.GetInningsByMatch(m.ID)
	if err != nil {
		responses.InternalServerError(c, "Could not fetch innings")
		return
	}

	type inningsCard struct {
		Innings    scoring.Innings             `json:"innings"`
		Stats      []scoring.PlayerInningsStat `json:"stats"`
		Deliveries []scoring.BallDelivery      `json:"recent_deliveries"`
	}
	cards := make([]inningsCard, 0, len(allInnings))
	for _, in := range allInnings {
		stats, err := mc.scoringRepo.GetPlayerStatsByInnings(in.ID)
		if err != nil {
			responses.InternalServerError(c, "Could not fetch player stats")
			return
		}
		recent, err := mc.scoringRepo.GetRecentDeliveries(in.ID, 12)
		if err != nil {
			responses.InternalServerError(c, "Could not fetch deliveries")
			return
		}
		cards = append(cards, inningsCard{Innings: in, Stats: stats, Deliveries: recent})
	}

	responses.SendSuccess(c, http.StatusOK, "Scorecard retrieved", gin.H{"match": m, "innings": cards})
}
