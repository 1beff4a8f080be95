package scoring

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/TusharJoshi-11/crease/internal/broadcast"
	"github.com/TusharJoshi-11/crease/internal/middleware"
	"github.com/TusharJoshi-11/crease/pkg/responses"
)

// ScoringController handles delivery submission, undo and live reads.
type ScoringController struct {
	repo      ScoringRepository
	processor *DeliveryProcessor
	undo      *UndoEngine
	hub       *broadcast.Hub
	log       *logrus.Logger
}

func NewScoringController(repo ScoringRepository, processor *DeliveryProcessor, undo *UndoEngine, hub *broadcast.Hub, log *logrus.Logger) *ScoringController {
	return &ScoringController{repo: repo, processor: processor, undo: undo, hub: hub, log: log}
}

// DeliveryResult is returned after a recorded delivery or undo.
type DeliveryResult struct {
	IsValid  bool          `json:"is_valid"`
	Delivery *BallDelivery `json:"delivery,omitempty"`
	Snapshot *Snapshot     `json:"snapshot,omitempty"`
}

// Rejection is the shape produced when a delivery violates a scoring rule.
type Rejection struct {
	IsValid      bool   `json:"is_valid"` // always false
	Rule         string `json:"rule,omitempty"`
	ErrorMessage string `json:"error_message"`
}

func inningsIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		responses.BadRequest(c, "Invalid innings ID")
		return 0, false
	}
	return uint(id), true
}

// scorerOwnsInnings verifies the authenticated scorer token is scoped to the
// match this innings belongs to.
func (sc *ScoringController) scorerOwnsInnings(c *gin.Context, inningsID uint) bool {
	innings, err := sc.repo.GetInnings(inningsID)
	if err != nil {
		sc.respondError(c, err)
		return false
	}
	matchID, ok := middleware.ScorerMatchID(c)
	if !ok || matchID != innings.MatchID {
		responses.Forbidden(c, "Scorer token is not valid for this match")
		return false
	}
	return true
}

// respondError maps the engine's error taxonomy onto HTTP.
func (sc *ScoringController) respondError(c *gin.Context, err error) {
	if ve, ok := AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, Rejection{
			Rule:         string(ve.Rule),
			ErrorMessage: ve.Message,
		})
		return
	}
	switch {
	case IsNotFound(err):
		responses.NotFound(c, err.Error())
	case IsConsistency(err):
		responses.SendError(c, http.StatusConflict, err.Error())
	case IsStorage(err):
		sc.log.WithError(err).Error("storage failure, operation not applied")
		responses.SendError(c, http.StatusServiceUnavailable, "Storage failure, the operation was not applied; please retry")
	default:
		sc.log.WithError(err).Error("unexpected scoring error")
		responses.InternalServerError(c, "")
	}
}

// SubmitDelivery godoc
// @Summary Record one bowled delivery
// @Description Validates the delivery against the scoring rules and folds it into innings, batsman and bowler state atomically.
// @Tags scoring
// @Accept json
// @Produce json
// @Param id path int true "Innings ID"
// @Param delivery body DeliveryCommand true "Delivery"
// @Success 201 {object} DeliveryResult
// @Failure 422 {object} Rejection "Rule violation"
// @Security BearerAuth
// @Router /innings/{id}/deliveries [post]
func (sc *ScoringController) SubmitDelivery(c *gin.Context) {
	inningsID, ok := inningsIDParam(c)
	if !ok {
		return
	}
	if !sc.scorerOwnsInnings(c, inningsID) {
		return
	}

	var cmd DeliveryCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		responses.BadRequest(c, "Invalid delivery payload: "+err.Error())
		return
	}

	delivery, snap, err := sc.processor.Apply(inningsID, cmd)
	if err != nil {
		sc.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, DeliveryResult{IsValid: true, Delivery: delivery, Snapshot: snap})
}

// UndoDelivery godoc
// @Summary Undo the most recent delivery
// @Description Removes the innings' latest delivery and restores all totals, stats and strike exactly.
// @Tags scoring
// @Produce json
// @Param id path int true "Innings ID"
// @Success 200 {object} DeliveryResult
// @Failure 404 {object} responses.ErrorResponse "Nothing to undo"
// @Security BearerAuth
// @Router /innings/{id}/undo [post]
func (sc *ScoringController) UndoDelivery(c *gin.Context) {
	inningsID, ok := inningsIDParam(c)
	if !ok {
		return
	}
	if !sc.scorerOwnsInnings(c, inningsID) {
		return
	}

	undone, snap, err := sc.undo.Undo(inningsID)
	if err != nil {
		sc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, DeliveryResult{IsValid: true, Delivery: undone, Snapshot: snap})
}

// GetRecentDeliveries godoc
// @Summary Recent deliveries of an innings
// @Tags scoring
// @Produce json
// @Param id path int true "Innings ID"
// @Param n query int false "How many deliveries" default(12)
// @Success 200 {object} responses.SuccessResponse
// @Router /innings/{id}/deliveries [get]
func (sc *ScoringController) GetRecentDeliveries(c *gin.Context) {
	inningsID, ok := inningsIDParam(c)
	if !ok {
		return
	}
	n, err := strconv.Atoi(c.DefaultQuery("n", "12"))
	if err != nil || n <= 0 || n > 120 {
		n = 12
	}
	deliveries, err := sc.repo.GetRecentDeliveries(inningsID, n)
	if err != nil {
		sc.respondError(c, err)
		return
	}
	responses.SendSuccess(c, http.StatusOK, "Deliveries retrieved", deliveries)
}

// GetInningsSnapshot godoc
// @Summary Current snapshot of an innings
// @Tags scoring
// @Produce json
// @Param id path int true "Innings ID"
// @Success 200 {object} Snapshot
// @Router /innings/{id}/snapshot [get]
func (sc *ScoringController) GetInningsSnapshot(c *gin.Context) {
	inningsID, ok := inningsIDParam(c)
	if !ok {
		return
	}
	snap, err := BuildSnapshot(sc.repo, inningsID)
	if err != nil {
		sc.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snap)
}

// StreamMatch godoc
// @Summary Live snapshot stream for a match
// @Description Server-sent events; one event per committed delivery or undo.
// @Tags scoring
// @Produce text/event-stream
// @Param id path int true "Match ID"
// @Router /matches/{id}/live [get]
func (sc *ScoringController) StreamMatch(c *gin.Context) {
	matchID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || matchID == 0 {
		responses.BadRequest(c, "Invalid match ID")
		return
	}

	events, cancel := sc.hub.Subscribe(uint(matchID))
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, open := <-events:
			if !open {
				return false
			}
			c.SSEvent("snapshot", ev.Payload)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
