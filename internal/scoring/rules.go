package scoring

import (
	"fmt"
	"strings"
)

// DeliveryCommand is the inbound intent to record one bowled ball. It arrives
// from the scoring UI (or any other producer) and is validated before any
// state changes.
type DeliveryCommand struct {
	OverNumber        int            `json:"over_number" binding:"required,min=1"`
	BatsmanID         uint           `json:"batsman_id" binding:"required"`
	BowlerID          uint           `json:"bowler_id" binding:"required"`
	Runs              int            `json:"runs"`
	ExtraType         *ExtraType     `json:"extra_type,omitempty" binding:"omitempty,oneof=wide no_ball bye leg_bye"`
	ExtraRuns         int            `json:"extra_runs" binding:"omitempty,min=0"`
	IsWicket          bool           `json:"is_wicket"`
	WicketType        *DismissalType `json:"wicket_type,omitempty"`
	PlayerOutID       *uint          `json:"player_out_id,omitempty"` // defaults to the striker
	FielderID         *uint          `json:"fielder_id,omitempty"`
	IsShortRun        bool           `json:"is_short_run"`
	IsDeliberateShort bool           `json:"is_deliberate_short"`
	IsDeadBall        bool           `json:"is_dead_ball"`
	PenaltyRuns       int            `json:"penalty_runs" binding:"omitempty,min=0"`

	// ClientToken makes a retried submission idempotent. The server assigns
	// one when absent.
	ClientToken string `json:"client_token,omitempty" binding:"omitempty,max=64"`
}

// OverContext is everything the rule engine needs to judge one proposed
// delivery: the state of the over in progress and of the innings.
type OverContext struct {
	OverNumber           int
	DeliveriesInOver     int // every delivery bowled so far this over
	LegalBallsInOver     int
	PreviousOverBowlerID uint // 0 when no previous over
	InningsWickets       int
	InningsStatus        InningsStatus
}

// RuleEngine validates one proposed delivery against the laws the scorer can
// get wrong, then produces the normalized delivery record. It is stateless;
// callers supply the context.
type RuleEngine struct{}

func NewRuleEngine() *RuleEngine { return &RuleEngine{} }

// ruleCheck inspects the proposal and returns the violation, if any.
type ruleCheck func(ctx OverContext, cmd *DeliveryCommand) *ValidationError

// ordered checks; the first failure wins.
var ruleChecks = []ruleCheck{
	checkInningsOpen,
	checkConsecutiveBowler,
	checkOverCapacity,
	checkScoringRange,
	checkWicketCapacity,
	checkDismissalKind,
}

// Evaluate folds the proposal over the ordered rule checks, short-circuiting
// on the first rejection, and returns the normalized delivery: the automatic
// wide/no-ball run applied, short runs and dead balls resolved, sequence
// numbers assigned and commentary generated.
func (e *RuleEngine) Evaluate(ctx OverContext, cmd DeliveryCommand) (*BallDelivery, error) {
	for _, check := range ruleChecks {
		if verr := check(ctx, &cmd); verr != nil {
			return nil, verr
		}
	}
	return e.normalize(ctx, cmd), nil
}

func checkInningsOpen(ctx OverContext, _ *DeliveryCommand) *ValidationError {
	if ctx.InningsStatus.Completed() {
		return newValidationError(RuleInningsComplete, "innings is already complete (%s)", ctx.InningsStatus)
	}
	return nil
}

func checkConsecutiveBowler(ctx OverContext, cmd *DeliveryCommand) *ValidationError {
	if ctx.OverNumber <= 1 || ctx.PreviousOverBowlerID == 0 {
		return nil
	}
	if cmd.BowlerID == ctx.PreviousOverBowlerID {
		return newValidationError(RuleConsecutiveBowler,
			"bowler %d also bowled the previous over and cannot bowl consecutive overs", cmd.BowlerID)
	}
	return nil
}

func checkOverCapacity(ctx OverContext, _ *DeliveryCommand) *ValidationError {
	if ctx.LegalBallsInOver >= BallsPerOver {
		return newValidationError(RuleOverCapacity,
			"over %d already has %d legal deliveries", ctx.OverNumber, BallsPerOver)
	}
	return nil
}

func checkScoringRange(_ OverContext, cmd *DeliveryCommand) *ValidationError {
	if cmd.Runs < 0 || cmd.Runs > MaxOffBatRuns {
		return newValidationError(RuleScoringRange,
			"off-bat runs must be between 0 and %d, got %d", MaxOffBatRuns, cmd.Runs)
	}
	return nil
}

func checkWicketCapacity(ctx OverContext, cmd *DeliveryCommand) *ValidationError {
	if cmd.IsWicket && ctx.InningsWickets >= MaxWickets {
		return newValidationError(RuleWicketCapacity, "all %d wickets have already fallen", MaxWickets)
	}
	return nil
}

func checkDismissalKind(_ OverContext, cmd *DeliveryCommand) *ValidationError {
	if !cmd.IsWicket {
		return nil
	}
	if cmd.WicketType == nil {
		return newValidationError(RuleDismissalKind, "wicket requires a dismissal type")
	}
	if !cmd.WicketType.Valid() {
		return newValidationError(RuleDismissalKind, "unknown dismissal type %q", *cmd.WicketType)
	}
	return nil
}

// normalize turns an accepted command into the delivery record the processor
// applies. Rule-derived effects live here so the processor only ever does
// arithmetic.
func (e *RuleEngine) normalize(ctx OverContext, cmd DeliveryCommand) *BallDelivery {
	d := &BallDelivery{
		OverNumber:        ctx.OverNumber,
		SeqInOver:         ctx.DeliveriesInOver + 1,
		BatsmanID:         cmd.BatsmanID,
		BowlerID:          cmd.BowlerID,
		RunsScored:        cmd.Runs,
		ExtraType:         cmd.ExtraType,
		IsWicket:          cmd.IsWicket,
		DismissalType:     cmd.WicketType,
		FielderID:         cmd.FielderID,
		IsShortRun:        cmd.IsShortRun,
		IsDeliberateShort: cmd.IsDeliberateShort,
		IsDeadBall:        cmd.IsDeadBall,
		PenaltyRuns:       cmd.PenaltyRuns,
		ClientToken:       cmd.ClientToken,
	}

	if cmd.IsWicket {
		out := cmd.BatsmanID
		if cmd.PlayerOutID != nil {
			out = *cmd.PlayerOutID
		}
		d.PlayerOutID = &out
	}

	wide := cmd.ExtraType != nil && *cmd.ExtraType == ExtraWide
	noBall := cmd.ExtraType != nil && *cmd.ExtraType == ExtraNoBall
	bye := cmd.ExtraType != nil && (*cmd.ExtraType == ExtraBye || *cmd.ExtraType == ExtraLegBye)

	// Extras: a wide or no-ball always carries exactly one automatic run on
	// top of whatever the batsmen completed.
	if wide || noBall {
		d.ExtraRuns = 1 + cmd.ExtraRuns
	} else if bye {
		d.ExtraRuns = cmd.ExtraRuns
	}

	// Short runs act on the runs the batsmen physically completed: off the
	// bat normally and on no-balls, the completed extras on wides and byes
	// (the automatic wide run was never run and is never touched). An
	// involuntary short run discards the one disallowed run; a deliberate one
	// forfeits all completed runs and hands five penalty runs to the fielding
	// side. Any client-supplied penalty stays a batting-side award.
	if cmd.IsShortRun && !cmd.IsDeadBall {
		if cmd.IsDeliberateShort {
			d.RunsNullified = true
			d.OppositionPenaltyRuns = DeliberateShortRunPenalty
			switch {
			case wide:
				d.ExtraRuns = 1
			case bye:
				d.ExtraRuns = 0
			default:
				d.RunsScored = 0
			}
		} else {
			switch {
			case wide:
				if d.ExtraRuns > 1 {
					d.ExtraRuns--
				}
			case bye:
				if d.ExtraRuns > 0 {
					d.ExtraRuns--
				}
			default:
				if d.RunsScored > 0 {
					d.RunsScored--
				}
			}
		}
	}

	// A dead ball nullifies everything on the delivery.
	if cmd.IsDeadBall {
		d.RunsScored = 0
		d.RunsNullified = true
		d.ExtraRuns = 0
		d.PenaltyRuns = 0
		d.OppositionPenaltyRuns = 0
		d.IsWicket = false
		d.DismissalType = nil
		d.PlayerOutID = nil
	}
	d.IsLegal = !wide && !noBall && !cmd.IsDeadBall

	if d.IsLegal {
		d.LegalBall = ctx.LegalBallsInOver + 1
	}

	d.IsFour = d.RunsScored == 4
	d.IsSix = d.RunsScored == 6

	d.Commentary = buildCommentary(d)
	return d
}

// buildCommentary derives the one-line text shown in the ball-by-ball feed.
func buildCommentary(d *BallDelivery) string {
	prefix := fmt.Sprintf("%d.%d", d.OverNumber, d.SeqInOver)

	if d.IsDeadBall {
		return prefix + " dead ball, nothing counts"
	}

	var parts []string
	if d.ExtraType != nil {
		switch *d.ExtraType {
		case ExtraWide:
			parts = append(parts, fmt.Sprintf("wide, %d extra", d.ExtraRuns))
		case ExtraNoBall:
			parts = append(parts, "no ball")
		case ExtraBye:
			parts = append(parts, fmt.Sprintf("%d bye", d.ExtraRuns))
		case ExtraLegBye:
			parts = append(parts, fmt.Sprintf("%d leg bye", d.ExtraRuns))
		}
	}

	switch {
	case d.IsSix:
		parts = append(parts, "SIX over the rope")
	case d.IsFour:
		parts = append(parts, "FOUR to the boundary")
	case d.RunsScored > 0:
		parts = append(parts, fmt.Sprintf("%d run(s)", d.RunsScored))
	case d.ExtraType == nil && !d.IsWicket:
		parts = append(parts, "no run")
	}

	if d.IsDeliberateShort {
		parts = append(parts, fmt.Sprintf("deliberate short run, %d penalty to the fielding side", DeliberateShortRunPenalty))
	} else if d.IsShortRun {
		parts = append(parts, "short run, one disallowed")
	}

	if d.IsWicket && d.DismissalType != nil {
		parts = append(parts, fmt.Sprintf("WICKET (%s)", strings.ReplaceAll(string(*d.DismissalType), "_", " ")))
	}

	return prefix + " " + strings.Join(parts, ", ")
}
