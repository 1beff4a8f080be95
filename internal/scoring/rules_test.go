package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func extraPtr(e ExtraType) *ExtraType             { return &e }
func dismissalPtr(d DismissalType) *DismissalType { return &d }

func openContext() OverContext {
	return OverContext{OverNumber: 1, InningsStatus: InningsInProgress}
}

func TestEvaluateRejectsCompletedInnings(t *testing.T) {
	engine := NewRuleEngine()
	for _, status := range []InningsStatus{InningsAllOut, InningsOversExhausted, InningsTargetReached} {
		ctx := openContext()
		ctx.InningsStatus = status

		_, err := engine.Evaluate(ctx, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11})
		require.Error(t, err)
		verr, ok := AsValidation(err)
		require.True(t, ok)
		assert.Equal(t, RuleInningsComplete, verr.Rule)
	}
}

func TestEvaluateRejectsConsecutiveBowler(t *testing.T) {
	engine := NewRuleEngine()
	ctx := openContext()
	ctx.OverNumber = 2
	ctx.PreviousOverBowlerID = 11

	_, err := engine.Evaluate(ctx, DeliveryCommand{OverNumber: 2, BatsmanID: 1, BowlerID: 11})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleConsecutiveBowler, verr.Rule)

	// A different bowler is fine.
	_, err = engine.Evaluate(ctx, DeliveryCommand{OverNumber: 2, BatsmanID: 1, BowlerID: 12})
	assert.NoError(t, err)

	// The first over has no previous bowler to clash with.
	first := openContext()
	_, err = engine.Evaluate(first, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11})
	assert.NoError(t, err)
}

func TestEvaluateRejectsSeventhLegalBall(t *testing.T) {
	engine := NewRuleEngine()
	ctx := openContext()
	ctx.LegalBallsInOver = BallsPerOver
	ctx.DeliveriesInOver = 7

	_, err := engine.Evaluate(ctx, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleOverCapacity, verr.Rule)
}

func TestEvaluateRejectsOutOfRangeRuns(t *testing.T) {
	engine := NewRuleEngine()
	for _, runs := range []int{-1, 7, 42} {
		_, err := engine.Evaluate(openContext(), DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11, Runs: runs})
		verr, ok := AsValidation(err)
		require.True(t, ok, "runs=%d", runs)
		assert.Equal(t, RuleScoringRange, verr.Rule)
	}

	for runs := 0; runs <= MaxOffBatRuns; runs++ {
		_, err := engine.Evaluate(openContext(), DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11, Runs: runs})
		assert.NoError(t, err, "runs=%d", runs)
	}
}

func TestEvaluateRejectsWicketWhenAllOut(t *testing.T) {
	engine := NewRuleEngine()
	ctx := openContext()
	ctx.InningsWickets = MaxWickets

	_, err := engine.Evaluate(ctx, DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		IsWicket: true, WicketType: dismissalPtr(DismissalBowled),
	})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleWicketCapacity, verr.Rule)
}

func TestEvaluateRejectsBadDismissal(t *testing.T) {
	engine := NewRuleEngine()

	_, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11, IsWicket: true,
	})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleDismissalKind, verr.Rule)

	bogus := DismissalType("retired_to_the_pub")
	_, err = engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11, IsWicket: true, WicketType: &bogus,
	})
	verr, ok = AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleDismissalKind, verr.Rule)
}

func TestRuleOrderFirstFailureWins(t *testing.T) {
	engine := NewRuleEngine()
	ctx := openContext()
	ctx.InningsStatus = InningsAllOut
	ctx.LegalBallsInOver = BallsPerOver

	// Both innings-complete and over-capacity apply; the earlier rule reports.
	_, err := engine.Evaluate(ctx, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11, Runs: 9})
	verr, ok := AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, RuleInningsComplete, verr.Rule)
}

func TestNormalizeWideAddsAutomaticRun(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraWide), ExtraRuns: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, d.ExtraRuns, "one automatic run plus two completed")
	assert.False(t, d.IsLegal)
	assert.Equal(t, 0, d.LegalBall)
	assert.Equal(t, 3, d.TotalRuns())
	assert.Equal(t, 2, d.CompletedRuns())
}

func TestNormalizeNoBallAddsAutomaticRun(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		Runs: 2, ExtraType: extraPtr(ExtraNoBall),
	})
	require.NoError(t, err)

	assert.Equal(t, 1, d.ExtraRuns)
	assert.Equal(t, 2, d.RunsScored)
	assert.Equal(t, 3, d.TotalRuns())
	assert.False(t, d.IsLegal)
	assert.Equal(t, 2, d.CompletedRuns(), "batsmen ran what the bat scored")
}

func TestNormalizeByesStayOffTheBat(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraLegBye), ExtraRuns: 2,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, d.ExtraRuns, "no automatic run on byes")
	assert.Equal(t, 0, d.RunsScored)
	assert.True(t, d.IsLegal)
	assert.Equal(t, 1, d.LegalBall)
}

func TestNormalizeInvoluntaryShortRunDiscardsOne(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		Runs: 3, IsShortRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, d.RunsScored)
	assert.Equal(t, 0, d.PenaltyRuns)
	assert.Equal(t, 0, d.OppositionPenaltyRuns)
}

func TestNormalizeShortRunOnExtrasDiscardsCompletedRun(t *testing.T) {
	engine := NewRuleEngine()

	// The disallowed run on a wide is one of the completed extras; the
	// automatic wide run was never run and stays.
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraWide), ExtraRuns: 2, IsShortRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, d.ExtraRuns, "one of two completed runs discarded, automatic run kept")

	d, err = engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraWide), IsShortRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.ExtraRuns, "nothing completed to discard")

	d, err = engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraBye), ExtraRuns: 2, IsShortRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.ExtraRuns)
}

func TestNormalizeDeliberateShortRunForfeitsAndPenalizes(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		Runs: 3, IsShortRun: true, IsDeliberateShort: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, d.RunsScored)
	assert.True(t, d.RunsNullified)
	assert.Equal(t, 0, d.PenaltyRuns)
	assert.Equal(t, DeliberateShortRunPenalty, d.OppositionPenaltyRuns)
	assert.Equal(t, 0, d.TotalRuns(), "fielding-side penalty never counts here")

	// On a wide, the automatic run survives the forfeit.
	d, err = engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		ExtraType: extraPtr(ExtraWide), ExtraRuns: 2,
		IsShortRun: true, IsDeliberateShort: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, d.ExtraRuns)
	assert.Equal(t, DeliberateShortRunPenalty, d.OppositionPenaltyRuns)
}

func TestNormalizeKeepsPenaltyStreamsSeparate(t *testing.T) {
	engine := NewRuleEngine()

	// A batting-side penalty awarded on the same ball as a deliberate short
	// run is not swept into the fielding side's five.
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		Runs: 2, PenaltyRuns: 5, IsShortRun: true, IsDeliberateShort: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 5, d.PenaltyRuns)
	assert.Equal(t, DeliberateShortRunPenalty, d.OppositionPenaltyRuns)
	assert.Equal(t, 5, d.TotalRuns(), "only the batting-side award counts")
}

func TestNormalizeDeadBallNullifiesEverything(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 1, BowlerID: 11,
		Runs: 4, ExtraType: extraPtr(ExtraNoBall), PenaltyRuns: 5,
		IsWicket: true, WicketType: dismissalPtr(DismissalBowled),
		IsDeadBall: true,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, d.RunsScored)
	assert.True(t, d.RunsNullified)
	assert.Equal(t, 0, d.ExtraRuns)
	assert.Equal(t, 0, d.PenaltyRuns)
	assert.Equal(t, 0, d.OppositionPenaltyRuns)
	assert.False(t, d.IsWicket)
	assert.Nil(t, d.PlayerOutID)
	assert.False(t, d.IsLegal)
	assert.Equal(t, 0, d.TotalRuns())
	assert.Equal(t, 0, d.CompletedRuns())
}

func TestNormalizeSequenceAndBoundaries(t *testing.T) {
	engine := NewRuleEngine()
	ctx := openContext()
	ctx.DeliveriesInOver = 3
	ctx.LegalBallsInOver = 2

	d, err := engine.Evaluate(ctx, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11, Runs: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, d.SeqInOver)
	assert.Equal(t, 3, d.LegalBall)
	assert.True(t, d.IsFour)
	assert.False(t, d.IsSix)

	d, err = engine.Evaluate(ctx, DeliveryCommand{OverNumber: 1, BatsmanID: 1, BowlerID: 11, Runs: 6})
	require.NoError(t, err)
	assert.True(t, d.IsSix)
}

func TestNormalizeWicketDefaultsToStriker(t *testing.T) {
	engine := NewRuleEngine()
	d, err := engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 7, BowlerID: 11,
		IsWicket: true, WicketType: dismissalPtr(DismissalCaught),
	})
	require.NoError(t, err)
	require.NotNil(t, d.PlayerOutID)
	assert.Equal(t, uint(7), *d.PlayerOutID)

	nonStriker := uint(8)
	d, err = engine.Evaluate(openContext(), DeliveryCommand{
		OverNumber: 1, BatsmanID: 7, BowlerID: 11, Runs: 1,
		IsWicket: true, WicketType: dismissalPtr(DismissalRunOut), PlayerOutID: &nonStriker,
	})
	require.NoError(t, err)
	require.NotNil(t, d.PlayerOutID)
	assert.Equal(t, nonStriker, *d.PlayerOutID)
}

func TestDismissalBowlerCredit(t *testing.T) {
	credited := []DismissalType{DismissalBowled, DismissalCaught, DismissalLBW, DismissalStumped, DismissalHitWicket, DismissalHitBallTwice}
	for _, d := range credited {
		assert.True(t, d.CreditedToBowler(), string(d))
	}
	notCredited := []DismissalType{DismissalRunOut, DismissalObstructing, DismissalTimedOut, DismissalHandledBall}
	for _, d := range notCredited {
		assert.False(t, d.CreditedToBowler(), string(d))
	}
}
