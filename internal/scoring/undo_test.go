package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inningsState and statState strip the persisted rows down to the fields undo
// must restore, so a before/after comparison ignores timestamps and row IDs.
type inningsState struct {
	TotalRuns             int
	LegalBalls            int
	Wickets               int
	WideRuns              int
	NoBallRuns            int
	ByeRuns               int
	LegByeRuns            int
	PenaltyRuns           int
	OppositionPenaltyRuns int
	CurrentBowlerID       *uint
	Status                InningsStatus
}

type statState struct {
	Runs         int
	BallsFaced   int
	Fours        int
	Sixes        int
	IsOut        bool
	HowOut       *DismissalType
	OnStrike     bool
	BattingOrder int
	BallsBowled  int
	RunsConceded int
	Wickets      int
	Maidens      int
	Wides        int
	NoBalls      int
}

type worldState struct {
	Innings    inningsState
	Stats      map[uint]statState
	Deliveries int
}

func captureState(t *testing.T, f *scoringFixture) worldState {
	t.Helper()
	innings := f.reloadInnings(t)
	stats, err := f.repo.GetPlayerStatsByInnings(f.innings.ID)
	require.NoError(t, err)
	deliveries, err := f.repo.GetRecentDeliveries(f.innings.ID, 1000)
	require.NoError(t, err)

	w := worldState{
		Innings: inningsState{
			TotalRuns:             innings.TotalRuns,
			LegalBalls:            innings.LegalBalls,
			Wickets:               innings.Wickets,
			WideRuns:              innings.WideRuns,
			NoBallRuns:            innings.NoBallRuns,
			ByeRuns:               innings.ByeRuns,
			LegByeRuns:            innings.LegByeRuns,
			PenaltyRuns:           innings.PenaltyRuns,
			OppositionPenaltyRuns: innings.OppositionPenaltyRuns,
			CurrentBowlerID:       innings.CurrentBowlerID,
			Status:                innings.Status,
		},
		Stats:      make(map[uint]statState, len(stats)),
		Deliveries: len(deliveries),
	}
	for _, s := range stats {
		w.Stats[s.PlayerID] = statState{
			Runs: s.Runs, BallsFaced: s.BallsFaced, Fours: s.Fours, Sixes: s.Sixes,
			IsOut: s.IsOut, HowOut: s.HowOut, OnStrike: s.OnStrike, BattingOrder: s.BattingOrder,
			BallsBowled: s.BallsBowled, RunsConceded: s.RunsConceded, Wickets: s.Wickets,
			Maidens: s.Maidens, Wides: s.Wides, NoBalls: s.NoBalls,
		}
	}
	return w
}

func TestUndoNothingRecorded(t *testing.T) {
	f := newScoringFixture(t)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUndoRoundTripRestoresEverything(t *testing.T) {
	f := newScoringFixture(t)

	f.apply(t, ball(1, strikerID, bowlerAID, 1))
	f.apply(t, ball(1, nonStrikerID, bowlerAID, 4))
	f.apply(t, DeliveryCommand{
		OverNumber: 1, BatsmanID: nonStrikerID, BowlerID: bowlerAID,
		ExtraType: extraPtr(ExtraWide), ExtraRuns: 2,
	})
	before := captureState(t, f)

	applied, _ := f.apply(t, DeliveryCommand{
		OverNumber: 1, BatsmanID: nonStrikerID, BowlerID: bowlerAID,
		Runs: 1, ExtraType: extraPtr(ExtraNoBall),
	})
	undone, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)
	assert.Equal(t, applied.ID, undone.ID)

	assert.Equal(t, before, captureState(t, f))
}

func TestUndoSixthBallRestoresStrikeAndMaiden(t *testing.T) {
	f := newScoringFixture(t)

	for i := 0; i < BallsPerOver-1; i++ {
		f.apply(t, ball(1, strikerID, bowlerAID, 0))
	}
	before := captureState(t, f)
	assert.True(t, before.Stats[strikerID].OnStrike)

	f.apply(t, ball(1, strikerID, bowlerAID, 0))
	assert.True(t, f.stat(t, nonStrikerID).OnStrike, "over completion rotated strike")
	assert.Equal(t, 1, f.stat(t, bowlerAID).Maidens)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)

	after := captureState(t, f)
	assert.Equal(t, before, after)
	assert.True(t, after.Stats[strikerID].OnStrike)
	assert.Equal(t, 0, after.Stats[bowlerAID].Maidens)
}

func TestUndoWicketRestoresBatsman(t *testing.T) {
	f := newScoringFixture(t)

	before := captureState(t, f)
	f.apply(t, DeliveryCommand{
		OverNumber: 1, BatsmanID: strikerID, BowlerID: bowlerAID,
		IsWicket: true, WicketType: dismissalPtr(DismissalBowled),
	})

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)

	restored := f.stat(t, strikerID)
	assert.False(t, restored.IsOut)
	assert.Nil(t, restored.HowOut)
	assert.True(t, restored.OnStrike)
	assert.Equal(t, 0, f.reloadInnings(t).Wickets)

	// The bowler row created by the undone ball is gone again too.
	after := captureState(t, f)
	_, bowlerRowRemains := after.Stats[bowlerAID]
	assert.False(t, bowlerRowRemains)
	assert.Equal(t, before, after)
}

func TestUndoRemovesNewBatsmanRow(t *testing.T) {
	f := newScoringFixture(t)

	f.apply(t, DeliveryCommand{
		OverNumber: 1, BatsmanID: strikerID, BowlerID: bowlerAID,
		IsWicket: true, WicketType: dismissalPtr(DismissalCaught),
	})
	before := captureState(t, f)

	d, _ := f.apply(t, ball(1, nextBatID, bowlerAID, 0))
	require.True(t, d.BatsmanRowCreated)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)

	_, err = f.repo.GetPlayerStat(f.innings.ID, nextBatID)
	assert.True(t, IsNotFound(err))
	assert.Equal(t, before, captureState(t, f))
}

func TestUndoWideReversesExtras(t *testing.T) {
	f := newScoringFixture(t)

	before := captureState(t, f)
	f.apply(t, DeliveryCommand{
		OverNumber: 1, BatsmanID: strikerID, BowlerID: bowlerAID,
		ExtraType: extraPtr(ExtraWide), ExtraRuns: 2,
	})

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)
	assert.Equal(t, before, captureState(t, f))
}

func TestUndoFirstBallOfOverRestoresBowlerPointer(t *testing.T) {
	f := newScoringFixture(t)

	for i := 0; i < BallsPerOver; i++ {
		f.apply(t, ball(1, strikerID, bowlerAID, 0))
	}
	f.apply(t, ball(2, nonStrikerID, bowlerBID, 0))
	require.Equal(t, bowlerBID, *f.reloadInnings(t).CurrentBowlerID)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)

	innings := f.reloadInnings(t)
	require.NotNil(t, innings.CurrentBowlerID)
	assert.Equal(t, bowlerAID, *innings.CurrentBowlerID)
}

func TestUndoReopensCompletedInnings(t *testing.T) {
	target := 2
	f := newScoringFixture(t, func(i *Innings) { i.TargetScore = &target })

	_, snap := f.apply(t, ball(1, strikerID, bowlerAID, 2))
	require.Equal(t, InningsTargetReached, snap.Innings.Status)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.NoError(t, err)
	assert.Equal(t, InningsInProgress, f.reloadInnings(t).Status)

	// Play resumes where it left off.
	f.apply(t, ball(1, strikerID, bowlerAID, 1))
}

func TestUndoAbortsWhenStatRowMissing(t *testing.T) {
	f := newScoringFixture(t)

	f.apply(t, ball(1, strikerID, bowlerAID, 1))
	f.apply(t, ball(1, nonStrikerID, bowlerAID, 4))

	// The bowler's stat row disappears out from under the engine.
	bowler := f.stat(t, bowlerAID)
	require.NoError(t, f.repo.DeletePlayerStat(bowler.ID))
	before := captureState(t, f)

	_, _, err := f.undo.Undo(f.innings.ID)
	require.Error(t, err)
	assert.True(t, IsConsistency(err))

	// The unit of work rolled back: innings totals, the surviving stat rows
	// and the delivery record are all untouched.
	after := captureState(t, f)
	assert.Equal(t, before, after)
	assert.Equal(t, 2, after.Deliveries)
}

func TestUndoEachBallBackToEmpty(t *testing.T) {
	f := newScoringFixture(t)
	start := captureState(t, f)

	commands := []DeliveryCommand{
		ball(1, strikerID, bowlerAID, 1),
		ball(1, nonStrikerID, bowlerAID, 0),
		{OverNumber: 1, BatsmanID: nonStrikerID, BowlerID: bowlerAID, ExtraType: extraPtr(ExtraWide)},
		{OverNumber: 1, BatsmanID: nonStrikerID, BowlerID: bowlerAID, Runs: 6},
		{OverNumber: 1, BatsmanID: nonStrikerID, BowlerID: bowlerAID, IsWicket: true, WicketType: dismissalPtr(DismissalStumped)},
	}
	for _, cmd := range commands {
		f.apply(t, cmd)
	}

	for range commands {
		_, _, err := f.undo.Undo(f.innings.ID)
		require.NoError(t, err)
	}

	assert.Equal(t, start, captureState(t, f))
	_, _, err := f.undo.Undo(f.innings.ID)
	assert.True(t, IsNotFound(err))
}
