package scoring

import (
	"github.com/sirupsen/logrus"
)

// UndoEngine removes the single most recent delivery of an innings and
// restores all state to exactly what it was before that ball was processed.
// It is the only mutator allowed to delete a delivery.
type UndoEngine struct {
	repo     ScoringRepository
	notifier Notifier
	locks    *inningsLocks
	log      *logrus.Logger
}

func NewUndoEngine(repo ScoringRepository, notifier Notifier, locks *inningsLocks, log *logrus.Logger) *UndoEngine {
	return &UndoEngine{repo: repo, notifier: notifier, locks: locks, log: log}
}

// Undo reverses the most recent delivery. It fails with a NotFoundError when
// the innings has no deliveries, and with a ConsistencyError when any
// referenced stat row is missing (the whole unit of work rolls back).
func (u *UndoEngine) Undo(inningsID uint) (*BallDelivery, *Snapshot, error) {
	unlock := u.locks.Lock(inningsID)
	defer unlock()

	var (
		undone  *BallDelivery
		matchID uint
	)
	err := u.repo.WithTransaction(func(tx ScoringRepository) error {
		innings, err := tx.GetInnings(inningsID)
		if err != nil {
			return err
		}
		matchID = innings.MatchID

		last, err := tx.GetLastDelivery(inningsID)
		if err != nil {
			return err
		}
		if last == nil {
			return &NotFoundError{Entity: "delivery to undo"}
		}
		undone = last
		return u.reverse(tx, innings, last)
	})
	if err != nil {
		return nil, nil, err
	}

	u.log.WithFields(logrus.Fields{
		"innings_id": inningsID,
		"over":       undone.OverNumber,
		"ball":       undone.SeqInOver,
	}).Info("delivery undone")

	snap, err := BuildSnapshot(u.repo, inningsID)
	if err != nil {
		return undone, nil, err
	}
	u.notifier.Publish(matchID, snap)
	return undone, snap, nil
}

// reverse mirrors DeliveryProcessor.reduce step by step, with every counter
// floored at zero by the repository. The delivery row is deleted last, only
// after all statistic reversals succeed.
func (u *UndoEngine) reverse(tx ScoringRepository, innings *Innings, d *BallDelivery) error {
	wide := d.ExtraType != nil && *d.ExtraType == ExtraWide
	noBall := d.ExtraType != nil && *d.ExtraType == ExtraNoBall

	// Innings totals.
	applied := InningsDelta{Runs: d.TotalRuns()}
	if d.IsLegal {
		applied.LegalBalls = 1
	}
	if d.IsWicket {
		applied.Wickets = 1
	}
	if d.ExtraType != nil {
		switch *d.ExtraType {
		case ExtraWide:
			applied.WideRuns = d.ExtraRuns
		case ExtraNoBall:
			applied.NoBallRuns = d.ExtraRuns
		case ExtraBye:
			applied.ByeRuns = d.ExtraRuns
		case ExtraLegBye:
			applied.LegByeRuns = d.ExtraRuns
		}
	}
	applied.PenaltyRuns = d.PenaltyRuns
	applied.OppositionPenaltyRuns = d.OppositionPenaltyRuns

	inningsDelta := applied.Negate()

	// Removing the latest ball always reopens the innings: any completed
	// status was caused by this very delivery.
	inProgress := InningsInProgress
	inningsDelta.SetStatus = &inProgress

	// Bowler-of-over pointer: undoing the first legal ball of an over hands
	// the pointer back to the previous over's bowler. Undoing any other ball
	// leaves it alone.
	if d.LegalBall == 1 {
		inningsDelta.UpdateCurrentBowler = true
		if d.OverNumber > 1 {
			prev, err := tx.GetLastLegalDeliveryInOver(innings.ID, d.OverNumber-1)
			if err != nil {
				return err
			}
			if prev != nil {
				bowlerID := prev.BowlerID
				inningsDelta.CurrentBowlerID = &bowlerID
			}
		}
	}

	if err := tx.ApplyInningsDelta(innings.ID, inningsDelta); err != nil {
		return err
	}

	// Current strike flags, needed to reverse the rotation swap.
	striker, err := tx.GetPlayerStat(innings.ID, d.BatsmanID)
	if err != nil {
		if IsNotFound(err) {
			return &ConsistencyError{Message: "striker stat row is missing, undo aborted"}
		}
		return err
	}
	var nonStriker *PlayerInningsStat
	if d.NonStrikerID != nil {
		nonStriker, err = tx.GetPlayerStat(innings.ID, *d.NonStrikerID)
		if err != nil {
			if IsNotFound(err) {
				return &ConsistencyError{Message: "non-striker stat row is missing, undo aborted"}
			}
			return err
		}
	}

	strikerOn := striker.OnStrike
	nonStrikerOn := false
	if nonStriker != nil {
		nonStrikerOn = nonStriker.OnStrike
	}

	// Reverse the dismissal first (the processor applied it last), restoring
	// the strike flag the out batsman held after any rotations.
	outIsStriker := d.IsWicket && d.PlayerOutID != nil && *d.PlayerOutID == striker.PlayerID
	outIsNonStriker := d.IsWicket && d.PlayerOutID != nil && nonStriker != nil && *d.PlayerOutID == nonStriker.PlayerID
	if outIsStriker {
		strikerOn = d.OutWasOnStrike
	} else if outIsNonStriker {
		nonStrikerOn = d.OutWasOnStrike
	} else if d.IsWicket && d.PlayerOutID != nil {
		f := false
		notOut := &PlayerStatDelta{SetOut: &f, UpdateHowOut: true, SetOnStrike: &d.OutWasOnStrike}
		if err := tx.ApplyPlayerStatDelta(innings.ID, *d.PlayerOutID, *notOut); err != nil {
			return err
		}
	}

	// Un-rotate: swap back when the processor performed an odd number of
	// rotations (parity swap and over-completion swap cancel each other).
	if d.StrikeRotations%2 == 1 {
		strikerOn, nonStrikerOn = nonStrikerOn, strikerOn
	}

	// Striker reversal.
	strikerDelta := PlayerStatDelta{}
	if d.ExtraType == nil || noBall {
		strikerDelta.Runs = -d.RunsScored
		if d.IsFour {
			strikerDelta.Fours = -1
		}
		if d.IsSix {
			strikerDelta.Sixes = -1
		}
	}
	if d.IsLegal && !wide {
		strikerDelta.BallsFaced = -1
	}
	if outIsStriker {
		f := false
		strikerDelta.SetOut = &f
		strikerDelta.UpdateHowOut = true
	}
	if strikerOn != striker.OnStrike {
		on := strikerOn
		strikerDelta.SetOnStrike = &on
	}
	if err := tx.ApplyPlayerStatDelta(innings.ID, striker.PlayerID, strikerDelta); err != nil {
		return err
	}

	if nonStriker != nil {
		nonStrikerDelta := PlayerStatDelta{}
		changed := false
		if outIsNonStriker {
			f := false
			nonStrikerDelta.SetOut = &f
			nonStrikerDelta.UpdateHowOut = true
			changed = true
		}
		if nonStrikerOn != nonStriker.OnStrike {
			on := nonStrikerOn
			nonStrikerDelta.SetOnStrike = &on
			changed = true
		}
		if changed {
			if err := tx.ApplyPlayerStatDelta(innings.ID, nonStriker.PlayerID, nonStrikerDelta); err != nil {
				return err
			}
		}
	}

	// Bowler reversal.
	bowler, err := tx.GetPlayerStat(innings.ID, d.BowlerID)
	if err != nil {
		if IsNotFound(err) {
			return &ConsistencyError{Message: "bowler stat row is missing, undo aborted"}
		}
		return err
	}
	bowlerDelta := PlayerStatDelta{RunsConceded: -d.RunsScored}
	if wide || noBall {
		bowlerDelta.RunsConceded -= d.ExtraRuns
	}
	if d.IsLegal {
		bowlerDelta.BallsBowled = -1
	}
	if wide {
		bowlerDelta.Wides = -1
	}
	if noBall {
		bowlerDelta.NoBalls = -1
	}
	if d.IsWicket && d.DismissalType != nil && d.DismissalType.CreditedToBowler() {
		bowlerDelta.Wickets = -1
	}
	if d.CompletedMaiden {
		bowlerDelta.Maidens = -1
	}
	if err := tx.ApplyPlayerStatDelta(innings.ID, bowler.PlayerID, bowlerDelta); err != nil {
		return err
	}

	// Stat rows this delivery brought into existence disappear with it.
	if d.BatsmanRowCreated {
		if err := tx.DeletePlayerStat(striker.ID); err != nil {
			return err
		}
	}
	if d.BowlerRowCreated {
		if err := tx.DeletePlayerStat(bowler.ID); err != nil {
			return err
		}
	}

	// Delete the record last, once every reversal has succeeded.
	return tx.DeleteDelivery(d.ID)
}
