package scoring

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Notifier receives a full state snapshot after every committed mutation.
type Notifier interface {
	Publish(matchID uint, payload interface{})
}

// DeliveryProcessor validates a proposed delivery through the rule engine and
// folds it into match state as one atomic step. It is the sole mutator of
// deliveries, innings totals and player stats during normal play.
type DeliveryProcessor struct {
	repo     ScoringRepository
	rules    *RuleEngine
	notifier Notifier
	locks    *inningsLocks
	log      *logrus.Logger
}

func NewDeliveryProcessor(repo ScoringRepository, rules *RuleEngine, notifier Notifier, locks *inningsLocks, log *logrus.Logger) *DeliveryProcessor {
	return &DeliveryProcessor{repo: repo, rules: rules, notifier: notifier, locks: locks, log: log}
}

// Apply records one delivery for the innings. Submissions for the same
// innings are serialized; the whole effect commits or none of it does.
// A replayed client token returns the already-recorded delivery untouched.
func (p *DeliveryProcessor) Apply(inningsID uint, cmd DeliveryCommand) (*BallDelivery, *Snapshot, error) {
	unlock := p.locks.Lock(inningsID)
	defer unlock()

	if cmd.ClientToken == "" {
		cmd.ClientToken = uuid.NewString()
	} else {
		existing, err := p.repo.GetDeliveryByClientToken(inningsID, cmd.ClientToken)
		if err != nil {
			return nil, nil, err
		}
		if existing != nil {
			p.log.WithFields(logrus.Fields{
				"innings_id":   inningsID,
				"client_token": cmd.ClientToken,
			}).Info("replayed delivery submission, returning recorded ball")
			snap, err := BuildSnapshot(p.repo, inningsID)
			return existing, snap, err
		}
	}

	var (
		applied *BallDelivery
		matchID uint
	)
	err := p.repo.WithTransaction(func(tx ScoringRepository) error {
		innings, err := tx.GetInnings(inningsID)
		if err != nil {
			return err
		}
		matchID = innings.MatchID

		overDeliveries, err := tx.GetOverDeliveries(inningsID, cmd.OverNumber)
		if err != nil {
			return err
		}
		legalInOver := 0
		for _, od := range overDeliveries {
			if od.IsLegal {
				legalInOver++
			}
		}

		var prevBowlerID uint
		if cmd.OverNumber > 1 {
			prev, err := tx.GetLastLegalDeliveryInOver(inningsID, cmd.OverNumber-1)
			if err != nil {
				return err
			}
			if prev != nil {
				prevBowlerID = prev.BowlerID
			}
		}

		d, err := p.rules.Evaluate(OverContext{
			OverNumber:           cmd.OverNumber,
			DeliveriesInOver:     len(overDeliveries),
			LegalBallsInOver:     legalInOver,
			PreviousOverBowlerID: prevBowlerID,
			InningsWickets:       innings.Wickets,
			InningsStatus:        innings.Status,
		}, cmd)
		if err != nil {
			return err
		}
		d.InningsID = inningsID

		applied = d
		return p.reduce(tx, innings, d, overDeliveries)
	})
	if err != nil {
		return nil, nil, err
	}

	p.log.WithFields(logrus.Fields{
		"innings_id": inningsID,
		"over":       applied.OverNumber,
		"ball":       applied.SeqInOver,
		"runs":       applied.TotalRuns(),
		"wicket":     applied.IsWicket,
	}).Info("delivery recorded")

	snap, err := BuildSnapshot(p.repo, inningsID)
	if err != nil {
		return applied, nil, err
	}
	p.notifier.Publish(matchID, snap)
	return applied, snap, nil
}

// reduce applies the normalized delivery to innings, batsman and bowler
// state. Runs inside the caller's transaction.
func (p *DeliveryProcessor) reduce(tx ScoringRepository, innings *Innings, d *BallDelivery, overSoFar []BallDelivery) error {
	striker, nonStriker, err := p.ensureBatsmen(tx, innings, d)
	if err != nil {
		return err
	}
	bowler, err := p.ensureBowler(tx, innings, d)
	if err != nil {
		return err
	}

	// Strike: rotate on odd completed runs, and unconditionally again when
	// the over completes. Two rotations cancel out.
	rotations := 0
	if d.CompletedRuns()%2 == 1 {
		rotations++
	}
	overCompleted := d.IsLegal && d.LegalBall == BallsPerOver
	if overCompleted {
		d.CompletedOver = true
		rotations++
	}
	d.StrikeRotations = rotations

	strikerOn := striker.OnStrike
	nonStrikerOn := false
	if nonStriker != nil {
		nonStrikerOn = nonStriker.OnStrike
	}
	if rotations%2 == 1 {
		strikerOn, nonStrikerOn = nonStrikerOn, strikerOn
	}

	// Dismissal clears the out batsman's strike flag; the incoming batsman
	// inherits it when their row is first created.
	outIsStriker := d.IsWicket && *d.PlayerOutID == striker.PlayerID
	outIsNonStriker := d.IsWicket && nonStriker != nil && *d.PlayerOutID == nonStriker.PlayerID
	if outIsStriker {
		d.OutWasOnStrike = strikerOn
		strikerOn = false
	} else if outIsNonStriker {
		d.OutWasOnStrike = nonStrikerOn
		nonStrikerOn = false
	}

	wide := d.ExtraType != nil && *d.ExtraType == ExtraWide
	noBall := d.ExtraType != nil && *d.ExtraType == ExtraNoBall

	// Maiden: the over completed with zero runs off the bat across its six
	// legal deliveries.
	if overCompleted {
		offBat := d.RunsScored
		for _, od := range overSoFar {
			if od.IsLegal {
				offBat += od.RunsScored
			}
		}
		d.CompletedMaiden = offBat == 0
	}

	// A dismissed player who is neither the striker nor the recorded
	// non-striker still needs their row located before the ball is written.
	var outOther *PlayerInningsStat
	if d.IsWicket && !outIsStriker && !outIsNonStriker {
		outStat, err := tx.GetPlayerStat(innings.ID, *d.PlayerOutID)
		if err != nil {
			if IsNotFound(err) {
				return &ConsistencyError{Message: "dismissed player has no stat row in this innings"}
			}
			return err
		}
		d.OutWasOnStrike = outStat.OnStrike
		outOther = outStat
	}

	if err := tx.CreateDelivery(d); err != nil {
		return err
	}

	// Innings totals.
	inningsDelta := InningsDelta{Runs: d.TotalRuns()}
	if d.IsLegal {
		inningsDelta.LegalBalls = 1
	}
	if d.IsWicket {
		inningsDelta.Wickets = 1
	}
	if d.ExtraType != nil {
		switch *d.ExtraType {
		case ExtraWide:
			inningsDelta.WideRuns = d.ExtraRuns
		case ExtraNoBall:
			inningsDelta.NoBallRuns = d.ExtraRuns
		case ExtraBye:
			inningsDelta.ByeRuns = d.ExtraRuns
		case ExtraLegBye:
			inningsDelta.LegByeRuns = d.ExtraRuns
		}
	}
	inningsDelta.PenaltyRuns = d.PenaltyRuns
	inningsDelta.OppositionPenaltyRuns = d.OppositionPenaltyRuns
	if d.LegalBall == 1 {
		bowlerID := d.BowlerID
		inningsDelta.UpdateCurrentBowler = true
		inningsDelta.CurrentBowlerID = &bowlerID
	}

	status := p.nextStatus(innings, inningsDelta)
	inningsDelta.SetStatus = &status

	if err := tx.ApplyInningsDelta(innings.ID, inningsDelta); err != nil {
		return err
	}

	// Striker.
	strikerDelta := PlayerStatDelta{}
	if d.ExtraType == nil || noBall {
		strikerDelta.Runs = d.RunsScored
		if d.IsFour {
			strikerDelta.Fours = 1
		}
		if d.IsSix {
			strikerDelta.Sixes = 1
		}
	}
	if d.IsLegal && !wide {
		strikerDelta.BallsFaced = 1
	}
	if outIsStriker {
		t := true
		strikerDelta.SetOut = &t
		strikerDelta.UpdateHowOut = true
		strikerDelta.HowOut = d.DismissalType
	}
	if strikerOn != striker.OnStrike {
		on := strikerOn
		strikerDelta.SetOnStrike = &on
	}
	if err := tx.ApplyPlayerStatDelta(innings.ID, striker.PlayerID, strikerDelta); err != nil {
		return err
	}

	// Non-striker, when they exist and anything about them changed.
	if nonStriker != nil {
		nonStrikerDelta := PlayerStatDelta{}
		changed := false
		if outIsNonStriker {
			t := true
			nonStrikerDelta.SetOut = &t
			nonStrikerDelta.UpdateHowOut = true
			nonStrikerDelta.HowOut = d.DismissalType
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

	if outOther != nil {
		t, f := true, false
		if err := tx.ApplyPlayerStatDelta(innings.ID, outOther.PlayerID, PlayerStatDelta{
			SetOut:       &t,
			UpdateHowOut: true,
			HowOut:       d.DismissalType,
			SetOnStrike:  &f,
		}); err != nil {
			return err
		}
	}

	// Bowler: charged for off-bat runs and wide/no-ball extras, never byes.
	bowlerDelta := PlayerStatDelta{RunsConceded: d.RunsScored}
	if wide || noBall {
		bowlerDelta.RunsConceded += d.ExtraRuns
	}
	if d.IsLegal {
		bowlerDelta.BallsBowled = 1
	}
	if wide {
		bowlerDelta.Wides = 1
	}
	if noBall {
		bowlerDelta.NoBalls = 1
	}
	if d.IsWicket && d.DismissalType != nil && d.DismissalType.CreditedToBowler() {
		bowlerDelta.Wickets = 1
	}
	if d.CompletedMaiden {
		bowlerDelta.Maidens = 1
	}
	return tx.ApplyPlayerStatDelta(innings.ID, bowler.PlayerID, bowlerDelta)
}

// nextStatus decides the innings state after this delivery lands.
func (p *DeliveryProcessor) nextStatus(innings *Innings, delta InningsDelta) InningsStatus {
	runs := innings.TotalRuns + delta.Runs
	wickets := innings.Wickets + delta.Wickets
	legalBalls := innings.LegalBalls + delta.LegalBalls

	switch {
	case innings.TargetScore != nil && runs >= *innings.TargetScore:
		return InningsTargetReached
	case wickets >= MaxWickets:
		return InningsAllOut
	case innings.OversLimit > 0 && legalBalls >= innings.OversLimit*BallsPerOver:
		return InningsOversExhausted
	default:
		return InningsInProgress
	}
}

// ensureBatsmen loads the striker's stat row (creating it on first
// appearance) and identifies the non-striker among the batsmen at the crease.
func (p *DeliveryProcessor) ensureBatsmen(tx ScoringRepository, innings *Innings, d *BallDelivery) (striker, nonStriker *PlayerInningsStat, err error) {
	crease, err := tx.GetBatsmenAtCrease(innings.ID)
	if err != nil {
		return nil, nil, err
	}

	for i := range crease {
		switch {
		case crease[i].PlayerID == d.BatsmanID:
			striker = &crease[i]
		case nonStriker == nil:
			nonStriker = &crease[i]
		}
	}

	if striker == nil {
		all, err := tx.GetPlayerStatsByInnings(innings.ID)
		if err != nil {
			return nil, nil, err
		}
		maxOrder := 0
		anyOnStrike := false
		for _, s := range all {
			if s.BattingOrder > maxOrder {
				maxOrder = s.BattingOrder
			}
			if s.AtCrease() && s.OnStrike {
				anyOnStrike = true
			}
		}
		striker = &PlayerInningsStat{
			InningsID:    innings.ID,
			PlayerID:     d.BatsmanID,
			BattingOrder: maxOrder + 1,
			OnStrike:     !anyOnStrike,
		}
		if err := tx.CreatePlayerStat(striker); err != nil {
			return nil, nil, err
		}
		d.BatsmanRowCreated = true
	}

	if nonStriker != nil {
		id := nonStriker.PlayerID
		d.NonStrikerID = &id
	}
	return striker, nonStriker, nil
}

// ensureBowler loads the bowler's stat row, creating it on first appearance.
func (p *DeliveryProcessor) ensureBowler(tx ScoringRepository, innings *Innings, d *BallDelivery) (*PlayerInningsStat, error) {
	bowler, err := tx.GetPlayerStat(innings.ID, d.BowlerID)
	if err == nil {
		return bowler, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}
	bowler = &PlayerInningsStat{InningsID: innings.ID, PlayerID: d.BowlerID}
	if err := tx.CreatePlayerStat(bowler); err != nil {
		return nil, err
	}
	d.BowlerRowCreated = true
	return bowler, nil
}

// BuildSnapshot assembles the broadcast view from committed state only.
func BuildSnapshot(repo ScoringRepository, inningsID uint) (*Snapshot, error) {
	innings, err := repo.GetInnings(inningsID)
	if err != nil {
		return nil, err
	}
	recent, err := repo.GetRecentDeliveries(inningsID, 12)
	if err != nil {
		return nil, err
	}
	batsmen, err := repo.GetBatsmenAtCrease(inningsID)
	if err != nil {
		return nil, err
	}
	snap := &Snapshot{
		MatchID:          innings.MatchID,
		Innings:          *innings,
		RecentDeliveries: recent,
		Batsmen:          batsmen,
	}
	if innings.CurrentBowlerID != nil {
		bowler, err := repo.GetPlayerStat(inningsID, *innings.CurrentBowlerID)
		if err == nil {
			snap.Bowler = bowler
		} else if !IsNotFound(err) {
			return nil, err
		}
	}
	return snap, nil
}
