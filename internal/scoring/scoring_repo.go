package scoring

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ScoringRepository is the durable state store for innings, deliveries and
// player-innings stats. Every multi-entity update for one delivery or undo
// must run inside WithTransaction so it is all-or-nothing.
type ScoringRepository interface {
	CreateInnings(innings *Innings) error
	GetInnings(id uint) (*Innings, error)
	GetInningsByMatch(matchID uint) ([]Innings, error)
	ApplyInningsDelta(id uint, delta InningsDelta) error

	CreatePlayerStat(stat *PlayerInningsStat) error
	DeletePlayerStat(id uint) error
	GetPlayerStat(inningsID, playerID uint) (*PlayerInningsStat, error)
	GetPlayerStatsByInnings(inningsID uint) ([]PlayerInningsStat, error)
	GetBatsmenAtCrease(inningsID uint) ([]PlayerInningsStat, error)
	ApplyPlayerStatDelta(inningsID, playerID uint, delta PlayerStatDelta) error

	CreateDelivery(delivery *BallDelivery) error
	DeleteDelivery(id uint) error
	GetDeliveryByClientToken(inningsID uint, token string) (*BallDelivery, error)
	GetRecentDeliveries(inningsID uint, n int) ([]BallDelivery, error)
	GetOverDeliveries(inningsID uint, overNumber int) ([]BallDelivery, error)
	GetLastDelivery(inningsID uint) (*BallDelivery, error)
	GetLastLegalDeliveryInOver(inningsID uint, overNumber int) (*BallDelivery, error)

	WithTransaction(txFunc func(ScoringRepository) error) error
}

// GormScoringRepository implements ScoringRepository using GORM.
type GormScoringRepository struct {
	db *gorm.DB
}

func NewGormScoringRepository(db *gorm.DB) *GormScoringRepository {
	return &GormScoringRepository{db: db}
}

// WithTransaction runs txFunc against a repository bound to one transaction.
func (r *GormScoringRepository) WithTransaction(txFunc func(ScoringRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&GormScoringRepository{db: tx})
	})
}

func (r *GormScoringRepository) CreateInnings(innings *Innings) error {
	return wrapStorage("create innings", r.db.Create(innings).Error)
}

func (r *GormScoringRepository) GetInnings(id uint) (*Innings, error) {
	var innings Innings
	if err := r.db.First(&innings, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "innings", ID: id}
		}
		return nil, wrapStorage("get innings", err)
	}
	return &innings, nil
}

func (r *GormScoringRepository) GetInningsByMatch(matchID uint) ([]Innings, error) {
	var innings []Innings
	err := r.db.Where("match_id = ?", matchID).Order("number asc").Find(&innings).Error
	if err != nil {
		return nil, wrapStorage("list innings", err)
	}
	return innings, nil
}

// ApplyInningsDelta adds the delta's counters to the stored row, flooring
// every counter at zero, and applies any pointer/status updates.
func (r *GormScoringRepository) ApplyInningsDelta(id uint, delta InningsDelta) error {
	innings, err := r.GetInnings(id)
	if err != nil {
		return err
	}

	innings.TotalRuns = floor0(innings.TotalRuns + delta.Runs)
	innings.LegalBalls = floor0(innings.LegalBalls + delta.LegalBalls)
	innings.Wickets = floor0(innings.Wickets + delta.Wickets)
	innings.WideRuns = floor0(innings.WideRuns + delta.WideRuns)
	innings.NoBallRuns = floor0(innings.NoBallRuns + delta.NoBallRuns)
	innings.ByeRuns = floor0(innings.ByeRuns + delta.ByeRuns)
	innings.LegByeRuns = floor0(innings.LegByeRuns + delta.LegByeRuns)
	innings.PenaltyRuns = floor0(innings.PenaltyRuns + delta.PenaltyRuns)
	innings.OppositionPenaltyRuns = floor0(innings.OppositionPenaltyRuns + delta.OppositionPenaltyRuns)

	if delta.UpdateCurrentBowler {
		innings.CurrentBowlerID = delta.CurrentBowlerID
	}
	if delta.SetStatus != nil {
		innings.Status = *delta.SetStatus
	}

	// Save with Select so a nil bowler pointer actually clears the column.
	err = r.db.Model(innings).Select("total_runs", "legal_balls", "wickets",
		"wide_runs", "no_ball_runs", "bye_runs", "leg_bye_runs", "penalty_runs",
		"opposition_penalty_runs", "current_bowler_id", "status").Updates(innings).Error
	return wrapStorage("apply innings delta", err)
}

func (r *GormScoringRepository) CreatePlayerStat(stat *PlayerInningsStat) error {
	return wrapStorage("create player stat", r.db.Create(stat).Error)
}

func (r *GormScoringRepository) DeletePlayerStat(id uint) error {
	return wrapStorage("delete player stat", r.db.Unscoped().Delete(&PlayerInningsStat{}, id).Error)
}

func (r *GormScoringRepository) GetPlayerStat(inningsID, playerID uint) (*PlayerInningsStat, error) {
	var stat PlayerInningsStat
	err := r.db.Where("innings_id = ? AND player_id = ?", inningsID, playerID).First(&stat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Entity: "player stat", ID: playerID}
		}
		return nil, wrapStorage("get player stat", err)
	}
	return &stat, nil
}

func (r *GormScoringRepository) GetPlayerStatsByInnings(inningsID uint) ([]PlayerInningsStat, error) {
	var stats []PlayerInningsStat
	err := r.db.Where("innings_id = ?", inningsID).Order("batting_order asc, player_id asc").Find(&stats).Error
	if err != nil {
		return nil, wrapStorage("list player stats", err)
	}
	return stats, nil
}

func (r *GormScoringRepository) GetBatsmenAtCrease(inningsID uint) ([]PlayerInningsStat, error) {
	var stats []PlayerInningsStat
	err := r.db.Where("innings_id = ? AND batting_order > 0 AND is_out = ?", inningsID, false).
		Order("batting_order asc").Find(&stats).Error
	if err != nil {
		return nil, wrapStorage("list batsmen at crease", err)
	}
	return stats, nil
}

// ApplyPlayerStatDelta adds the delta to the stored row, flooring counters at
// zero. A missing row is a consistency fault: the caller's transaction must
// abort rather than invent state.
func (r *GormScoringRepository) ApplyPlayerStatDelta(inningsID, playerID uint, delta PlayerStatDelta) error {
	stat, err := r.GetPlayerStat(inningsID, playerID)
	if err != nil {
		if IsNotFound(err) {
			return &ConsistencyError{Message: fmt.Sprintf("stat row for player %d is missing in innings %d", playerID, inningsID)}
		}
		return err
	}

	stat.Runs = floor0(stat.Runs + delta.Runs)
	stat.BallsFaced = floor0(stat.BallsFaced + delta.BallsFaced)
	stat.Fours = floor0(stat.Fours + delta.Fours)
	stat.Sixes = floor0(stat.Sixes + delta.Sixes)
	stat.BallsBowled = floor0(stat.BallsBowled + delta.BallsBowled)
	stat.RunsConceded = floor0(stat.RunsConceded + delta.RunsConceded)
	stat.Wickets = floor0(stat.Wickets + delta.Wickets)
	stat.Maidens = floor0(stat.Maidens + delta.Maidens)
	stat.Wides = floor0(stat.Wides + delta.Wides)
	stat.NoBalls = floor0(stat.NoBalls + delta.NoBalls)

	if delta.SetOut != nil {
		stat.IsOut = *delta.SetOut
	}
	if delta.UpdateHowOut {
		stat.HowOut = delta.HowOut
	}
	if delta.SetOnStrike != nil {
		stat.OnStrike = *delta.SetOnStrike
	}

	err = r.db.Model(stat).Select("runs", "balls_faced", "fours", "sixes",
		"balls_bowled", "runs_conceded", "wickets", "maidens", "wides", "no_balls",
		"is_out", "how_out", "on_strike").Updates(stat).Error
	return wrapStorage("apply player stat delta", err)
}

func (r *GormScoringRepository) CreateDelivery(delivery *BallDelivery) error {
	return wrapStorage("create delivery", r.db.Create(delivery).Error)
}

// DeleteDelivery removes the row outright; an undone ball leaves no tombstone.
func (r *GormScoringRepository) DeleteDelivery(id uint) error {
	return wrapStorage("delete delivery", r.db.Unscoped().Delete(&BallDelivery{}, id).Error)
}

func (r *GormScoringRepository) GetDeliveryByClientToken(inningsID uint, token string) (*BallDelivery, error) {
	var d BallDelivery
	err := r.db.Where("innings_id = ? AND client_token = ?", inningsID, token).First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage("get delivery by token", err)
	}
	return &d, nil
}

func (r *GormScoringRepository) GetRecentDeliveries(inningsID uint, n int) ([]BallDelivery, error) {
	var deliveries []BallDelivery
	err := r.db.Where("innings_id = ?", inningsID).
		Order("over_number desc, seq_in_over desc").Limit(n).Find(&deliveries).Error
	if err != nil {
		return nil, wrapStorage("list recent deliveries", err)
	}
	return deliveries, nil
}

func (r *GormScoringRepository) GetOverDeliveries(inningsID uint, overNumber int) ([]BallDelivery, error) {
	var deliveries []BallDelivery
	err := r.db.Where("innings_id = ? AND over_number = ?", inningsID, overNumber).
		Order("seq_in_over asc").Find(&deliveries).Error
	if err != nil {
		return nil, wrapStorage("list over deliveries", err)
	}
	return deliveries, nil
}

// GetLastDelivery returns the most recently recorded delivery of the innings,
// or nil when none exist.
func (r *GormScoringRepository) GetLastDelivery(inningsID uint) (*BallDelivery, error) {
	var d BallDelivery
	err := r.db.Where("innings_id = ?", inningsID).
		Order("over_number desc, seq_in_over desc").First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage("get last delivery", err)
	}
	return &d, nil
}

// GetLastLegalDeliveryInOver returns the final legal ball of the given over,
// or nil when the over has none.
func (r *GormScoringRepository) GetLastLegalDeliveryInOver(inningsID uint, overNumber int) (*BallDelivery, error) {
	var d BallDelivery
	err := r.db.Where("innings_id = ? AND over_number = ? AND is_legal = ?", inningsID, overNumber, true).
		Order("seq_in_over desc").First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, wrapStorage("get last legal delivery", err)
	}
	return &d, nil
}

func floor0(v int) int {
	if v < 0 {
		return 0
	}
	return v
}
