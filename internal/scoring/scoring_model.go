package scoring

import (
	"fmt"

	"gorm.io/gorm"
)

// ExtraType classifies runs not scored off the bat.
type ExtraType string

const (
	ExtraWide   ExtraType = "wide"
	ExtraNoBall ExtraType = "no_ball"
	ExtraBye    ExtraType = "bye"
	ExtraLegBye ExtraType = "leg_bye"
)

// ParseExtraType validates a raw extra string at the API boundary.
func ParseExtraType(s string) (ExtraType, error) {
	switch ExtraType(s) {
	case ExtraWide, ExtraNoBall, ExtraBye, ExtraLegBye:
		return ExtraType(s), nil
	}
	return "", fmt.Errorf("unknown extra type %q", s)
}

// DismissalType enumerates the valid ways a batsman can be out.
type DismissalType string

const (
	DismissalBowled       DismissalType = "bowled"
	DismissalCaught       DismissalType = "caught"
	DismissalLBW          DismissalType = "lbw"
	DismissalRunOut       DismissalType = "run_out"
	DismissalStumped      DismissalType = "stumped"
	DismissalHitWicket    DismissalType = "hit_wicket"
	DismissalHandledBall  DismissalType = "handled_ball"
	DismissalObstructing  DismissalType = "obstructing_the_field"
	DismissalTimedOut     DismissalType = "timed_out"
	DismissalHitBallTwice DismissalType = "hit_ball_twice"
)

var validDismissals = map[DismissalType]bool{
	DismissalBowled:       true,
	DismissalCaught:       true,
	DismissalLBW:          true,
	DismissalRunOut:       true,
	DismissalStumped:      true,
	DismissalHitWicket:    true,
	DismissalHandledBall:  true,
	DismissalObstructing:  true,
	DismissalTimedOut:     true,
	DismissalHitBallTwice: true,
}

// Valid reports whether d is one of the enumerated dismissal kinds.
func (d DismissalType) Valid() bool { return validDismissals[d] }

// CreditedToBowler reports whether the dismissal counts towards the bowler's
// wicket tally. Run-outs and the "batsman offence" dismissals do not.
func (d DismissalType) CreditedToBowler() bool {
	switch d {
	case DismissalRunOut, DismissalObstructing, DismissalTimedOut, DismissalHandledBall:
		return false
	}
	return true
}

// InningsStatus is the innings lifecycle state.
type InningsStatus string

const (
	InningsNotStarted     InningsStatus = "not_started"
	InningsInProgress     InningsStatus = "in_progress"
	InningsAllOut         InningsStatus = "all_out"
	InningsOversExhausted InningsStatus = "overs_exhausted"
	InningsTargetReached  InningsStatus = "target_reached"
)

// Completed reports whether the innings has reached a terminal state.
func (s InningsStatus) Completed() bool {
	return s == InningsAllOut || s == InningsOversExhausted || s == InningsTargetReached
}

const (
	// BallsPerOver is the number of legal deliveries that complete an over.
	BallsPerOver = 6
	// MaxWickets is the number of wickets that closes an innings.
	MaxWickets = 10
	// MaxOffBatRuns is the most runs creditable to the bat off one delivery.
	MaxOffBatRuns = 6
	// DeliberateShortRunPenalty is awarded to the fielding side when the
	// batsmen deliberately run short.
	DeliberateShortRunPenalty = 5
)

// Innings is one side's turn batting within a match.
type Innings struct {
	gorm.Model
	MatchID       uint `json:"match_id" gorm:"index;not null"`
	Number        int  `json:"number" gorm:"not null"`
	BattingTeamID uint `json:"batting_team_id" gorm:"index;not null"`
	BowlingTeamID uint `json:"bowling_team_id" gorm:"index;not null"`

	TotalRuns  int `json:"total_runs" gorm:"default:0"`
	LegalBalls int `json:"legal_balls" gorm:"default:0"`
	Wickets    int `json:"wickets" gorm:"default:0"`

	// Extras breakdown. OppositionPenaltyRuns are penalties awarded to the
	// fielding side (deliberate short runs); they never count towards this
	// innings' total.
	WideRuns              int `json:"wide_runs" gorm:"default:0"`
	NoBallRuns            int `json:"no_ball_runs" gorm:"default:0"`
	ByeRuns               int `json:"bye_runs" gorm:"default:0"`
	LegByeRuns            int `json:"leg_bye_runs" gorm:"default:0"`
	PenaltyRuns           int `json:"penalty_runs" gorm:"default:0"`
	OppositionPenaltyRuns int `json:"opposition_penalty_runs" gorm:"default:0"`

	OversLimit  int  `json:"overs_limit" gorm:"default:0"` // 0 means unlimited
	TargetScore *int `json:"target_score,omitempty"`

	// CurrentBowlerID points at the bowler of the over in progress. Owned
	// exclusively by the delivery processor and the undo engine.
	CurrentBowlerID *uint `json:"current_bowler_id,omitempty"`

	Status InningsStatus `json:"status" gorm:"index;default:'not_started'"`
}

// Extras is the total of runs not credited to a bat-and-run event.
func (i *Innings) Extras() int {
	return i.WideRuns + i.NoBallRuns + i.ByeRuns + i.LegByeRuns + i.PenaltyRuns
}

// OversExhausted reports whether the over limit, if any, has been used up.
func (i *Innings) OversExhausted() bool {
	return i.OversLimit > 0 && i.LegalBalls >= i.OversLimit*BallsPerOver
}

// OversDisplay renders legal balls as conventional overs notation, e.g. "10.2".
func (i *Innings) OversDisplay() string {
	return fmt.Sprintf("%d.%d", i.LegalBalls/BallsPerOver, i.LegalBalls%BallsPerOver)
}

// BallDelivery records one bowled ball, legal or otherwise.
type BallDelivery struct {
	gorm.Model
	InningsID uint `json:"innings_id" gorm:"index;not null;uniqueIndex:idx_innings_client_token"`

	// ClientToken detects replayed submissions. Assigned by the server when
	// the client does not supply one.
	ClientToken string `json:"client_token" gorm:"size:64;uniqueIndex:idx_innings_client_token"`

	OverNumber int `json:"over_number" gorm:"index;not null"` // 1-indexed
	SeqInOver  int `json:"seq_in_over" gorm:"not null"`       // every delivery, wides included
	LegalBall  int `json:"legal_ball" gorm:"default:0"`       // 1..6 for legal deliveries, 0 otherwise

	BatsmanID    uint  `json:"batsman_id" gorm:"index;not null"`
	NonStrikerID *uint `json:"non_striker_id,omitempty"`
	BowlerID     uint  `json:"bowler_id" gorm:"index;not null"`

	RunsScored    int        `json:"runs_scored" gorm:"default:0"` // off the bat, after short-run adjustment
	RunsNullified bool       `json:"runs_nullified" gorm:"default:false"`
	ExtraType     *ExtraType `json:"extra_type,omitempty"`
	ExtraRuns     int        `json:"extra_runs" gorm:"default:0"` // includes the automatic wide/no-ball run

	// PenaltyRuns are awarded to the batting side and count in this innings'
	// total. OppositionPenaltyRuns go to the fielding side (deliberate short
	// run) and never do. The two streams stay separate.
	PenaltyRuns           int `json:"penalty_runs" gorm:"default:0"`
	OppositionPenaltyRuns int `json:"opposition_penalty_runs" gorm:"default:0"`

	IsFour bool `json:"is_four" gorm:"default:false"`
	IsSix  bool `json:"is_six" gorm:"default:false"`

	IsWicket      bool           `json:"is_wicket" gorm:"default:false"`
	DismissalType *DismissalType `json:"dismissal_type,omitempty"`
	PlayerOutID   *uint          `json:"player_out_id,omitempty" gorm:"index"`
	FielderID     *uint          `json:"fielder_id,omitempty"`

	IsShortRun        bool `json:"is_short_run" gorm:"default:false"`
	IsDeliberateShort bool `json:"is_deliberate_short" gorm:"default:false"`
	IsDeadBall        bool `json:"is_dead_ball" gorm:"default:false"`

	// IsLegal is always set explicitly by the rule engine; a default tag here
	// would make GORM skip the false value on insert and store wides and
	// no-balls as legal deliveries.
	IsLegal bool `json:"is_legal"`

	// Bookkeeping the undo engine relies on to reverse this delivery exactly.
	StrikeRotations    int  `json:"-" gorm:"default:0"`
	OutWasOnStrike     bool `json:"-" gorm:"default:false"`
	BatsmanRowCreated  bool `json:"-" gorm:"default:false"`
	BowlerRowCreated   bool `json:"-" gorm:"default:false"`
	CompletedOver      bool `json:"-" gorm:"default:false"`
	CompletedMaiden    bool `json:"-" gorm:"default:false"`

	Commentary string `json:"commentary,omitempty" gorm:"type:text"`
}

// TotalRuns is everything this delivery added to the batting side's total.
// Opposition penalty runs belong to the fielding side and are excluded.
func (b *BallDelivery) TotalRuns() int {
	return b.RunsScored + b.ExtraRuns + b.PenaltyRuns
}

// CompletedRuns is the number of runs physically completed between the
// wickets and counted; it governs strike rotation.
func (b *BallDelivery) CompletedRuns() int {
	if b.IsDeadBall {
		return 0
	}
	if b.ExtraType == nil {
		return b.RunsScored
	}
	switch *b.ExtraType {
	case ExtraWide:
		return b.ExtraRuns - 1 // beyond the automatic wide
	case ExtraBye, ExtraLegBye:
		return b.ExtraRuns
	default: // no-ball: the batsmen run what the bat scored
		return b.RunsScored
	}
}

// PlayerInningsStat holds one player's batting and bowling figures for one
// innings. A row exists only once the player has batted or bowled.
type PlayerInningsStat struct {
	gorm.Model
	InningsID uint `json:"innings_id" gorm:"index;not null;uniqueIndex:idx_innings_player"`
	PlayerID  uint `json:"player_id" gorm:"index;not null;uniqueIndex:idx_innings_player"`

	// Batting
	Runs         int            `json:"runs" gorm:"default:0"`
	BallsFaced   int            `json:"balls_faced" gorm:"default:0"`
	Fours        int            `json:"fours" gorm:"default:0"`
	Sixes        int            `json:"sixes" gorm:"default:0"`
	IsOut        bool           `json:"is_out" gorm:"default:false"`
	HowOut       *DismissalType `json:"how_out,omitempty"`
	OnStrike     bool           `json:"on_strike" gorm:"default:false"`
	BattingOrder int            `json:"batting_order" gorm:"default:0"` // 0 = has not batted

	// Bowling
	BallsBowled  int `json:"balls_bowled" gorm:"default:0"`
	RunsConceded int `json:"runs_conceded" gorm:"default:0"`
	Wickets      int `json:"wickets" gorm:"default:0"`
	Maidens      int `json:"maidens" gorm:"default:0"`
	Wides        int `json:"wides" gorm:"default:0"`
	NoBalls      int `json:"no_balls" gorm:"default:0"`
}

// AtCrease reports whether the player is an active, not-out batsman.
func (p *PlayerInningsStat) AtCrease() bool { return p.BattingOrder > 0 && !p.IsOut }

// InningsDelta is a typed additive patch for innings counters. Negated deltas
// reverse a delivery; the repository floors every counter at zero.
type InningsDelta struct {
	Runs                  int
	LegalBalls            int
	Wickets               int
	WideRuns              int
	NoBallRuns            int
	ByeRuns               int
	LegByeRuns            int
	PenaltyRuns           int
	OppositionPenaltyRuns int

	// Pointer/status updates apply only when the Update flag is set, so a
	// zero delta leaves them untouched.
	UpdateCurrentBowler bool
	CurrentBowlerID     *uint
	SetStatus           *InningsStatus
}

// Negate returns the additive inverse of the delta's counters. Pointer and
// status updates do not negate; callers set them explicitly.
func (d InningsDelta) Negate() InningsDelta {
	return InningsDelta{
		Runs:                  -d.Runs,
		LegalBalls:            -d.LegalBalls,
		Wickets:               -d.Wickets,
		WideRuns:              -d.WideRuns,
		NoBallRuns:            -d.NoBallRuns,
		ByeRuns:               -d.ByeRuns,
		LegByeRuns:            -d.LegByeRuns,
		PenaltyRuns:           -d.PenaltyRuns,
		OppositionPenaltyRuns: -d.OppositionPenaltyRuns,
	}
}

// PlayerStatDelta is a typed additive patch for one player-innings row.
type PlayerStatDelta struct {
	Runs         int
	BallsFaced   int
	Fours        int
	Sixes        int
	BallsBowled  int
	RunsConceded int
	Wickets      int
	Maidens      int
	Wides        int
	NoBalls      int

	SetOut       *bool
	UpdateHowOut bool
	HowOut       *DismissalType
	SetOnStrike  *bool
}

// Negate mirrors InningsDelta.Negate for player counters.
func (d PlayerStatDelta) Negate() PlayerStatDelta {
	return PlayerStatDelta{
		Runs:         -d.Runs,
		BallsFaced:   -d.BallsFaced,
		Fours:        -d.Fours,
		Sixes:        -d.Sixes,
		BallsBowled:  -d.BallsBowled,
		RunsConceded: -d.RunsConceded,
		Wickets:      -d.Wickets,
		Maidens:      -d.Maidens,
		Wides:        -d.Wides,
		NoBalls:      -d.NoBalls,
	}
}

// Snapshot is the full current-state view broadcast after every committed
// delivery or undo.
type Snapshot struct {
	MatchID          uint                `json:"match_id"`
	Innings          Innings             `json:"innings"`
	RecentDeliveries []BallDelivery      `json:"recent_deliveries"`
	Batsmen          []PlayerInningsStat `json:"batsmen"`
	Bowler           *PlayerInningsStat  `json:"bowler,omitempty"`
}
