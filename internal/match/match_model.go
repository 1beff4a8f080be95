package match

import (
	"gorm.io/gorm"

	"github.com/TusharJoshi-11/crease/internal/team"
)

// MatchStatus is the match lifecycle state.
type MatchStatus string

const (
	StatusMatchCreated   MatchStatus = "created"
	StatusMatchTossDone  MatchStatus = "toss_done"
	StatusMatchLive      MatchStatus = "live"
	StatusMatchCompleted MatchStatus = "completed"
	StatusMatchAbandoned MatchStatus = "abandoned"
)

// TossDecision is what the toss winner chose to do first.
type TossDecision string

const (
	TossDecisionBat  TossDecision = "bat"
	TossDecisionBowl TossDecision = "bowl"
)

// Match is one limited-overs fixture between two sides.
type Match struct {
	gorm.Model
	HomeTeamID uint       `json:"home_team_id" gorm:"index;not null"`
	HomeTeam   *team.Team `json:"home_team,omitempty" gorm:"foreignKey:HomeTeamID"`
	AwayTeamID uint       `json:"away_team_id" gorm:"index;not null"`
	AwayTeam   *team.Team `json:"away_team,omitempty" gorm:"foreignKey:AwayTeamID"`

	OversPerInnings int    `json:"overs_per_innings" gorm:"default:20"`
	Venue           string `json:"venue,omitempty"`

	Status           MatchStatus   `json:"status" gorm:"index;default:'created'"`
	TossWonByTeamID  *uint         `json:"toss_won_by_team_id,omitempty"`
	TossDecision     *TossDecision `json:"toss_decision,omitempty"`
	CurrentInningsID *uint         `json:"current_innings_id,omitempty"`
	ResultSummary    string        `json:"result_summary,omitempty"`

	// ScorerCodeHash guards the scoring endpoints; set at creation, never
	// returned to clients.
	ScorerCodeHash string `json:"-" gorm:"not null"`
}

// BattingOrder returns which team bats the given innings (1 or 2), based on
// the toss. The second return is the bowling side.
func (m *Match) BattingOrder(inningsNumber int) (battingTeamID, bowlingTeamID uint, ok bool) {
	if m.TossWonByTeamID == nil || m.TossDecision == nil {
		return 0, 0, false
	}

	first := *m.TossWonByTeamID
	if *m.TossDecision == TossDecisionBowl {
		first = m.otherTeam(first)
	}
	second := m.otherTeam(first)

	switch inningsNumber {
	case 1:
		return first, second, true
	case 2:
		return second, first, true
	default:
		return 0, 0, false
	}
}

func (m *Match) otherTeam(teamID uint) uint {
	if teamID == m.HomeTeamID {
		return m.AwayTeamID
	}
	return m.HomeTeamID
}
