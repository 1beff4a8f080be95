package team

import (
	"gorm.io/gorm"
)

// Team is one of the two sides in a match.
type Team struct {
	gorm.Model
	Name      string `json:"name" gorm:"not null;uniqueIndex"`
	ShortName string `json:"short_name" gorm:"size:8"`
	Logo      string `json:"logo,omitempty"`

	Players []Player `json:"players,omitempty" gorm:"foreignKey:TeamID"`
}

// PlayerRole is the player's primary discipline.
type PlayerRole string

const (
	RoleBatsman      PlayerRole = "batsman"
	RoleBowler       PlayerRole = "bowler"
	RoleAllRounder   PlayerRole = "all_rounder"
	RoleWicketKeeper PlayerRole = "wicket_keeper"
)

// Player belongs to one team. Deliveries and innings stats reference players
// by ID.
type Player struct {
	gorm.Model
	TeamID       uint       `json:"team_id" gorm:"index;not null"`
	Name         string     `json:"name" gorm:"not null"`
	Role         PlayerRole `json:"role" gorm:"default:'batsman'"`
	BattingStyle string     `json:"batting_style,omitempty"` // "right_hand", "left_hand"
	BowlingStyle string     `json:"bowling_style,omitempty"` // e.g. "right_arm_fast", "left_arm_spin"
	JerseyNumber int        `json:"jersey_number,omitempty"`
}
