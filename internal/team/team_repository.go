package team

import (
	"errors"

	"gorm.io/gorm"
)

// TeamRepository defines methods to interact with teams and their players.
type TeamRepository interface {
	CreateTeam(team *Team) error
	GetTeamByID(id uint) (*Team, error)
	GetTeams(page, pageSize int) ([]Team, int64, error)
	UpdateTeam(team *Team) error
	DeleteTeam(id uint) error

	AddPlayer(player *Player) error
	GetPlayerByID(id uint) (*Player, error)
	GetTeamPlayers(teamID uint) ([]Player, error)
	RemovePlayer(id uint) error
}

// GormTeamRepository implements TeamRepository using GORM.
type GormTeamRepository struct {
	db *gorm.DB
}

func NewGormTeamRepository(db *gorm.DB) *GormTeamRepository {
	return &GormTeamRepository{db: db}
}

func (r *GormTeamRepository) CreateTeam(team *Team) error {
	return r.db.Create(team).Error
}

// GetTeamByID retrieves a team with its players, or nil when absent.
func (r *GormTeamRepository) GetTeamByID(id uint) (*Team, error) {
	var team Team
	result := r.db.Preload("Players").First(&team, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &team, nil
}

func (r *GormTeamRepository) GetTeams(page, pageSize int) ([]Team, int64, error) {
	var teams []Team
	var total int64

	query := r.db.Model(&Team{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := query.Offset(offset).Limit(pageSize).Order("name asc").Find(&teams).Error; err != nil {
		return nil, 0, err
	}
	return teams, total, nil
}

func (r *GormTeamRepository) UpdateTeam(team *Team) error {
	return r.db.Save(team).Error
}

func (r *GormTeamRepository) DeleteTeam(id uint) error {
	return r.db.Delete(&Team{}, id).Error
}

func (r *GormTeamRepository) AddPlayer(player *Player) error {
	return r.db.Create(player).Error
}

func (r *GormTeamRepository) GetPlayerByID(id uint) (*Player, error) {
	var player Player
	result := r.db.First(&player, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &player, nil
}

func (r *GormTeamRepository) GetTeamPlayers(teamID uint) ([]Player, error) {
	var players []Player
	err := r.db.Where("team_id = ?", teamID).Order("name asc").Find(&players).Error
	return players, err
}

func (r *GormTeamRepository) RemovePlayer(id uint) error {
	return r.db.Delete(&Player{}, id).Error
}
