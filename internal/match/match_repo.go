package match

import (
	"errors"

	"gorm.io/gorm"
)

// MatchRepository defines methods to interact with match lifecycle data.
type MatchRepository interface {
	CreateMatch(match *Match) error
	GetMatchByID(id uint) (*Match, error)
	UpdateMatch(match *Match) error
	UpdateMatchStatus(matchID uint, status MatchStatus) error
	SetCurrentInnings(matchID uint, inningsID *uint) error
	WithTransaction(txFunc func(MatchRepository) error) error
}

// GormMatchRepository implements MatchRepository using GORM.
type GormMatchRepository struct {
	db *gorm.DB
}

func NewGormMatchRepository(db *gorm.DB) *GormMatchRepository {
	return &GormMatchRepository{db: db}
}

// WithTransaction runs txFunc against a repository bound to one transaction.
func (r *GormMatchRepository) WithTransaction(txFunc func(MatchRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return txFunc(&GormMatchRepository{db: tx})
	})
}

// DB exposes the underlying handle so sibling repositories can join the same
// transaction.
func (r *GormMatchRepository) DB() *gorm.DB { return r.db }

func (r *GormMatchRepository) CreateMatch(match *Match) error {
	return r.db.Create(match).Error
}

// GetMatchByID retrieves a match with both teams, or nil when absent.
func (r *GormMatchRepository) GetMatchByID(id uint) (*Match, error) {
	var match Match
	result := r.db.Preload("HomeTeam").Preload("AwayTeam").First(&match, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &match, nil
}

func (r *GormMatchRepository) UpdateMatch(match *Match) error {
	return r.db.Save(match).Error
}

func (r *GormMatchRepository) UpdateMatchStatus(matchID uint, status MatchStatus) error {
	return r.db.Model(&Match{}).Where("id = ?", matchID).Update("status", status).Error
}

func (r *GormMatchRepository) SetCurrentInnings(matchID uint, inningsID *uint) error {
	return r.db.Model(&Match{}).Where("id = ?", matchID).Update("current_innings_id", inningsID).Error
}
