package database

import (
	"github.com/pantheon-social/pantheon/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	period  *models.PeriodModel
	event   *models.EventModel
	ranking *models.RankingModel
	reward  *models.RewardModel
	profile *models.ProfileModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		period:  models.NewPeriod(db, logger),
		event:   models.NewEvent(db, logger),
		ranking: models.NewRanking(db, logger),
		reward:  models.NewReward(db, logger),
		profile: models.NewProfile(db, logger),
	}
}

// Period returns the period model repository.
func (r *Repository) Period() *models.PeriodModel {
	return r.period
}

// Event returns the engagement event model repository.
func (r *Repository) Event() *models.EventModel {
	return r.event
}

// Ranking returns the ranking model repository.
func (r *Repository) Ranking() *models.RankingModel {
	return r.ranking
}

// Reward returns the reward model repository.
func (r *Repository) Reward() *models.RewardModel {
	return r.reward
}

// Profile returns the profile tier cache model repository.
func (r *Repository) Profile() *models.ProfileModel {
	return r.profile
}
