package database

import (
	"github.com/pantheon-social/pantheon/internal/database/service"
	"github.com/redis/rueidis"
	"go.uber.org/zap"
)

// Service provides access to all business logic services.
type Service struct {
	profile *service.ProfileService
	ranking *service.RankingService
	reward  *service.RewardService
	period  *service.PeriodService
	ledger  *service.LedgerService
}

// NewService creates a new service instance with all services.
func NewService(repo *Repository, cache rueidis.Client, logger *zap.Logger) *Service {
	profile := service.NewProfile(repo.Profile(), cache, logger)
	ranking := service.NewRanking(repo.Period(), repo.Event(), repo.Ranking(), repo.Profile(), profile, logger)
	reward := service.NewReward(repo.Period(), ranking, repo.Ranking(), repo.Reward(), repo.Profile(), profile, logger)
	period := service.NewPeriodService(repo.Period(), reward, logger)
	ledger := service.NewLedger(repo.Event(), period, logger)

	return &Service{
		profile: profile,
		ranking: ranking,
		reward:  reward,
		period:  period,
		ledger:  ledger,
	}
}

// Profile returns the profile tier mirror service.
func (s *Service) Profile() *service.ProfileService {
	return s.profile
}

// Ranking returns the ranking service.
func (s *Service) Ranking() *service.RankingService {
	return s.ranking
}

// Reward returns the reward service.
func (s *Service) Reward() *service.RewardService {
	return s.reward
}

// Period returns the period service.
func (s *Service) Period() *service.PeriodService {
	return s.period
}

// Ledger returns the engagement ledger service.
func (s *Service) Ledger() *service.LedgerService {
	return s.ledger
}
