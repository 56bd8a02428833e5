package migrations

import (
	"context"
	"fmt"

	"github.com/pantheon-social/pantheon/internal/database/types"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		models := []any{
			(*types.Period)(nil),
			(*types.EngagementEvent)(nil),
			(*types.UserPointTotal)(nil),
			(*types.RankingEntry)(nil),
			(*types.UserReward)(nil),
			(*types.ProfileTierCache)(nil),
		}

		for _, model := range models {
			_, err := db.NewCreateTable().
				Model(model).
				IfNotExists().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create table %T: %w", model, err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		// Down migration - drop all tables
		models := []any{
			(*types.ProfileTierCache)(nil),
			(*types.UserReward)(nil),
			(*types.RankingEntry)(nil),
			(*types.UserPointTotal)(nil),
			(*types.EngagementEvent)(nil),
			(*types.Period)(nil),
		}

		for _, model := range models {
			_, err := db.NewDropTable().
				Model(model).
				IfExists().
				Cascade().
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to drop table %T: %w", model, err)
			}
		}

		return nil
	})
}
