package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		// The partial unique index on periods is the storage-level guarantee
		// behind "at most one active period": a concurrent creator loses on
		// the constraint and re-reads the winner's row.
		//
		// The partial unique index on engagement_events makes like events
		// one-row-per-(actor, content); re-applying a like conflicts with
		// the existing row instead of double-counting.
		indexes := []string{
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_periods_single_active
				ON periods (status) WHERE status = 0`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_events_like_toggle
				ON engagement_events (actor_id, content_id, content_type, action_type)
				WHERE action_type = 0`,
			`CREATE INDEX IF NOT EXISTS idx_events_subject_period
				ON engagement_events (subject_user_id, period_id)`,
			`CREATE INDEX IF NOT EXISTS idx_events_period
				ON engagement_events (period_id)`,
			`CREATE INDEX IF NOT EXISTS idx_totals_ranking_order
				ON user_point_totals (period_id, total_points DESC, first_event_at ASC, user_id ASC)`,
			`CREATE INDEX IF NOT EXISTS idx_ranking_entries_position
				ON ranking_entries (period_id, rank_position)`,
			`CREATE INDEX IF NOT EXISTS idx_rewards_user_earned
				ON user_rewards (user_id, earned_at DESC)`,
		}

		for _, index := range indexes {
			_, err := db.NewRaw(index).Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		var dropIndexes strings.Builder

		for _, name := range []string{
			"idx_periods_single_active",
			"idx_events_like_toggle",
			"idx_events_subject_period",
			"idx_events_period",
			"idx_totals_ranking_order",
			"idx_ranking_entries_position",
			"idx_rewards_user_earned",
		} {
			dropIndexes.WriteString(fmt.Sprintf("DROP INDEX IF EXISTS %s;\n", name))
		}

		_, err := db.NewRaw(dropIndexes.String()).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
