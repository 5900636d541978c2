package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

const createLeaderboardEntriesSQL = `
CREATE TABLE IF NOT EXISTS leaderboard_entries (
	board_id         TEXT        NOT NULL,
	entry_key        TEXT        NOT NULL,
	sort_order       TEXT        NOT NULL DEFAULT 'desc',
	score            BIGINT      NOT NULL,
	public_metadata  JSONB       NOT NULL DEFAULT '{}'::jsonb,
	private_metadata JSONB       NOT NULL DEFAULT '{}'::jsonb,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (board_id, entry_key)
)`

var Migrations = migrate.NewMigrations()

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, createLeaderboardEntriesSQL)
			return err
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DROP TABLE IF EXISTS leaderboard_entries`)
			return err
		},
	)
}
