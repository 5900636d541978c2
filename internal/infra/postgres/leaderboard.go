package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"feedbacker-service/internal/domain"
)

// Leaderboard stores leaderboard entries in Postgres. Private metadata sits in
// its own column and is never returned by Entries.
type Leaderboard struct {
	pool *pgxpool.Pool
}

func NewLeaderboard(pool *pgxpool.Pool) *Leaderboard {
	return &Leaderboard{pool: pool}
}

// UpsertEntry inserts or replaces the entry keyed by (board, key).
func (l *Leaderboard) UpsertEntry(ctx context.Context, entry domain.LeaderboardEntry) error {
	public, err := marshalMetadata(entry.PublicMetadata)
	if err != nil {
		return fmt.Errorf("marshal public metadata: %w", err)
	}
	private, err := marshalMetadata(entry.PrivateMetadata)
	if err != nil {
		return fmt.Errorf("marshal private metadata: %w", err)
	}
	_, err = l.pool.Exec(ctx, `
INSERT INTO leaderboard_entries (board_id, entry_key, sort_order, score, public_metadata, private_metadata)
VALUES ($1, $2, $3, $4, $5::jsonb, $6::jsonb)
ON CONFLICT (board_id, entry_key) DO UPDATE SET
	sort_order = EXCLUDED.sort_order,
	score = EXCLUDED.score,
	public_metadata = EXCLUDED.public_metadata,
	private_metadata = EXCLUDED.private_metadata,
	updated_at = now()`,
		entry.BoardID, entry.Key, string(entry.Order), entry.Score, string(public), string(private))
	if err != nil {
		return fmt.Errorf("upsert leaderboard entry: %w", err)
	}
	return nil
}

// Entries lists the public side of a board in its sort order.
func (l *Leaderboard) Entries(ctx context.Context, boardID string) ([]domain.LeaderboardEntry, error) {
	rows, err := l.pool.Query(ctx, `
SELECT entry_key, sort_order, score, public_metadata
FROM leaderboard_entries
WHERE board_id = $1
ORDER BY CASE WHEN sort_order = 'asc' THEN score END ASC,
         CASE WHEN sort_order <> 'asc' THEN score END DESC,
         entry_key`, boardID)
	if err != nil {
		return nil, fmt.Errorf("list leaderboard entries: %w", err)
	}
	defer rows.Close()

	var out []domain.LeaderboardEntry
	for rows.Next() {
		var (
			e     domain.LeaderboardEntry
			order string
			raw   []byte
		)
		if err := rows.Scan(&e.Key, &order, &e.Score, &raw); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.BoardID = boardID
		e.Order = domain.SortOrder(order)
		if err := json.Unmarshal(raw, &e.PublicMetadata); err != nil {
			return nil, fmt.Errorf("unmarshal public metadata: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Count returns the number of entries on a board.
func (l *Leaderboard) Count(ctx context.Context, boardID string) (int, error) {
	var n int
	if err := l.pool.QueryRow(ctx, `SELECT count(*) FROM leaderboard_entries WHERE board_id = $1`, boardID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count leaderboard entries: %w", err)
	}
	return n, nil
}

func marshalMetadata(m map[string]any) ([]byte, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}
