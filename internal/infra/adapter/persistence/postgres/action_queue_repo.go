package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// ActionQueueRepo implements repository.ActionQueueRepository. Order within
// a node's queue is tracked by a float seq column rather than a shuffled
// position index, so headInsert/tailInsert only ever touch the new row:
// headInsert takes seq one below the current minimum, tailInsert takes seq
// one above the current maximum (spec §4.G, §5 "plain FIFO container").
type ActionQueueRepo struct{ db *sql.DB }

func NewActionQueueRepo(db *sql.DB) repository.ActionQueueRepository {
	return &ActionQueueRepo{db: db}
}

func (r *ActionQueueRepo) Enqueue(ctx context.Context, nodeID entity.NodeID, action entity.Action, headInsert bool) error {
	var seqQuery string
	if headInsert {
		seqQuery = `COALESCE((SELECT MIN(seq) FROM action_queue WHERE node_id = $1), 0) - 1`
	} else {
		seqQuery = `COALESCE((SELECT MAX(seq) FROM action_queue WHERE node_id = $1), 0) + 1`
	}

	query := fmt.Sprintf(`
INSERT INTO action_queue (node_id, seq, kind, item_guid, feed_url, label)
VALUES ($1, (%s), $2, $3, $4, $5)`, seqQuery)
	_, err := r.db.ExecContext(ctx, query,
		string(nodeID), int(action.Kind), action.ItemGUID, action.FeedURL, action.Label,
	)
	if err != nil {
		return fmt.Errorf("Enqueue: %w", err)
	}
	return nil
}

func (r *ActionQueueRepo) Peek(ctx context.Context, nodeID entity.NodeID) (entity.Action, bool, error) {
	const query = `
SELECT kind, item_guid, feed_url, label
FROM action_queue
WHERE node_id = $1
ORDER BY seq ASC
LIMIT 1`
	var action entity.Action
	err := r.db.QueryRowContext(ctx, query, string(nodeID)).Scan(
		&action.Kind, &action.ItemGUID, &action.FeedURL, &action.Label,
	)
	if err == sql.ErrNoRows {
		return entity.Action{}, false, nil
	}
	if err != nil {
		return entity.Action{}, false, fmt.Errorf("Peek: %w", err)
	}
	return action, true, nil
}

func (r *ActionQueueRepo) Pop(ctx context.Context, nodeID entity.NodeID) error {
	const query = `
DELETE FROM action_queue
WHERE id = (
    SELECT id FROM action_queue
    WHERE node_id = $1
    ORDER BY seq ASC
    LIMIT 1
)`
	_, err := r.db.ExecContext(ctx, query, string(nodeID))
	if err != nil {
		return fmt.Errorf("Pop: %w", err)
	}
	return nil
}

func (r *ActionQueueRepo) List(ctx context.Context, nodeID entity.NodeID) ([]entity.Action, error) {
	const query = `
SELECT kind, item_guid, feed_url, label
FROM action_queue
WHERE node_id = $1
ORDER BY seq ASC`
	rows, err := r.db.QueryContext(ctx, query, string(nodeID))
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer func() { _ = rows.Close() }()

	actions := make([]entity.Action, 0, 8)
	for rows.Next() {
		var action entity.Action
		if err := rows.Scan(&action.Kind, &action.ItemGUID, &action.FeedURL, &action.Label); err != nil {
			return nil, fmt.Errorf("List: Scan: %w", err)
		}
		actions = append(actions, action)
	}
	return actions, rows.Err()
}
