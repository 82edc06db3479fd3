package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// NodeRepo implements repository.NodeRepository. Children is not a stored
// column; it is derived per spec §4.E by querying parent_id, the same way a
// tree is normally modeled relationally rather than denormalised into a
// parent row.
type NodeRepo struct{ db *sql.DB }

func NewNodeRepo(db *sql.DB) repository.NodeRepository {
	return &NodeRepo{db: db}
}

func scanNode(row interface{ Scan(...any) error }) (*entity.Node, error) {
	var node entity.Node
	var parentID sql.NullString
	var subID sql.NullString
	var ruleSetJSON []byte
	if err := row.Scan(
		&node.ID, &node.Title, &parentID, &node.Kind, &subID, &ruleSetJSON,
		&node.ItemCount, &node.UnreadCount, &node.NewCount,
	); err != nil {
		return nil, err
	}
	node.ParentID = entity.NodeID(parentID.String)
	node.SubscriptionID = entity.SubscriptionID(subID.String)
	if len(ruleSetJSON) > 0 {
		var rs entity.RuleSet
		if err := json.Unmarshal(ruleSetJSON, &rs); err != nil {
			return nil, fmt.Errorf("unmarshal rule_set: %w", err)
		}
		node.RuleSet = &rs
	}
	return &node, nil
}

func (r *NodeRepo) Get(ctx context.Context, id entity.NodeID) (*entity.Node, error) {
	const query = `
SELECT id, title, parent_id, kind, subscription_id, rule_set,
       item_count, unread_count, new_count
FROM nodes
WHERE id = $1
LIMIT 1`
	node, err := scanNode(r.db.QueryRowContext(ctx, query, string(id)))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return node, nil
}

func (r *NodeRepo) FindByURL(ctx context.Context, url string) (*entity.Node, error) {
	const query = `
SELECT n.id, n.title, n.parent_id, n.kind, n.subscription_id, n.rule_set,
       n.item_count, n.unread_count, n.new_count
FROM nodes n
INNER JOIN subscriptions s ON s.id = n.subscription_id
WHERE s.source = $1
LIMIT 1`
	node, err := scanNode(r.db.QueryRowContext(ctx, query, url))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByURL: %w", err)
	}
	return node, nil
}

func (r *NodeRepo) Children(ctx context.Context, parent entity.NodeID) ([]*entity.Node, error) {
	const query = `
SELECT id, title, parent_id, kind, subscription_id, rule_set,
       item_count, unread_count, new_count
FROM nodes
WHERE parent_id = $1
ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, query, string(parent))
	if err != nil {
		return nil, fmt.Errorf("Children: %w", err)
	}
	defer func() { _ = rows.Close() }()

	children := make([]*entity.Node, 0, 16)
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, fmt.Errorf("Children: Scan: %w", err)
		}
		children = append(children, node)
	}
	return children, rows.Err()
}

func (r *NodeRepo) Save(ctx context.Context, node *entity.Node) error {
	var ruleSetJSON []byte
	if node.RuleSet != nil {
		var err error
		ruleSetJSON, err = json.Marshal(node.RuleSet)
		if err != nil {
			return fmt.Errorf("Save: marshal rule_set: %w", err)
		}
	}

	var parentID, subID sql.NullString
	if node.ParentID != "" {
		parentID = sql.NullString{String: string(node.ParentID), Valid: true}
	}
	if node.SubscriptionID != "" {
		subID = sql.NullString{String: string(node.SubscriptionID), Valid: true}
	}

	const query = `
INSERT INTO nodes (id, title, parent_id, kind, subscription_id, rule_set,
                    item_count, unread_count, new_count)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
    title           = EXCLUDED.title,
    parent_id       = EXCLUDED.parent_id,
    kind            = EXCLUDED.kind,
    subscription_id = EXCLUDED.subscription_id,
    rule_set        = EXCLUDED.rule_set,
    item_count      = EXCLUDED.item_count,
    unread_count    = EXCLUDED.unread_count,
    new_count       = EXCLUDED.new_count`
	_, err := r.db.ExecContext(ctx, query,
		string(node.ID), node.Title, parentID, int(node.Kind), subID, ruleSetJSON,
		node.ItemCount, node.UnreadCount, node.NewCount,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (r *NodeRepo) Delete(ctx context.Context, id entity.NodeID) error {
	const query = `DELETE FROM nodes WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
