package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// ItemRepo implements repository.ItemRepository.
type ItemRepo struct{ db *sql.DB }

func NewItemRepo(db *sql.DB) repository.ItemRepository {
	return &ItemRepo{db: db}
}

const itemColumns = `
id, source_id, source_url, node_id, subscription_id,
title, description, author, published, updated, created,
read, flagged, new, popup, content_updated, metadata,
has_enclosure, enclosure_url`

func scanItem(row interface{ Scan(...any) error }) (*entity.Item, error) {
	var it entity.Item
	var metadataJSON []byte
	if err := row.Scan(
		&it.ID, &it.SourceID, &it.SourceURL, &it.NodeID, &it.SubscriptionID,
		&it.Title, &it.Description, &it.Author, &it.Published, &it.Updated, &it.Created,
		&it.Read, &it.Flagged, &it.New, &it.Popup, &it.ContentUpdated, &metadataJSON,
		&it.HasEnclosure, &it.EnclosureURL,
	); err != nil {
		return nil, err
	}
	if len(metadataJSON) > 0 {
		if err := json.Unmarshal(metadataJSON, &it.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal metadata: %w", err)
		}
	}
	return &it, nil
}

func (r *ItemRepo) FindMatch(ctx context.Context, key repository.MatchKey) (*entity.Item, error) {
	var query string
	var args []any
	if key.SourceID != "" {
		query = fmt.Sprintf(`
SELECT %s
FROM items
WHERE subscription_id = $1 AND source_id = $2
LIMIT 1`, itemColumns)
		args = []any{string(key.SubscriptionID), key.SourceID}
	} else {
		query = fmt.Sprintf(`
SELECT %s
FROM items
WHERE subscription_id = $1 AND title = $2 AND source_url = $3
LIMIT 1`, itemColumns)
		args = []any{string(key.SubscriptionID), key.Title, key.SourceURL}
	}

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("FindMatch: %w", err)
	}
	return item, nil
}

func (r *ItemRepo) Insert(ctx context.Context, item *entity.Item) (entity.ItemID, error) {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return 0, fmt.Errorf("Insert: marshal metadata: %w", err)
	}

	const query = `
INSERT INTO items (
    source_id, source_url, node_id, subscription_id,
    title, description, author, published, updated, created,
    read, flagged, new, popup, content_updated, metadata,
    has_enclosure, enclosure_url
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
RETURNING id`
	err = r.db.QueryRowContext(ctx, query,
		item.SourceID, item.SourceURL, string(item.NodeID), string(item.SubscriptionID),
		item.Title, item.Description, item.Author, item.Published, item.Updated, item.Created,
		item.Read, item.Flagged, item.New, item.Popup, item.ContentUpdated, metadataJSON,
		item.HasEnclosure, item.EnclosureURL,
	).Scan(&item.ID)
	if err != nil {
		return 0, fmt.Errorf("Insert: %w", err)
	}
	return item.ID, nil
}

func (r *ItemRepo) Update(ctx context.Context, item *entity.Item) error {
	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("Update: marshal metadata: %w", err)
	}

	const query = `
UPDATE items SET
    source_id = $1, source_url = $2, node_id = $3, subscription_id = $4,
    title = $5, description = $6, author = $7, published = $8, updated = $9,
    read = $10, flagged = $11, new = $12, popup = $13, content_updated = $14,
    metadata = $15, has_enclosure = $16, enclosure_url = $17
WHERE id = $18`
	res, err := r.db.ExecContext(ctx, query,
		item.SourceID, item.SourceURL, string(item.NodeID), string(item.SubscriptionID),
		item.Title, item.Description, item.Author, item.Published, item.Updated,
		item.Read, item.Flagged, item.New, item.Popup, item.ContentUpdated,
		metadataJSON, item.HasEnclosure, item.EnclosureURL, item.ID,
	)
	if err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("Update: no rows affected")
	}
	return nil
}

func (r *ItemRepo) ListBySubscription(ctx context.Context, subID entity.SubscriptionID) ([]*entity.Item, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM items
WHERE subscription_id = $1
ORDER BY published ASC`, itemColumns)
	rows, err := r.db.QueryContext(ctx, query, string(subID))
	if err != nil {
		return nil, fmt.Errorf("ListBySubscription: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.Item, 0, 64)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ListBySubscription: Scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// DeleteOldestReadUnflagged implements the cache-limit trim (spec §4.C, I3):
// oldest Published first, among rows that are read and not flagged.
func (r *ItemRepo) DeleteOldestReadUnflagged(ctx context.Context, subID entity.SubscriptionID, count int) (int, error) {
	const query = `
DELETE FROM items
WHERE id IN (
    SELECT id FROM items
    WHERE subscription_id = $1 AND read = TRUE AND flagged = FALSE
    ORDER BY published ASC
    LIMIT $2
)`
	res, err := r.db.ExecContext(ctx, query, string(subID), count)
	if err != nil {
		return 0, fmt.Errorf("DeleteOldestReadUnflagged: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("DeleteOldestReadUnflagged: RowsAffected: %w", err)
	}
	return int(n), nil
}

func (r *ItemRepo) CountBySubscription(ctx context.Context, subID entity.SubscriptionID) (total, unread int, err error) {
	const query = `
SELECT COUNT(*), COUNT(*) FILTER (WHERE read = FALSE)
FROM items
WHERE subscription_id = $1`
	err = r.db.QueryRowContext(ctx, query, string(subID)).Scan(&total, &unread)
	if err != nil {
		return 0, 0, fmt.Errorf("CountBySubscription: %w", err)
	}
	return total, unread, nil
}

func (r *ItemRepo) Delete(ctx context.Context, id entity.ItemID) error {
	const query = `DELETE FROM items WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, int64(id))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}

func (r *ItemRepo) ListAll(ctx context.Context) ([]*entity.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM items ORDER BY id ASC`, itemColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListAll: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*entity.Item, 0, 256)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("ListAll: Scan: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
