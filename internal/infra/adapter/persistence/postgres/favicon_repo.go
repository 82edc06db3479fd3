package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// FaviconRepo implements repository.FaviconRepository.
type FaviconRepo struct{ db *sql.DB }

func NewFaviconRepo(db *sql.DB) repository.FaviconRepository {
	return &FaviconRepo{db: db}
}

func (r *FaviconRepo) Get(ctx context.Context, nodeID entity.NodeID) (*entity.Favicon, bool, error) {
	const query = `
SELECT node_id, data, content_type, source_url, fetched_at
FROM favicons
WHERE node_id = $1
LIMIT 1`
	var icon entity.Favicon
	err := r.db.QueryRowContext(ctx, query, string(nodeID)).Scan(
		&icon.NodeID, &icon.Data, &icon.ContentType, &icon.SourceURL, &icon.FetchedAt,
	)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("Get: %w", err)
	}
	return &icon, true, nil
}

func (r *FaviconRepo) Save(ctx context.Context, icon *entity.Favicon) error {
	const query = `
INSERT INTO favicons (node_id, data, content_type, source_url, fetched_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (node_id) DO UPDATE SET
    data = EXCLUDED.data,
    content_type = EXCLUDED.content_type,
    source_url = EXCLUDED.source_url,
    fetched_at = EXCLUDED.fetched_at`
	_, err := r.db.ExecContext(ctx, query,
		string(icon.NodeID), icon.Data, icon.ContentType, icon.SourceURL, icon.FetchedAt,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (r *FaviconRepo) Delete(ctx context.Context, nodeID entity.NodeID) error {
	const query = `DELETE FROM favicons WHERE node_id = $1`
	_, err := r.db.ExecContext(ctx, query, string(nodeID))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
