package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// SearchFolderRepo implements repository.SearchFolderRepository.
type SearchFolderRepo struct{ db *sql.DB }

func NewSearchFolderRepo(db *sql.DB) repository.SearchFolderRepository {
	return &SearchFolderRepo{db: db}
}

func (r *SearchFolderRepo) Get(ctx context.Context, nodeID entity.NodeID) (*entity.SearchFolderView, error) {
	const query = `SELECT item_ids FROM search_folder_views WHERE node_id = $1 LIMIT 1`
	var itemIDsJSON []byte
	err := r.db.QueryRowContext(ctx, query, string(nodeID)).Scan(&itemIDsJSON)
	if err == sql.ErrNoRows {
		return &entity.SearchFolderView{NodeID: nodeID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	view := &entity.SearchFolderView{NodeID: nodeID}
	if len(itemIDsJSON) > 0 {
		if err := json.Unmarshal(itemIDsJSON, &view.ItemIDs); err != nil {
			return nil, fmt.Errorf("Get: unmarshal item_ids: %w", err)
		}
	}
	return view, nil
}

func (r *SearchFolderRepo) Save(ctx context.Context, view *entity.SearchFolderView) error {
	itemIDsJSON, err := json.Marshal(view.ItemIDs)
	if err != nil {
		return fmt.Errorf("Save: marshal item_ids: %w", err)
	}

	const query = `
INSERT INTO search_folder_views (node_id, item_ids)
VALUES ($1, $2)
ON CONFLICT (node_id) DO UPDATE SET item_ids = EXCLUDED.item_ids`
	_, err = r.db.ExecContext(ctx, query, string(view.NodeID), itemIDsJSON)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
