package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// RemoteStateRepo implements repository.RemoteStateRepository.
type RemoteStateRepo struct{ db *sql.DB }

func NewRemoteStateRepo(db *sql.DB) repository.RemoteStateRepository {
	return &RemoteStateRepo{db: db}
}

func (r *RemoteStateRepo) Get(ctx context.Context, nodeID entity.NodeID) (*entity.RemoteSourceState, error) {
	const query = `
SELECT node_id, login_state, login_failures, bearer_token, last_quick_update, folder_to_category
FROM remote_states
WHERE node_id = $1
LIMIT 1`
	var st entity.RemoteSourceState
	var folderToCategoryJSON []byte
	err := r.db.QueryRowContext(ctx, query, string(nodeID)).Scan(
		&st.NodeID, &st.LoginState, &st.LoginFailures, &st.BearerToken,
		&st.LastQuickUpdate, &folderToCategoryJSON,
	)
	if err == sql.ErrNoRows {
		return entity.NewRemoteSourceState(nodeID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}

	st.FolderToCategory = make(map[entity.NodeID]string)
	st.CategoryToFolder = make(map[string]entity.NodeID)
	if len(folderToCategoryJSON) > 0 {
		var raw map[string]string
		if err := json.Unmarshal(folderToCategoryJSON, &raw); err != nil {
			return nil, fmt.Errorf("Get: unmarshal folder_to_category: %w", err)
		}
		for folder, category := range raw {
			st.MapFolder(entity.NodeID(folder), category)
		}
	}
	return &st, nil
}

func (r *RemoteStateRepo) Save(ctx context.Context, state *entity.RemoteSourceState) error {
	raw := make(map[string]string, len(state.FolderToCategory))
	for folder, category := range state.FolderToCategory {
		raw[string(folder)] = category
	}
	folderToCategoryJSON, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("Save: marshal folder_to_category: %w", err)
	}

	const query = `
INSERT INTO remote_states (node_id, login_state, login_failures, bearer_token, last_quick_update, folder_to_category)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (node_id) DO UPDATE SET
    login_state = EXCLUDED.login_state,
    login_failures = EXCLUDED.login_failures,
    bearer_token = EXCLUDED.bearer_token,
    last_quick_update = EXCLUDED.last_quick_update,
    folder_to_category = EXCLUDED.folder_to_category`
	_, err = r.db.ExecContext(ctx, query,
		string(state.NodeID), state.LoginState, state.LoginFailures, state.BearerToken,
		state.LastQuickUpdate, folderToCategoryJSON,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}
