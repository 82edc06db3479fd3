package db

import "database/sql"

// MigrateUp creates the feed-list/subscription/item schema (SPEC_FULL §3,
// §4.E-§4.J). Every statement is idempotent, so MigrateUp is safe to call on
// every process start.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS nodes (
    id              TEXT PRIMARY KEY,
    title           TEXT NOT NULL,
    parent_id       TEXT REFERENCES nodes(id),
    kind            SMALLINT NOT NULL,
    subscription_id TEXT,
    rule_set        JSONB,
    item_count      INT NOT NULL DEFAULT 0,
    unread_count    INT NOT NULL DEFAULT 0,
    new_count       INT NOT NULL DEFAULT 0
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS subscriptions (
    id                            TEXT PRIMARY KEY,
    source                        TEXT NOT NULL,
    original_source               TEXT NOT NULL DEFAULT '',
    filter_cmd                    TEXT NOT NULL DEFAULT '',
    update_interval_minutes       INT NOT NULL DEFAULT -1,
    default_interval_hint         INT NOT NULL DEFAULT 0,
    cache_limit                   INT NOT NULL DEFAULT 0,
    auth_username                 TEXT NOT NULL DEFAULT '',
    auth_password                 TEXT NOT NULL DEFAULT '',
    auth_bearer_token             TEXT NOT NULL DEFAULT '',
    last_error                    SMALLINT NOT NULL DEFAULT 0,
    last_error_text               TEXT NOT NULL DEFAULT '',
    discontinued                  BOOLEAN NOT NULL DEFAULT FALSE,
    flag_auto_enclosure_download  BOOLEAN NOT NULL DEFAULT FALSE,
    flag_mark_as_read             BOOLEAN NOT NULL DEFAULT FALSE,
    flag_ignore_comments          BOOLEAN NOT NULL DEFAULT FALSE,
    flag_load_item_link           BOOLEAN NOT NULL DEFAULT FALSE,
    flag_html5_extract            BOOLEAN NOT NULL DEFAULT FALSE,
    state_last_modified           TEXT NOT NULL DEFAULT '',
    state_etag                    TEXT NOT NULL DEFAULT '',
    state_cookies                 TEXT NOT NULL DEFAULT '',
    state_last_poll                TIMESTAMPTZ,
    state_last_favicon_poll        TIMESTAMPTZ,
    state_max_age_minutes          INT NOT NULL DEFAULT 0,
    state_syn_frequency             INT NOT NULL DEFAULT 0,
    state_syn_period                INT NOT NULL DEFAULT 0,
    state_ttl_minutes               INT NOT NULL DEFAULT 0,
    state_homepage_url              TEXT NOT NULL DEFAULT '',
    state_icon_hint                 TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS items (
    id              SERIAL PRIMARY KEY,
    source_id       TEXT NOT NULL DEFAULT '',
    source_url      TEXT NOT NULL DEFAULT '',
    node_id         TEXT NOT NULL REFERENCES nodes(id),
    subscription_id TEXT NOT NULL,
    title           TEXT NOT NULL DEFAULT '',
    description     TEXT NOT NULL DEFAULT '',
    author          TEXT NOT NULL DEFAULT '',
    published       TIMESTAMPTZ,
    updated         TIMESTAMPTZ,
    created         TIMESTAMPTZ NOT NULL DEFAULT now(),
    read            BOOLEAN NOT NULL DEFAULT FALSE,
    flagged         BOOLEAN NOT NULL DEFAULT FALSE,
    new             BOOLEAN NOT NULL DEFAULT TRUE,
    popup           BOOLEAN NOT NULL DEFAULT FALSE,
    content_updated BOOLEAN NOT NULL DEFAULT FALSE,
    metadata        JSONB,
    has_enclosure   BOOLEAN NOT NULL DEFAULT FALSE,
    enclosure_url   TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS remote_states (
    node_id            TEXT PRIMARY KEY,
    login_state        SMALLINT NOT NULL DEFAULT 0,
    login_failures     INT NOT NULL DEFAULT 0,
    bearer_token       TEXT NOT NULL DEFAULT '',
    last_quick_update  TIMESTAMPTZ,
    folder_to_category JSONB
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS action_queue (
    id        SERIAL PRIMARY KEY,
    node_id   TEXT NOT NULL,
    seq       DOUBLE PRECISION NOT NULL,
    kind      SMALLINT NOT NULL,
    item_guid TEXT NOT NULL DEFAULT '',
    feed_url  TEXT NOT NULL DEFAULT '',
    label     TEXT NOT NULL DEFAULT ''
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS search_folder_views (
    node_id  TEXT PRIMARY KEY,
    item_ids JSONB
)`); err != nil {
		return err
	}

	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS favicons (
    node_id      TEXT PRIMARY KEY,
    data         BYTEA NOT NULL,
    content_type TEXT NOT NULL DEFAULT '',
    source_url   TEXT NOT NULL DEFAULT '',
    fetched_at   TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_nodes_parent_id ON nodes(parent_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_subscription_id ON items(subscription_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_published ON items(published DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_items_node_id ON items(node_id)`,
		`CREATE INDEX IF NOT EXISTS idx_subscriptions_discontinued ON subscriptions(discontinued) WHERE discontinued = FALSE`,
		`CREATE INDEX IF NOT EXISTS idx_action_queue_node_seq ON action_queue(node_id, seq)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	return nil
}

// MigrateDown drops the schema MigrateUp creates, in FK-safe order.
// Use with caution: this deletes all data.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP TABLE IF EXISTS favicons CASCADE`,
		`DROP TABLE IF EXISTS search_folder_views CASCADE`,
		`DROP TABLE IF EXISTS action_queue CASCADE`,
		`DROP TABLE IF EXISTS remote_states CASCADE`,
		`DROP TABLE IF EXISTS settings CASCADE`,
		`DROP TABLE IF EXISTS items CASCADE`,
		`DROP TABLE IF EXISTS subscriptions CASCADE`,
		`DROP TABLE IF EXISTS nodes CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
