package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"feedcore/internal/domain/entity"
	"feedcore/internal/repository"
)

// SubscriptionRepo implements repository.SubscriptionRepository.
type SubscriptionRepo struct{ db *sql.DB }

func NewSubscriptionRepo(db *sql.DB) repository.SubscriptionRepository {
	return &SubscriptionRepo{db: db}
}

const subscriptionColumns = `
id, source, original_source, filter_cmd,
update_interval_minutes, default_interval_hint, cache_limit,
auth_username, auth_password, auth_bearer_token,
last_error, last_error_text, discontinued,
flag_auto_enclosure_download, flag_mark_as_read, flag_ignore_comments,
flag_load_item_link, flag_html5_extract,
state_last_modified, state_etag, state_cookies, state_last_poll,
state_last_favicon_poll, state_max_age_minutes, state_syn_frequency,
state_syn_period, state_ttl_minutes, state_homepage_url, state_icon_hint`

func scanSubscription(row interface{ Scan(...any) error }) (*entity.Subscription, error) {
	var sub entity.Subscription
	if err := row.Scan(
		&sub.ID, &sub.Source, &sub.OriginalSource, &sub.FilterCmd,
		&sub.UpdateIntervalMinutes, &sub.DefaultIntervalHint, &sub.CacheLimit,
		&sub.Auth.Username, &sub.Auth.Password, &sub.Auth.BearerToken,
		&sub.LastError, &sub.LastErrorText, &sub.Discontinued,
		&sub.Flags.AutoEnclosureDownload, &sub.Flags.MarkAsRead, &sub.Flags.IgnoreComments,
		&sub.Flags.LoadItemLink, &sub.Flags.HTML5Extract,
		&sub.State.LastModified, &sub.State.ETag, &sub.State.Cookies, &sub.State.LastPoll,
		&sub.State.LastFaviconPoll, &sub.State.MaxAgeMinutes, &sub.State.SynFrequency,
		&sub.State.SynPeriod, &sub.State.TTLMinutes, &sub.State.HomepageURL, &sub.State.IconHint,
	); err != nil {
		return nil, err
	}
	return &sub, nil
}

func (r *SubscriptionRepo) Get(ctx context.Context, id entity.SubscriptionID) (*entity.Subscription, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM subscriptions
WHERE id = $1
LIMIT 1`, subscriptionColumns)
	sub, err := scanSubscription(r.db.QueryRowContext(ctx, query, string(id)))
	if err == sql.ErrNoRows {
		return nil, entity.ErrNodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("Get: %w", err)
	}
	return sub, nil
}

func (r *SubscriptionRepo) ListDue(ctx context.Context) ([]*entity.Subscription, error) {
	query := fmt.Sprintf(`
SELECT %s
FROM subscriptions
WHERE discontinued = FALSE
ORDER BY id ASC`, subscriptionColumns)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ListDue: %w", err)
	}
	defer func() { _ = rows.Close() }()

	subs := make([]*entity.Subscription, 0, 64)
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("ListDue: Scan: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *SubscriptionRepo) Save(ctx context.Context, sub *entity.Subscription) error {
	const query = `
INSERT INTO subscriptions (
    id, source, original_source, filter_cmd,
    update_interval_minutes, default_interval_hint, cache_limit,
    auth_username, auth_password, auth_bearer_token,
    last_error, last_error_text, discontinued,
    flag_auto_enclosure_download, flag_mark_as_read, flag_ignore_comments,
    flag_load_item_link, flag_html5_extract,
    state_last_modified, state_etag, state_cookies, state_last_poll,
    state_last_favicon_poll, state_max_age_minutes, state_syn_frequency,
    state_syn_period, state_ttl_minutes, state_homepage_url, state_icon_hint
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
           $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29)
ON CONFLICT (id) DO UPDATE SET
    source = EXCLUDED.source,
    original_source = EXCLUDED.original_source,
    filter_cmd = EXCLUDED.filter_cmd,
    update_interval_minutes = EXCLUDED.update_interval_minutes,
    default_interval_hint = EXCLUDED.default_interval_hint,
    cache_limit = EXCLUDED.cache_limit,
    auth_username = EXCLUDED.auth_username,
    auth_password = EXCLUDED.auth_password,
    auth_bearer_token = EXCLUDED.auth_bearer_token,
    last_error = EXCLUDED.last_error,
    last_error_text = EXCLUDED.last_error_text,
    discontinued = EXCLUDED.discontinued,
    flag_auto_enclosure_download = EXCLUDED.flag_auto_enclosure_download,
    flag_mark_as_read = EXCLUDED.flag_mark_as_read,
    flag_ignore_comments = EXCLUDED.flag_ignore_comments,
    flag_load_item_link = EXCLUDED.flag_load_item_link,
    flag_html5_extract = EXCLUDED.flag_html5_extract,
    state_last_modified = EXCLUDED.state_last_modified,
    state_etag = EXCLUDED.state_etag,
    state_cookies = EXCLUDED.state_cookies,
    state_last_poll = EXCLUDED.state_last_poll,
    state_last_favicon_poll = EXCLUDED.state_last_favicon_poll,
    state_max_age_minutes = EXCLUDED.state_max_age_minutes,
    state_syn_frequency = EXCLUDED.state_syn_frequency,
    state_syn_period = EXCLUDED.state_syn_period,
    state_ttl_minutes = EXCLUDED.state_ttl_minutes,
    state_homepage_url = EXCLUDED.state_homepage_url,
    state_icon_hint = EXCLUDED.state_icon_hint`
	_, err := r.db.ExecContext(ctx, query,
		string(sub.ID), sub.Source, sub.OriginalSource, sub.FilterCmd,
		sub.UpdateIntervalMinutes, sub.DefaultIntervalHint, int(sub.CacheLimit),
		sub.Auth.Username, sub.Auth.Password, sub.Auth.BearerToken,
		int(sub.LastError), sub.LastErrorText, sub.Discontinued,
		sub.Flags.AutoEnclosureDownload, sub.Flags.MarkAsRead, sub.Flags.IgnoreComments,
		sub.Flags.LoadItemLink, sub.Flags.HTML5Extract,
		sub.State.LastModified, sub.State.ETag, sub.State.Cookies, sub.State.LastPoll,
		sub.State.LastFaviconPoll, sub.State.MaxAgeMinutes, sub.State.SynFrequency,
		sub.State.SynPeriod, sub.State.TTLMinutes, sub.State.HomepageURL, sub.State.IconHint,
	)
	if err != nil {
		return fmt.Errorf("Save: %w", err)
	}
	return nil
}

func (r *SubscriptionRepo) Delete(ctx context.Context, id entity.SubscriptionID) error {
	const query = `DELETE FROM subscriptions WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, string(id))
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	return nil
}
