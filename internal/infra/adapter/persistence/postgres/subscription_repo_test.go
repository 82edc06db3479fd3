package postgres_test

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
	"feedcore/internal/infra/adapter/persistence/postgres"
)

func subscriptionRow(s *entity.Subscription) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "source", "original_source", "filter_cmd",
		"update_interval_minutes", "default_interval_hint", "cache_limit",
		"auth_username", "auth_password", "auth_bearer_token",
		"last_error", "last_error_text", "discontinued",
		"flag_auto_enclosure_download", "flag_mark_as_read", "flag_ignore_comments",
		"flag_load_item_link", "flag_html5_extract",
		"state_last_modified", "state_etag", "state_cookies", "state_last_poll",
		"state_last_favicon_poll", "state_max_age_minutes", "state_syn_frequency",
		"state_syn_period", "state_ttl_minutes", "state_homepage_url", "state_icon_hint",
	}).AddRow(
		string(s.ID), s.Source, s.OriginalSource, s.FilterCmd,
		s.UpdateIntervalMinutes, s.DefaultIntervalHint, int(s.CacheLimit),
		s.Auth.Username, s.Auth.Password, s.Auth.BearerToken,
		int(s.LastError), s.LastErrorText, s.Discontinued,
		s.Flags.AutoEnclosureDownload, s.Flags.MarkAsRead, s.Flags.IgnoreComments,
		s.Flags.LoadItemLink, s.Flags.HTML5Extract,
		s.State.LastModified, s.State.ETag, s.State.Cookies, s.State.LastPoll,
		s.State.LastFaviconPoll, s.State.MaxAgeMinutes, s.State.SynFrequency,
		s.State.SynPeriod, s.State.TTLMinutes, s.State.HomepageURL, s.State.IconHint,
	)
}

func TestSubscriptionRepo_Get(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	want := &entity.Subscription{
		ID:     "s1",
		Source: "https://example.com/feed.xml",
		State:  entity.UpdateState{LastPoll: time.Now().Truncate(time.Second)},
	}
	mock.ExpectQuery(`FROM subscriptions`).
		WithArgs("s1").
		WillReturnRows(subscriptionRow(want))

	repo := postgres.NewSubscriptionRepo(db)
	got, err := repo.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, want.Source, got.Source)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepo_Get_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`FROM subscriptions`).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	repo := postgres.NewSubscriptionRepo(db)
	_, err = repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, entity.ErrNodeNotFound)
}

func TestSubscriptionRepo_ListDue_ExcludesDiscontinued(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery(`WHERE discontinued = FALSE`).
		WillReturnRows(subscriptionRow(&entity.Subscription{ID: "s1", Source: "u"}))

	repo := postgres.NewSubscriptionRepo(db)
	got, err := repo.ListDue(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSubscriptionRepo_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO subscriptions`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSubscriptionRepo(db)
	err = repo.Save(context.Background(), &entity.Subscription{ID: "s1", Source: "u"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSubscriptionRepo_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM subscriptions WHERE id = $1`)).
		WithArgs("s1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := postgres.NewSubscriptionRepo(db)
	require.NoError(t, repo.Delete(context.Background(), "s1"))
	require.NoError(t, mock.ExpectationsWereMet())
}
