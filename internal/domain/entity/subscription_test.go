package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_EffectiveInterval(t *testing.T) {
	s := &Subscription{}

	s.UpdateIntervalMinutes = UpdateIntervalNever
	assert.Equal(t, UpdateIntervalNever, s.EffectiveInterval(60))

	s.UpdateIntervalMinutes = UpdateIntervalDefault
	assert.Equal(t, 60, s.EffectiveInterval(60))

	s.UpdateIntervalMinutes = 15
	assert.Equal(t, 15, s.EffectiveInterval(60))
}

func TestSubscription_IsDueAt(t *testing.T) {
	now := time.Date(2026, 7, 30, 12, 0, 0, 0, time.UTC)
	s := &Subscription{}
	s.State.LastPoll = now.Add(-61 * time.Minute)

	assert.True(t, s.IsDueAt(now, 60))

	s.State.LastPoll = now.Add(-30 * time.Minute)
	assert.False(t, s.IsDueAt(now, 60))

	assert.False(t, s.IsDueAt(now, 0), "non-positive effective interval never fires (I9)")

	s.Discontinued = true
	s.State.LastPoll = now.Add(-1000 * time.Minute)
	assert.False(t, s.IsDueAt(now, 60), "a discontinued subscription is never due")
}

func TestSubscription_FaviconDueAt(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	s := &Subscription{}
	s.State.LastFaviconPoll = now.Add(-31 * 24 * time.Hour)
	assert.True(t, s.FaviconDueAt(now))

	s.State.LastFaviconPoll = now.Add(-1 * time.Hour)
	assert.False(t, s.FaviconDueAt(now))
}

func TestUpdateState_AdvancePoll_NeverMovesBackward(t *testing.T) {
	st := UpdateState{LastPoll: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)}
	st.AdvancePoll(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2026, st.LastPoll.Year())
	assert.Equal(t, time.January, st.LastPoll.Month())
	assert.Equal(t, 2, st.LastPoll.Day())

	st.AdvancePoll(time.Date(2026, 1, 3, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 3, st.LastPoll.Day())
}

func TestUpdateState_ResetForTitleRefresh(t *testing.T) {
	st := UpdateState{ETag: `"v1"`, LastModified: "Mon, 01 Jan 2026"}
	st.ResetForTitleRefresh()
	assert.Empty(t, st.ETag)
	assert.Empty(t, st.LastModified)
}

func TestSubscription_Validate_RejectsZeroInterval(t *testing.T) {
	s := &Subscription{UpdateIntervalMinutes: 0}
	require.Error(t, s.Validate())
}

func TestUpdateResult_Success(t *testing.T) {
	assert.True(t, (&UpdateResult{HTTPStatus: 200}).Success())
	assert.True(t, (&UpdateResult{HTTPStatus: 304}).Success())
	assert.False(t, (&UpdateResult{HTTPStatus: 404}).Success())
	assert.False(t, (&UpdateResult{HTTPStatus: 500}).Success())
}
