package remote

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"feedcore/internal/domain/entity"
)

func testGoogleReaderDialect() *GoogleReaderDialect {
	return NewGoogleReaderDialectWithEndpoints(Endpoints{
		Name:                "google-reader-api",
		LoginURL:            "https://login.example/ClientLogin",
		TokenURL:            "https://api.example/token",
		EditTagURL:          "https://api.example/edit-tag",
		AddSubscriptionURL:  "https://api.example/subscription/edit",
		RemoveSubURL:        "https://api.example/subscription/edit",
		SubscriptionListURL: "https://api.example/subscription/list",
	})
}

func TestGoogleReaderDialect_ParseLoginResult(t *testing.T) {
	d := testGoogleReaderDialect()
	result := &entity.UpdateResult{HTTPStatus: http.StatusOK, Data: []byte("SID=xyz\nLSID=abc\nAuth=sometoken\n")}
	token, err := d.ParseLoginResult(result)
	require.NoError(t, err)
	assert.Equal(t, "sometoken", token)
}

func TestGoogleReaderDialect_ParseLoginResultRejected(t *testing.T) {
	d := testGoogleReaderDialect()
	_, err := d.ParseLoginResult(&entity.UpdateResult{HTTPStatus: http.StatusForbidden})
	assert.ErrorIs(t, err, ErrLoginFailed)
}

func TestGoogleReaderDialect_EditRequestMarkUnreadTags(t *testing.T) {
	d := testGoogleReaderDialect()
	action := entity.Action{Kind: entity.ActionMarkUnread, ItemGUID: "1", FeedURL: "https://example.com/feed.xml"}
	req, err := d.EditRequest(action, "session", "tok")
	require.NoError(t, err)
	assert.Contains(t, req.PostData, "a=")
	assert.Contains(t, req.PostData, "r=")
	assert.Equal(t, "GoogleLogin auth=session", req.AuthHeaderValue)
}

func TestGoogleReaderDialect_EditRequestSubscribe(t *testing.T) {
	d := testGoogleReaderDialect()
	action := entity.Action{Kind: entity.ActionSubscribe, FeedURL: "https://example.com/new.xml"}
	req, err := d.EditRequest(action, "session", "tok")
	require.NoError(t, err)
	assert.Equal(t, d.endpoints.AddSubscriptionURL, req.Source)
	assert.Contains(t, req.PostData, "ac=subscribe")
}

func TestGoogleReaderDialect_EditSucceeded(t *testing.T) {
	d := testGoogleReaderDialect()
	assert.True(t, d.EditSucceeded(&entity.UpdateResult{HTTPStatus: http.StatusOK, Data: []byte("OK")}))
	assert.False(t, d.EditSucceeded(&entity.UpdateResult{HTTPStatus: http.StatusOK, Data: []byte("Error=BadToken")}))
}

func TestStreamItemID_GuessesFeedPrefixFromURL(t *testing.T) {
	assert.Contains(t, streamItemID("https://example.com/feed.xml", "1"), "/feed/")
	assert.Contains(t, streamItemID("someuser", "1"), "/user/")
}
