package server_test

import (
	"testing"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/testutils"

	"github.com/stretchr/testify/assert"
)

func TestHealth(t *testing.T) {
	env := testutils.SetupTestApp(t)

	resp, err := testutils.MakeRequest(env.App, "GET", "/health", nil, "")
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var body map[string]interface{}
	testutils.ParseResponse(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

// TestDailyCheckInFlow walks the happy path across the whole surface: create
// a group, join it by invite code, post a commitment, react to it, and
// complete it with a photo.
func TestDailyCheckInFlow(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "alice@example.com", "password123", "alice")
	bob := testutils.CreateTestUser(t, env.DB, "bob@example.com", "password123", "bob")
	aliceToken := env.AccessToken(t, alice.ID)
	bobToken := env.AccessToken(t, bob.ID)

	// Alice creates the group.
	resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/groups",
		map[string]string{"name": "Morning Run"},
		map[string]string{"thumbnail": "group.png"},
		aliceToken)
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Code)

	var created testutils.StandardResponse
	testutils.ParseResponse(t, resp, &created)
	groupID := created.Data.(map[string]interface{})["id"].(string)

	var group models.Group
	assert.NoError(t, env.DB.First(&group, "id = ?", groupID).Error)

	// Bob joins by invite code.
	resp, err = testutils.MakeRequest(env.App, "POST", "/groups/enter",
		map[string]interface{}{"inviteCode": group.InviteCode}, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 204, resp.Code)

	// Alice posts today's dazim.
	resp, err = testutils.MakeRequest(env.App, "POST", "/dazims",
		map[string]interface{}{"groupId": groupID, "content": "run 5k"}, aliceToken)
	assert.NoError(t, err)
	assert.Equal(t, 201, resp.Code)

	var dazim models.Dazim
	assert.NoError(t, env.DB.First(&dazim, "user_id = ? AND group_id = ?", alice.ID, groupID).Error)

	// Bob cheers but cannot complete Alice's dazim.
	resp, err = testutils.MakeRequest(env.App, "POST", "/dazims/"+dazim.ID+"/reaction-toggle",
		map[string]interface{}{"reactionType": "FIRE"}, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	resp, err = testutils.MakeMultipartRequest(env.App, "POST", "/dazims/"+dazim.ID+"/complete",
		nil, map[string]string{"photo": "proof.jpg"}, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 403, resp.Code)

	// Alice completes it with a photo.
	resp, err = testutils.MakeMultipartRequest(env.App, "POST", "/dazims/"+dazim.ID+"/complete",
		nil, map[string]string{"photo": "proof.jpg"}, aliceToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	// The completed dazim now shows up in Bob's feed.
	resp, err = testutils.MakeRequest(env.App, "GET", "/feeds", nil, bobToken)
	assert.NoError(t, err)
	assert.Equal(t, 200, resp.Code)

	var feeds testutils.StandardResponse
	testutils.ParseResponse(t, resp, &feeds)
	entries := feeds.Data.([]interface{})
	assert.Len(t, entries, 1)
	assert.Equal(t, dazim.ID, entries[0].(map[string]interface{})["id"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	env := testutils.SetupTestApp(t)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/user/me"},
		{"GET", "/groups"},
		{"GET", "/dazims?groupId=x"},
		{"GET", "/feeds"},
		{"DELETE", "/comments/some-id"},
	}

	for _, r := range routes {
		resp, err := testutils.MakeRequest(env.App, r.method, r.path, nil, "")
		assert.NoError(t, err)
		assert.Equal(t, 401, resp.Code, "%s %s must require auth", r.method, r.path)
	}
}
