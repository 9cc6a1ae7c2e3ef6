package feed_test

import (
	"fmt"
	"testing"

	"github.com/duduji/api/internal/models"
	"github.com/duduji/api/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func seedGroup(t *testing.T, env *testutils.TestEnv, memberIDs ...string) *models.Group {
	t.Helper()

	group := models.Group{Name: "Morning Run", InviteCode: uuid.NewString()}
	assert.NoError(t, env.DB.Create(&group).Error)

	for i, id := range memberIDs {
		assert.NoError(t, env.DB.Create(&models.GroupUser{UserID: id, GroupID: group.ID, Order: i}).Error)
	}
	return &group
}

func TestFeeds(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "alice@example.com", "password123", "alice")
	bob := testutils.CreateTestUser(t, env.DB, "bob@example.com", "password123", "bob")
	outsider := testutils.CreateTestUser(t, env.DB, "outsider@example.com", "password123", "outsider")
	group := seedGroup(t, env, alice.ID, bob.ID)
	otherGroup := seedGroup(t, env, outsider.ID)

	done := models.Dazim{UserID: bob.ID, GroupID: group.ID, Content: "read 20 pages", IsSuccess: true}
	assert.NoError(t, env.DB.Create(&done).Error)
	pending := models.Dazim{UserID: alice.ID, GroupID: group.ID, Content: "run 5k"}
	assert.NoError(t, env.DB.Create(&pending).Error)
	foreign := models.Dazim{UserID: outsider.ID, GroupID: otherGroup.ID, Content: "meditate", IsSuccess: true}
	assert.NoError(t, env.DB.Create(&foreign).Error)

	assert.NoError(t, env.DB.Create(&models.DazimComment{DazimID: done.ID, UserID: alice.ID, Content: "nice"}).Error)
	assert.NoError(t, env.DB.Create(&models.DazimReaction{DazimID: done.ID, UserID: alice.ID, ReactionType: models.ReactionFire}).Error)
	assert.NoError(t, env.DB.Create(&models.DazimReaction{DazimID: done.ID, UserID: bob.ID, ReactionType: models.ReactionHeart}).Error)

	t.Run("Success - Only successful dazims from own groups", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/feeds", nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.([]interface{})
		assert.Len(t, data, 1)

		entry := data[0].(map[string]interface{})
		assert.Equal(t, done.ID, entry["id"])
		assert.Equal(t, float64(1), entry["commentCount"])
		assert.Equal(t, float64(2), entry["reactionCount"])
		assert.Equal(t, bob.ID, entry["user"].(map[string]interface{})["id"])
	})

	t.Run("Success - No groups means empty feed", func(t *testing.T) {
		loner := testutils.CreateTestUser(t, env.DB, "loner@example.com", "password123", "loner")

		resp, err := testutils.MakeRequest(env.App, "GET", "/feeds", nil, env.AccessToken(t, loner.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.([]interface{})
		assert.Empty(t, data)
	})

	t.Run("Success - Detail carries per-type counts", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/feeds/"+done.ID, nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(1), data["fireCount"])
		assert.Equal(t, float64(1), data["heartCount"])
		assert.Equal(t, float64(0), data["starCount"])
		assert.Equal(t, float64(0), data["congratulationsCount"])
		assert.Equal(t, float64(0), data["musicCount"])
	})

	t.Run("Error - Unknown feed", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/feeds/"+uuid.NewString(), nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Detail of a foreign group's dazim reads as missing", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/feeds/"+done.ID, nil, env.AccessToken(t, outsider.ID))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Nil(t, result.Data, "no content leaks to non-members")
	})
}

func TestToggleReaction(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "alice@example.com", "password123", "alice")
	bob := testutils.CreateTestUser(t, env.DB, "bob@example.com", "password123", "bob")
	outsider := testutils.CreateTestUser(t, env.DB, "outsider@example.com", "password123", "outsider")
	group := seedGroup(t, env, alice.ID, bob.ID)

	dazim := models.Dazim{UserID: alice.ID, GroupID: group.ID, Content: "run 5k", IsSuccess: true}
	assert.NoError(t, env.DB.Create(&dazim).Error)

	url := fmt.Sprintf("/dazims/%s/reaction-toggle", dazim.ID)
	body := map[string]interface{}{"reactionType": "FIRE"}

	t.Run("Success - First toggle creates", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", url, body, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(1), data["count"])
		assert.Equal(t, true, data["isMeReactionType"])
	})

	t.Run("Success - Second toggle removes", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", url, body, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(0), data["count"])
		assert.Equal(t, false, data["isMeReactionType"])

		var count int64
		env.DB.Model(&models.DazimReaction{}).Where("dazim_id = ?", dazim.ID).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("Success - Different types count independently", func(t *testing.T) {
		fire := map[string]interface{}{"reactionType": "FIRE"}
		star := map[string]interface{}{"reactionType": "STAR"}

		_, err := testutils.MakeRequest(env.App, "POST", url, fire, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		_, err = testutils.MakeRequest(env.App, "POST", url, fire, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)

		resp, err := testutils.MakeRequest(env.App, "POST", url, star, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, float64(1), data["count"], "star count is independent of the two fires")
	})

	t.Run("Error - Invalid reaction type", func(t *testing.T) {
		bad := map[string]interface{}{"reactionType": "THUMBS_UP"}

		resp, err := testutils.MakeRequest(env.App, "POST", url, bad, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})

	t.Run("Error - Non-member", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", url, body, env.AccessToken(t, outsider.ID))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	t.Run("Error - Unknown dazim", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims/"+uuid.NewString()+"/reaction-toggle", body, env.AccessToken(t, bob.ID))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})
}
