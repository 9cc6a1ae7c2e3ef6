package dazim_test

import (
	"testing"
	"time"

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

func TestCreateDazim(t *testing.T) {
	env := testutils.SetupTestApp(t)
	member := testutils.CreateTestUser(t, env.DB, "member@example.com", "password123", "member")
	outsider := testutils.CreateTestUser(t, env.DB, "outsider@example.com", "password123", "outsider")
	group := seedGroup(t, env, member.ID)

	t.Run("Success", func(t *testing.T) {
		body := map[string]interface{}{"groupId": group.ID, "content": "run 5k before work"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims", body, env.AccessToken(t, member.ID))
		assert.NoError(t, err)
		assert.Equal(t, 201, resp.Code)

		var dazim models.Dazim
		err = env.DB.First(&dazim, "user_id = ? AND group_id = ?", member.ID, group.ID).Error
		assert.NoError(t, err)
		assert.Equal(t, "run 5k before work", dazim.Content)
		assert.False(t, dazim.IsSuccess)
	})

	t.Run("Error - Second dazim same day", func(t *testing.T) {
		body := map[string]interface{}{"groupId": group.ID, "content": "another one"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims", body, env.AccessToken(t, member.ID))
		assert.NoError(t, err)
		assert.Equal(t, 409, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "Already Created Dazim today", result.Error.Message)
	})

	t.Run("Error - Non-member", func(t *testing.T) {
		body := map[string]interface{}{"groupId": group.ID, "content": "sneaking in"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims", body, env.AccessToken(t, outsider.ID))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	t.Run("Error - Unknown group", func(t *testing.T) {
		body := map[string]interface{}{"groupId": uuid.NewString(), "content": "ghost group"}

		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims", body, env.AccessToken(t, member.ID))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Empty content", func(t *testing.T) {
		body := map[string]interface{}{"groupId": group.ID, "content": ""}

		resp, err := testutils.MakeRequest(env.App, "POST", "/dazims", body, env.AccessToken(t, member.ID))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})
}

func TestListDazims(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "alice@example.com", "password123", "alice")
	bob := testutils.CreateTestUser(t, env.DB, "bob@example.com", "password123", "bob")
	outsider := testutils.CreateTestUser(t, env.DB, "outsider@example.com", "password123", "outsider")
	group := seedGroup(t, env, alice.ID, bob.ID)

	assert.NoError(t, env.DB.Create(&models.Dazim{UserID: bob.ID, GroupID: group.ID, Content: "read 20 pages"}).Error)
	assert.NoError(t, env.DB.Create(&models.Dazim{UserID: alice.ID, GroupID: group.ID, Content: "run 5k"}).Error)

	t.Run("Success - Caller's dazim first", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/dazims?groupId="+group.ID, nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, true, data["isCreatedMyDazim"])

		list := data["data"].([]interface{})
		assert.Len(t, list, 2)
		first := list[0].(map[string]interface{})
		assert.Equal(t, true, first["user"].(map[string]interface{})["isMe"])
		assert.Equal(t, "run 5k", first["content"])
	})

	t.Run("Success - Empty day", func(t *testing.T) {
		yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

		resp, err := testutils.MakeRequest(env.App, "GET", "/dazims?groupId="+group.ID+"&date="+yesterday, nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		data := result.Data.(map[string]interface{})
		assert.Equal(t, false, data["isCreatedMyDazim"])
	})

	t.Run("Error - Non-member", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/dazims?groupId="+group.ID, nil, env.AccessToken(t, outsider.ID))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)
	})

	t.Run("Error - Bad date", func(t *testing.T) {
		resp, err := testutils.MakeRequest(env.App, "GET", "/dazims?groupId="+group.ID+"&date=nope", nil, env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})
}

func TestCompleteDazim(t *testing.T) {
	env := testutils.SetupTestApp(t)
	alice := testutils.CreateTestUser(t, env.DB, "alice@example.com", "password123", "alice")
	bob := testutils.CreateTestUser(t, env.DB, "bob@example.com", "password123", "bob")
	group := seedGroup(t, env, alice.ID, bob.ID)

	dazim := models.Dazim{UserID: alice.ID, GroupID: group.ID, Content: "run 5k"}
	assert.NoError(t, env.DB.Create(&dazim).Error)

	t.Run("Error - Fellow member is not the writer", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/dazims/"+dazim.ID+"/complete",
			nil,
			map[string]string{"photo": "proof.jpg"},
			env.AccessToken(t, bob.ID))
		assert.NoError(t, err)
		assert.Equal(t, 403, resp.Code)

		var result testutils.StandardResponse
		testutils.ParseResponse(t, resp, &result)
		assert.Equal(t, "Not a Dazim writer", result.Error.Message)
	})

	t.Run("Success - Writer completes with photo", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/dazims/"+dazim.ID+"/complete",
			nil,
			map[string]string{"photo": "proof.jpg"},
			env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 200, resp.Code)

		var fresh models.Dazim
		env.DB.First(&fresh, "id = ?", dazim.ID)
		assert.True(t, fresh.IsSuccess)
		assert.Contains(t, fresh.Photo, "https://cdn.test/")
	})

	t.Run("Error - Unknown dazim", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/dazims/"+uuid.NewString()+"/complete",
			nil,
			map[string]string{"photo": "proof.jpg"},
			env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 404, resp.Code)
	})

	t.Run("Error - Malformed id", func(t *testing.T) {
		resp, err := testutils.MakeMultipartRequest(env.App, "POST", "/dazims/nope/complete",
			nil,
			map[string]string{"photo": "proof.jpg"},
			env.AccessToken(t, alice.ID))
		assert.NoError(t, err)
		assert.Equal(t, 400, resp.Code)
	})
}
