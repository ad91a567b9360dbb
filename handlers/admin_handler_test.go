package handlers_test

import (
	"fmt"
	"testing"

	"github.com/kevmuriithi/skill_swap/models"
	"github.com/kevmuriithi/skill_swap/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminMessageLookupSeesTombstone(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, _, conversation := seedParticipants(t, db)

	admin := models.User{FullName: "Admin", Email: "admin@example.com", Password: "x", Role: "admin"}
	require.NoError(t, db.Create(&admin).Error)

	message, err := services.CreateMessage(conversation.ID, alice.ID, services.SendMessageInput{Content: "evidence"})
	require.NoError(t, err)
	_, err = services.DeleteMessage(message.ID, alice.ID, services.DeleteForEveryone)
	require.NoError(t, err)

	resp := doJSON(t, app, "GET",
		fmt.Sprintf("/api/v1/admin/messages/%s", message.ID),
		tokenFor(t, admin), nil,
	)
	require.Equal(t, 200, resp.StatusCode)

	record := decodeMessage(t, resp)
	assert.Equal(t, message.ID, record.ID)
	assert.True(t, record.IsDeleted)
	assert.NotNil(t, record.DeletedAt)
}

func TestAdminMessageLookupForbiddenForMembers(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	message, err := services.CreateMessage(conversation.ID, alice.ID, services.SendMessageInput{Content: "hi"})
	require.NoError(t, err)

	resp := doJSON(t, app, "GET",
		fmt.Sprintf("/api/v1/admin/messages/%s", message.ID),
		tokenFor(t, bob), nil,
	)
	assert.Equal(t, 403, resp.StatusCode)
}
