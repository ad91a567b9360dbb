package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/kevmuriithi/skill_swap/routes"
	ws "github.com/kevmuriithi/skill_swap/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

type recordingConn struct {
	mu     sync.Mutex
	events []ws.Event
}

func (r *recordingConn) WriteJSON(v interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, v.(ws.Event))
	return nil
}

func (r *recordingConn) Close() error { return nil }

func (r *recordingConn) received() []ws.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws.Event, len(r.events))
	copy(out, r.events)
	return out
}

func setupTestApp(t *testing.T) (*fiber.App, *ws.Hub, *gorm.DB) {
	t.Setenv("JWT_SECRET", testSecret)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{}, &models.Skill{}, &models.Swap{},
		&models.Conversation{}, &models.Message{},
		&models.Reaction{}, &models.PollOption{}, &models.PollVote{},
		&models.MessageDeletion{}, &models.MessageMention{},
		&models.Certificate{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	database.SetDB(db)

	app := fiber.New()
	hub := ws.NewHub()
	routes.AuthRoutes(app)
	routes.SwapRoutes(app)
	routes.MessagingRoutes(app, hub)
	routes.AdminRoutes(app)
	return app, hub, db
}

func seedParticipants(t *testing.T, db *gorm.DB) (alice, bob models.User, conversation models.Conversation) {
	alice = models.User{FullName: "Alice Wanjiru", Email: "alice@example.com", Password: "x"}
	bob = models.User{FullName: "Bob Otieno", Email: "bob@example.com", Password: "x"}
	require.NoError(t, db.Create(&alice).Error)
	require.NoError(t, db.Create(&bob).Error)

	offered := models.Skill{UserID: alice.ID, Name: "Guitar"}
	wanted := models.Skill{UserID: bob.ID, Name: "Swahili"}
	require.NoError(t, db.Create(&offered).Error)
	require.NoError(t, db.Create(&wanted).Error)

	swap := models.Swap{
		RequesterID:    alice.ID,
		ProviderID:     bob.ID,
		OfferedSkillID: offered.ID,
		WantedSkillID:  wanted.ID,
		Status:         models.SwapStatusAccepted,
	}
	require.NoError(t, db.Create(&swap).Error)

	conversation = models.Conversation{
		SwapID:       swap.ID,
		Participants: []*models.User{&alice, &bob},
	}
	require.NoError(t, db.Create(&conversation).Error)
	return alice, bob, conversation
}

func tokenFor(t *testing.T, user models.User) string {
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    user.Role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	var reader *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(encoded)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeMessage(t *testing.T, resp *http.Response) models.Message {
	var message models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&message))
	return message
}

func TestSendMessageEndToEnd(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, _, conversation := seedParticipants(t, db)

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "hello"},
	)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	message := decodeMessage(t, resp)
	assert.Equal(t, models.MessageKindText, message.Kind)
	assert.Equal(t, "hello", message.Content)
	assert.Equal(t, alice.ID, message.SenderID)
	assert.True(t, message.IsDelivered)
	assert.NotNil(t, message.DeliveredAt)
	assert.False(t, message.IsDeleted)
	assert.Empty(t, message.Deletions)
}

func TestSendMessageRequiresToken(t *testing.T) {
	app, _, db := setupTestApp(t)
	_, _, conversation := seedParticipants(t, db)

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		"",
		fiber.Map{"content": "hello"},
	)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "missing JWT is rejected before the handler runs")
}

func TestSendMessagePublishesToRoom(t *testing.T) {
	app, hub, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	aliceConn := &recordingConn{}
	bobConn := &recordingConn{}
	hub.Join(&ws.Client{UserID: alice.ID, Conn: aliceConn}, conversation.ID)
	hub.Join(&ws.Client{UserID: bob.ID, Conn: bobConn}, conversation.ID)

	outsiderConn := &recordingConn{}
	hub.Join(&ws.Client{UserID: uuid.New(), Conn: outsiderConn}, uuid.New())

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "hi"},
	)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// Sender echo included; reconciliation is the client's job.
	require.Len(t, aliceConn.received(), 1)
	require.Len(t, bobConn.received(), 1)
	assert.Empty(t, outsiderConn.received())
	assert.Equal(t, "receive_message", bobConn.received()[0].Type)
}

func TestForbiddenForNonParticipant(t *testing.T) {
	app, _, db := setupTestApp(t)
	_, _, conversation := seedParticipants(t, db)

	stranger := models.User{FullName: "Mallory", Email: "mallory@example.com", Password: "x"}
	require.NoError(t, db.Create(&stranger).Error)

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, stranger),
		fiber.Map{"content": "let me in"},
	)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doJSON(t, app, "GET",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, stranger), nil,
	)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDeleteForEveryoneHidesHistoryButKeepsRecord(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	sendResp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "oops"},
	)
	require.Equal(t, fiber.StatusCreated, sendResp.StatusCode)
	message := decodeMessage(t, sendResp)

	delResp := doJSON(t, app, "DELETE",
		fmt.Sprintf("/api/v1/messages/%s?mode=everyone", message.ID),
		tokenFor(t, alice), nil,
	)
	require.Equal(t, fiber.StatusOK, delResp.StatusCode)

	for _, user := range []models.User{alice, bob} {
		histResp := doJSON(t, app, "GET",
			fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
			tokenFor(t, user), nil,
		)
		require.Equal(t, fiber.StatusOK, histResp.StatusCode)
		var history []models.Message
		require.NoError(t, json.NewDecoder(histResp.Body).Decode(&history))
		assert.Empty(t, history)
	}

	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", message.ID).Error)
	assert.True(t, stored.IsDeleted)
	assert.NotNil(t, stored.DeletedAt)
}

func TestDeleteForMeDefaultsAndFilters(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	sendResp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "only alice hides this"},
	)
	message := decodeMessage(t, sendResp)

	// mode defaults to "me".
	delResp := doJSON(t, app, "DELETE",
		fmt.Sprintf("/api/v1/messages/%s", message.ID),
		tokenFor(t, alice), nil,
	)
	require.Equal(t, fiber.StatusOK, delResp.StatusCode)

	histResp := doJSON(t, app, "GET",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice), nil,
	)
	var aliceHistory []models.Message
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&aliceHistory))
	assert.Empty(t, aliceHistory)

	histResp = doJSON(t, app, "GET",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, bob), nil,
	)
	var bobHistory []models.Message
	require.NoError(t, json.NewDecoder(histResp.Body).Decode(&bobHistory))
	require.Len(t, bobHistory, 1)
	assert.Equal(t, message.ID, bobHistory[0].ID)
}

func TestReactionEndpointUpserts(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	message := decodeMessage(t, doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "react"},
	))

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/messages/%s/reactions", message.ID),
		tokenFor(t, bob),
		fiber.Map{"emoji": "👍"},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/messages/%s/reactions", message.ID),
		tokenFor(t, bob),
		fiber.Map{"emoji": "❤️"},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	updated := decodeMessage(t, resp)
	require.Len(t, updated.Reactions, 1)
	assert.Equal(t, "❤️", updated.Reactions[0].Emoji)
}

func TestPollVoteEndpointNonExclusive(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	poll := decodeMessage(t, doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{
			"kind": "poll",
			"poll": fiber.Map{"question": "When?", "options": []string{"Sat", "Sun"}},
		},
	))
	require.Len(t, poll.PollOptions, 2)

	for _, index := range []int{0, 1} {
		resp := doJSON(t, app, "POST",
			fmt.Sprintf("/api/v1/messages/%s/votes", poll.ID),
			tokenFor(t, bob),
			fiber.Map{"option_index": index},
		)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		if index == 1 {
			updated := decodeMessage(t, resp)
			assert.Len(t, updated.PollOptions[0].Votes, 1)
			assert.Len(t, updated.PollOptions[1].Votes, 1)
		}
	}
}

func TestMarkReadEndpoint(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, bob, conversation := seedParticipants(t, db)

	message := decodeMessage(t, doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "unread"},
	))

	resp := doJSON(t, app, "POST", "/api/v1/messages/read",
		tokenFor(t, bob),
		fiber.Map{"message_ids": []string{message.ID.String()}},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var updated []models.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&updated))
	require.Len(t, updated, 1)
	assert.True(t, updated[0].IsRead)
	assert.NotNil(t, updated[0].ReadAt)
}

func TestStarEndpoint(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, _, conversation := seedParticipants(t, db)

	message := decodeMessage(t, doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/messages", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"content": "remember this"},
	))

	resp := doJSON(t, app, "PATCH",
		fmt.Sprintf("/api/v1/messages/%s/star", message.ID),
		tokenFor(t, alice),
		fiber.Map{"starred": true},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, decodeMessage(t, resp).IsStarred)
}

func TestLogCallEndpoint(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, _, conversation := seedParticipants(t, db)

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/conversations/%s/calls", conversation.ID),
		tokenFor(t, alice),
		fiber.Map{"call_type": "audio", "duration": 95, "status": "completed"},
	)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	message := decodeMessage(t, resp)
	assert.Equal(t, models.MessageKindCall, message.Kind)
	require.NotNil(t, message.CallStartedAt)
	require.NotNil(t, message.CallEndedAt)
	assert.Equal(t, 95*time.Second, message.CallEndedAt.Sub(*message.CallStartedAt))
}

func TestUnknownMessageReturnsNotFound(t *testing.T) {
	app, _, db := setupTestApp(t)
	alice, _, _ := seedParticipants(t, db)

	resp := doJSON(t, app, "POST",
		fmt.Sprintf("/api/v1/messages/%s/reactions", uuid.New()),
		tokenFor(t, alice),
		fiber.Map{"emoji": "👍"},
	)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
