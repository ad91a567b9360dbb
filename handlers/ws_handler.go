package handlers

import (
	"errors"
	"fmt"
	"log"

	config "github.com/kevmuriithi/skill_swap/configs"
	"github.com/kevmuriithi/skill_swap/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type wsInboundEvent struct {
	Type           string `json:"type"`
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
}

// wsSession is the slice of the websocket connection the gateway drives.
// Satisfied by *websocket.Conn from gofiber/contrib and by fakes in tests.
type wsSession interface {
	ReadJSON(v interface{}) error
	WriteJSON(v interface{}) error
	Close() error
}

// ServeWs authenticates the connection from its first frame, then serves the
// join_chat / send_message loop until disconnect.
func ServeWs(hub *websocket.Hub, c *websocketcontrib.Conn) {
	serveWs(hub, c)
}

// serveWs holds the gateway logic. Every authentication failure gets the same
// generic reason; the connection never learns whether the token was missing,
// malformed or expired.
func serveWs(hub *websocket.Hub, c wsSession) {
	var authMsg wsAuthMessage
	if err := c.ReadJSON(&authMsg); err != nil || authMsg.Type != "auth" || authMsg.Token == "" {
		rejectConn(c)
		return
	}

	claims, err := parseToken(authMsg.Token)
	if err != nil {
		rejectConn(c)
		return
	}

	rawID, _ := claims["user_id"].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		rejectConn(c)
		return
	}

	log.Printf("WebSocket client authenticated: %s", userID)
	client := &websocket.Client{UserID: userID, Conn: c}
	defer func() {
		log.Printf("WebSocket client disconnected: %s", userID)
		hub.Remove(client)
		c.Close()
	}()

	for {
		var event wsInboundEvent
		if err := c.ReadJSON(&event); err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		switch event.Type {
		case "join_chat":
			conversationID, err := uuid.Parse(event.ConversationID)
			if err != nil {
				_ = c.WriteJSON(fiber.Map{"error": "Invalid conversation ID"})
				continue
			}
			hub.Join(client, conversationID)
		case "send_message":
			conversationID, err := uuid.Parse(event.ConversationID)
			if err != nil {
				_ = c.WriteJSON(fiber.Map{"error": "Invalid conversation ID"})
				continue
			}
			// Republish-only: this path never touches the store. Clients
			// persist through the message API separately.
			hub.Publish(conversationID, websocket.Event{
				Type: "receive_message",
				Payload: websocket.MessagePayload{
					ConversationID: event.ConversationID,
					Content:        event.Content,
					SenderID:       userID,
				},
			})
		default:
			_ = c.WriteJSON(fiber.Map{"error": "Unknown event type"})
		}
	}
}

func rejectConn(c wsSession) {
	_ = c.WriteJSON(fiber.Map{"error": "unauthorized"})
	c.Close()
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}
