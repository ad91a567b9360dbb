package jobs

import (
	"fmt"
	"log"
	"time"

	"github.com/kevmuriithi/skill_swap/database"
	"github.com/kevmuriithi/skill_swap/models"
	"github.com/kevmuriithi/skill_swap/notifications"
	"github.com/google/uuid"
)

// SendUnreadDigests emails participants about messages that sat unread for an
// hour. The window matches the cron cadence so a message is only picked up
// once.
func SendUnreadDigests() {
	log.Println("Running job: SendUnreadDigests...")

	now := time.Now()
	lowerBound := now.Add(-90 * time.Minute)
	upperBound := now.Add(-60 * time.Minute)

	var unreadMessages []models.Message
	err := database.DB.
		Preload("Sender").
		Preload("Conversation.Participants").
		Where("is_read = ? AND is_deleted = ? AND created_at BETWEEN ? AND ?", false, false, lowerBound, upperBound).
		Find(&unreadMessages).Error
	if err != nil {
		log.Printf("Error checking for unread messages: %v", err)
		return
	}

	if len(unreadMessages) == 0 {
		return
	}

	type digest struct {
		recipient  models.User
		senderName string
		count      int
	}
	digests := make(map[uuid.UUID]*digest)

	for _, message := range unreadMessages {
		for _, participant := range message.Conversation.Participants {
			if participant.ID == message.SenderID {
				continue
			}
			d, ok := digests[participant.ID]
			if !ok {
				d = &digest{recipient: *participant, senderName: message.Sender.FullName}
				digests[participant.ID] = d
			}
			d.count++
		}
	}

	for _, d := range digests {
		emailSubject := "You have unread messages on SkillSwap"
		emailBody := fmt.Sprintf(
			"<h1>Unread messages</h1><p>Hi %s,</p><p>You have %d unread message(s), most recently from %s. Log in to catch up on your swap.</p>",
			d.recipient.FullName, d.count, d.senderName,
		)
		go notifications.SendEmail(d.recipient.FullName, d.recipient.Email, emailSubject, emailBody)
	}
}
