package services

import (
	"errors"
	"log"
	"sort"
	"strings"

	"skill-exchange-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const conversationMessageCap = 500

type MessageService struct {
	DB *gorm.DB
}

func NewMessageService(db *gorm.DB) *MessageService {
	return &MessageService{DB: db}
}

// ConversationResponse is one conversation-list entry: the match context
// plus only its single most-recent message.
type ConversationResponse struct {
	MatchID     string          `json:"match_id"`
	Skill       fiber.Map       `json:"skill"`
	Counterpart TeacherSummary  `json:"counterpart"`
	LastMessage *models.Message `json:"last_message"`
}

// GetMessages handles GET /api/messages. With match_id it returns the full
// message log ascending; without, it returns the conversation list.
// Anonymous callers get the empty shape for whichever mode they asked for.
func (s *MessageService) GetMessages(c *fiber.Ctx) error {
	userID := CurrentUserID(c)
	matchID := c.Query("match_id")
	db := store(c, s.DB)

	if matchID == "" {
		return listConversations(c, db, userID)
	}

	empty := fiber.Map{"messages": []models.Message{}}
	if userID == "" {
		return c.JSON(empty)
	}

	var match models.Match
	if err := db.First(&match, "id = ?", matchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.JSON(empty)
		}
		log.Printf("❌ [MESSAGES] match fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if !match.Involves(userID) {
		// Non-participants see nothing, same shape as an empty conversation.
		return c.JSON(empty)
	}

	var messages []models.Message
	if err := db.
		Where("match_id = ?", matchID).
		Order("created_at ASC").
		Limit(conversationMessageCap).
		Find(&messages).Error; err != nil {
		log.Printf("❌ [MESSAGES] fetch for match %s failed: %v", matchID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.JSON(fiber.Map{"messages": messages})
}

// listConversations builds the conversation list with ONE batched
// latest-message-per-match query (DISTINCT ON), never one lookup per match.
// Join failures degrade to placeholders — a broken profile row should not
// break the inbox page.
func listConversations(c *fiber.Ctx, db *gorm.DB, userID string) error {
	conversations := make([]ConversationResponse, 0)
	if userID == "" {
		return c.JSON(fiber.Map{"conversations": conversations})
	}

	matches, err := userMatches(db, userID)
	if err != nil {
		log.Printf("⚠️ [MESSAGES] conversation matches for %s failed: %v", userID, err)
		return c.JSON(fiber.Map{"conversations": conversations})
	}
	if len(matches) == 0 {
		return c.JSON(fiber.Map{"conversations": conversations})
	}

	matchIDs := make([]string, 0, len(matches))
	counterpartIDs := make([]string, 0, len(matches))
	skillIDs := make([]string, 0, len(matches))
	for _, m := range matches {
		matchIDs = append(matchIDs, m.ID)
		counterpartIDs = append(counterpartIDs, m.CounterpartID(userID))
		skillIDs = append(skillIDs, m.SkillID)
	}

	latest, err := latestMessages(db, matchIDs)
	if err != nil {
		log.Printf("⚠️ [MESSAGES] latest-message query for %s failed: %v", userID, err)
		latest = map[string]models.Message{}
	}

	profiles, err := loadProfiles(db, counterpartIDs)
	if err != nil {
		log.Printf("⚠️ [MESSAGES] profile join failed: %v", err)
		profiles = map[string]models.Profile{}
	}
	skills, err := loadSkills(db, skillIDs)
	if err != nil {
		log.Printf("⚠️ [MESSAGES] skill join failed: %v", err)
		skills = map[string]models.Skill{}
	}

	for _, m := range matches {
		entry := ConversationResponse{
			MatchID:     m.ID,
			Skill:       fiber.Map{"id": m.SkillID, "title": ""},
			Counterpart: teacherSummary(nil),
		}
		if sk, ok := skills[m.SkillID]; ok {
			entry.Skill = fiber.Map{"id": sk.ID, "title": sk.Name}
		}
		if p, ok := profiles[m.CounterpartID(userID)]; ok {
			entry.Counterpart = teacherSummary(&p)
		}
		if msg, ok := latest[m.ID]; ok {
			msgCopy := msg
			entry.LastMessage = &msgCopy
		}
		conversations = append(conversations, entry)
	}

	// Most recently active conversation first; never-messaged matches sink
	// to the bottom in match order.
	sort.SliceStable(conversations, func(i, j int) bool {
		li, lj := conversations[i].LastMessage, conversations[j].LastMessage
		if li == nil || lj == nil {
			return lj == nil && li != nil
		}
		return li.CreatedAt.After(lj.CreatedAt)
	})

	return c.JSON(fiber.Map{"conversations": conversations})
}

// latestMessages returns match_id → most recent message in one round-trip.
func latestMessages(db *gorm.DB, matchIDs []string) (map[string]models.Message, error) {
	out := make(map[string]models.Message)
	if len(matchIDs) == 0 {
		return out, nil
	}

	var rows []models.Message
	if err := db.Raw(`
		SELECT DISTINCT ON (match_id) id, match_id, sender_id, content, message_type, created_at
		FROM messages
		WHERE match_id IN ?
		ORDER BY match_id, created_at DESC
	`, matchIDs).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, msg := range rows {
		out[msg.MatchID] = msg
	}
	return out, nil
}

// PostMessage handles POST /api/messages. RequireUser already rejected
// anonymous callers with 401.
func (s *MessageService) PostMessage(c *fiber.Ctx) error {
	userID := CurrentUserID(c)

	type Req struct {
		MatchID     string `json:"match_id"`
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
	}
	var req Req
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.MatchID == "" || req.Content == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "match_id and content are required"})
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}

	db := store(c, s.DB)
	var match models.Match
	if err := db.First(&match, "id = ?", req.MatchID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
		}
		log.Printf("❌ [MESSAGES] match fetch failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	if !match.Involves(userID) {
		// Same body as a missing match: membership is not disclosed.
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "match not found"})
	}

	message := models.Message{
		ID:          uuid.NewString(),
		MatchID:     match.ID,
		SenderID:    userID,
		Content:     req.Content,
		MessageType: req.MessageType,
	}
	if err := db.Create(&message).Error; err != nil {
		log.Printf("❌ [MESSAGES] create failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}
