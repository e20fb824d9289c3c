// Package chatbot implements the donor help assistant. It is a fixed-rule
// keyword engine: each intent owns a set of trigger keywords and an answer,
// and the stock intent answers with live stock levels from the database.
package chatbot

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/bloodline/backend/db"
)

// FallbackAnswer is returned when no intent matches the message.
const FallbackAnswer = "I'm sorry, I can only help with questions about blood donation, " +
	"eligibility, donation camps and blood stock availability. " +
	"Could you rephrase your question?"

// intent is one rule of the engine. An intent matches when any of its
// keywords appears in the lowercased message.
type intent struct {
	name     string
	keywords []string
	answer   string
}

// staticIntents are checked in order, so more specific intents go first.
var staticIntents = []intent{
	{
		name:     "eligibility",
		keywords: []string{"eligib", "can i donate", "who can donate", "requirements", "qualify"},
		answer: "To donate blood you must be between 18 and 60 years old, weigh more than 50kg " +
			"and be in good general health. At least 4 months must have passed since your " +
			"previous donation. A short medical screening is done at the blood bank before " +
			"every donation.",
	},
	{
		name:     "how-to-donate",
		keywords: []string{"how to donate", "how do i donate", "donate blood", "appointment", "book"},
		answer: "You can book a donation appointment through the donor portal: sign in, choose a " +
			"date and time slot, and fill in the medical questionnaire. Our officers will " +
			"review your request and you will be notified once it is approved.",
	},
	{
		name:     "next-steps",
		keywords: []string{"next step", "after donat", "what happens", "my blood"},
		answer: "After collection your blood is separated into components, tested for " +
			"transfusion-transmissible infections and labelled before it enters the blood " +
			"bank stock. You can donate again after 4 months.",
	},
	{
		name:     "camp-organization",
		keywords: []string{"camp", "organize", "organise", "mobile"},
		answer: "To organize a blood donation camp, register it through the portal with the " +
			"organization details, venue and expected attendance. The blood bank reviews the " +
			"registration and allocates a mobile team once it is approved.",
	},
}

// stockIntent triggers the live stock answer.
var stockIntent = intent{
	name:     "stock-availability",
	keywords: []string{"stock", "availab", "blood level", "units of", "shortage"},
}

// Bot answers donor questions against the fixed rule set, reading stock
// levels from the injected storage.
type Bot struct {
	db *db.MongoStorage
}

// New creates a new chatbot backed by the given storage.
func New(database *db.MongoStorage) *Bot {
	return &Bot{db: database}
}

// Reply resolves the message to an intent and returns its name, the answer
// and the session identifier. A new session identifier is generated when the
// provided one is empty, so the frontend can thread the conversation.
func (b *Bot) Reply(sessionID, message string) (session, matched, answer string, err error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	msg := strings.ToLower(message)
	if matchesIntent(msg, stockIntent) {
		answer, err := b.stockAnswer()
		if err != nil {
			return sessionID, "", "", err
		}
		return sessionID, stockIntent.name, answer, nil
	}
	for _, in := range staticIntents {
		if matchesIntent(msg, in) {
			return sessionID, in.name, in.answer, nil
		}
	}
	return sessionID, "", FallbackAnswer, nil
}

// stockAnswer builds the live stock availability answer.
func (b *Bot) stockAnswer() (string, error) {
	levels, err := b.db.StockLevels()
	if err != nil {
		return "", fmt.Errorf("cannot read stock levels: %w", err)
	}
	var sb strings.Builder
	sb.WriteString("Current blood stock availability:\n")
	for _, level := range levels {
		sb.WriteString(fmt.Sprintf("%s: %d units\n", level.BloodType, level.Units))
	}
	sb.WriteString("If your blood type is running low, please consider booking a donation.")
	return sb.String(), nil
}

func matchesIntent(msg string, in intent) bool {
	for _, kw := range in.keywords {
		if strings.Contains(msg, kw) {
			return true
		}
	}
	return false
}
