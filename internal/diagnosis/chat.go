package diagnosis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ayurdiag/internal/llm"
	"ayurdiag/internal/prompt"
)

// ErrEmptyMessage is returned when Chat is called without text.
var ErrEmptyMessage = errors.New("message must not be empty")

// maxHistory caps the turns sent to the model.
const maxHistory = 20

// OutOfScopeReply answers messages unrelated to health or Ayurveda.
const OutOfScopeReply = "I'm sorry, but that question is outside the scope of what I can help with. " +
	"I'm Dr. Priya, an Ayurvedic health assistant, so I can talk about Ayurveda, the doshas, diet, herbs, " +
	"daily routines and your symptoms. Is there anything about your health I can help you with?"

// Conversation is one chat session.
type Conversation struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu       sync.Mutex
	messages []llm.Message
}

func NewConversation() *Conversation {
	return &Conversation{ID: uuid.NewString(), CreatedAt: time.Now().UTC()}
}

// Messages returns a copy of the history.
func (c *Conversation) Messages() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]llm.Message(nil), c.messages...)
}

func (c *Conversation) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *Conversation) Clear() {
	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
}

func (c *Conversation) add(msgs ...llm.Message) {
	c.mu.Lock()
	c.messages = append(c.messages, msgs...)
	c.mu.Unlock()
}

// Chat answers message within conv. Health and Ayurveda questions are
// answered with knowledge-base context when opts.UseRAG is set, greetings are
// answered without retrieval and anything else gets OutOfScopeReply without
// calling the model.
func (e *Engine) Chat(ctx context.Context, conv *Conversation, message string, opts Options) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	user := llm.Message{Role: llm.RoleUser, Content: message}

	var system string
	switch {
	case IsHealthRelated(message):
		contextText, _, err := e.lookup(ctx, message, opts.UseRAG)
		if err != nil {
			return "", fmt.Errorf("retrieve context: %w", err)
		}
		system = prompt.ChatSystem(contextText)
	case IsGreeting(message):
		system = prompt.ChatSystem("")
	default:
		e.logger.Info("out of scope chat message", zap.String("message", truncate(message, 80)))
		conv.add(user, llm.Message{Role: llm.RoleModel, Content: OutOfScopeReply})
		return OutOfScopeReply, nil
	}

	history := append(conv.Messages(), user)
	if len(history) > maxHistory {
		history = history[len(history)-maxHistory:]
	}
	resp, err := e.client.Chat(ctx, history, llm.Options{
		Temperature:       e.temperature(opts),
		MaxTokens:         e.cfg.MaxTokens,
		SystemInstruction: system,
	})
	if err != nil {
		return "", fmt.Errorf("chat: %w", err)
	}
	conv.add(user, llm.Message{Role: llm.RoleModel, Content: resp.Text})
	return resp.Text, nil
}

var greetingWords = map[string]struct{}{
	"hi": {}, "hello": {}, "hey": {}, "hiya": {}, "namaste": {}, "greetings": {},
	"thanks": {}, "thank": {}, "bye": {}, "goodbye": {},
}

var greetingPhrases = []string{
	"good morning", "good afternoon", "good evening", "how are you", "who are you", "nice to meet",
}

// IsGreeting reports whether message is small talk such as "Hi, how are you?".
func IsGreeting(message string) bool {
	lower := strings.ToLower(message)
	for _, p := range greetingPhrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	words := tokenize(lower)
	if len(words) == 0 {
		return false
	}
	_, ok := greetingWords[words[0]]
	return ok
}

var healthWords = map[string]struct{}{
	"ayurveda": {}, "ayurvedic": {}, "dosha": {}, "doshas": {}, "vata": {}, "pitta": {}, "kapha": {},
	"prakriti": {}, "vikriti": {}, "agni": {}, "ama": {}, "tridosha": {}, "panchakarma": {},
	"health": {}, "healthy": {}, "wellness": {}, "wellbeing": {}, "symptom": {}, "symptoms": {},
	"pain": {}, "painful": {}, "ache": {}, "aches": {}, "sore": {}, "fever": {}, "cough": {}, "cold": {},
	"tired": {}, "fatigue": {}, "sluggish": {}, "exhausted": {}, "weak": {}, "dizzy": {},
	"sleep": {}, "insomnia": {}, "anxiety": {}, "anxious": {}, "stress": {}, "stressed": {}, "depressed": {},
	"joint": {}, "joints": {}, "skin": {}, "rash": {}, "acne": {}, "hair": {},
	"heartburn": {}, "acid": {}, "reflux": {}, "bloating": {}, "bloated": {}, "gas": {}, "nausea": {},
	"diet": {}, "herb": {}, "herbs": {}, "herbal": {}, "remedy": {}, "remedies": {}, "treatment": {},
	"yoga": {}, "meditation": {}, "pranayama": {}, "massage": {}, "weight": {}, "appetite": {},
	"sick": {}, "ill": {}, "illness": {}, "disease": {}, "medicine": {}, "doctor": {}, "pulse": {}, "tongue": {},
}

var healthStems = []string{
	"digest", "constipat", "diarrh", "inflam", "allerg", "migrain", "nause", "immun", "metabol",
	"detox", "congest", "arthrit", "swell", "itch", "cramp", "stiff",
}

// IsHealthRelated reports whether message mentions health, symptoms or
// Ayurveda.
func IsHealthRelated(message string) bool {
	for _, w := range tokenize(strings.ToLower(message)) {
		if _, ok := healthWords[w]; ok {
			return true
		}
		if strings.HasSuffix(w, "ache") {
			return true
		}
		for _, s := range healthStems {
			if strings.HasPrefix(w, s) {
				return true
			}
		}
	}
	return false
}

func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})
}
