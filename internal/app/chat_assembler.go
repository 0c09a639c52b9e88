package app

import (
	"context"
	"fmt"
	"strings"

	"claira-social/internal/ai"
	"claira-social/internal/model"
)

const DefaultHistoryLimit = 10

// DefaultPersona is the companion's system instruction.
const DefaultPersona = `You are Claira, a warm, empathetic women's health companion who understands the full spectrum of being a woman. You're not just a period tracker - you're a daily confidante.

CORE PERSONALITY:
- Speak like a supportive best friend, not a medical textbook
- Use empathetic language: "I hear you," "That sounds tough," "You're not alone in this"
- Remember personal details and reference them in future conversations
- Offer emotional validation before practical advice

BEYOND PERIODS - FULL WOMEN'S HEALTH:
- Hormone fluctuations, mood changes and energy levels throughout the cycle
- Sleep quality, nutrition cravings and exercise based on cycle phase
- Stress management, emotional wellbeing and relationship guidance

TRUST BUILDING:
- Never judge or make assumptions
- Always ask before giving advice
- Acknowledge when something needs medical attention
- Admit when you don't know something

Make every interaction feel like texting your most understanding friend who happens to know everything about women's health.`

type ChatStore interface {
	Append(ctx context.Context, message *model.ChatMessage) error
	ListRecent(ctx context.Context, ownerID uint, limit int) ([]model.ChatMessage, error)
}

type CycleSource interface {
	Latest(ctx context.Context, ownerID uint) (*model.CycleRecord, error)
}

// ContextAssembler builds the segment list for one chat turn. It never edits
// or reorders stored turns, only keeps the newest historyLimit of them.
type ContextAssembler struct {
	persona      string
	store        ChatStore
	cycles       CycleSource
	historyLimit int
}

func NewContextAssembler(persona string, store ChatStore, cycles CycleSource, historyLimit int) *ContextAssembler {
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	return &ContextAssembler{
		persona:      persona,
		store:        store,
		cycles:       cycles,
		historyLimit: historyLimit,
	}
}

func (a *ContextAssembler) Assemble(ctx context.Context, ownerID uint, message string) ([]ai.Segment, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrInvalidInput
	}

	segments := []ai.Segment{{Role: ai.RoleSystem, Text: a.persona}}

	cycle, err := a.cycles.Latest(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if cycle != nil {
		segments = append(segments, ai.Segment{Role: ai.RoleSystem, Text: describeCycle(cycle)})
	}

	history, err := a.store.ListRecent(ctx, ownerID, a.historyLimit)
	if err != nil {
		return nil, err
	}
	for _, turn := range history {
		segments = append(segments, ai.Segment{Role: turn.Role.ProviderName(), Text: turn.Content})
	}

	segments = append(segments, ai.Segment{Role: ai.RoleUser, Text: message})
	return segments, nil
}

func describeCycle(c *model.CycleRecord) string {
	return fmt.Sprintf("The user's current cycle started on %s. Symptoms: %s. Mood: %s.",
		c.StartDate.Format("2006-01-02"),
		joinOr(c.Symptoms, "none"),
		joinOr(c.Mood, "unknown"),
	)
}

func joinOr(items []string, placeholder string) string {
	if len(items) == 0 {
		return placeholder
	}
	return strings.Join(items, ", ")
}
