package app

import (
	"context"
	"strings"
	"time"

	"claira-social/internal/model"
)

type CycleStore interface {
	Create(ctx context.Context, record *model.CycleRecord) error
	Latest(ctx context.Context, ownerID uint) (*model.CycleRecord, error)
}

type CycleService struct {
	store CycleStore
}

type RecordCycleInput struct {
	OwnerID   uint
	StartDate string
	Symptoms  []string
	Mood      []string
}

func NewCycleService(store CycleStore) *CycleService {
	return &CycleService{store: store}
}

func (s *CycleService) Record(ctx context.Context, input RecordCycleInput) (*model.CycleRecord, error) {
	if input.OwnerID == 0 {
		return nil, ErrUnauthorized
	}
	start, err := time.Parse("2006-01-02", strings.TrimSpace(input.StartDate))
	if err != nil {
		return nil, ErrInvalidInput
	}

	record := &model.CycleRecord{
		OwnerID:   input.OwnerID,
		StartDate: start,
		Symptoms:  normalizeSet(input.Symptoms),
		Mood:      normalizeSet(input.Mood),
	}
	if err := s.store.Create(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (s *CycleService) Latest(ctx context.Context, ownerID uint) (*model.CycleRecord, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	return s.store.Latest(ctx, ownerID)
}

// normalizeSet trims entries and drops blanks and duplicates, keeping the
// first-seen order.
func normalizeSet(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, item)
	}
	return out
}
