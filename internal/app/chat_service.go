package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"claira-social/internal/ai"
	"claira-social/internal/metrics"
	"claira-social/internal/model"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*model.User, error)
}

type ChatService struct {
	users     UserLookup
	assembler *ContextAssembler
	store     ChatStore
	provider  ai.StreamProvider
	now       func() time.Time
	log       zerolog.Logger
}

func NewChatService(
	users UserLookup,
	assembler *ContextAssembler,
	store ChatStore,
	provider ai.StreamProvider,
	log zerolog.Logger,
) *ChatService {
	return &ChatService{
		users:     users,
		assembler: assembler,
		store:     store,
		provider:  provider,
		now:       time.Now,
		log:       log.With().Str("component", "chat").Logger(),
	}
}

// Begin validates the turn, assembles the prompt, stores the user message and
// opens the provider stream. The assistant message is stored by the returned
// ReplyStream once the provider finishes.
func (s *ChatService) Begin(ctx context.Context, ownerID uint, message string) (*ReplyStream, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrInvalidInput
	}

	user, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	segments, err := s.assembler.Assemble(ctx, ownerID, message)
	if err != nil {
		return nil, err
	}

	userMessage := &model.ChatMessage{
		OwnerID:   ownerID,
		Role:      model.RoleUser,
		Content:   message,
		CreatedAt: s.now(),
	}
	if err := s.store.Append(ctx, userMessage); err != nil {
		return nil, err
	}

	src, err := s.provider.Stream(ctx, segments)
	if err != nil {
		metrics.ChatStreamsTotal.WithLabelValues("upstream_error").Inc()
		s.log.Error().Err(err).Uint("owner_id", ownerID).Msg("open completion stream failed")
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	return &ReplyStream{
		ctx:     ctx,
		ownerID: ownerID,
		src:     src,
		store:   s.store,
		now:     s.now,
		log:     s.log,
	}, nil
}

func (s *ChatService) History(ctx context.Context, ownerID uint, limit int) ([]model.ChatMessage, error) {
	if ownerID == 0 {
		return nil, ErrUnauthorized
	}
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return s.store.ListRecent(ctx, ownerID, limit)
}

// ReplyStream forwards provider fragments and stores the assistant turn
// exactly once, when the provider reports completion. A stream that fails or
// is closed early stores nothing.
type ReplyStream struct {
	ctx     context.Context
	ownerID uint
	src     ai.FragmentStream
	store   ChatStore
	now     func() time.Time
	log     zerolog.Logger

	buf  strings.Builder
	done bool
	err  error
}

// Next returns the next fragment, or io.EOF after the assistant turn has been
// stored.
func (r *ReplyStream) Next() (string, error) {
	if r.err != nil {
		return "", r.err
	}
	if r.done {
		return "", io.EOF
	}

	frag, err := r.src.Next()
	if err == nil {
		r.buf.WriteString(frag)
		metrics.ChatFragmentsTotal.Inc()
		return frag, nil
	}
	if !errors.Is(err, io.EOF) {
		metrics.ChatStreamsTotal.WithLabelValues("upstream_error").Inc()
		r.log.Warn().Err(err).Uint("owner_id", r.ownerID).Int("partial_len", r.buf.Len()).Msg("completion stream interrupted")
		r.err = fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
		return "", r.err
	}

	r.done = true
	assistant := &model.ChatMessage{
		OwnerID:   r.ownerID,
		Role:      model.RoleAssistant,
		Content:   r.buf.String(),
		CreatedAt: r.now(),
	}
	if err := r.store.Append(r.ctx, assistant); err != nil {
		metrics.ChatStreamsTotal.WithLabelValues("persist_error").Inc()
		r.err = err
		return "", err
	}
	metrics.ChatStreamsTotal.WithLabelValues("completed").Inc()
	return "", io.EOF
}

// Text returns everything forwarded so far.
func (r *ReplyStream) Text() string {
	return r.buf.String()
}

func (r *ReplyStream) Close() error {
	return r.src.Close()
}
