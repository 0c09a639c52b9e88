package ai

import (
	"context"
	"errors"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Segment is one role-tagged piece of text sent to the completion provider.
type Segment struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// FragmentStream yields generated text in order. Next returns io.EOF once the
// provider signals completion; any other error means the stream was cut short.
type FragmentStream interface {
	Next() (string, error)
	Close() error
}

type StreamProvider interface {
	Stream(ctx context.Context, segments []Segment) (FragmentStream, error)
}

// UnavailableProvider fails every request. It stands in when no provider
// credentials are configured so the rest of the service can still run.
type UnavailableProvider struct {
	Reason string
}

func (p UnavailableProvider) Stream(context.Context, []Segment) (FragmentStream, error) {
	return nil, errors.New(p.Reason)
}
