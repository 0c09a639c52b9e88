package model

import "strings"

// Role identifies who authored a chat turn. The stored form is upper-case;
// ProviderName is the only place it is converted for the completion API.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

func (r Role) ProviderName() string {
	return strings.ToLower(string(r))
}
