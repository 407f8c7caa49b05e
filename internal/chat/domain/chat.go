package domain

import (
	"errors"
	"strings"
	"time"
)

// ChatType mirrors the chat_type enum.
type ChatType string

const (
	ChatTypeSingle         ChatType = "single"
	ChatTypeGroup          ChatType = "group"
	ChatTypePrivateChannel ChatType = "private_channel"
	ChatTypePublicChannel  ChatType = "public_channel"
)

const (
	// MinMembers is the smallest chat.
	MinMembers = 2
	// MaxUnnamedMembers is the largest chat that may go without a name.
	MaxUnnamedMembers = 8
)

var (
	ErrTooFewMembers = errors.New("at least 2 members are required")
	ErrNameRequired  = errors.New("name is required for group chats with more than 8 members")
)

// Chat is a conversation inside one workspace. Members holds user ids.
type Chat struct {
	ID          int64     `json:"id"`
	WorkspaceID int64     `json:"wsId"`
	Name        *string   `json:"name"`
	Type        ChatType  `json:"type"`
	Members     []int64   `json:"members"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasMember reports whether userID is in Members.
func (c *Chat) HasMember(userID int64) bool {
	for _, m := range c.Members {
		if m == userID {
			return true
		}
	}
	return false
}

// CreateChat is the input of chat creation. A nil or blank Name means an unnamed chat.
type CreateChat struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
	Public  bool    `json:"public"`
}

// UpdateChat replaces the name and the member list of a chat.
type UpdateChat struct {
	Name    *string `json:"name"`
	Members []int64 `json:"members"`
}

// NormalizeName trims name and maps blank to nil.
func NormalizeName(name *string) *string {
	if name == nil {
		return nil
	}
	n := strings.TrimSpace(*name)
	if n == "" {
		return nil
	}
	return &n
}

// UniqueMembers returns members without duplicates, keeping first occurrences in order.
func UniqueMembers(members []int64) []int64 {
	seen := make(map[int64]struct{}, len(members))
	out := make([]int64, 0, len(members))
	for _, m := range members {
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

// ValidateMembers checks the member count rules. name must already be normalized.
func ValidateMembers(name *string, members []int64) error {
	if len(members) < MinMembers {
		return ErrTooFewMembers
	}
	if len(members) > MaxUnnamedMembers && name == nil {
		return ErrNameRequired
	}
	return nil
}

// ResolveType derives the chat type: unnamed chats are single (2 members) or group; named chats
// are channels, public or private.
func ResolveType(name *string, members int, public bool) ChatType {
	switch {
	case name == nil && members == MinMembers:
		return ChatTypeSingle
	case name == nil:
		return ChatTypeGroup
	case public:
		return ChatTypePublicChannel
	}
	return ChatTypePrivateChannel
}
