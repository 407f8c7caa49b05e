package rbac

import (
	"context"
	"log"

	"chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
)

// ChatMembershipGetter reports whether a user is in a chat's member list. Used by RequireChatMember.
type ChatMembershipGetter interface {
	IsChatMember(ctx context.Context, chatID, userID int64) (bool, error)
}

// RequireChatMember ensures id is a member of chatID.
// A lookup error is logged and treated as not-a-member. Returns an apperr.KindAuthorizationDenied error on denial.
func RequireChatMember(ctx context.Context, getter ChatMembershipGetter, id domain.Identity, chatID int64) error {
	ok, err := getter.IsChatMember(ctx, chatID, id.ID)
	if err != nil {
		log.Printf("rbac: membership lookup for user %d chat %d failed, denying: %v", id.ID, chatID, err)
		ok = false
	}
	if !ok {
		return apperr.New(apperr.KindAuthorizationDenied, "user %d is not a member of chat %d", id.ID, chatID)
	}
	return nil
}
