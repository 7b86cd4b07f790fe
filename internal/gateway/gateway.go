// Package gateway defines the platform port: the capabilities the moderation
// core consumes from the messaging platform. The telegram subpackage
// implements it against the Telegram Bot API.
package gateway

import "context"

// Gateway executes side effects on the messaging platform and answers
// privilege queries. Implementations must be safe for concurrent use.
type Gateway interface {
	// DeleteMessage removes a message from a chat.
	DeleteMessage(ctx context.Context, chatID, messageID int64) error

	// BanMember removes a user from a chat and prevents rejoining.
	BanMember(ctx context.Context, chatID, userID int64) error

	// UnbanMember lifts a ban so the user may rejoin.
	UnbanMember(ctx context.Context, chatID, userID int64) error

	// SendPrivate delivers a direct message to a user.
	SendPrivate(ctx context.Context, userID int64, text string) error

	// SendChat posts a message into a chat.
	SendChat(ctx context.Context, chatID int64, text string) error

	// IsChatOwner reports whether userID is the owner of chatID.
	IsChatOwner(ctx context.Context, chatID, userID int64) (bool, error)
}
