// Package command implements the bot's chat-command surface: roster
// management, unban, and the informational /id and /help commands. It is a
// thin authorization and dispatch layer over the stores and the platform
// gateway; all persistent state lives in the stores.
package command

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/hatewatch/modbot/internal/gateway"
)

// RosterStore is the moderator-roster capability the router needs.
type RosterStore interface {
	Add(ctx context.Context, adminID int64) error
	Remove(ctx context.Context, adminID int64) error
	IsAdmin(ctx context.Context, adminID int64) (bool, error)
	List(ctx context.Context) ([]int64, error)
}

// WarningResetter resets a user's warning count after an unban.
type WarningResetter interface {
	Reset(ctx context.Context, userID, chatID int64) error
}

// Request is one command invocation: who issued what, where.
type Request struct {
	ChatID int64
	UserID int64 // requester
	Text   string
}

// Router parses and dispatches bot commands.
type Router struct {
	roster   RosterStore
	warnings WarningResetter
	gw       gateway.Gateway
}

// NewRouter creates a command router over the given collaborators.
func NewRouter(roster RosterStore, warnings WarningResetter, gw gateway.Gateway) *Router {
	return &Router{roster: roster, warnings: warnings, gw: gw}
}

const helpText = `🤖 Hate Speech Monitor Bot 📢
This bot detects and removes hate speech in group chats, warns users, and notifies admins.

📌 Available Commands:
🔹 /help - Show this help message.
🔹 /id - Get your user ID.

👑 Admin Commands:
🔹 /addadmin <user_id> - Add a user as an admin (Only group owner).
🔹 /removeadmin <user_id> - Remove an admin (Only group owner).
🔹 /listadmins - Show all registered admins.
🔹 /unban <user_id> - Unban a user and reset their warnings (Admins & group owner only).

⚠️ The bot will automatically delete hate speech messages and issue warnings.
After 5 warnings, the user will be removed from the group.
Admins will receive private alerts about violations.

💡 Tip: Use /id to get your user ID before adding yourself as an admin!`

// IsCommand reports whether text looks like a bot command.
func IsCommand(text string) bool {
	return strings.HasPrefix(text, "/")
}

// Handle dispatches one command and returns the reply text for the
// requester. An unrecognized command returns an empty reply. The error is
// non-nil only for storage or gateway failures; authorization and argument
// problems are user-visible replies, not errors.
func (r *Router) Handle(ctx context.Context, req Request) (string, error) {
	fields := strings.Fields(req.Text)
	if len(fields) == 0 {
		return "", nil
	}

	// Commands may arrive as /cmd@botname in group chats.
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	args := fields[1:]

	switch name {
	case "addadmin":
		return r.addAdmin(ctx, req, args)
	case "removeadmin":
		return r.removeAdmin(ctx, req, args)
	case "listadmins":
		return r.listAdmins(ctx)
	case "unban":
		return r.unban(ctx, req, args)
	case "id":
		return fmt.Sprintf("Your User ID: %d", req.UserID), nil
	case "help":
		return helpText, nil
	default:
		return "", nil
	}
}

func (r *Router) addAdmin(ctx context.Context, req Request, args []string) (string, error) {
	adminID, ok := parseID(args)
	if !ok {
		return "Usage: /addadmin <user_id>", nil
	}

	owner, err := r.gw.IsChatOwner(ctx, req.ChatID, req.UserID)
	if err != nil {
		return "Could not verify permissions, try again later.", fmt.Errorf("command: addadmin owner check: %w", err)
	}
	if !owner {
		return "Only the group owner can add admins.", nil
	}

	if err := r.roster.Add(ctx, adminID); err != nil {
		return "Internal error, try again later.", fmt.Errorf("command: addadmin: %w", err)
	}
	return fmt.Sprintf("User %d has been added as an admin.", adminID), nil
}

func (r *Router) removeAdmin(ctx context.Context, req Request, args []string) (string, error) {
	adminID, ok := parseID(args)
	if !ok {
		return "Usage: /removeadmin <user_id>", nil
	}

	owner, err := r.gw.IsChatOwner(ctx, req.ChatID, req.UserID)
	if err != nil {
		return "Could not verify permissions, try again later.", fmt.Errorf("command: removeadmin owner check: %w", err)
	}
	if !owner {
		return "Only the group owner can remove admins.", nil
	}

	if err := r.roster.Remove(ctx, adminID); err != nil {
		return "Internal error, try again later.", fmt.Errorf("command: removeadmin: %w", err)
	}
	return fmt.Sprintf("User %d has been removed as an admin.", adminID), nil
}

func (r *Router) listAdmins(ctx context.Context) (string, error) {
	admins, err := r.roster.List(ctx)
	if err != nil {
		return "Internal error, try again later.", fmt.Errorf("command: listadmins: %w", err)
	}
	if len(admins) == 0 {
		return "No admins are registered.", nil
	}

	var b strings.Builder
	b.WriteString("👑 Admin List:\n")
	for _, id := range admins {
		fmt.Fprintf(&b, "- %d\n", id)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (r *Router) unban(ctx context.Context, req Request, args []string) (string, error) {
	userID, ok := parseID(args)
	if !ok {
		return "Usage: /unban <user_id>", nil
	}

	owner, err := r.gw.IsChatOwner(ctx, req.ChatID, req.UserID)
	if err != nil {
		return "Could not verify permissions, try again later.", fmt.Errorf("command: unban owner check: %w", err)
	}
	if !owner {
		admin, err := r.roster.IsAdmin(ctx, req.UserID)
		if err != nil {
			return "Internal error, try again later.", fmt.Errorf("command: unban admin check: %w", err)
		}
		if !admin {
			return "Only the group owner or an admin can unban users.", nil
		}
	}

	if err := r.gw.UnbanMember(ctx, req.ChatID, userID); err != nil {
		return "Failed to unban the user, try again later.", fmt.Errorf("command: unban member: %w", err)
	}
	if err := r.warnings.Reset(ctx, userID, req.ChatID); err != nil {
		return "User unbanned, but resetting warnings failed.", fmt.Errorf("command: reset warnings: %w", err)
	}
	return fmt.Sprintf("User %d has been unbanned and warnings have been reset.", userID), nil
}

// parseID extracts the single numeric id argument. Missing or non-numeric
// arguments report false so the caller can reply with usage text.
func parseID(args []string) (int64, bool) {
	if len(args) != 1 {
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
