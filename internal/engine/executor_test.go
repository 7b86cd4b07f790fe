package engine

import (
	"context"
	"errors"
	"testing"
	"time"
)

// fakeGateway records executed side effects and can fail selected deliveries.
type fakeGateway struct {
	deleted  [][2]int64 // (chat, message)
	banned   [][2]int64 // (chat, user)
	unbanned [][2]int64
	sent     []int64 // private-message recipients
	chatMsgs []int64 // chats that received a public message

	failPrivateTo map[int64]bool
}

func (g *fakeGateway) DeleteMessage(_ context.Context, chatID, messageID int64) error {
	g.deleted = append(g.deleted, [2]int64{chatID, messageID})
	return nil
}

func (g *fakeGateway) BanMember(_ context.Context, chatID, userID int64) error {
	g.banned = append(g.banned, [2]int64{chatID, userID})
	return nil
}

func (g *fakeGateway) UnbanMember(_ context.Context, chatID, userID int64) error {
	g.unbanned = append(g.unbanned, [2]int64{chatID, userID})
	return nil
}

func (g *fakeGateway) SendPrivate(_ context.Context, userID int64, _ string) error {
	if g.failPrivateTo[userID] {
		return errors.New("blocked by recipient")
	}
	g.sent = append(g.sent, userID)
	return nil
}

func (g *fakeGateway) SendChat(_ context.Context, chatID int64, _ string) error {
	g.chatMsgs = append(g.chatMsgs, chatID)
	return nil
}

func (g *fakeGateway) IsChatOwner(context.Context, int64, int64) (bool, error) {
	return false, nil
}

func TestExecute_PartialNotificationFailure(t *testing.T) {
	// Moderator 200 rejects delivery; 100 and 300 must still be attempted
	// and the ban must still go through.
	gw := &fakeGateway{failPrivateTo: map[int64]bool{200: true}}

	intents := []Intent{
		{Kind: IntentDeleteMessage, ChatID: -100, MessageID: 42},
		{Kind: IntentNotifyUser, ChatID: -100, UserID: 7, Text: "warning"},
		{Kind: IntentNotifyModerator, ChatID: -100, UserID: 100, Text: "alert"},
		{Kind: IntentNotifyModerator, ChatID: -100, UserID: 200, Text: "alert"},
		{Kind: IntentNotifyModerator, ChatID: -100, UserID: 300, Text: "alert"},
		{Kind: IntentBanUser, ChatID: -100, UserID: 7},
		{Kind: IntentReplyInChat, ChatID: -100, Text: "removed"},
	}

	Execute(context.Background(), gw, intents, time.Second)

	if len(gw.deleted) != 1 || gw.deleted[0] != [2]int64{-100, 42} {
		t.Errorf("deleted = %v, want [[-100 42]]", gw.deleted)
	}

	wantSent := []int64{7, 100, 300}
	if len(gw.sent) != len(wantSent) {
		t.Fatalf("private deliveries = %v, want %v", gw.sent, wantSent)
	}
	for i, id := range wantSent {
		if gw.sent[i] != id {
			t.Errorf("delivery %d went to %d, want %d", i, gw.sent[i], id)
		}
	}

	if len(gw.banned) != 1 || gw.banned[0] != [2]int64{-100, 7} {
		t.Errorf("banned = %v, want [[-100 7]]: a failed notification must not suppress the ban", gw.banned)
	}
	if len(gw.chatMsgs) != 1 {
		t.Errorf("public acknowledgments = %d, want 1", len(gw.chatMsgs))
	}
}

func TestExecute_EmptyIntentList(t *testing.T) {
	gw := &fakeGateway{}
	Execute(context.Background(), gw, nil, time.Second)

	if len(gw.deleted)+len(gw.banned)+len(gw.sent)+len(gw.chatMsgs) != 0 {
		t.Error("no intents must mean no side effects")
	}
}
