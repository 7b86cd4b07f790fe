package command

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// memRoster is an in-memory RosterStore.
type memRoster struct {
	ids map[int64]bool
	err error
}

func newMemRoster(ids ...int64) *memRoster {
	m := &memRoster{ids: make(map[int64]bool)}
	for _, id := range ids {
		m.ids[id] = true
	}
	return m
}

func (m *memRoster) Add(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	m.ids[id] = true
	return nil
}

func (m *memRoster) Remove(_ context.Context, id int64) error {
	if m.err != nil {
		return m.err
	}
	delete(m.ids, id)
	return nil
}

func (m *memRoster) IsAdmin(_ context.Context, id int64) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.ids[id], nil
}

func (m *memRoster) List(context.Context) ([]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]int64, 0, len(m.ids))
	for id := range m.ids {
		out = append(out, id)
	}
	return out, nil
}

// memResetter records warning resets.
type memResetter struct {
	resets [][2]int64 // (user, chat)
	err    error
}

func (m *memResetter) Reset(_ context.Context, userID, chatID int64) error {
	if m.err != nil {
		return m.err
	}
	m.resets = append(m.resets, [2]int64{userID, chatID})
	return nil
}

// stubGateway implements gateway.Gateway with a configurable owner.
type stubGateway struct {
	ownerID  int64
	unbanned [][2]int64 // (chat, user)
	unbanErr error
}

func (g *stubGateway) DeleteMessage(context.Context, int64, int64) error { return nil }
func (g *stubGateway) BanMember(context.Context, int64, int64) error     { return nil }
func (g *stubGateway) SendPrivate(context.Context, int64, string) error  { return nil }
func (g *stubGateway) SendChat(context.Context, int64, string) error     { return nil }

func (g *stubGateway) UnbanMember(_ context.Context, chatID, userID int64) error {
	if g.unbanErr != nil {
		return g.unbanErr
	}
	g.unbanned = append(g.unbanned, [2]int64{chatID, userID})
	return nil
}

func (g *stubGateway) IsChatOwner(_ context.Context, _, userID int64) (bool, error) {
	return userID == g.ownerID, nil
}

const (
	ownerID    = int64(1)
	adminID    = int64(2)
	strangerID = int64(3)
	chatID     = int64(-100)
)

func newTestRouter() (*Router, *memRoster, *memResetter, *stubGateway) {
	roster := newMemRoster(adminID)
	resetter := &memResetter{}
	gw := &stubGateway{ownerID: ownerID}
	return NewRouter(roster, resetter, gw), roster, resetter, gw
}

func handle(t *testing.T, r *Router, userID int64, text string) string {
	t.Helper()
	reply, err := r.Handle(context.Background(), Request{ChatID: chatID, UserID: userID, Text: text})
	if err != nil {
		t.Fatalf("Handle(%q) error: %v", text, err)
	}
	return reply
}

func TestAddAdmin_OwnerOnly(t *testing.T) {
	router, roster, _, _ := newTestRouter()

	reply := handle(t, router, ownerID, "/addadmin 42")
	if !strings.Contains(reply, "42") || !strings.Contains(reply, "added") {
		t.Errorf("owner add reply = %q", reply)
	}
	if !roster.ids[42] {
		t.Error("roster missing added admin")
	}

	reply = handle(t, router, strangerID, "/addadmin 43")
	if !strings.Contains(reply, "Only the group owner") {
		t.Errorf("non-owner add reply = %q, want rejection", reply)
	}
	if roster.ids[43] {
		t.Error("rejected add must not change state")
	}
}

func TestAddAdmin_MalformedArgument(t *testing.T) {
	router, roster, _, _ := newTestRouter()

	for _, text := range []string{"/addadmin", "/addadmin abc", "/addadmin 1 2"} {
		reply := handle(t, router, ownerID, text)
		if reply != "Usage: /addadmin <user_id>" {
			t.Errorf("Handle(%q) = %q, want usage reply", text, reply)
		}
	}
	if len(roster.ids) != 1 {
		t.Error("malformed commands must not change state")
	}
}

func TestRemoveAdmin(t *testing.T) {
	router, roster, _, _ := newTestRouter()

	reply := handle(t, router, ownerID, "/removeadmin 2")
	if !strings.Contains(reply, "removed") {
		t.Errorf("remove reply = %q", reply)
	}
	if roster.ids[adminID] {
		t.Error("roster still contains removed admin")
	}

	reply = handle(t, router, adminID, "/removeadmin 2")
	if !strings.Contains(reply, "Only the group owner") {
		t.Errorf("non-owner remove reply = %q, want rejection", reply)
	}
}

func TestListAdmins(t *testing.T) {
	router, roster, _, _ := newTestRouter()

	reply := handle(t, router, strangerID, "/listadmins")
	if !strings.Contains(reply, "- 2") {
		t.Errorf("list reply = %q, want entry for admin 2", reply)
	}

	delete(roster.ids, adminID)
	reply = handle(t, router, strangerID, "/listadmins")
	if reply != "No admins are registered." {
		t.Errorf("empty list reply = %q", reply)
	}
}

func TestUnban_OwnerOrAdmin(t *testing.T) {
	router, _, resetter, gw := newTestRouter()

	reply := handle(t, router, adminID, "/unban 7")
	if !strings.Contains(reply, "unbanned") {
		t.Errorf("admin unban reply = %q", reply)
	}
	if len(gw.unbanned) != 1 || gw.unbanned[0] != [2]int64{chatID, 7} {
		t.Errorf("unbanned = %v, want [[%d 7]]", gw.unbanned, chatID)
	}
	if len(resetter.resets) != 1 || resetter.resets[0] != [2]int64{7, chatID} {
		t.Errorf("resets = %v, want warning reset for user 7 in chat %d", resetter.resets, chatID)
	}

	reply = handle(t, router, ownerID, "/unban 8")
	if !strings.Contains(reply, "unbanned") {
		t.Errorf("owner unban reply = %q", reply)
	}

	reply = handle(t, router, strangerID, "/unban 9")
	if !strings.Contains(reply, "Only the group owner or an admin") {
		t.Errorf("stranger unban reply = %q, want rejection", reply)
	}
	if len(gw.unbanned) != 2 {
		t.Error("rejected unban must not reach the gateway")
	}
}

func TestUnban_GatewayFailure(t *testing.T) {
	router, _, resetter, gw := newTestRouter()
	gw.unbanErr = errors.New("api down")

	reply, err := router.Handle(context.Background(), Request{ChatID: chatID, UserID: ownerID, Text: "/unban 7"})
	if err == nil {
		t.Fatal("expected error when the platform unban fails")
	}
	if !strings.Contains(reply, "Failed to unban") {
		t.Errorf("reply = %q, want failure notice", reply)
	}
	if len(resetter.resets) != 0 {
		t.Error("warnings must not be reset when the unban itself failed")
	}
}

func TestInformationalCommands(t *testing.T) {
	router, _, _, _ := newTestRouter()

	if reply := handle(t, router, strangerID, "/id"); reply != "Your User ID: 3" {
		t.Errorf("/id reply = %q", reply)
	}
	if reply := handle(t, router, strangerID, "/help"); !strings.Contains(reply, "/addadmin") {
		t.Errorf("/help reply missing command listing: %q", reply)
	}
}

func TestHandle_BotNameSuffixAndUnknown(t *testing.T) {
	router, roster, _, _ := newTestRouter()

	// Group chats address commands as /cmd@botname.
	reply := handle(t, router, ownerID, "/addadmin@modbot 50")
	if !strings.Contains(reply, "added") {
		t.Errorf("suffixed command reply = %q", reply)
	}
	if !roster.ids[50] {
		t.Error("suffixed command did not dispatch")
	}

	if reply := handle(t, router, ownerID, "/frobnicate"); reply != "" {
		t.Errorf("unknown command reply = %q, want empty", reply)
	}
}

func TestStorageFailureSurfacesError(t *testing.T) {
	router, roster, _, _ := newTestRouter()
	roster.err = errors.New("connection refused")

	reply, err := router.Handle(context.Background(), Request{ChatID: chatID, UserID: ownerID, Text: "/addadmin 42"})
	if err == nil {
		t.Fatal("expected storage error to surface")
	}
	if reply == "" {
		t.Error("storage failure must still produce a user-visible reply")
	}
}
