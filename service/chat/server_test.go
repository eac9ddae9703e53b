package chat

import (
	"testing"

	"FitProject/tools/errs"

	"github.com/pkg/errors"
)

func TestJoinRoomAuthz(t *testing.T) {
	s, _ := newTestServer(t, map[string][]string{"conv-a": {"alice", "bob"}})
	carol, _ := s.Register("carol", nil)

	err := s.JoinRoom(carol, "conv-a")
	if !errors.Is(err, errs.ErrNoPermission) {
		t.Fatalf("non-participant join: got %v, want no permission", err)
	}
	if room, _ := s.conns.CurrentRoom(carol.ConnID); room != "" {
		t.Fatalf("failed join set room slot to %q", room)
	}
	if s.rooms.Contains("conv-a", carol.ConnID) {
		t.Fatal("failed join added to room index")
	}

	if err := s.JoinRoom(carol, "conv-x"); !errors.Is(err, errs.ErrRecordNotFound) {
		t.Fatalf("unknown conversation join: got %v, want not found", err)
	}
	if err := s.JoinRoom(carol, ""); !errors.Is(err, errs.ErrArgs) {
		t.Fatalf("empty conversation join: got %v, want args error", err)
	}
}

func TestJoinRoomSwitchesSingleRoom(t *testing.T) {
	s, _ := newTestServer(t, map[string][]string{
		"conv-a": {"alice", "bob"},
		"conv-b": {"alice", "carol"},
	})
	alice, _ := s.Register("alice", nil)

	mustJoin(t, s, alice, "conv-a")
	mustJoin(t, s, alice, "conv-b")

	if room, _ := s.conns.CurrentRoom(alice.ConnID); room != "conv-b" {
		t.Fatalf("room slot = %q, want conv-b", room)
	}
	if s.rooms.Contains("conv-a", alice.ConnID) {
		t.Fatal("join to conv-b must detach conv-a")
	}
	if !s.rooms.Contains("conv-b", alice.ConnID) {
		t.Fatal("conv-b membership missing")
	}

	// re-join of the current room stays joined
	mustJoin(t, s, alice, "conv-b")
	if !s.rooms.Contains("conv-b", alice.ConnID) {
		t.Fatal("idempotent re-join dropped membership")
	}
}

func TestLeaveRoom(t *testing.T) {
	s, _ := newTestServer(t, map[string][]string{"conv-a": {"alice", "bob"}})
	alice, _ := s.Register("alice", nil)
	mustJoin(t, s, alice, "conv-a")

	s.LeaveRoom(alice, "conv-a")
	if room, _ := s.conns.CurrentRoom(alice.ConnID); room != "" {
		t.Fatalf("room slot = %q after leave", room)
	}
	if s.rooms.Contains("conv-a", alice.ConnID) {
		t.Fatal("still in room index after leave")
	}
}

func TestUnregisterCleansUp(t *testing.T) {
	s, _ := newTestServer(t, map[string][]string{"conv-a": {"alice", "bob"}})
	alice, _ := s.Register("alice", nil)
	mustJoin(t, s, alice, "conv-a")

	s.Unregister(alice.ConnID)

	if s.conns.IsOnline("alice") {
		t.Fatal("alice still online after unregister")
	}
	if s.rooms.Contains("conv-a", alice.ConnID) {
		t.Fatal("room membership survived unregister")
	}
	if !alice.Closed() {
		t.Fatal("client not marked closed")
	}

	// late enqueues to a torn-down client are dropped, not delivered
	s.enqueue(alice, []byte("late"))
	expectNoFrame(t, alice)

	// double unregister is a no-op
	s.Unregister(alice.ConnID)
}

func TestDispatcherRoutesFrames(t *testing.T) {
	s, _ := newTestServer(t, map[string][]string{"conv-a": {"alice", "bob"}})
	alice, _ := s.Register("alice", nil)

	for _, typ := range []string{FrameJoinRoom, FrameLeaveRoom, FrameSendMessage, FramePing} {
		if _, ok := s.disp.handlers[typ]; !ok {
			t.Fatalf("no handler registered for %q", typ)
		}
	}

	f, err := ParseFrame([]byte(`{"type":"joinRoom","payload":{"conversationId":"conv-a"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if err := s.disp.Dispatch(s, f, alice); err != nil {
		t.Fatalf("dispatch joinRoom: %v", err)
	}
	if got := recvFrame(t, alice); got.Type != FrameRoomJoined {
		t.Fatalf("ack type = %q, want roomJoined", got.Type)
	}

	// unknown frame types are dropped, never fatal
	f, _ = ParseFrame([]byte(`{"type":"selfDestruct"}`))
	if err := s.disp.Dispatch(s, f, alice); err != nil {
		t.Fatalf("unknown frame: %v", err)
	}
	expectNoFrame(t, alice)

	f, _ = ParseFrame([]byte(`{"type":"ping"}`))
	if err := s.disp.Dispatch(s, f, alice); err != nil {
		t.Fatalf("dispatch ping: %v", err)
	}
	if got := recvFrame(t, alice); got.Type != FramePong {
		t.Fatalf("ping reply = %q, want pong", got.Type)
	}
}

func TestSendFrameEndToEnd(t *testing.T) {
	s, st := newTestServer(t, map[string][]string{"conv-a": {"alice", "bob"}})
	alice, _ := s.Register("alice", nil)
	mustJoin(t, s, alice, "conv-a")

	f, _ := ParseFrame([]byte(`{"type":"sendMessage","payload":{"conversationId":"conv-a","body":"on my way"}}`))
	if err := s.disp.Dispatch(s, f, alice); err != nil {
		t.Fatalf("dispatch sendMessage: %v", err)
	}

	got := recvFrame(t, alice)
	if got.Type != FrameNewMessage {
		t.Fatalf("type = %q, want newMessage", got.Type)
	}
	if st.appendCount() != 1 {
		t.Fatalf("appended = %d, want 1", st.appendCount())
	}
}
