package main

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testSync(store Store, room, user string) *SyncEngine {
	return NewSyncEngine(store, room, user, zap.NewNop().Sugar())
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestHydrateBootstrapsMissingRoom(t *testing.T) {
	store := newMemStore()
	s := testSync(store, "room1", "alice")

	snap, err := s.Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(snap.Nodes) != 0 || snap.Mode != ModeConceptual {
		t.Errorf("bootstrap snapshot = %+v, want empty conceptual", snap)
	}

	doc, err := store.LoadRoom(context.Background(), "room1")
	if err != nil {
		t.Fatalf("room was not created: %v", err)
	}
	if doc.Mode != ModeConceptual {
		t.Errorf("stored mode = %q", doc.Mode)
	}
}

func TestHydrateExistingRoom(t *testing.T) {
	store := newMemStore()
	d := NewDiagram()
	d.NewNode(NodeEntity, 5, 5)
	if err := store.SaveRoom(context.Background(), "room1", d.Snapshot()); err != nil {
		t.Fatal(err)
	}

	snap, err := testSync(store, "room1", "bob").Hydrate(context.Background())
	if err != nil {
		t.Fatalf("hydrate: %v", err)
	}
	if len(snap.Nodes) != 1 {
		t.Errorf("hydrated %d nodes, want 1", len(snap.Nodes))
	}
}

func TestPushLastWriteWins(t *testing.T) {
	store := newMemStore()
	s := testSync(store, "room1", "alice")

	d := NewDiagram()
	d.NewNode(NodeEntity, 0, 0)
	s.Push(d.Snapshot())
	d.NewNode(NodeEntity, 40, 0)
	s.Push(d.Snapshot())
	final := d.Snapshot()

	waitFor(t, "final document", func() bool {
		doc, err := store.LoadRoom(context.Background(), "room1")
		return err == nil && len(doc.Nodes) == 2
	})

	doc, _ := store.LoadRoom(context.Background(), "room1")
	got := NewDiagram()
	got.Apply(doc.Snapshot())
	if !got.EqualSnapshot(final) {
		t.Error("stored document does not match the last push")
	}
}

func TestPushCoalescesToLatest(t *testing.T) {
	store := newMemStore()
	s := testSync(store, "room1", "alice")

	d := NewDiagram()
	for i := 0; i < 20; i++ {
		d.NewNode(NodeEntity, float64(i*10), 0)
		s.Push(d.Snapshot())
	}

	waitFor(t, "all pushes drained", func() bool {
		doc, err := store.LoadRoom(context.Background(), "room1")
		return err == nil && len(doc.Nodes) == 20
	})
}

func TestWatchDeliversRemoteSaves(t *testing.T) {
	store := newMemStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := testSync(store, "room1", "alice").Watch(ctx)
	if err != nil {
		t.Fatal(err)
	}

	d := NewDiagram()
	d.NewNode(NodeEntity, 7, 7)
	if err := store.SaveRoom(context.Background(), "room1", d.Snapshot()); err != nil {
		t.Fatal(err)
	}

	select {
	case snap := <-ch:
		if len(snap.Nodes) != 1 || snap.Nodes[0].X != 7 {
			t.Errorf("watched snapshot = %+v", snap)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}
}

func TestWatchPresenceFiltersOwnUser(t *testing.T) {
	store := newMemStore()
	alice := testSync(store, "room1", "alice")
	bob := testSync(store, "room1", "bob")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := bob.WatchPresence(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if !alice.PublishCursor(3, 4) {
		t.Fatal("first publish was throttled")
	}

	select {
	case records := <-ch:
		if len(records) != 1 || records[0].UserID != "alice" {
			t.Errorf("presence records = %+v, want alice only", records)
		}
		if records[0].X != 3 || records[0].Y != 4 {
			t.Errorf("cursor at (%v,%v), want (3,4)", records[0].X, records[0].Y)
		}
		if records[0].Color == "" {
			t.Error("presence record has no color")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no presence delivered")
	}

	// bob's own record must never come back to bob
	bob.PublishCursor(9, 9)
	select {
	case records := <-ch:
		for _, p := range records {
			if p.UserID == "bob" {
				t.Error("bob received his own presence record")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no presence delivered after second write")
	}
}

func TestSaveDuringWatchShutdown(t *testing.T) {
	store := newMemStore()
	d := NewDiagram()
	d.NewNode(NodeEntity, 0, 0)
	snap := d.Snapshot()
	rec := Presence{UserID: "alice", RoomID: "room1", X: 1, Y: 2}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			store.SaveRoom(context.Background(), "room1", snap)
			store.WritePresence(context.Background(), rec)
		}
	}()

	// churn watchers while the saves run; a save must never hit a
	// channel that a cancellation already closed
	for i := 0; i < 200; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		if _, err := store.WatchRoom(ctx, "room1"); err != nil {
			t.Fatal(err)
		}
		if _, err := store.WatchPresence(ctx, "room1"); err != nil {
			t.Fatal(err)
		}
		cancel()
	}
	<-done
}

func TestPublishCursorThrottles(t *testing.T) {
	s := testSync(newMemStore(), "room1", "alice")

	if !s.PublishCursor(0, 0) {
		t.Fatal("first publish was throttled")
	}
	if s.PublishCursor(1, 1) {
		t.Error("immediate second publish was not throttled")
	}
	time.Sleep(presenceInterval + 20*time.Millisecond)
	if !s.PublishCursor(2, 2) {
		t.Error("publish after the interval was throttled")
	}
}

func TestReconcileDiscardsDuringDrag(t *testing.T) {
	d := NewDiagram()
	local := d.NewNode(NodeEntity, 0, 0)

	remote := NewDiagram()
	remote.NewNode(NodeEntity, 99, 99)

	if Reconcile(d, remote.Snapshot(), true) {
		t.Error("snapshot applied while a drag was in flight")
	}
	if d.NodeByID(local.ID) == nil {
		t.Error("local state lost during drag guard")
	}
}

func TestReconcileSkipsEchoedSelfWrite(t *testing.T) {
	d := NewDiagram()
	d.NewNode(NodeEntity, 0, 0)
	if Reconcile(d, d.Snapshot(), false) {
		t.Error("echoed identical snapshot reported a change")
	}
}

func TestReconcileAppliesRemoteChange(t *testing.T) {
	d := NewDiagram()
	d.NewNode(NodeEntity, 0, 0)

	remote := NewDiagram()
	n := remote.NewNode(NodeTable, 10, 10)
	remote.Mode = ModePhysical

	if !Reconcile(d, remote.Snapshot(), false) {
		t.Fatal("remote change was not applied")
	}
	if d.NodeByID(n.ID) == nil || d.Mode != ModePhysical {
		t.Error("diagram does not reflect the remote snapshot")
	}
}

func TestPresenceColorStable(t *testing.T) {
	a := presenceColor("alice")
	if a != presenceColor("alice") {
		t.Error("color not deterministic")
	}
	found := false
	for _, c := range cursorPalette {
		if c == a {
			found = true
		}
	}
	if !found {
		t.Errorf("color %q not in palette", a)
	}
}
