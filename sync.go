package main

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNoRoom is returned by Store.LoadRoom when the room document does not
// exist yet.
var ErrNoRoom = errors.New("room document not found")

// RoomDocument is the shared whole-document state of one room, consumed
// and produced wholesale. Timestamps are assigned by the store.
type RoomDocument struct {
	RoomID      string       `bson:"_id" json:"roomId"`
	Nodes       []Node       `bson:"nodes" json:"nodes"`
	Connections []Connection `bson:"connections" json:"connections"`
	Mode        DiagramMode  `bson:"mode" json:"mode"`
	CreatedAt   time.Time    `bson:"createdAt" json:"createdAt"`
	LastUpdated time.Time    `bson:"lastUpdated" json:"lastUpdated"`
}

func (r RoomDocument) Snapshot() Snapshot {
	return Snapshot{Nodes: r.Nodes, Connections: r.Connections, Mode: r.Mode}
}

// Presence is one user's ephemeral cursor in a room. Records are never
// deleted on disconnect; staleness is accepted.
type Presence struct {
	UserID    string    `bson:"userId" json:"userId"`
	RoomID    string    `bson:"roomId" json:"roomId"`
	X         float64   `bson:"x" json:"x"`
	Y         float64   `bson:"y" json:"y"`
	Color     string    `bson:"color" json:"color"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Store is the remote shared document store for rooms and presence.
// Implementations: mongoStore (collaborative mode) and memStore (offline
// and tests).
type Store interface {
	LoadRoom(ctx context.Context, roomID string) (RoomDocument, error)
	SaveRoom(ctx context.Context, roomID string, snap Snapshot) error
	WatchRoom(ctx context.Context, roomID string) (<-chan Snapshot, error)
	WritePresence(ctx context.Context, p Presence) error
	WatchPresence(ctx context.Context, roomID string) (<-chan []Presence, error)
	Close(ctx context.Context) error
}

const (
	presenceInterval = 100 * time.Millisecond
	pushTimeout      = 5 * time.Second
)

// SyncEngine mirrors committed local mutations to the room document and
// broadcasts cursor presence. Every push is a full-document upsert and
// the last full write wins. There is no field merge, no retry queue, and
// a failed push only surfaces an error.
type SyncEngine struct {
	store  Store
	roomID string
	userID string
	color  string
	log    *zap.SugaredLogger

	mu       sync.Mutex
	pushing  bool
	pending  *Snapshot
	lastSeen time.Time // wall clock of the last presence write

	errs chan error
}

func NewSyncEngine(store Store, roomID, userID string, log *zap.SugaredLogger) *SyncEngine {
	return &SyncEngine{
		store:  store,
		roomID: roomID,
		userID: userID,
		color:  presenceColor(userID),
		log:    log,
		errs:   make(chan error, 8),
	}
}

func (s *SyncEngine) RoomID() string { return s.roomID }
func (s *SyncEngine) UserID() string { return s.userID }
func (s *SyncEngine) Color() string  { return s.color }

// Errors delivers push and presence failures to the UI. The channel never
// blocks a writer; when full, failures are dropped after logging.
func (s *SyncEngine) Errors() <-chan error { return s.errs }

// Hydrate loads the room document, bootstrapping an empty conceptual
// diagram when the room does not exist yet.
func (s *SyncEngine) Hydrate(ctx context.Context) (Snapshot, error) {
	doc, err := s.store.LoadRoom(ctx, s.roomID)
	if errors.Is(err, ErrNoRoom) {
		empty := Snapshot{Mode: ModeConceptual}
		if err := s.store.SaveRoom(ctx, s.roomID, empty); err != nil {
			return Snapshot{}, err
		}
		return empty, nil
	}
	if err != nil {
		return Snapshot{}, err
	}
	return doc.Snapshot(), nil
}

// Watch subscribes to remote document changes for the room.
func (s *SyncEngine) Watch(ctx context.Context) (<-chan Snapshot, error) {
	return s.store.WatchRoom(ctx, s.roomID)
}

// WatchPresence subscribes to the room's presence records; the local
// user's own record is filtered out here.
func (s *SyncEngine) WatchPresence(ctx context.Context) (<-chan []Presence, error) {
	raw, err := s.store.WatchPresence(ctx, s.roomID)
	if err != nil {
		return nil, err
	}
	out := make(chan []Presence)
	go func() {
		defer close(out)
		for records := range raw {
			var others []Presence
			for _, p := range records {
				if p.UserID != s.userID {
					others = append(others, p)
				}
			}
			select {
			case out <- others:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Push upserts the full document asynchronously. Pushes are coalesced:
// while one write is in flight only the latest snapshot is kept, so each
// completed write reflects all prior local mutations and local ordering
// is preserved.
func (s *SyncEngine) Push(snap Snapshot) {
	s.mu.Lock()
	if s.pushing {
		s.pending = &snap
		s.mu.Unlock()
		return
	}
	s.pushing = true
	s.mu.Unlock()
	go s.pushLoop(snap)
}

func (s *SyncEngine) pushLoop(snap Snapshot) {
	for {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		err := s.store.SaveRoom(ctx, s.roomID, snap)
		cancel()
		if err != nil {
			// Local state is never rolled back; the edit stays visible and
			// the failure is reported.
			s.log.Warnw("push failed", "room", s.roomID, "err", err)
			s.report(err)
		}
		s.mu.Lock()
		if s.pending != nil {
			snap = *s.pending
			s.pending = nil
			s.mu.Unlock()
			continue
		}
		s.pushing = false
		s.mu.Unlock()
		return
	}
}

// PublishCursor writes the local cursor position, throttled to one write
// per 100ms of wall-clock time. Returns whether a write was issued.
func (s *SyncEngine) PublishCursor(wx, wy float64) bool {
	s.mu.Lock()
	now := time.Now()
	if now.Sub(s.lastSeen) < presenceInterval {
		s.mu.Unlock()
		return false
	}
	s.lastSeen = now
	s.mu.Unlock()

	p := Presence{
		UserID: s.userID,
		RoomID: s.roomID,
		X:      wx,
		Y:      wy,
		Color:  s.color,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushTimeout)
		defer cancel()
		if err := s.store.WritePresence(ctx, p); err != nil {
			s.log.Debugw("presence write failed", "room", s.roomID, "err", err)
		}
	}()
	return true
}

func (s *SyncEngine) report(err error) {
	select {
	case s.errs <- err:
	default:
	}
}

// Reconcile merges a remote snapshot into the local diagram. While a group
// drag is in flight the snapshot is discarded: the drag's eventual commit
// overwrites whatever the remote state was, so last write wins. A
// deep-equality guard keeps echoed self-writes from forcing redundant
// re-renders. Returns whether the diagram changed.
func Reconcile(d *Diagram, snap Snapshot, dragInFlight bool) bool {
	if dragInFlight {
		return false
	}
	if d.EqualSnapshot(snap) {
		return false
	}
	d.Apply(snap)
	return true
}
