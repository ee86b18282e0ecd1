package main

import (
	"context"
	"sync"
	"time"
)

// memStore is an in-process Store. It backs offline mode and the tests;
// semantics match the remote store: whole-document saves, watchers get a
// notification for every save including the writer's own (echo).
// Watcher sends and watcher shutdown both happen under the mutex, so a
// save can never hit a channel that a cancellation just closed.
type memStore struct {
	mu        sync.Mutex
	rooms     map[string]RoomDocument
	presence  map[string]map[string]Presence // roomID -> userID -> record
	roomWatch map[string][]chan Snapshot
	presWatch map[string][]chan []Presence
}

func newMemStore() *memStore {
	return &memStore{
		rooms:     make(map[string]RoomDocument),
		presence:  make(map[string]map[string]Presence),
		roomWatch: make(map[string][]chan Snapshot),
		presWatch: make(map[string][]chan []Presence),
	}
}

func (m *memStore) LoadRoom(_ context.Context, roomID string) (RoomDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	doc, ok := m.rooms[roomID]
	if !ok {
		return RoomDocument{}, ErrNoRoom
	}
	return doc, nil
}

func (m *memStore) SaveRoom(_ context.Context, roomID string, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	doc, ok := m.rooms[roomID]
	if !ok {
		doc = RoomDocument{RoomID: roomID, CreatedAt: now}
	}
	doc.Nodes = append([]Node(nil), snap.Nodes...)
	doc.Connections = append([]Connection(nil), snap.Connections...)
	doc.Mode = snap.Mode
	doc.LastUpdated = now
	m.rooms[roomID] = doc

	for _, ch := range m.roomWatch[roomID] {
		select {
		case ch <- doc.Snapshot():
		default: // a stalled watcher never blocks a save
		}
	}
	return nil
}

func (m *memStore) WatchRoom(ctx context.Context, roomID string) (<-chan Snapshot, error) {
	ch := make(chan Snapshot, 16)
	m.mu.Lock()
	m.roomWatch[roomID] = append(m.roomWatch[roomID], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		watchers := m.roomWatch[roomID]
		for i, w := range watchers {
			if w == ch {
				m.roomWatch[roomID] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (m *memStore) WritePresence(_ context.Context, p Presence) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	room := m.presence[p.RoomID]
	if room == nil {
		room = make(map[string]Presence)
		m.presence[p.RoomID] = room
	}
	p.UpdatedAt = time.Now()
	room[p.UserID] = p
	records := make([]Presence, 0, len(room))
	for _, rec := range room {
		records = append(records, rec)
	}

	for _, ch := range m.presWatch[p.RoomID] {
		select {
		case ch <- records:
		default:
		}
	}
	return nil
}

func (m *memStore) WatchPresence(ctx context.Context, roomID string) (<-chan []Presence, error) {
	ch := make(chan []Presence, 16)
	m.mu.Lock()
	m.presWatch[roomID] = append(m.presWatch[roomID], ch)
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		defer m.mu.Unlock()
		watchers := m.presWatch[roomID]
		for i, w := range watchers {
			if w == ch {
				m.presWatch[roomID] = append(watchers[:i], watchers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch, nil
}

func (m *memStore) Close(context.Context) error {
	return nil
}
