package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const (
	roomPollInterval     = time.Second
	presencePollInterval = 300 * time.Millisecond
)

// mongoStore keeps room documents in a "rooms" collection keyed by room id
// and presence records in a "presence" collection keyed by (room, user).
// Room changes are observed through a change stream when the server
// supports one (replica set), otherwise by polling lastUpdated.
type mongoStore struct {
	client   *mongo.Client
	rooms    *mongo.Collection
	presence *mongo.Collection
	log      *zap.SugaredLogger
}

func newMongoStore(ctx context.Context, uri, database string, log *zap.SugaredLogger) (*mongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", uri, err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("pinging %s: %w", uri, err)
	}
	db := client.Database(database)
	return &mongoStore{
		client:   client,
		rooms:    db.Collection("rooms"),
		presence: db.Collection("presence"),
		log:      log,
	}, nil
}

func (s *mongoStore) LoadRoom(ctx context.Context, roomID string) (RoomDocument, error) {
	var doc RoomDocument
	err := s.rooms.FindOne(ctx, bson.M{"_id": roomID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return RoomDocument{}, ErrNoRoom
	}
	if err != nil {
		return RoomDocument{}, fmt.Errorf("loading room %s: %w", roomID, err)
	}
	return doc, nil
}

// SaveRoom replaces the whole nodes/connections/mode payload in one upsert.
// Timestamps are server-assigned so concurrent writers agree on ordering.
func (s *mongoStore) SaveRoom(ctx context.Context, roomID string, snap Snapshot) error {
	nodes := snap.Nodes
	if nodes == nil {
		nodes = []Node{}
	}
	conns := snap.Connections
	if conns == nil {
		conns = []Connection{}
	}
	update := bson.M{
		"$set": bson.M{
			"nodes":       nodes,
			"connections": conns,
			"mode":        snap.Mode,
		},
		"$currentDate": bson.M{"lastUpdated": true},
		"$setOnInsert": bson.M{"createdAt": time.Now().UTC()},
	}
	_, err := s.rooms.UpdateOne(ctx, bson.M{"_id": roomID}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("saving room %s: %w", roomID, err)
	}
	return nil
}

func (s *mongoStore) WatchRoom(ctx context.Context, roomID string) (<-chan Snapshot, error) {
	out := make(chan Snapshot, 16)

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": roomID}}},
	}
	stream, err := s.rooms.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		// Standalone servers have no oplog; fall back to polling.
		s.log.Infow("change streams unavailable, polling room", "room", roomID, "err", err)
		go s.pollRoom(ctx, roomID, out)
		return out, nil
	}

	go func() {
		defer close(out)
		defer stream.Close(context.Background())
		for stream.Next(ctx) {
			var event struct {
				FullDocument RoomDocument `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				s.log.Warnw("decoding room change", "room", roomID, "err", err)
				continue
			}
			select {
			case out <- event.FullDocument.Snapshot():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *mongoStore) pollRoom(ctx context.Context, roomID string, out chan<- Snapshot) {
	defer close(out)
	ticker := time.NewTicker(roomPollInterval)
	defer ticker.Stop()

	var lastUpdated time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		doc, err := s.LoadRoom(ctx, roomID)
		if err != nil {
			continue
		}
		if !doc.LastUpdated.After(lastUpdated) {
			continue
		}
		lastUpdated = doc.LastUpdated
		select {
		case out <- doc.Snapshot():
		case <-ctx.Done():
			return
		}
	}
}

func (s *mongoStore) WritePresence(ctx context.Context, p Presence) error {
	filter := bson.M{"roomId": p.RoomID, "userId": p.UserID}
	update := bson.M{
		"$set": bson.M{
			"x":     p.X,
			"y":     p.Y,
			"color": p.Color,
		},
		"$setOnInsert": bson.M{"roomId": p.RoomID, "userId": p.UserID},
		"$currentDate": bson.M{"updatedAt": true},
	}
	_, err := s.presence.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("writing presence: %w", err)
	}
	return nil
}

// WatchPresence polls the room's presence records. Cursor updates arrive
// at presence-write cadence anyway, so polling is as fresh as a stream
// here and works on standalone servers too.
func (s *mongoStore) WatchPresence(ctx context.Context, roomID string) (<-chan []Presence, error) {
	out := make(chan []Presence, 16)
	go func() {
		defer close(out)
		ticker := time.NewTicker(presencePollInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			cursor, err := s.presence.Find(ctx, bson.M{"roomId": roomID})
			if err != nil {
				continue
			}
			var records []Presence
			if err := cursor.All(ctx, &records); err != nil {
				continue
			}
			select {
			case out <- records:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (s *mongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
