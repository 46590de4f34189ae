package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/AloySobek/ft-gomoku/internal/config"
)

const gamesCollection = "games"

type MongoArchive struct {
	client  *mongo.Client
	games   *mongo.Collection
	timeout time.Duration
}

func NewMongoArchive(ctx context.Context, cfg config.MongoConfig) (*MongoArchive, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctxConnect, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	client, err := mongo.Connect(ctxConnect, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctxConnect, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoArchive{
		client:  client,
		games:   client.Database(cfg.Database).Collection(gamesCollection),
		timeout: timeout,
	}, nil
}

// Record upserts by game id, so a game reopened after a reset overwrites its
// earlier record.
func (a *MongoArchive) Record(ctx context.Context, rec GameRecord) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	_, err := a.games.ReplaceOne(ctx, bson.M{"_id": rec.ID}, rec, options.Replace().SetUpsert(true))
	return err
}

func (a *MongoArchive) Find(ctx context.Context, id string) (GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	var rec GameRecord
	err := a.games.FindOne(ctx, bson.M{"_id": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return GameRecord{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
	}
	return rec, err
}

func (a *MongoArchive) Recent(ctx context.Context, limit int) ([]GameRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	opts := options.Find().SetSort(bson.D{{Key: "finished_at", Value: -1}}).SetLimit(int64(limit))
	cur, err := a.games.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	records := []GameRecord{}
	if err := cur.All(ctx, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (a *MongoArchive) Close(ctx context.Context) error {
	return a.client.Disconnect(ctx)
}

// NopArchive drops every record.
type NopArchive struct{}

func (NopArchive) Record(context.Context, GameRecord) error { return nil }

func (NopArchive) Find(_ context.Context, id string) (GameRecord, error) {
	return GameRecord{}, fmt.Errorf("game %s: %w", id, ErrNotFound)
}

func (NopArchive) Recent(context.Context, int) ([]GameRecord, error) {
	return []GameRecord{}, nil
}

func (NopArchive) Close(context.Context) error { return nil }
