package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/rulegraph/pkg/errors"
	"github.com/matzehuels/rulegraph/pkg/pipeline"
)

// SweepCollection is the MongoDB collection holding sweep results.
const SweepCollection = "sweeps"

// MongoStore keeps sweeps in MongoDB. Documents use the sweep ID as _id.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri, verifies the connection and ensures the
// index used by ListSweeps exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "connect mongodb")
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "ping mongodb")
	}

	coll := client.Database(database).Collection(SweepCollection)
	_, err = coll.Indexes().CreateOne(connectCtx, mongo.IndexModel{
		Keys: bson.D{{Key: "states", Value: 1}, {Key: "created_at", Value: -1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("create sweep index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

// SaveSweep upserts res by ID.
func (s *MongoStore) SaveSweep(ctx context.Context, res *pipeline.SweepResult) error {
	if res.ID == "" {
		return errors.New(errors.ErrCodeInvalidInput, "sweep has no ID")
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": res.ID}, res, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeNetwork, err, "save sweep %s", res.ID)
	}
	return nil
}

// GetSweep loads one sweep by ID.
func (s *MongoStore) GetSweep(ctx context.Context, id string) (*pipeline.SweepResult, error) {
	var res pipeline.SweepResult
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&res)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, errors.New(errors.ErrCodeNotFound, "sweep %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "load sweep %s", id)
	}
	return &res, nil
}

// ListSweeps returns the most recent sweeps first.
func (s *MongoStore) ListSweeps(ctx context.Context, states, limit int) ([]*pipeline.SweepResult, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	filter := bson.M{}
	if states > 0 {
		filter["states"] = states
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := s.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "list sweeps")
	}
	var out []*pipeline.SweepResult
	if err := cur.All(ctx, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeNetwork, err, "decode sweeps")
	}
	return out, nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
