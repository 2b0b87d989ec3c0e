package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/roomgraph/pkg/roomgraph"
)

// MongoDB defaults used by [OpenMongo].
const (
	DefaultMongoDatabase   = "roomgraph"
	DefaultMongoCollection = "graphs"
)

// MongoStore keeps one BSON document per graph, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
	owned  bool
}

type mongoDocument struct {
	Name      string             `bson:"_id"`
	Graph     roomgraph.Snapshot `bson:"graph"`
	NodeCount int                `bson:"node_count"`
	UpdatedAt time.Time          `bson:"updated_at"`
}

// NewMongoStore uses coll for storage. Close leaves the client connected.
func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{client: coll.Database().Client(), coll: coll}
}

// OpenMongo connects to uri and uses the roomgraph.graphs collection.
// Close disconnects the client.
func OpenMongo(ctx context.Context, uri string) (*MongoStore, error) {
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	coll := client.Database(DefaultMongoDatabase).Collection(DefaultMongoCollection)
	return &MongoStore{client: client, coll: coll, owned: true}, nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (roomgraph.Snapshot, error) {
	if err := checkName(name); err != nil {
		return roomgraph.Snapshot{}, err
	}
	var doc mongoDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return roomgraph.Snapshot{}, notFound(name)
	}
	if err != nil {
		return roomgraph.Snapshot{}, fmt.Errorf("find %s: %w", name, err)
	}
	return doc.Graph, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, snap roomgraph.Snapshot) error {
	if err := checkName(name); err != nil {
		return err
	}
	doc := mongoDocument{
		Name:      name,
		Graph:     snap,
		NodeCount: len(snap.Nodes),
		UpdatedAt: time.Now().UTC(),
	}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, bson.M{"_id": name}, doc, opts); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := checkName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.M{"_id": 1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	var docs []struct {
		Name string `bson:"_id"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("list graphs: %w", err)
	}
	names := make([]string, len(docs))
	for i, d := range docs {
		names[i] = d.Name
	}
	return names, nil
}

// Close disconnects the client if the store opened it.
func (s *MongoStore) Close() error {
	if !s.owned {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
