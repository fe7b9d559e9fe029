package repository

import (
	"context"
	"errors"
	"time"

	"github.com/okian/lotus-ledger/internal/domain/model"
	"github.com/okian/lotus-ledger/pkg/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps games in one MongoDB collection.
type MongoStore struct {
	coll   *mongo.Collection
	logger logger.Logger
}

// NewMongoStore wraps an existing collection handle. The store owns the
// collection's client from here on: Close disconnects it.
func NewMongoStore(coll *mongo.Collection, opts ...Option) *MongoStore {
	o := buildOptions(opts)
	return &MongoStore{
		coll:   coll,
		logger: o.logger,
	}
}

// DialMongo connects to uri, verifies the deployment answers a ping and
// returns a store bound to database.collection.
func DialMongo(ctx context.Context, uri, database, collection string, timeout time.Duration, opts ...Option) (*MongoStore, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	clientOpts := options.Client().ApplyURI(uri)
	if timeout > 0 {
		clientOpts.SetConnectTimeout(timeout).SetServerSelectionTimeout(timeout)
	}
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, storeError("connect", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storeError("connect", err)
	}

	s := NewMongoStore(client.Database(database).Collection(collection), opts...)
	s.logger.Info(ctx, "connected to mongo",
		logger.String("database", database),
		logger.String("collection", collection),
	)
	return s, nil
}

// Driver implements Store.
func (s *MongoStore) Driver() string { return DriverMongo }

// Create implements Store. The record is re-read after the insert so the
// caller sees what the database holds, not an echo of the input.
func (s *MongoStore) Create(ctx context.Context, fields model.Fields) (model.Game, error) {
	res, err := s.coll.InsertOne(ctx, model.NewGame(fields))
	if err != nil {
		return model.Game{}, storeError("create", err)
	}
	id, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return model.Game{}, storeError("create", errors.New("inserted id is not an ObjectID"))
	}

	var g model.Game
	if err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		// The insert succeeded, so a missing document is a store fault too.
		return model.Game{}, storeError("create", err)
	}
	return g, nil
}

// List implements Store.
func (s *MongoStore) List(ctx context.Context, page model.Page) ([]model.Game, error) {
	games := make([]model.Game, 0)
	if page.Bounded() && page.Limit == 0 {
		return games, nil
	}

	findOpts := options.Find()
	if page.Offset > 0 {
		findOpts.SetSkip(page.Offset)
	}
	if page.Bounded() {
		findOpts.SetLimit(page.Limit)
	}

	cur, err := s.coll.Find(ctx, bson.D{}, findOpts)
	if err != nil {
		return nil, storeError("list", err)
	}
	if err := cur.All(ctx, &games); err != nil {
		return nil, storeError("list", err)
	}
	return games, nil
}

// Get implements Store.
func (s *MongoStore) Get(ctx context.Context, id string) (model.Game, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return model.Game{}, notFound("get", id)
	}
	var g model.Game
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&g); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Game{}, notFound("get", id)
		}
		return model.Game{}, storeError("get", err)
	}
	return g, nil
}

// Update implements Store. Only the set slots go into $set, so omitted
// players keep their stored value.
func (s *MongoStore) Update(ctx context.Context, id string, fields model.Fields) (model.Game, error) {
	oid, err := model.ParseID(id)
	if err != nil {
		return model.Game{}, notFound("update", id)
	}
	if fields.Empty() {
		return s.Get(ctx, id)
	}

	changes := fields.Changes()
	set := bson.D{}
	for _, key := range []string{"player1", "player2", "player3", "player4"} {
		if v, ok := changes[key]; ok {
			set = append(set, bson.E{Key: key, Value: v})
		}
	}

	var g model.Game
	err = s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&g)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Game{}, notFound("update", id)
		}
		return model.Game{}, storeError("update", err)
	}
	return g, nil
}

// Delete implements Store. A delete-many by _id removes at most one record.
func (s *MongoStore) Delete(ctx context.Context, id string) error {
	oid, err := model.ParseID(id)
	if err != nil {
		return notFound("delete", id)
	}
	res, err := s.coll.DeleteMany(ctx, bson.M{"_id": oid})
	if err != nil {
		return storeError("delete", err)
	}
	if res.DeletedCount == 0 {
		return notFound("delete", id)
	}
	return nil
}

// Count implements Store.
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, storeError("count", err)
	}
	return n, nil
}

// Ping implements Store.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.coll.Database().Client().Ping(ctx, readpref.Primary()); err != nil {
		return storeError("ping", err)
	}
	return nil
}

// Close implements Store.
func (s *MongoStore) Close(ctx context.Context) error {
	if err := s.coll.Database().Client().Disconnect(ctx); err != nil {
		return storeError("close", err)
	}
	return nil
}
