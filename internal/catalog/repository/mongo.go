package repository

import (
	"context"
	"errors"

	"github.com/serenespa/admin-console/internal/catalog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores services keyed by a numeric sid. The sid sequence lives
// in a counters collection so it survives restarts.
type MongoRepo struct {
	col      *mongo.Collection
	counters *mongo.Collection
}

func NewMongoRepo(ctx context.Context, db *mongo.Database) (*MongoRepo, error) {
	col := db.Collection("services")
	idx := mongo.IndexModel{Keys: bson.D{{Key: "sid", Value: 1}}, Options: options.Index().SetUnique(true)}
	if _, err := col.Indexes().CreateOne(ctx, idx); err != nil {
		return nil, err
	}
	return &MongoRepo{col: col, counters: db.Collection("counters")}, nil
}

func (m *MongoRepo) nextSID(ctx context.Context) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := m.counters.FindOneAndUpdate(ctx, bson.M{"_id": "services"}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	return doc.Seq, err
}

func (m *MongoRepo) Create(ctx context.Context, s *catalog.Service) (int64, error) {
	sid, err := m.nextSID(ctx)
	if err != nil {
		return 0, err
	}
	s.SID = sid
	if s.Media == nil {
		s.Media = []catalog.Media{}
	}
	if _, err := m.col.InsertOne(ctx, s); err != nil {
		return 0, err
	}
	return sid, nil
}

func (m *MongoRepo) Get(ctx context.Context, sid int64) (*catalog.Service, error) {
	var s catalog.Service
	if err := m.col.FindOne(ctx, bson.M{"sid": sid}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, catalog.ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (m *MongoRepo) List(ctx context.Context, active bool) ([]catalog.Service, error) {
	cur, err := m.col.Find(ctx, bson.M{"active": active}, options.Find().SetSort(bson.D{{Key: "sid", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []catalog.Service{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (m *MongoRepo) Update(ctx context.Context, sid int64, u catalog.ServiceUpdate) error {
	set := bson.M{
		"name":        u.Name,
		"duration":    u.Duration,
		"description": u.Description,
		"aid":         u.AID,
		"media":       mediaFromURLs(u.Media),
	}
	return m.matched(m.col.UpdateOne(ctx, bson.M{"sid": sid}, bson.M{"$set": set}))
}

func (m *MongoRepo) SetActive(ctx context.Context, sid int64, active bool) error {
	return m.matched(m.col.UpdateOne(ctx, bson.M{"sid": sid}, bson.M{"$set": bson.M{"active": active}}))
}

func (m *MongoRepo) matched(res *mongo.UpdateResult, err error) error {
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return catalog.ErrNotFound
	}
	return nil
}
