package admins

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/serenespa/admin-console/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository defines persistence operations for admins
type Repository interface {
	UpsertByEmail(ctx context.Context, a *models.Admin) (*models.Admin, error)
	GetByEmail(ctx context.Context, email string) (*models.Admin, error)
	GetByAID(ctx context.Context, aid int64) (*models.Admin, error)
}

// MongoRepository implements Repository using MongoDB
type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) UpsertByEmail(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	now := time.Now().UTC()
	a.Email = normalizeEmail(a.Email)
	filter := bson.M{"email": a.Email}
	upd := bson.M{
		"$set": bson.M{
			"name":         a.Name,
			"aid":          a.AID,
			"passwordHash": a.PasswordHash,
			"updatedAt":    now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var updated models.Admin
	if err := r.col.FindOneAndUpdate(ctx, filter, upd, opts).Decode(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"email": normalizeEmail(email)})
}

func (r *MongoRepository) GetByAID(ctx context.Context, aid int64) (*models.Admin, error) {
	return r.findOne(ctx, bson.M{"aid": aid})
}

func (r *MongoRepository) findOne(ctx context.Context, filter bson.M) (*models.Admin, error) {
	var a models.Admin
	if err := r.col.FindOne(ctx, filter).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &a, nil
}

// MemoryRepository keeps admins in process.
type MemoryRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*models.Admin
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byEmail: make(map[string]*models.Admin)}
}

func (r *MemoryRepository) UpsertByEmail(ctx context.Context, a *models.Admin) (*models.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	cp := *a
	cp.Email = normalizeEmail(a.Email)
	if prev, ok := r.byEmail[cp.Email]; ok {
		cp.CreatedAt = prev.CreatedAt
	} else {
		cp.CreatedAt = now
	}
	cp.UpdatedAt = now
	r.byEmail[cp.Email] = &cp
	out := cp
	return &out, nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if a, ok := r.byEmail[normalizeEmail(email)]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (r *MemoryRepository) GetByAID(ctx context.Context, aid int64) (*models.Admin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.byEmail {
		if a.AID == aid {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }
