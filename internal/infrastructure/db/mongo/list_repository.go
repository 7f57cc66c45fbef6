package mongo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/listshare/todo-share/internal/core/domain"
)

const collectionLists = "shared_lists"

type ListRepository struct {
	col *mongo.Collection
	seq *sequence
}

func NewListRepository(db *mongo.Database) *ListRepository {
	return &ListRepository{
		col: db.Collection(collectionLists),
		seq: newSequence(db, collectionLists),
	}
}

// listDocument mirrors the shared_lists table: payload is stored as JSON text
// and owner_id is null for anonymous shares.
type listDocument struct {
	ID        string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	OwnerID   *string   `bson:"owner_id"`
	Seq       int64     `bson:"seq"`
	CreatedAt time.Time `bson:"created_at"`
}

// Put inserts a new shared list document.
func (r *ListRepository) Put(ctx context.Context, l *domain.SharedList) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := toListDocument(l)
	if err != nil {
		return err
	}
	if doc.Seq, err = r.seq.next(ctx); err != nil {
		return err
	}

	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrListExists
		}
		return fmt.Errorf("insert list: %w", err)
	}
	return nil
}

// Get retrieves a list by id without any ownership filter.
func (r *ListRepository) Get(ctx context.Context, id string) (*domain.SharedList, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc listDocument
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListNotFound
		}
		return nil, fmt.Errorf("find list: %w", err)
	}
	return doc.toDomain()
}

func (r *ListRepository) ListRecentByOwner(ctx context.Context, ownerID string, limit int) ([]domain.ListSummary, error) {
	if ownerID == "" || limit <= 0 {
		return []domain.ListSummary{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "seq", Value: -1}}).
		SetLimit(int64(limit)).
		SetProjection(bson.M{"payload": 1})

	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	defer cur.Close(ctx)

	out := make([]domain.ListSummary, 0, limit)
	for cur.Next(ctx) {
		var doc listDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		payload, err := decodePayload(doc.Payload)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.ListSummary{ID: doc.ID, Name: payload.Name()})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list recent: %w", err)
	}
	return out, nil
}

// DeleteByIDAndOwner deletes at most one document matching both id and owner.
func (r *ListRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	if ownerID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID}); err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// EnsureIndexes creates the owner/sequence index used by ListRecentByOwner.
func (r *ListRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "seq", Value: -1}},
	})
	return err
}

func toListDocument(l *domain.SharedList) (listDocument, error) {
	data, err := json.Marshal(l.Payload)
	if err != nil {
		return listDocument{}, fmt.Errorf("encode payload: %w", err)
	}
	doc := listDocument{
		ID:        l.ID,
		Payload:   string(data),
		CreatedAt: l.CreatedAt.UTC(),
	}
	if l.OwnerID != "" {
		owner := l.OwnerID
		doc.OwnerID = &owner
	}
	return doc, nil
}

func (d listDocument) toDomain() (*domain.SharedList, error) {
	payload, err := decodePayload(d.Payload)
	if err != nil {
		return nil, err
	}
	l := &domain.SharedList{ID: d.ID, Payload: payload, CreatedAt: d.CreatedAt}
	if d.OwnerID != nil {
		l.OwnerID = *d.OwnerID
	}
	return l, nil
}

func decodePayload(text string) (domain.Payload, error) {
	var payload domain.Payload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	return payload, nil
}
