package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sirpyerre/task-manager/internal/core/domain"
)

const authEventsCollection = "auth_events"

// auditRetention bounds how long audit events are kept.
const auditRetention = 90 * 24 * time.Hour

// AuditRepository implements ports.AuthEventRepository on MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(authEventsCollection)}
}

type authEventDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Kind       string             `bson:"kind"`
	Email      string             `bson:"email"`
	Success    bool               `bson:"success"`
	Reason     string             `bson:"reason,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

func newAuthEventDoc(event domain.AuthEvent, now time.Time) authEventDoc {
	occurred := event.OccurredAt
	if occurred.IsZero() {
		occurred = now
	}
	return authEventDoc{
		Kind:       string(event.Kind),
		Email:      event.Email,
		Success:    event.Success,
		Reason:     event.Reason,
		OccurredAt: occurred.UTC(),
		RecordedAt: now.UTC(),
	}
}

// InsertEvent appends event to the auth_events collection.
func (r *AuditRepository) InsertEvent(ctx context.Context, event domain.AuthEvent) error {
	if _, err := r.coll.InsertOne(ctx, newAuthEventDoc(event, time.Now())); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup index by email and the retention TTL index.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "recorded_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(auditRetention.Seconds())),
		},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
