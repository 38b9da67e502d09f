package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/stackit/qa-api/internal/core/domain"
	"github.com/stackit/qa-api/internal/core/ports"
)

const activityCollection = "activity_events"

// ActivityRepository implements ports.ActivityRepository on an append-only
// MongoDB collection.
type ActivityRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewActivityRepository(db *mongo.Database, timeout time.Duration) *ActivityRepository {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ActivityRepository{coll: db.Collection(activityCollection), timeout: timeout}
}

type activityDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Kind       string             `bson:"kind"`
	ActorID    string             `bson:"actor_id,omitempty"`
	Actor      string             `bson:"actor,omitempty"`
	TargetID   string             `bson:"target_id,omitempty"`
	Attributes map[string]string  `bson:"attributes,omitempty"`
	OccurredAt time.Time          `bson:"occurred_at"`
	RecordedAt time.Time          `bson:"recorded_at"`
}

// Record inserts a single audit event.
func (r *ActivityRepository) Record(ctx context.Context, event *domain.ActivityEvent) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := activityDoc{
		Kind:       string(event.Kind),
		ActorID:    event.ActorID,
		Actor:      event.Actor,
		TargetID:   event.TargetID,
		Attributes: event.Attributes,
		OccurredAt: event.OccurredAt.UTC(),
		RecordedAt: time.Now().UTC(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}

// List returns the most recent events matching filter, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter ports.ActivityFilter) ([]*domain.ActivityEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	query := bson.M{}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.Kind != "" {
		query["kind"] = filter.Kind
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(filter.Limit))

	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	defer cur.Close(ctx)

	var docs []activityDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode activity: %w", err)
	}

	events := make([]*domain.ActivityEvent, len(docs))
	for i, d := range docs {
		events[i] = &domain.ActivityEvent{
			Kind:       domain.ActivityKind(d.Kind),
			ActorID:    d.ActorID,
			Actor:      d.Actor,
			TargetID:   d.TargetID,
			Attributes: d.Attributes,
			OccurredAt: d.OccurredAt.UTC(),
		}
	}
	return events, nil
}

// EnsureIndexes creates the indexes used by List.
func (r *ActivityRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "kind", Value: 1}}},
	}
	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}
