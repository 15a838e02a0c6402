package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

const auditCollection = "access_events"

// AuditRepository implements ports.AuditRepository using MongoDB.
type AuditRepository struct {
	coll *mongo.Collection
}

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{coll: db.Collection(auditCollection)}
}

type auditDoc struct {
	ID        string `bson:"_id"`
	Path      string `bson:"path"`
	Action    string `bson:"action"`
	Target    string `bson:"target,omitempty"`
	Role      string `bson:"role,omitempty"`
	UserID    string `bson:"user_id,omitempty"`
	Reason    string `bson:"reason,omitempty"`
	Timestamp int64  `bson:"timestamp"`
}

// Insert persists one access event.
func (r *AuditRepository) Insert(ctx context.Context, event ports.AccessEvent) error {
	doc := auditDoc{
		ID:        event.ID,
		Path:      event.Path,
		Action:    event.Action,
		Target:    event.Target,
		Role:      string(event.Role),
		UserID:    event.UserID,
		Reason:    event.Reason,
		Timestamp: event.Timestamp,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert access event: %w", err)
	}
	return nil
}

// ListByPath returns the most recent events for a path, newest first.
func (r *AuditRepository) ListByPath(ctx context.Context, path string, limit int64) ([]ports.AccessEvent, error) {
	opts := options.Find().
		SetSort(bson.M{"timestamp": -1}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"path": path}, opts)
	if err != nil {
		return nil, fmt.Errorf("find access events: %w", err)
	}
	defer cursor.Close(ctx)

	var events []ports.AccessEvent
	for cursor.Next(ctx) {
		var doc auditDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode access event: %w", err)
		}
		events = append(events, ports.AccessEvent{
			ID:        doc.ID,
			Path:      doc.Path,
			Action:    doc.Action,
			Target:    doc.Target,
			Role:      domain.Role(doc.Role),
			UserID:    doc.UserID,
			Reason:    doc.Reason,
			Timestamp: doc.Timestamp,
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate access events: %w", err)
	}
	return events, nil
}
