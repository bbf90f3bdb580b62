package mongodb

import (
	"context"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/eventbus"
	"sessionguard/internal/shared/logger"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MongoAuditSink implements the AuditSink interface as an append-only MongoDB
// collection. There are no update or delete paths.
type MongoAuditSink struct {
	audit  *mongo.Collection
	logger logger.Logger
}

// NewMongoAuditSink creates a new MongoDB audit sink.
func NewMongoAuditSink(db *mongo.Database, log logger.Logger) (*MongoAuditSink, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	sink := &MongoAuditSink{
		audit:  db.Collection("audit_log"),
		logger: log.WithComponent("audit-sink"),
	}

	tenantActionIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}, {Key: "action", Value: 1}, {Key: "created_at", Value: -1}},
	}
	if _, err := sink.audit.Indexes().CreateOne(context.Background(), tenantActionIndex); err != nil {
		return nil, err
	}
	return sink, nil
}

// Append writes a single audit record.
func (s *MongoAuditSink) Append(ctx context.Context, event *model.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	_, err := s.audit.InsertOne(ctx, event)
	if err != nil {
		s.logger.Error("Failed to append audit record",
			zap.String("action", event.Action),
			zap.String("tenantId", event.TenantID),
			zap.Error(err))
		return err
	}
	return nil
}

// SubscribeToBus registers the sink as the handler for audit events published
// by the lifecycle service. Publishing is fire-and-forget on the caller's
// side; failures here are logged by the bus and retried per its config.
func (s *MongoAuditSink) SubscribeToBus(bus eventbus.EventBusInterface) {
	bus.Subscribe(model.AuditEventType, func(ctx context.Context, event eventbus.Event) error {
		record, ok := event.Data().(*model.AuditEvent)
		if !ok {
			s.logger.Warnf("Dropping audit event with unexpected payload type %T", event.Data())
			return nil
		}
		return s.Append(ctx, record)
	})
}

// Ensure MongoAuditSink implements AuditSink
var _ repository.AuditSink = (*MongoAuditSink)(nil)
