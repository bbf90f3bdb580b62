package mongodb

import (
	"context"
	"errors"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"
	"sessionguard/internal/shared/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// InactiveRetention is how long inactive rows are kept before the TTL index
// reaps them. Inactive rows stay around for audit; correctness never depends
// on this cleanup.
const InactiveRetention = 90 * 24 * time.Hour

// MongoSessionRepository implements the SessionRepository interface using MongoDB
type MongoSessionRepository struct {
	db       *mongo.Database
	sessions *mongo.Collection
	logger   logger.Logger
}

// NewMongoSessionRepository creates a new MongoDB session repository and
// ensures its indexes.
func NewMongoSessionRepository(db *mongo.Database, log logger.Logger) (*MongoSessionRepository, error) {
	if log == nil {
		log = logger.NewLogger()
	}
	repo := &MongoSessionRepository{
		db:       db,
		sessions: db.Collection("sessions"),
		logger:   log.WithComponent("session-repository"),
	}

	ctx := context.Background()

	// Token index (unique) for the validate/heartbeat lookup path.
	tokenIndex := mongo.IndexModel{
		Keys:    bson.D{{Key: "token", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	if _, err := repo.sessions.Indexes().CreateOne(ctx, tokenIndex); err != nil {
		return nil, err
	}

	// Per-user active index for the concurrency-cap count and bulk eviction.
	userActiveIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "created_at", Value: 1}},
	}
	if _, err := repo.sessions.Indexes().CreateOne(ctx, userActiveIndex); err != nil {
		return nil, err
	}

	// Per-tenant index for operational queries.
	tenantIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}},
	}
	if _, err := repo.sessions.Indexes().CreateOne(ctx, tenantIndex); err != nil {
		return nil, err
	}

	// TTL index reaps long-inactive rows; partial filter keeps active rows out
	// of its reach regardless of their expiry timestamp.
	ttlIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "expires_at", Value: 1}},
		Options: options.Index().
			SetExpireAfterSeconds(int32(InactiveRetention.Seconds())).
			SetPartialFilterExpression(bson.M{"is_active": false}),
	}
	if _, err := repo.sessions.Indexes().CreateOne(ctx, ttlIndex); err != nil {
		return nil, err
	}

	return repo, nil
}

// CreateSession inserts a new session row.
func (r *MongoSessionRepository) CreateSession(ctx context.Context, session *model.Session) error {
	_, err := r.sessions.InsertOne(ctx, session)
	if err != nil {
		r.logger.Error("Failed to insert session",
			zap.String("sessionId", session.ID),
			zap.String("userId", session.UserID),
			zap.Error(err))
		return err
	}
	return nil
}

// GetActiveByToken returns the active session carrying token, or nil when no
// active row matches. Database failures are the only error case.
func (r *MongoSessionRepository) GetActiveByToken(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	err := r.sessions.FindOne(ctx, bson.M{"token": token, "is_active": true}).Decode(&session)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// ListActiveByUser returns all active sessions for a user, oldest first.
func (r *MongoSessionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*model.Session, error) {
	cursor, err := r.sessions.Find(ctx,
		bson.M{"user_id": userID, "is_active": true},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var sessions []*model.Session
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// CountActiveByUser returns the number of active sessions for a user.
func (r *MongoSessionRepository) CountActiveByUser(ctx context.Context, userID string) (int64, error) {
	return r.sessions.CountDocuments(ctx, bson.M{"user_id": userID, "is_active": true})
}

// UpdateActivity applies mut to the active session carrying token. Returns
// false when no active row matched.
func (r *MongoSessionRepository) UpdateActivity(ctx context.Context, token string, mut repository.SessionMutation) (bool, error) {
	set := bson.M{}
	if mut.LastActivityAt != nil {
		set["last_activity_at"] = *mut.LastActivityAt
	}
	if mut.ExpiresAt != nil {
		set["expires_at"] = *mut.ExpiresAt
	}
	if mut.IPAddress != nil {
		set["ip_address"] = *mut.IPAddress
	}
	if mut.IPCountry != nil {
		set["ip_country"] = *mut.IPCountry
	}
	if mut.IPCity != nil {
		set["ip_city"] = *mut.IPCity
	}
	if len(set) == 0 {
		return false, nil
	}

	res, err := r.sessions.UpdateOne(ctx,
		bson.M{"token": token, "is_active": true},
		bson.M{"$set": set},
	)
	if err != nil {
		r.logger.Error("Failed to update session activity", zap.Error(err))
		return false, err
	}
	return res.MatchedCount > 0, nil
}

// invalidationUpdate is the single shape of every deactivating write: the
// reason is set together with is_active=false and is never overwritten later
// because all invalidation filters require is_active=true.
func invalidationUpdate(reason model.InvalidationReason, at time.Time) bson.M {
	return bson.M{"$set": bson.M{
		"is_active":           false,
		"invalidated_at":      at,
		"invalidation_reason": reason,
	}}
}

// Invalidate flips the active session carrying token to inactive.
func (r *MongoSessionRepository) Invalidate(ctx context.Context, token string, reason model.InvalidationReason, at time.Time) (bool, error) {
	res, err := r.sessions.UpdateOne(ctx,
		bson.M{"token": token, "is_active": true},
		invalidationUpdate(reason, at),
	)
	if err != nil {
		r.logger.Error("Failed to invalidate session", zap.String("reason", string(reason)), zap.Error(err))
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// InvalidateByTokenAndUser flips the active session carrying token, scoped to
// the owning user.
func (r *MongoSessionRepository) InvalidateByTokenAndUser(ctx context.Context, token, userID string, reason model.InvalidationReason, at time.Time) (bool, error) {
	res, err := r.sessions.UpdateOne(ctx,
		bson.M{"token": token, "user_id": userID, "is_active": true},
		invalidationUpdate(reason, at),
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount > 0, nil
}

// InvalidateAllByUser flips every active session for userID.
func (r *MongoSessionRepository) InvalidateAllByUser(ctx context.Context, userID string, reason model.InvalidationReason, at time.Time) (int64, error) {
	res, err := r.sessions.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true},
		invalidationUpdate(reason, at),
	)
	if err != nil {
		r.logger.Error("Failed to bulk-invalidate sessions", zap.String("userId", userID), zap.Error(err))
		return 0, err
	}
	return res.ModifiedCount, nil
}

// InvalidateOldestByUser flips the n oldest active sessions for userID.
// Mongo's UpdateMany cannot take a limit, so the candidates are selected first
// and flipped by ID; each write remains scoped to is_active=true.
func (r *MongoSessionRepository) InvalidateOldestByUser(ctx context.Context, userID string, n int, reason model.InvalidationReason, at time.Time) (int64, error) {
	if n <= 0 {
		return 0, nil
	}

	cursor, err := r.sessions.Find(ctx,
		bson.M{"user_id": userID, "is_active": true},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: 1}}).
			SetLimit(int64(n)).
			SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	ids := make([]string, len(rows))
	for i, row := range rows {
		ids[i] = row.ID
	}

	res, err := r.sessions.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "is_active": true},
		invalidationUpdate(reason, at),
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// InvalidateOthersByUser flips every active session for userID except the one
// carrying keepToken.
func (r *MongoSessionRepository) InvalidateOthersByUser(ctx context.Context, userID, keepToken string, reason model.InvalidationReason, at time.Time) (int64, error) {
	res, err := r.sessions.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_active": true, "token": bson.M{"$ne": keepToken}},
		invalidationUpdate(reason, at),
	)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// DeleteExpiredBefore hard-deletes inactive rows whose expiry elapsed before
// cutoff. Supplements the TTL index for operators who want an explicit sweep.
func (r *MongoSessionRepository) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.sessions.DeleteMany(ctx, bson.M{
		"is_active":  false,
		"expires_at": bson.M{"$lt": cutoff},
	})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// Ensure MongoSessionRepository implements SessionRepository
var _ repository.SessionRepository = (*MongoSessionRepository)(nil)
