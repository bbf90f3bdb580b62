package mongodb

import (
	"context"
	"errors"
	"time"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// tenantPolicyDoc is the stored shape of a tenant policy. Pointer fields
// distinguish "configured off" from "not configured".
type tenantPolicyDoc struct {
	TenantID              string `bson:"tenant_id"`
	MaxConcurrentSessions *int   `bson:"max_concurrent_sessions,omitempty"`
	EnforceIPCountryCheck *bool  `bson:"enforce_ip_country_check,omitempty"`
	SessionTimeoutMinutes *int   `bson:"session_timeout_minutes,omitempty"`
}

// MongoPolicyRepository implements the PolicyRepository interface using MongoDB
type MongoPolicyRepository struct {
	policies *mongo.Collection
}

// NewMongoPolicyRepository creates a new MongoDB tenant policy repository.
func NewMongoPolicyRepository(db *mongo.Database) (*MongoPolicyRepository, error) {
	repo := &MongoPolicyRepository{
		policies: db.Collection("tenant_policies"),
	}

	tenantIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "tenant_id", Value: 1}},
	}
	if _, err := repo.policies.Indexes().CreateOne(context.Background(), tenantIndex); err != nil {
		return nil, err
	}
	return repo, nil
}

// GetTenantPolicy returns the stored policy for tenantID with unset fields
// filled from defaults, or (nil, nil) when the tenant has no stored policy.
func (r *MongoPolicyRepository) GetTenantPolicy(ctx context.Context, tenantID string) (*model.TenantPolicy, error) {
	var doc tenantPolicyDoc
	err := r.policies.FindOne(ctx, bson.M{"tenant_id": tenantID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}

	policy := model.DefaultTenantPolicy(tenantID)
	if doc.MaxConcurrentSessions != nil {
		policy.MaxConcurrentSessions = *doc.MaxConcurrentSessions
	}
	if doc.EnforceIPCountryCheck != nil {
		policy.EnforceIPCountryCheck = *doc.EnforceIPCountryCheck
	}
	if doc.SessionTimeoutMinutes != nil {
		policy.SessionTimeout = time.Duration(*doc.SessionTimeoutMinutes) * time.Minute
	}
	return policy, nil
}

// Ensure MongoPolicyRepository implements PolicyRepository
var _ repository.PolicyRepository = (*MongoPolicyRepository)(nil)
