package mongodb

import (
	"context"
	"errors"

	"sessionguard/internal/sessions/domain/model"
	"sessionguard/internal/sessions/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoUserDirectory implements the UserDirectory interface over the users
// collection the upstream identity provider maintains. Read-only: session
// handling never writes account state.
type MongoUserDirectory struct {
	users *mongo.Collection
}

// NewMongoUserDirectory creates a new MongoDB user directory.
func NewMongoUserDirectory(db *mongo.Database) *MongoUserDirectory {
	return &MongoUserDirectory{
		users: db.Collection("users"),
	}
}

// GetUserByID returns the account for userID, or nil if not found.
func (r *MongoUserDirectory) GetUserByID(ctx context.Context, userID string) (*model.UserAccount, error) {
	var user model.UserAccount
	err := r.users.FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	// Accounts created before the status field existed are treated as active.
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	return &user, nil
}

// Ensure MongoUserDirectory implements UserDirectory
var _ repository.UserDirectory = (*MongoUserDirectory)(nil)
