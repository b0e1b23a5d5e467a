package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// UsersRepo defines the interface for user repository operations
type UsersRepo interface {
	Create(ctx context.Context, user *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id bson.ObjectID) (*User, error)
	UpdateProfile(ctx context.Context, id bson.ObjectID, patch ProfilePatch) (*User, error)
}
