package auth

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a user in the system
type User struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id,omitempty" example:"683cdb8aa96ad71e8e075bd1"`
	Username       string        `bson:"username" json:"username" example:"algebra_fan"`
	Email          string        `bson:"email" json:"email" example:"test@example.com"`
	PasswordHash   string        `bson:"password_hash" json:"-"`
	FirstName      string        `bson:"first_name" json:"first_name" example:"Ada"`
	LastName       string        `bson:"last_name" json:"last_name" example:"Lovelace"`
	Bio            string        `bson:"bio" json:"bio" example:"Second year maths"`
	AIInstructions string        `bson:"ai_instructions" json:"ai_instructions" example:"Answer briefly"`
	CreatedAt      time.Time     `bson:"created_at" json:"created_at" example:"2025-06-01T23:00:26.005703677Z"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at" example:"2025-06-01T23:00:26.005703677Z"`
}

// ProfilePatch holds the profile fields a user may change. Nil means unchanged.
type ProfilePatch struct {
	FirstName      *string
	LastName       *string
	Bio            *string
	AIInstructions *string
}
