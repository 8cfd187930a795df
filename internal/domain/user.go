package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

// Define constants for roles
const (
	RoleCoach   Role = "coach"
	RoleStudent Role = "student"
)

// User holds the profile data this service needs to decorate responses.
// Authentication and full profile CRUD live in the identity/profile
// collaborators; we only ever read these records.
type User struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DisplayName string             `bson:"displayName" json:"displayName"`
	AvatarRef   string             `bson:"avatarRef,omitempty" json:"avatarRef,omitempty"`
	Role        Role               `bson:"role" json:"role"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

func (u *User) IsCoach() bool {
	return u.Role == RoleCoach
}

func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}
