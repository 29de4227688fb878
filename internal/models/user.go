package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is a document in the users collection. Records are immutable after
// registration; email carries a unique index.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}

// UserResponse is the external shape returned by registration and /users/me.
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func (u *User) ToResponse() UserResponse {
	return UserResponse{ID: u.ID.Hex(), Email: u.Email}
}
