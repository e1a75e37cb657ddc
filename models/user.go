package models

import "time"

type User struct {
	UserID        string    `json:"userId" bson:"userid"`
	Username      string    `json:"username" bson:"username"`
	Email         string    `json:"email,omitempty" bson:"email,omitempty"`
	Password      string    `json:"password,omitempty" bson:"password,omitempty"`
	Guest         bool      `json:"guest" bson:"guest"`
	Role          []string  `json:"role" bson:"role"`
	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
}
