package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	RoleRecruiter UserRole = "recruiter"
	RoleAdmin     UserRole = "admin"
	RoleHR        UserRole = "hr"
)

type User struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name       string             `bson:"name" json:"name"`
	Email      string             `bson:"email" json:"email"`
	Password   string             `bson:"password" json:"-"` // bcrypt hash
	Role       UserRole           `bson:"role" json:"role"`
	Company    string             `bson:"company,omitempty" json:"company,omitempty"`
	Department string             `bson:"department,omitempty" json:"department,omitempty"`
	IsActive   bool               `bson:"is_active" json:"is_active"`
	LastLogin  *time.Time         `bson:"last_login,omitempty" json:"last_login,omitempty"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}
