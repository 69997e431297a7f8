package models

import (
	"time"
)

// User is an operator account. PasswordHash is a bcrypt hash and never serialized.
type User struct {
	ID           string    `json:"-"        bson:"_id"          gorm:"type:varchar(36);primaryKey"`
	Username     string    `json:"username" bson:"username"     gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"-"        bson:"passwordHash" gorm:"not null"`
	Role         string    `json:"role"     bson:"role"         gorm:"not null;default:user"`
	CreatedAt    time.Time `json:"-"        bson:"createdAt"`
	UpdatedAt    time.Time `json:"-"        bson:"updatedAt"`
}
