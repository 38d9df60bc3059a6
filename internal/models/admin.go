package models

import (
	"strconv"
	"time"
)

// Admin is a console operator account of the dev backend.
type Admin struct {
	ID           string    `bson:"_id,omitempty" json:"id,omitempty"`
	AID          int64     `bson:"aid" json:"aid"`
	Email        string    `bson:"email" json:"email"`
	Name         string    `bson:"name" json:"name"`
	PasswordHash string    `bson:"passwordHash" json:"-"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Sub is the token subject for the admin.
func (a *Admin) Sub() string { return "admin:" + strconv.FormatInt(a.AID, 10) }
