package models

import (
	"fmt"
	"time"
)

// OwnerName marks the owner's admin row.
const OwnerName = "OWNER"

// Admin is a member of the durable admin set.
type Admin struct {
	UserID   int64     `bson:"_id"`
	Username string    `bson:"username,omitempty"`
	Name     string    `bson:"name,omitempty"`
	AddedBy  int64     `bson:"added_by,omitempty"`
	AddedAt  time.Time `bson:"added_at"`
}

// Display renders the admin for lists, e.g. "123 @alice (Alice)".
func (a Admin) Display() string {
	out := fmt.Sprintf("%d", a.UserID)
	if a.Username != "" {
		out += " @" + a.Username
	}
	if a.Name != "" {
		out += " (" + a.Name + ")"
	}
	return out
}
