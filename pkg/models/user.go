package models

import "strings"

// UserStatus is the membership tier tracked for every known user
type UserStatus string

const (
	StatusNormal UserStatus = "normal"
	StatusAdmin  UserStatus = "admin"
	StatusBanned UserStatus = "banned"
)

// User representa el documento de la colección "users".
// Warns are kept in insertion order, oldest first.
type User struct {
	ID        string     `bson:"_id" json:"id"`
	FirstName string     `bson:"first_name,omitempty" json:"first_name,omitempty"`
	LastName  string     `bson:"last_name,omitempty" json:"last_name,omitempty"`
	Username  string     `bson:"username,omitempty" json:"username,omitempty"`
	Status    UserStatus `bson:"status,omitempty" json:"status,omitempty"`
	Warns     []Warn     `bson:"warns" json:"warns"`
}

// IsAdmin reports whether the user may run admin commands
func (u *User) IsAdmin() bool {
	return u != nil && u.Status == StatusAdmin
}

// IsBanned reports whether the user is banned from the managed groups
func (u *User) IsBanned() bool {
	return u != nil && u.Status == StatusBanned
}

// DisplayName returns the best human readable name for the user.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	switch {
	case name != "":
		return name
	case u.Username != "":
		return u.Username
	default:
		return "[" + u.ID + "]"
	}
}

// Group is a guild managed by the bot. Bans are propagated across all of them.
type Group struct {
	ID    string `bson:"_id" json:"id"`
	Title string `bson:"title,omitempty" json:"title,omitempty"`
}
