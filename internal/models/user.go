package models

import (
	"strings"
	"time"
)

// User is a credential record. Username is the immutable identity key.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:100;not null" json:"username"`
	PasswordHash string    `gorm:"size:200;not null" json:"-"`
	Roles        string    `gorm:"size:200;not null" json:"roles"` // comma-joined, e.g. "ROLE_ADMIN,ROLE_USER"
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// RoleList splits the stored roles, dropping blanks.
func (u *User) RoleList() []string {
	return SplitRoles(u.Roles)
}

// SplitRoles parses a comma-joined role string.
func SplitRoles(roles string) []string {
	var out []string
	for _, r := range strings.Split(roles, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
