package session

import (
	"errors"
	"strings"
	"time"
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole lowercases whatever the server sent ("ADMIN" -> admin).
func ParseRole(raw string) Role { return Role(strings.ToLower(strings.TrimSpace(raw))) }

var (
	ErrNoSession    = errors.New("no active session")
	ErrRoleMismatch = errors.New("account role does not match the selected role")
)

// Session is the authenticated identity. Only the five identity strings plus the
// lookup key are persisted; nothing else about the user is kept locally.
type Session struct {
	Key       string    `gorm:"column:session_key;type:char(32);primaryKey" json:"-"`
	Token     string    `gorm:"column:auth_token;type:text;not null" json:"-"`
	Role      Role      `gorm:"column:user_role;size:16;not null" json:"role"`
	UserID    string    `gorm:"column:user_id;size:64" json:"userId"`
	Username  string    `gorm:"column:username;size:255;not null" json:"username"`
	Email     string    `gorm:"column:user_email;size:255" json:"email"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	ExpiresAt time.Time `gorm:"column:expires_at;index" json:"expiresAt"`
}

func (Session) TableName() string { return "sessions" }

// Complete mirrors the stored-user check: token, role and username must all be set.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && s.Role != "" && s.Username != ""
}

// Expired reports whether the session outlived its expiry. A zero expiry never expires.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) IsAdmin() bool    { return s != nil && s.Role == RoleAdmin }
func (s *Session) IsCustomer() bool { return s != nil && s.Role == RoleCustomer }
