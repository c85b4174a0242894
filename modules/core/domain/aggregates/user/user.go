package user

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrFullNameTaken = errors.New("full name already exists")
)

type Role string

const (
	RoleAmbassador Role = "ambassador"
	RoleAdmin      Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleAmbassador || r == RoleAdmin
}

// PlaceholderChatID marks users created by the importer before they ever
// opened the mini-app. A real chat id replaces it on first login.
const PlaceholderChatID int64 = 0

type User struct {
	id        uuid.UUID
	fullName  string
	chatID    int64
	role      Role
	createdAt time.Time
	updatedAt time.Time
}

func New(fullName string, role Role) User {
	return User{
		fullName: strings.TrimSpace(fullName),
		chatID:   PlaceholderChatID,
		role:     role,
	}
}

func Hydrate(
	id uuid.UUID,
	fullName string,
	chatID int64,
	role Role,
	createdAt time.Time,
	updatedAt time.Time,
) User {
	return User{
		id:        id,
		fullName:  strings.TrimSpace(fullName),
		chatID:    chatID,
		role:      role,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (u User) ID() uuid.UUID        { return u.id }
func (u User) FullName() string     { return u.fullName }
func (u User) ChatID() int64        { return u.chatID }
func (u User) Role() Role           { return u.role }
func (u User) IsAdmin() bool        { return u.role == RoleAdmin }
func (u User) CreatedAt() time.Time { return u.createdAt }
func (u User) UpdatedAt() time.Time { return u.updatedAt }
func (u User) IsZero() bool         { return u.id == uuid.Nil && u.fullName == "" }

func (u User) WithChatID(chatID int64) User {
	u.chatID = chatID
	return u
}

func (u User) WithRole(role Role) User {
	u.role = role
	return u
}
