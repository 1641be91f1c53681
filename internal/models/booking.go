package models

import (
	"strings"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
)

// Active reports whether a booking in this status holds its slot.
func (s Status) Active() bool {
	return s == StatusPending || s == StatusAccepted
}

type Booking struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Email             string     `json:"email"`
	ScheduledDate     time.Time  `json:"scheduled_date"`
	Status            Status     `json:"status"`
	IsVerified        bool       `json:"is_verified"`
	VerificationToken *string    `json:"-"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// NewBooking builds an unsaved, unverified pending booking. The token is
// issued separately before the booking is persisted.
func NewBooking(d Draft, now time.Time) *Booking {
	return &Booking{
		Name:          strings.TrimSpace(d.Name),
		Email:         strings.TrimSpace(d.Email),
		ScheduledDate: d.ScheduledDate,
		Status:        StatusPending,
		CreatedAt:     now,
	}
}

// TokenExpired reports whether the verification token can no longer be used
// at the given moment. A missing expiry counts as expired.
func (b *Booking) TokenExpired(now time.Time) bool {
	return b.ExpiresAt == nil || !now.Before(*b.ExpiresAt)
}

type Draft struct {
	Name          string    `json:"name" validate:"required,max=100"`
	Email         string    `json:"email" validate:"required,email"`
	ScheduledDate time.Time `json:"scheduled_date" validate:"required"`
}

// Patch carries a partial update. Nil fields are left untouched.
type Patch struct {
	Name          *string    `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Email         *string    `json:"email,omitempty" validate:"omitempty,email"`
	ScheduledDate *time.Time `json:"scheduled_date,omitempty"`
}

// Trimmed returns a copy of p with surrounding whitespace removed from its
// text fields.
func (p Patch) Trimmed() Patch {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := strings.TrimSpace(*p.Email)
		p.Email = &email
	}

	return p
}

func (p Patch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.ScheduledDate == nil
}

type Filter struct {
	Verified *bool
	Search   string
}
