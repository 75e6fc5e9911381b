// Package entity defines the entities and errors used in the application.
// It includes the URL struct, which represents a shortened URL together with
// its click history, and the error kinds shared across layers.
package entity

import (
	"errors"
	"time"
)

var (
	// ErrInvalidURL is returned when the original URL doesn't parse as an absolute URL.
	ErrInvalidURL = errors.New("invalid original url")
	// ErrInvalidValidity is returned when the requested validity isn't a positive duration.
	ErrInvalidValidity = errors.New("invalid validity")
	// ErrInvalidShortCode is returned when a requested short code violates the code format.
	ErrInvalidShortCode = errors.New("invalid short code format")
	// ErrShortCodeExists is returned when attempting to create a URL with a short code that already exists.
	ErrShortCodeExists = errors.New("short code exists")
	// ErrCodeSpaceExhausted is returned when short code generation keeps colliding past the retry cap.
	ErrCodeSpaceExhausted = errors.New("short code space exhausted")
	// ErrURLNotFound is returned when a URL with the specified short code cannot be found.
	ErrURLNotFound = errors.New("url not found")
	// ErrURLExpired is returned when a URL exists but is past its expiry and no longer redirectable.
	ErrURLExpired = errors.New("url expired")
)

// URL represents a shortened URL.
type URL struct {
	ShortCode   string    // ShortCode is the code used to shorten the original URL.
	OriginalURL string    // OriginalURL is the full URL that the short code resolves to.
	URLStats              // URLStats contains the click history of the URL.
	CreatedAt   time.Time // CreatedAt is the timestamp when the URL was created.
	ExpiresAt   time.Time // ExpiresAt is the timestamp past which the URL stops redirecting. Fixed at creation.
}

// URLStats contains the click history of a shortened URL.
// ClickCount always equals len(Clicks); both are mutated together and only
// by the registry.
type URLStats struct {
	ClickCount int64        // ClickCount is the number of times the shortened URL has been visited.
	Clicks     []ClickEvent // Clicks is the per-visit history, in chronological order.
}

// ClickEvent represents one observed redirect through a shortened URL.
type ClickEvent struct {
	Timestamp time.Time // Timestamp is the time of the visit.
	Referrer  string    // Referrer is the origin page. Empty when the client sent none.
	Location  string    // Location is the connecting address. Empty when unavailable.
}

// ExpiredAt reports whether the URL is past its expiry at the given instant.
// The boundary instant itself still counts as live.
func (u *URL) ExpiredAt(now time.Time) bool {
	return now.After(u.ExpiresAt)
}

// Clone returns a deep copy of the URL. The click slice is copied so the
// caller never holds a mutable view of registry state.
func (u *URL) Clone() *URL {
	cp := *u
	cp.Clicks = make([]ClickEvent, len(u.Clicks))
	copy(cp.Clicks, u.Clicks)
	return &cp
}
