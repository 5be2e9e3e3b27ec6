package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Mode describes what traffic a tenant is allowed to receive.
type Mode string

const (
	// ModeActive routes traffic normally.
	ModeActive Mode = "active"
	// ModeLandingOnly serves the storefront landing page but denies
	// commerce gateway routes.
	ModeLandingOnly Mode = "landing-only"
	// ModeExpired answers every request with 410 Gone.
	ModeExpired Mode = "expired"
	// ModeRedirectOnly redirects every request to RedirectTo (or the
	// canonical host when RedirectTo is empty).
	ModeRedirectOnly Mode = "redirect-only"
)

// Valid reports whether m is one of the known tenant modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeActive, ModeLandingOnly, ModeExpired, ModeRedirectOnly:
		return true
	}
	return false
}

// ErrMappingNotFound is returned by mapping stores when no record exists
// for the requested host.
var ErrMappingNotFound = errors.New("host mapping not found")

// HostMapping binds one hostname to the tenant that owns it.
// Host is the unique key; Host and CanonicalHost are stored lowercase.
type HostMapping struct {
	Host          string    `json:"host" yaml:"host"`
	ShopID        string    `json:"shopId" yaml:"shopId"`
	CanonicalHost string    `json:"canonicalHost" yaml:"canonicalHost"`
	DefaultLocale string    `json:"defaultLocale" yaml:"defaultLocale"`
	Mode          Mode      `json:"mode" yaml:"mode"`
	RedirectTo    string    `json:"redirectTo,omitempty" yaml:"redirectTo,omitempty"`
	ExpiresAt     int64     `json:"expiresAt,omitempty" yaml:"expiresAt,omitempty"` // epoch ms, informational only
	UpdatedAt     time.Time `json:"updatedAt,omitempty" yaml:"-"`
}

// NormalizeHost lowercases a hostname and strips a trailing port, so
// "Shop.Example:443" and "shop.example" compare equal.
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	// A colon only delimits a port when it comes after any IPv6
	// bracket, so "[::1]:8080" loses its port but "::1" stays intact.
	if i := strings.LastIndexByte(host, ':'); i > strings.LastIndexByte(host, ']') {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

// Normalize lowercases every hostname-valued and locale-valued field.
// Must be called before storing or comparing a mapping.
func (m *HostMapping) Normalize() {
	m.Host = NormalizeHost(m.Host)
	m.CanonicalHost = NormalizeHost(m.CanonicalHost)
	m.RedirectTo = NormalizeHost(m.RedirectTo)
	m.DefaultLocale = strings.ToLower(strings.TrimSpace(m.DefaultLocale))
	m.ShopID = strings.TrimSpace(m.ShopID)
}

// Validate checks the invariants every stored mapping must satisfy.
func (m *HostMapping) Validate() error {
	if m.Host == "" {
		return errors.New("host is required")
	}
	if m.ShopID == "" {
		return errors.New("shopId is required")
	}
	if m.CanonicalHost == "" {
		return errors.New("canonicalHost is required")
	}
	if m.DefaultLocale == "" {
		return errors.New("defaultLocale is required")
	}
	if _, err := language.Parse(m.DefaultLocale); err != nil {
		return fmt.Errorf("defaultLocale %q is not a valid locale: %w", m.DefaultLocale, err)
	}
	if !m.Mode.Valid() {
		return fmt.Errorf("mode %q is not one of active, landing-only, expired, redirect-only", m.Mode)
	}
	return nil
}
