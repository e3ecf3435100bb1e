package service

import (
	"strings"

	"github.com/campuspulse/events-server/internal/models"
)

// Authorization policy: pure decision functions over a principal and a
// target resource. No state, no side effects.

// CanCreateEvent reports whether the account may publish events.
func CanCreateEvent(account *models.Account) bool {
	return account.IsHost
}

// CanModifyEvent reports whether the account owns the event. Events without
// an owner predate ownership enforcement and cannot be modified through the
// API.
func CanModifyEvent(account *models.Account, event *models.Event) bool {
	return event.OwnerID != nil && *event.OwnerID == account.ID
}

// CanDeleteEvent follows the same ownership rule as modification.
func CanDeleteEvent(account *models.Account, event *models.Event) bool {
	return CanModifyEvent(account, event)
}

// IsAdmin reports membership in the configured allow-list. Evaluated fresh
// on every call so allow-list changes take effect without restart.
func IsAdmin(email string, allowList []string) bool {
	for _, admin := range allowList {
		if strings.EqualFold(admin, email) {
			return true
		}
	}
	return false
}

// EmailInDomain reports whether the email ends with the institutional
// domain suffix, case-insensitive. The suffix may be configured with or
// without a leading "@".
func EmailInDomain(email, suffix string) bool {
	s := strings.ToLower(suffix)
	if !strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	return strings.HasSuffix(strings.ToLower(email), s)
}
