package models

import "time"

// AccessOutcome is the result of checking whether a viewer may read a tutorial body.
type AccessOutcome string

const (
	AccessAllowed          AccessOutcome = "ALLOWED"
	AccessDenyNeedsLogin   AccessOutcome = "DENY_NEEDS_LOGIN"
	AccessDenyNeedsUpgrade AccessOutcome = "DENY_NEEDS_UPGRADE"
	AccessDenyExpired      AccessOutcome = "DENY_EXPIRED"
	AccessNotFound         AccessOutcome = "NOT_FOUND"
)

var accessMessages = map[AccessOutcome]string{
	AccessDenyNeedsLogin:   "Войдите в аккаунт, чтобы читать этот урок.",
	AccessDenyNeedsUpgrade: "Этот урок доступен только с премиум-подпиской.",
	AccessDenyExpired:      "Срок действия вашей премиум-подписки истёк. Продлите её, чтобы продолжить.",
	AccessNotFound:         "Урок не найден.",
}

// Allowed reports whether the body may be shown.
func (o AccessOutcome) Allowed() bool {
	return o == AccessAllowed
}

// Message returns the user-facing text for a denial, empty when allowed.
func (o AccessOutcome) Message() string {
	return accessMessages[o]
}

// AccessDecision is the outcome plus the text shown to the reader.
type AccessDecision struct {
	Outcome AccessOutcome `json:"outcome"`
	Message string        `json:"message,omitempty"`
}

// NewAccessDecision wraps an outcome with its message.
func NewAccessDecision(o AccessOutcome) AccessDecision {
	return AccessDecision{Outcome: o, Message: o.Message()}
}

// EvaluateAccess decides access for a tutorial that exists. user must be the
// freshly loaded row for the viewer, or nil for anonymous and unknown viewers.
// The expiry boundary is exclusive: now == premium_until is expired.
func EvaluateAccess(isFree bool, user *User, now time.Time) AccessOutcome {
	if isFree {
		return AccessAllowed
	}
	if user == nil {
		return AccessDenyNeedsLogin
	}
	if user.Role == RoleAdmin {
		return AccessAllowed
	}
	if !user.IsPremium {
		return AccessDenyNeedsUpgrade
	}
	if user.PremiumUntil == nil {
		return AccessAllowed
	}
	if now.Before(*user.PremiumUntil) {
		return AccessAllowed
	}
	return AccessDenyExpired
}
