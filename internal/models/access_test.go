package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateAccess(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	yesterday := now.Add(-24 * time.Hour)
	tomorrow := now.Add(24 * time.Hour)

	cases := []struct {
		name   string
		isFree bool
		user   *User
		want   AccessOutcome
	}{
		{"free tutorial anonymous", true, nil, AccessAllowed},
		{"free tutorial regular user", true, &User{Role: RoleUser}, AccessAllowed},
		{"premium tutorial anonymous", false, nil, AccessDenyNeedsLogin},
		{"admin without premium", false, &User{Role: RoleAdmin}, AccessAllowed},
		{"admin with expired premium", false, &User{Role: RoleAdmin, IsPremium: true, PremiumUntil: &yesterday}, AccessAllowed},
		{"regular user", false, &User{Role: RoleUser}, AccessDenyNeedsUpgrade},
		{"stale until without premium flag", false, &User{Role: RoleUser, PremiumUntil: &tomorrow}, AccessDenyNeedsUpgrade},
		{"lifetime premium", false, &User{Role: RoleUser, IsPremium: true}, AccessAllowed},
		{"active premium", false, &User{Role: RoleUser, IsPremium: true, PremiumUntil: &tomorrow}, AccessAllowed},
		{"expired premium", false, &User{Role: RoleUser, IsPremium: true, PremiumUntil: &yesterday}, AccessDenyExpired},
		{"expires exactly now", false, &User{Role: RoleUser, IsPremium: true, PremiumUntil: &now}, AccessDenyExpired},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EvaluateAccess(tc.isFree, tc.user, now))
		})
	}
}

func TestAccessDecisionMessages(t *testing.T) {
	assert.Empty(t, NewAccessDecision(AccessAllowed).Message)
	for _, o := range []AccessOutcome{AccessDenyNeedsLogin, AccessDenyNeedsUpgrade, AccessDenyExpired, AccessNotFound} {
		d := NewAccessDecision(o)
		assert.False(t, d.Outcome.Allowed())
		assert.NotEmpty(t, d.Message, o)
	}
}

func TestSeedReportCounters(t *testing.T) {
	r := NewSeedReport()
	r.AddCreated("getting-started")
	r.AddSkipped("hello-world")
	r.AddSkipped("variables")
	assert.Equal(t, 1, r.CreatedCount)
	assert.Equal(t, 2, r.SkippedCount)
	assert.Equal(t, 0, r.FailedCount)
	assert.Equal(t, []SeedFailure{}, r.Failed)
}

func TestViewerFromClaims(t *testing.T) {
	assert.Nil(t, ViewerFromClaims(nil))
	assert.Nil(t, ViewerFromClaims(&JWTClaims{}))
	v := ViewerFromClaims(&JWTClaims{UserID: "u1", Role: RoleAdmin})
	assert.Equal(t, &Viewer{UserID: "u1", Role: RoleAdmin}, v)
}
