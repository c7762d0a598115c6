package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pedegas/internal/domain"
)

func TestPlanExpired(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	premium := domain.GasStation{
		Plan:      domain.PlanPremium,
		PlanUntil: now.Add(24 * time.Hour),
	}
	assert.False(t, domain.PlanExpired(premium, now))
	assert.True(t, domain.PlanExpired(premium, now.Add(48*time.Hour)))

	// O plano gratuito não expira.
	free := domain.GasStation{Plan: domain.PlanFree}
	assert.False(t, domain.PlanExpired(free, now))
	assert.False(t, domain.PlanExpired(free, now.AddDate(10, 0, 0)))
}
