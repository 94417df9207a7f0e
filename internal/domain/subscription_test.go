package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionUsable(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	future := now.Add(36 * time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name string
		sub  Subscription
		want bool
	}{
		{"active", Subscription{Status: SubscriptionActive}, true},
		{"past due grace", Subscription{Status: SubscriptionPastDue}, true},
		{"trial running", Subscription{Status: SubscriptionTrial, TrialEndsAt: &future}, true},
		{"trial ended", Subscription{Status: SubscriptionTrial, TrialEndsAt: &past}, false},
		{"trial without end", Subscription{Status: SubscriptionTrial}, false},
		{"canceled", Subscription{Status: SubscriptionCanceled}, false},
		{"expired", Subscription{Status: SubscriptionExpired}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.sub.Usable(now))
		})
	}
}

func TestTrialDaysLeft(t *testing.T) {
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	ends := now.Add(36 * time.Hour)
	sub := Subscription{Status: SubscriptionTrial, TrialEndsAt: &ends}
	assert.Equal(t, 2, sub.TrialDaysLeft(now))
	assert.Equal(t, 0, sub.TrialDaysLeft(ends.Add(time.Second)))
	assert.Equal(t, 0, Subscription{Status: SubscriptionActive}.TrialDaysLeft(now))
}

func TestTemplateTypes(t *testing.T) {
	assert.True(t, TemplateCountReport.Valid())
	assert.False(t, TemplateType("NEWSLETTER").Valid())
	assert.True(t, TemplateDonationConfirmation.ChurchEditable())
	assert.False(t, TemplatePasswordReset.ChurchEditable())
}
