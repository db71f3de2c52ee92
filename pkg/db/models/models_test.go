package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestMediaItemDefaults(t *testing.T) {
	zero, negative, three := 0, -2, 3

	tests := []struct {
		name     string
		item     MediaItem
		capacity int
		cycle    int
	}{
		{"unset", MediaItem{}, 1, 1},
		{"zero capacity", MediaItem{Capacity: &zero, LeaseDurationDays: 7}, 1, 7},
		{"negative", MediaItem{Capacity: &negative, LeaseDurationDays: -1}, 1, 1},
		{"configured", MediaItem{Capacity: &three, LeaseDurationDays: 15}, 3, 15},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.capacity, tc.item.EffectiveCapacity())
			assert.Equal(t, tc.cycle, tc.item.CycleDays())
		})
	}
}

func TestGroupedRedirect(t *testing.T) {
	grouped := CampaignRedirectGrouped
	other := "https://example.com"

	assert.False(t, (*LeaseExtraInformation)(nil).IsGroupedRedirect())
	assert.False(t, (&LeaseExtraInformation{}).IsGroupedRedirect())
	assert.False(t, (&LeaseExtraInformation{CampaignRedirect: &other}).IsGroupedRedirect())
	assert.True(t, (&LeaseExtraInformation{CampaignRedirect: &grouped}).IsGroupedRedirect())
}

func TestBeforeCreateKeepsExistingID(t *testing.T) {
	id := uuid.New()
	lease := &Lease{ID: id}
	assert.NoError(t, lease.BeforeCreate(nil))
	assert.Equal(t, id, lease.ID)

	fresh := &Lease{}
	assert.NoError(t, fresh.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, fresh.ID)
}
