package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarketAcceptingApplications(t *testing.T) {
	now := time.Now()
	future := now.Add(24 * time.Hour)
	past := now.Add(-24 * time.Hour)

	tests := []struct {
		name   string
		market Market
		want   bool
	}{
		{"active with no deadline", Market{IsActive: true}, true},
		{"active before deadline", Market{IsActive: true, ApplicationDeadline: &future}, true},
		{"active past deadline", Market{IsActive: true, ApplicationDeadline: &past}, false},
		{"inactive", Market{IsActive: false}, false},
		{"inactive before deadline", Market{IsActive: false, ApplicationDeadline: &future}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.market.AcceptingApplications(now))
		})
	}
}
