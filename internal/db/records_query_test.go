package db

import (
	"strings"
	"testing"
	"time"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

func TestWhereClause(t *testing.T) {
	now := time.Date(2024, 5, 26, 12, 0, 0, 0, time.UTC)
	today := models.PeriodFilters(models.PeriodToday, now)
	track := models.TrackKyoto

	tests := []struct {
		name     string
		filters  models.RecordFilters
		contains []string
		args     int
	}{
		{
			name:     "no filters",
			filters:  models.RecordFilters{},
			contains: []string{" WHERE 1=1"},
			args:     0,
		},
		{
			name:     "track only",
			filters:  models.RecordFilters{Track: &track},
			contains: []string{"track = $1"},
			args:     1,
		},
		{
			name:     "period window",
			filters:  today,
			contains: []string{"purchased_at >= $1", "purchased_at < $2"},
			args:     2,
		},
		{
			name:     "track and window",
			filters:  models.RecordFilters{Track: &track, Since: today.Since, Until: today.Until},
			contains: []string{"track = $1", "purchased_at >= $2", "purchased_at < $3"},
			args:     3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := whereClause(tt.filters)
			for _, want := range tt.contains {
				if !strings.Contains(clause, want) {
					t.Errorf("Expected clause to contain %q, got %q", want, clause)
				}
			}
			if len(args) != tt.args {
				t.Errorf("Expected %d args, got %d", tt.args, len(args))
			}
		})
	}

	if _, args := whereClause(models.RecordFilters{Track: &track}); args[0] != "kyoto" {
		t.Errorf("Expected track stored by name, got %v", args[0])
	}
}
