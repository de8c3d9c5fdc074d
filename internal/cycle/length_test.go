package cycle

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestEstimateLength(t *testing.T) {
	p := DefaultParams()

	tests := []struct {
		name      string
		statement *time.Time
		due       *time.Time
		want      int
	}{
		{
			name:      "grace 20 maps to 30-day cycle",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 7, 5),
			want:      30,
		},
		{
			name:      "grace 25 boundary maps to 30-day cycle",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 7, 10),
			want:      30,
		},
		{
			name:      "grace 26 boundary maps to 31-day cycle",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 7, 11),
			want:      31,
		},
		{
			name:      "grace 32 boundary maps to 31-day cycle",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 7, 17),
			want:      31,
		},
		{
			name:      "grace 39 outside buckets keeps default",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 7, 24),
			want:      30,
		},
		{
			name:      "grace 10 outside buckets keeps default",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 6, 25),
			want:      30,
		},
		{
			name:      "due before statement keeps default",
			statement: datePtr(2024, 6, 15),
			due:       datePtr(2024, 6, 1),
			want:      30,
		},
		{
			name:      "missing due date keeps default",
			statement: datePtr(2024, 6, 15),
			due:       nil,
			want:      30,
		},
		{
			name:      "missing statement date keeps default",
			statement: nil,
			due:       datePtr(2024, 7, 10),
			want:      30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.EstimateLength(tt.statement, tt.due); got != tt.want {
				t.Errorf("EstimateLength() = %d, want %d", got, tt.want)
			}
		})
	}
}
