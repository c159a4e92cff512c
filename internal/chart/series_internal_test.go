package chart

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/climatelens/climatelens/internal/climate"
)

func TestDateFormatter(t *testing.T) {
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		res  climate.Resolution
		want string
	}{
		{climate.ResolutionDaily, "2024-03-09"},
		{climate.ResolutionMonthly, "2024-03"},
	}
	for _, tc := range tests {
		t.Run(string(tc.res), func(t *testing.T) {
			format := dateFormatter(tc.res)
			assert.Equal(t, tc.want, format(day))
		})
	}
}
