package website

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatsPeriodDays(t *testing.T) {
	tests := []struct {
		period string
		days   int
		ok     bool
	}{
		{"", 7, true},
		{"week", 7, true},
		{"today", 1, true},
		{"month", 0, false},
		{"TODAY", 0, false},
	}
	for _, test := range tests {
		t.Run("period="+test.period, func(t *testing.T) {
			c := &RequestContext{
				Req: httptest.NewRequest(http.MethodGet, "/posts/stats/top-posters?period="+test.period, nil),
			}
			days, ok := statsPeriodDays(c)
			assert.Equal(t, test.ok, ok)
			assert.Equal(t, test.days, days)
		})
	}
}
