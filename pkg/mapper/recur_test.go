package mapper

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRecur(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		// simple forms
		{"daily", "daily"},
		{"weekly", "weekly"},
		{"monthly", "monthly"},
		{"yearly", "yearly"},
		// single cycle
		{"every day", "daily"},
		{"ev day", "daily"},
		{"every 1 week", "weekly"},
		{"every hour", "hourly"},
		{"every year", "yearly"},
		// multi cycle
		{"every 3 days", "3 days"},
		{"every 2 weeks", "2 weeks"},
		{"every other month", "2 months"},
		// day of week
		{"every monday", "weekly"},
		{"Every Monday", "weekly"},
		{"every tues", "weekly"},
		{"every 2nd tuesday", "2 weeks"},
		{"every other fri", "2 weeks"},
		// day of month
		{"every 15th", "monthly"},
		{"every 1st", "monthly"},
		// special labels
		{"every morning", "daily"},
		{"every evening", "daily"},
		{"every workday", "weekdays"},
		{"every weekday", "weekdays"},
		{"every last day", "monthly"},
		// normalization and ignorable time suffixes
		{"  Every   Other  Week ", "2 weeks"},
		{"every day at 9:00", "daily"},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseRecur(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParseRecurEmpty(t *testing.T) {
	got, err := ParseRecur("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseRecurUnsupported(t *testing.T) {
	for _, in := range []string{
		"whenever",
		"every 15th of march",
		"after lunch",
	} {
		_, err := ParseRecur(in)
		assert.True(t, errors.Is(err, ErrUnsupportedRecurrence), "input %q", in)
	}
}
