package expiry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name  string
		input string
		want  time.Duration
	}{
		{name: "bare seconds", input: "3600", want: time.Hour},
		{name: "singular second", input: "1 second", want: time.Second},
		{name: "plural minutes", input: "5 minutes", want: 5 * time.Minute},
		{name: "hours", input: "2 hours", want: 7200 * time.Second},
		{name: "day", input: "1 day", want: 24 * time.Hour},
		{name: "year is 365 days", input: "1 year", want: 365 * 24 * time.Hour},
		{name: "extra whitespace", input: "  3   days ", want: 72 * time.Hour},
		{name: "zero", input: "0 hours", want: 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Parse(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "empty", input: "", wantErr: "expected"},
		{name: "too many words", input: "1 big year", wantErr: "expected"},
		{name: "unknown unit", input: "3 fortnights", wantErr: `unknown unit "fortnight"`},
		{name: "non integer", input: "1.5 days", wantErr: "magnitude must be an integer"},
		{name: "negative", input: "-1 day", wantErr: "must not be negative"},
		{name: "years past duration range", input: "300 years", wantErr: "out of range"},
		{name: "large magnitude", input: "100000000000 years", wantErr: "out of range"},
		{name: "multiplication overflow", input: "100000000000000000 years", wantErr: "out of range"},
		{name: "seconds past duration range", input: "9223372037", wantErr: "out of range"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.input)
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}

func TestFrom(t *testing.T) {
	t.Parallel()

	now := time.Date(2017, 6, 1, 12, 0, 0, 0, time.UTC)

	got, err := From(now, "2 hours")
	require.NoError(t, err)
	assert.Equal(t, now.Add(7200*time.Second), got)

	_, err = From(now, "2 eons")
	assert.Error(t, err)

	_, err = From(now, "300 years")
	assert.ErrorContains(t, err, "out of range")
}
