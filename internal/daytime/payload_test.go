// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package daytime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_CtimeLayout(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "reference example",
			in:   time.Date(1993, time.June, 30, 21, 49, 8, 0, time.UTC),
			want: "Wed Jun 30 21:49:08 1993\n",
		},
		{
			name: "single digit day is space padded",
			in:   time.Date(2024, time.March, 3, 7, 5, 9, 0, time.UTC),
			want: "Sun Mar  3 07:05:09 2024\n",
		},
		{
			name: "year 1000",
			in:   time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC),
			want: "Wed Jan  1 00:00:00 1000\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Format(tt.in)
			assert.Equal(t, tt.want, string(got))
			assert.Len(t, got, PayloadSize)
		})
	}
}

func TestFormat_TruncatesFiveDigitYears(t *testing.T) {
	got := Format(time.Date(12345, time.January, 1, 0, 0, 0, 0, time.UTC))
	require.Len(t, got, PayloadSize)
	assert.Equal(t, " Jan  1 00:00:00 12345", string(got[3:]))
	assert.NotEqual(t, byte('\n'), got[len(got)-1])
}

func TestFormat_AlwaysPayloadSizeInFourDigitYears(t *testing.T) {
	start := time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 9000; i += 37 {
		ts := start.AddDate(i, i%12, i%28).Add(time.Duration(i) * time.Minute)
		b := Format(ts)
		if len(b) != PayloadSize || b[len(b)-1] != '\n' {
			t.Fatalf("Format(%v) = %q (len %d)", ts, b, len(b))
		}
	}
}

func TestParse_InvertsFormat(t *testing.T) {
	in := time.Date(2026, time.October, 14, 9, 30, 15, 999, time.UTC)
	got, err := Parse(Format(in), time.UTC)
	require.NoError(t, err)
	assert.True(t, in.Truncate(time.Second).Equal(got), "got %v", got)
}

func TestParse_ToleratesMissingNewlineAndNUL(t *testing.T) {
	got, err := Parse([]byte("Wed Jun 30 21:49:08 1993\x00"), time.UTC)
	require.NoError(t, err)
	assert.Equal(t, 1993, got.Year())

	got, err = Parse([]byte("Wed Jun 30 21:49:08 1993"), nil)
	require.NoError(t, err)
	assert.Equal(t, time.Local, got.Location())
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(nil, time.UTC)
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Parse([]byte("\n"), time.UTC)
	require.ErrorIs(t, err, ErrEmptyPayload)

	_, err = Parse([]byte("2024-01-01T00:00:00Z"), time.UTC)
	require.ErrorIs(t, err, ErrMalformedPayload)
}
