// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package config

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestParseBool(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"YES", false, true},
		{" 1 ", false, true},
		{"no", true, false},
		{"0", true, false},
		{"", true, true},
		{"maybe", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			t.Setenv("DAYTIME_TEST_BOOL", tt.raw)
			assert.Equal(t, tt.want, ParseBool("DAYTIME_TEST_BOOL", tt.def))
		})
	}
}

func TestParseNumbersFallBackOnGarbage(t *testing.T) {
	t.Setenv("DAYTIME_TEST_INT", "12")
	assert.Equal(t, 12, ParseInt("DAYTIME_TEST_INT", 1))
	t.Setenv("DAYTIME_TEST_INT", "twelve")
	assert.Equal(t, 1, ParseInt("DAYTIME_TEST_INT", 1))

	t.Setenv("DAYTIME_TEST_DUR", "15m")
	assert.Equal(t, 15*time.Minute, ParseDuration("DAYTIME_TEST_DUR", time.Second))
	t.Setenv("DAYTIME_TEST_DUR", "15")
	assert.Equal(t, time.Second, ParseDuration("DAYTIME_TEST_DUR", time.Second))

	t.Setenv("DAYTIME_TEST_FLOAT", "0.25")
	assert.InDelta(t, 0.25, ParseFloat("DAYTIME_TEST_FLOAT", 1), 1e-9)
	t.Setenv("DAYTIME_TEST_FLOAT", "half")
	assert.InDelta(t, 1.0, ParseFloat("DAYTIME_TEST_FLOAT", 1), 1e-9)
}

func TestParseString_UnsetAndEmptyUseDefault(t *testing.T) {
	logger := zerolog.Nop()
	assert.Equal(t, ":7658", parseStringWithLogger(logger, "DAYTIME_TEST_UNSET_KEY", ":7658"))

	t.Setenv("DAYTIME_TEST_STR", "")
	assert.Equal(t, ":7658", parseStringWithLogger(logger, "DAYTIME_TEST_STR", ":7658"))

	t.Setenv("DAYTIME_TEST_STR", "127.0.0.1:13")
	assert.Equal(t, "127.0.0.1:13", parseStringWithLogger(logger, "DAYTIME_TEST_STR", ":7658"))
}
