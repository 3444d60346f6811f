package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/lexcell/errors"
)

func TestInfo(t *testing.T) {
	info := Info{CommitHash: "0123456789abcdef", BuildTime: "2026-01-01", Version: "1.2.0"}
	assert.Equal(t, "0123456", info.Short())
	assert.Equal(t, "lexcell 1.2.0 (commit 0123456789abcdef, built 2026-01-01)", info.String())

	info.Version = "dev"
	assert.True(t, strings.HasPrefix(info.String(), "lexcell dev"))
	assert.Equal(t, "abc", Info{CommitHash: "abc"}.Short())

	assert.NotEmpty(t, Get().GoVersion)
}

func TestCompatible(t *testing.T) {
	tests := []struct {
		stored, running string
		ok              bool
	}{
		{"", "1.2.0", true},
		{"dev", "1.2.0", true},
		{"1.2.0", "dev", true},
		{"1.0.0", "1.2.0", true},
		{"1.2.0", "1.2.0", true},
		{"1.3.0", "1.2.0", false},
		{"0.9.0", "1.2.0", false},
		{"2.0.0", "1.2.0", false},
		{"0.3.1", "0.3.4", true},
		{"0.2.9", "0.3.4", false},
		{"garbage", "1.2.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.stored+"_on_"+tt.running, func(t *testing.T) {
			err := Compatible(tt.stored, tt.running)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, errors.ErrIncompatibleDataset), "%v", err)
		})
	}

	assert.Error(t, Compatible("1.0.0", "not-a-version"))
}
