package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	tests := []struct {
		name     string
		sentinel error
	}{
		{"not found", ErrNotFound},
		{"invalid config", ErrInvalidConfig},
		{"unsupported format", ErrUnsupportedFormat},
		{"incompatible dataset", ErrIncompatibleDataset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Wrapf(Wrap(tt.sentinel, "inner"), "outer %d", 1)
			assert.True(t, Is(err, tt.sentinel))
			assert.Contains(t, err.Error(), "outer 1: inner")
		})
	}
}

func TestIsNotFoundError(t *testing.T) {
	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(New("no such form")))
	// cockroachdb matches leaf errors by message and type, not by identity
	assert.True(t, IsNotFoundError(New("not found")))
	assert.True(t, IsNotFoundError(NewNotFoundError("form %s", "tupi_hand")))
}

func TestNewInvalidConfigError(t *testing.T) {
	err := NewInvalidConfigError("workers must be positive, got %d", 0)
	assert.True(t, IsInvalidConfigError(err))
	assert.Contains(t, err.Error(), "workers must be positive, got 0")
	assert.False(t, IsInvalidConfigError(nil))
}

func TestHintsAndDetails(t *testing.T) {
	err := Wrap(ErrInvalidConfig, "separator pattern")
	err = WithHint(err, "use a character class such as [,;]")
	err = WithDetailf(err, "pattern was %q", "[")
	err = Wrap(err, "loading lexcell.toml")

	assert.True(t, Is(err, ErrInvalidConfig))
	assert.Equal(t, []string{"use a character class such as [,;]"}, GetAllHints(err))
	assert.Equal(t, []string{`pattern was "["`}, GetAllDetails(err))
}

type cellFailure struct {
	cell string
}

func (e *cellFailure) Error() string {
	return "cell " + e.cell
}

func TestAsThroughWrap(t *testing.T) {
	err := Wrap(&cellFailure{cell: "H5"}, "import")

	var target *cellFailure
	require.True(t, As(err, &target))
	assert.Equal(t, "H5", target.cell)
}

func TestJoin(t *testing.T) {
	err := Join(ErrNotFound, ErrUnsupportedFormat)
	assert.True(t, Is(err, ErrNotFound))
	assert.True(t, Is(err, ErrUnsupportedFormat))
	assert.False(t, Is(err, ErrInvalidConfig))
}

func TestNilHandling(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithHint(nil, "hint"))
}

func TestStackTrace(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func ExampleWrap() {
	err := Wrap(ErrUnsupportedFormat, "reading wordlist.ods")
	fmt.Println(err)
	// Output: reading wordlist.ods: unsupported format
}
