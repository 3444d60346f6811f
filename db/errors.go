package db

import (
	"strings"

	"github.com/teranos/lexcell/errors"
)

// ErrDatabaseClosed is returned when a store is used after Close, typically
// when an import is cancelled while workers are still writing.
var ErrDatabaseClosed = errors.New("database is closed")

// IsDatabaseClosed reports whether err means the connection is gone.
// The driver returns its own error values, so the message is checked too.
func IsDatabaseClosed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDatabaseClosed) {
		return true
	}
	return strings.Contains(err.Error(), "database is closed")
}
