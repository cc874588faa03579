// Package internalerr holds the sentinel errors shared by the config loader,
// the archive stores and the hosts. Callers test them with errors.Is.
package internalerr

import "errors"

var (
	// ErrNotFound: no archived analysis has the requested ID.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput: a record or input file cannot be accepted as given.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidConfig: a lexicon or intents file names unknown labels or
	// has nothing usable, or a watcher has no files to watch.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrStoreUnavailable: the archive database could not be opened.
	ErrStoreUnavailable = errors.New("store unavailable")
)
