package spatialaudio

import "errors"

var (
	// ErrClosed is returned by operations on an engine after Close.
	ErrClosed = errors.New("sound: engine is closed")
	// ErrUnknownSound means no buffer is loaded under the given id.
	ErrUnknownSound = errors.New("sound: unknown sound id")
	// ErrUnknownGroup means the group id does not name a live group.
	ErrUnknownGroup = errors.New("sound: unknown group id")
	// ErrNoFreeSources means the pool cannot supply the requested number of
	// channels.
	ErrNoFreeSources = errors.New("sound: not enough free sources")
)
