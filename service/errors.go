package service

import (
	"errors"
	"fmt"
)

// Remote outcomes surfaced by the ChannelService implementation.
var (
	// ErrChannelNotFound indicates the remote object is gone. Deletes treat
	// this as success; every other operation treats it as a hard failure.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrPermissionDenied indicates the caller (or the bot itself) lacks the
	// rights for a remote operation. Surfaced to the caller, never retried.
	ErrPermissionDenied = errors.New("permission denied")
)

// Domain-level rejections. These are user-facing and are never logged as errors.
var (
	// ErrNotOwner is returned when a command requires owning a live dynamic channel.
	ErrNotOwner = errors.New("user does not own a dynamic channel")

	// ErrNotOwnable is returned when a channel is not a tracked dynamic channel.
	ErrNotOwnable = errors.New("channel is not a dynamic channel")
)

// AlreadyOwnedError is returned by Claim when the recorded owner is still
// present in the channel.
type AlreadyOwnedError struct {
	OwnerID int64
}

func (e *AlreadyOwnedError) Error() string {
	return fmt.Sprintf("channel is already owned by user %d", e.OwnerID)
}
