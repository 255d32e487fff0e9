// Package console provides sources of raw server log lines.
package console

import (
	"context"
	"errors"
)

// Receiver handles incoming raw log message lines. Returning an error stops the source.
type Receiver interface {
	Send(line string) error
}

// Source is responsible for setting up and sending console log messages
// to a Receiver.
type Source interface {
	Open(ctx context.Context) error
	Start(ctx context.Context, receiver Receiver) error
	Close(ctx context.Context) error
}

var (
	ErrOpen  = errors.New("failed to open console source")
	ErrRead  = errors.New("failed to read console source")
	ErrClose = errors.New("failed to close log source")
)
