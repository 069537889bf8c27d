// Package source defines the episode source interface and the tagged
// transport error taxonomy shared by its implementations.
package source

import (
	"context"
	"errors"
	"fmt"

	"shownotify/internal/model"
)

// Source supplies tracked shows and their unseen episodes.
type Source interface {
	ListShows(ctx context.Context) ([]model.Show, error)
	UnseenEpisodes(ctx context.Context, showID int64) ([]model.Episode, error)
}

// ErrorKind classifies a transport failure for retry dispatch.
type ErrorKind int

// Transport error kinds.
const (
	KindOther ErrorKind = iota
	KindRateLimited
	KindTimeout
	KindNetwork
)

func (k ErrorKind) String() string {
	switch k {
	case KindRateLimited:
		return "rate-limited"
	case KindTimeout:
		return "timeout"
	case KindNetwork:
		return "network"
	}
	return "other"
}

// Error is a tagged transport error produced by source implementations.
type Error struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether err is a transient transport failure worth
// retrying. Only tagged errors with a non-Other kind qualify.
func Retryable(err error) bool {
	var se *Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Kind != KindOther
}
