// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"

	"shownotify/internal/idset"
	"shownotify/internal/model"
)

// Keys of the persisted id-sets.
const (
	KeyDisabledShows     = "disabled_shows"
	KeyPendingEpisodes   = "pending_episodes"
	KeyDiscardedEpisodes = "discarded_episodes"
)

// Storage is the interface for all persistence operations. Every id-set
// is normalized (positive, deduplicated, ascending) on read and write.
type Storage interface {
	LoadIDSet(ctx context.Context, key string) (idset.Set, error)
	SaveIDSet(ctx context.Context, key string, ids []int64) error
	// SaveIDSets replaces several sets in one transaction; a pass's
	// pending and discarded sets are persisted together or not at all.
	SaveIDSets(ctx context.Context, sets map[string][]int64) error
	AddToIDSet(ctx context.Context, key string, ids []int64) error
	RemoveFromIDSet(ctx context.Context, key string, ids []int64) error

	UpsertShowNames(ctx context.Context, names map[int64]string) error
	ListShowNames(ctx context.Context) (map[int64]string, error)

	RecordPass(ctx context.Context, stats model.PassStats) error
	LastPass(ctx context.Context) (*model.PassStats, error)

	Close() error
}
