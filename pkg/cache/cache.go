// Package cache stores rendered radar artifacts and settled layouts.
//
// A [Cache] holds opaque byte payloads by key. Three backends exist:
// [NullCache] never stores anything, [FileCache] keeps entries on disk for
// the CLI and [RedisCache] shares entries between server replicas.
//
// Keys are built by a [Keyer] so that every input that changes the output
// (definition contents, seed, view, format) is part of the key:
//
//	k := cache.NewDefaultKeyer()
//	layoutKey := k.LayoutKey(cache.Hash(definition), cache.LayoutKeyOpts{Seed: 42})
package cache

import (
	"context"
	"time"
)

// Default lifetimes per entry kind. Layouts are deterministic for their
// key and may live long; source snapshots go stale quickly.
const (
	LayoutTTL   = 7 * 24 * time.Hour
	ArtifactTTL = 24 * time.Hour
	SourceTTL   = 10 * time.Minute
)

// Cache is a byte store with per-entry expiry. A ttl of zero never
// expires. Get reports a miss with ok == false and a nil error.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
