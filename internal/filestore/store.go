// Package filestore defines the object-storage interface pmysql reads
// server lists and query files from.
//
// Callers depend only on this package, never on a specific provider package.
//
//	cfg := filestore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	if err := store.Ping(ctx); err != nil { ... }
//	defer store.Close()
//
//	loc, _ := filestore.ParseLocation("minio://inventory/servers.txt")
//	obj, err := store.GetObject(ctx, loc.Bucket, loc.Key)
package filestore

import "context"

// Store is implemented by every object-storage provider. It is read-only.
type Store interface {
	// Ping verifies the storage backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// GetObject opens a streaming handle to the object at key inside bucket.
	// The caller MUST call Object.Close() after reading.
	GetObject(ctx context.Context, bucket, key string) (Object, error)
}
