package storage

import "context"

// ArtifactStore is durable binary storage with URL retrieval.
type ArtifactStore interface {
	// Upload stores the bytes under a fresh collision-free name and
	// returns the public URL of the new object. Existing objects are
	// never overwritten.
	Upload(ctx context.Context, data []byte, contentType string) (string, error)

	// PublicURL derives the URL of an already-uploaded object. It is a
	// pure string operation and cannot fail.
	PublicURL(name string) string
}
