// Package vectorstore provides the vector collection backends for knowledged.
//
// A Store holds chunk records: (vector, text, metadata) triples living in a
// single named collection with a fixed dimensionality and distance metric.
// Two implementations exist: ChromemStore (embedded, the default) and
// QdrantStore (external server over gRPC). Embedding happens inside the
// store so callers only ever hand over text.
package vectorstore

import (
	"context"
	"errors"
)

// Sentinel errors for vector store operations.
var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrCollectionExists is returned when attempting to create an existing collection.
	ErrCollectionExists = errors.New("collection already exists")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDocuments indicates empty or nil documents.
	ErrEmptyDocuments = errors.New("empty or nil documents")

	// ErrUnavailable indicates the backing store could not be reached.
	ErrUnavailable = errors.New("vector store unavailable")

	// ErrEmbeddingFailed indicates embedding generation failure.
	ErrEmbeddingFailed = errors.New("failed to generate embeddings")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)

// CollectionInfo contains metadata about a vector collection.
type CollectionInfo struct {
	// Name is the collection name.
	Name string `json:"name"`

	// PointCount is the number of chunk records in the collection.
	PointCount int `json:"point_count"`

	// VectorSize is the dimensionality of vectors in this collection.
	VectorSize int `json:"vector_size"`
}

// Embedder generates vector embeddings from text.
type Embedder interface {
	// EmbedDocuments generates embeddings for multiple texts, one per input.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a single query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Store is the interface for vector collection operations.
//
// AddDocuments and Search operate on the store's configured default
// collection; the collection lifecycle methods take an explicit name so the
// lifecycle manager can create and destroy the collection it owns.
//
// Implementations must embed document content and queries through their
// configured Embedder and preserve nearest-neighbor ranking order in Search
// results (most similar first).
type Store interface {
	// AddDocuments embeds and upserts chunk records.
	// Returns the ids of the stored records.
	AddDocuments(ctx context.Context, docs []Document) ([]string, error)

	// Search returns up to k records most similar to the query,
	// ordered by similarity score (highest first).
	Search(ctx context.Context, query string, k int) ([]SearchResult, error)

	// CreateCollection creates a collection with the given dimensionality.
	// Returns ErrCollectionExists if it is already present.
	CreateCollection(ctx context.Context, name string, vectorSize int) error

	// DeleteCollection destroys a collection and all its records.
	DeleteCollection(ctx context.Context, name string) error

	// CollectionExists reports whether a collection exists. An error is
	// returned only if the check itself fails.
	CollectionExists(ctx context.Context, name string) (bool, error)

	// GetCollectionInfo returns point count and vector size for a collection,
	// or ErrCollectionNotFound.
	GetCollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	// Close releases the store's resources.
	Close() error
}
