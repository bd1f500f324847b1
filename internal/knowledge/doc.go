// Package knowledge is the core of knowledged: it coordinates ingestion
// (chunk, embed, store, catalog) and answering (retrieve, ground, generate)
// over a single vector collection and an in-memory source registry.
//
// The collection and the registry are kept consistent: a source appears in
// the registry only after its chunks are stored, and clearing destroys both
// together under one mutation lock.
package knowledge
