// Package registry tracks the sources ingested into the knowledge base.
//
// The registry is process-lifetime state: it is empty at startup, grows and
// shrinks only through explicit ingestion and removal calls, and is never
// persisted. A source appears here if and only if its content was
// successfully embedded and stored in the vector collection.
package registry
