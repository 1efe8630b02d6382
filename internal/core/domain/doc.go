// Package domain contains the core types of the similarity and
// deduplication engine: documents, similarity results, the symmetric
// similarity matrix, duplicate clusters, and text sections used by the
// merge engine.
//
// All types are plain data created fresh per analysis call. Transformations
// on a Matrix return new values; nothing in this package mutates shared
// state, so values can be read concurrently without locking.
package domain
