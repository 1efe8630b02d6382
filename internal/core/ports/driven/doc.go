// Package driven provides interfaces for infrastructure adapters
// (secondary/outbound ports).
//
// # Required Interfaces
//
//   - DocumentLoader: supplies documents to analyze. The engine never
//     reads the filesystem itself.
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - EmbeddingService: vector embeddings for semantic comparison. When
//     nil, only lexical comparison is available.
//   - ReportStore: persistence for analysis runs. When nil, results are
//     only printed.
//   - ConfigStore: persisted settings. When nil, defaults apply.
package driven
