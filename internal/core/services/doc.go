// Package services implements the similarity and deduplication engine:
// the lexical, semantic and composite calculators, the cluster finder,
// the section merge engine, and the analysis orchestration.
//
// Services hold no mutable state between calls. Independent calls may run
// in parallel across goroutines as long as each call owns its inputs.
package services
