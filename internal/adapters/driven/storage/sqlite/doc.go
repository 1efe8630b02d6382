// Package sqlite persists analysis runs in an embedded SQLite database.
//
// The schema is managed through versioned migrations embedded at compile
// time. Results, clusters, and stats are stored as JSON columns; the run
// listing reads only the summary columns.
package sqlite
