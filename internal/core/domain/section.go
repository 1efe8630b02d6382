package domain

import (
	"regexp"
	"strings"
)

// DefaultMinSectionLength is the minimum trimmed length for a span of text
// to count as a section.
const DefaultMinSectionLength = 20

// sectionBoundary matches two or more consecutive newlines, the blank-line
// boundary between sections.
var sectionBoundary = regexp.MustCompile(`\n{2,}`)

// TextSection is a contiguous, trimmed span of document text produced by
// splitting on blank-line boundaries. A whitespace-only span is never a
// valid section.
type TextSection struct {
	// Content is the trimmed section text.
	Content string

	// Index is the ordinal position among the kept sections of the
	// originating document.
	Index int
}

// SplitSections splits text on blank-line boundaries and drops sections
// whose trimmed length is below minLength. Empty text yields no sections,
// not an error. A minLength below zero is treated as zero.
func SplitSections(text string, minLength int) []TextSection {
	if minLength < 0 {
		minLength = 0
	}
	var sections []TextSection
	for _, span := range sectionBoundary.Split(text, -1) {
		span = strings.TrimSpace(span)
		if span == "" || len(span) < minLength {
			continue
		}
		sections = append(sections, TextSection{Content: span, Index: len(sections)})
	}
	return sections
}

// MergeResult is the output of the section merge engine. The caller owns
// both the original texts and the merged text; the engine performs no file
// I/O and holds no state between calls.
type MergeResult struct {
	// MergedText is the target text followed by a separator and any
	// appended source sections, in source order.
	MergedText string

	// SectionsAdded is the number of source sections appended.
	SectionsAdded int
}
