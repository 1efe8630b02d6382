package domain

// Document is a unit of text handed to the similarity engine.
// The engine never reads the filesystem itself; loaders produce these.
type Document struct {
	// ID is the unique, totally-ordered identifier within one analysis run
	// (typically a normalized path). Ordering is used only to produce
	// deterministic output.
	ID string

	// URI is the original location (file path, repository URL, etc).
	URI string

	// Title is the human-readable title, if the loader knows one.
	Title string

	// Content is the full text content.
	Content string

	// Metadata contains arbitrary key-value pairs set by the loader.
	Metadata map[string]string
}
