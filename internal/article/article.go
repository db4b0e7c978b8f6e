package article

import "fmt"

// Record is a normalized Wikipedia article parsed from one export file.
// Records are immutable after Parse returns them.
type Record struct {
	// ID is the article's page ID, or the source file stem when the
	// export carries no page ID. Never empty.
	ID          string
	Title       string
	URL         string
	Language    string
	RetrievedAt string
	Summary     string
	Categories  []string
	Sections    []Section
	Body        string
	SourcePath  string
}

// Section is one entry of the article's section outline.
type Section struct {
	Name  string
	Depth int
}

// ParseError reports an export file that is missing the minimal structure
// needed to index it. It is recoverable: the loader records it and moves on.
type ParseError struct {
	Path   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %s", e.Path, e.Reason)
}
