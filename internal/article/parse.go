package article

import (
	"path/filepath"
	"strings"
)

// Metadata labels recognized in the header block. The exports in the wild
// use the Japanese labels; English equivalents are accepted for convenience.
// Labels are matched by prefix so trailing punctuation or annotations on the
// label never break extraction.
var (
	idLabels        = []string{"ページID", "Page ID", "PageID"}
	urlLabels       = []string{"URL"}
	languageLabels  = []string{"言語", "Language"}
	retrievedLabels = []string{"取得日時", "Retrieved", "Fetched"}
)

// Section headings recognized below the metadata block.
var (
	summaryHeadings  = []string{"要約", "Summary"}
	categoryHeadings = []string{"カテゴリ", "Categories"}
	outlineHeadings  = []string{"セクション構造", "Structure"}
	bodyHeadings     = []string{"本文", "Body"}
)

// Parse converts one Wikipedia markdown export into a Record.
//
// The only fatal condition is a missing title heading; every other section
// is optional and defaults to its zero value. Malformed sub-blocks are
// skipped, never fatal. Parse performs no I/O.
func Parse(raw, sourcePath string) (*Record, error) {
	segments := splitSegments(raw)

	title, metaEnd := parseHeader(segments[0])
	if title == "" {
		return nil, &ParseError{Path: sourcePath, Reason: "no title heading"}
	}

	rec := &Record{
		Title:      title,
		SourcePath: sourcePath,
	}
	parseMetadata(segments[0], rec)

	if rec.ID == "" {
		// No page ID in the export: fall back to the file stem so the
		// record still has a stable identifier for upserts.
		base := filepath.Base(sourcePath)
		rec.ID = strings.TrimSuffix(base, filepath.Ext(base))
	}

	var sawBody bool
	for _, seg := range segments[1:] {
		heading, content := splitSection(seg)
		switch {
		case matchesHeading(heading, summaryHeadings):
			rec.Summary = strings.TrimSpace(content)
		case matchesHeading(heading, categoryHeadings):
			rec.Categories = parseCategories(content)
		case matchesHeading(heading, outlineHeadings):
			rec.Sections = parseOutline(content)
		case matchesHeading(heading, bodyHeadings):
			rec.Body = strings.TrimSpace(content)
			sawBody = true
		}
		// Unrecognized sections are skipped.
	}

	if !sawBody {
		// No explicit body section: the remainder of the document after
		// the header block stands in for the body.
		rec.Body = remainder(segments, metaEnd)
	}

	return rec, nil
}

// splitSegments splits the document on horizontal-rule lines ("---").
// The first segment is the header (title + metadata block); each later
// segment is one labeled section.
func splitSegments(raw string) [][]string {
	lines := strings.Split(raw, "\n")
	segments := [][]string{{}}
	for _, line := range lines {
		if strings.TrimSpace(line) == "---" {
			segments = append(segments, []string{})
			continue
		}
		segments[len(segments)-1] = append(segments[len(segments)-1], line)
	}
	return segments
}

// parseHeader extracts the title from the first "# " heading and returns it
// with the index of the line after the last metadata line.
func parseHeader(header []string) (title string, metaEnd int) {
	for i, line := range header {
		trimmed := strings.TrimSpace(line)
		if title == "" && strings.HasPrefix(trimmed, "# ") {
			title = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			metaEnd = i + 1
			continue
		}
		if _, _, ok := metadataLine(trimmed); ok {
			metaEnd = i + 1
		}
	}
	return title, metaEnd
}

func parseMetadata(header []string, rec *Record) {
	for _, line := range header {
		label, value, ok := metadataLine(strings.TrimSpace(line))
		if !ok {
			continue
		}
		switch {
		case matchesLabel(label, idLabels):
			rec.ID = value
		case matchesLabel(label, urlLabels):
			rec.URL = value
		case matchesLabel(label, languageLabels):
			rec.Language = value
		case matchesLabel(label, retrievedLabels):
			rec.RetrievedAt = value
		}
	}
}

// metadataLine parses a "**Label**: value" line.
func metadataLine(line string) (label, value string, ok bool) {
	if !strings.HasPrefix(line, "**") {
		return "", "", false
	}
	rest := line[2:]
	end := strings.Index(rest, "**")
	if end < 0 {
		return "", "", false
	}
	label = strings.TrimSpace(rest[:end])
	after := strings.TrimSpace(rest[end+2:])
	after = strings.TrimLeft(after, ":： \t")
	if label == "" {
		return "", "", false
	}
	return label, strings.TrimSpace(after), true
}

// matchesLabel reports whether label starts with any of the known keys.
func matchesLabel(label string, keys []string) bool {
	for _, k := range keys {
		if strings.HasPrefix(label, k) {
			return true
		}
	}
	return false
}

// splitSection separates a segment's "## " heading line from its content.
func splitSection(seg []string) (heading, content string) {
	for i, line := range seg {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, "## ") {
			heading = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			content = strings.Join(seg[i+1:], "\n")
		}
		break
	}
	return heading, content
}

func matchesHeading(heading string, names []string) bool {
	for _, n := range names {
		if strings.HasPrefix(heading, n) {
			return true
		}
	}
	return false
}

// parseCategories reads the bullet list of a categories section. The
// "Category:" namespace prefix is stripped from each entry.
func parseCategories(content string) []string {
	var cats []string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		name := strings.TrimSpace(strings.TrimLeft(trimmed, "- "))
		name = strings.TrimPrefix(name, "Category:")
		if name != "" {
			cats = append(cats, name)
		}
	}
	return cats
}

// parseOutline reads the nested bullet list of a section-structure section.
// Nesting depth comes from leading indentation, two spaces per level.
func parseOutline(content string) []Section {
	var sections []Section
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		indent := 0
		for _, r := range line {
			if r == ' ' {
				indent++
			} else if r == '\t' {
				indent += 2
			} else {
				break
			}
		}
		name := strings.TrimSpace(strings.TrimLeft(trimmed, "- "))
		if name == "" {
			continue
		}
		sections = append(sections, Section{
			Name:  name,
			Depth: indent/2 + 1,
		})
	}
	return sections
}

// remainder joins everything after the metadata block into one blob, used
// as the body when the export has no explicit body section.
func remainder(segments [][]string, metaEnd int) string {
	var parts []string
	if metaEnd < len(segments[0]) {
		parts = append(parts, strings.Join(segments[0][metaEnd:], "\n"))
	}
	for _, seg := range segments[1:] {
		parts = append(parts, strings.Join(seg, "\n"))
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}
