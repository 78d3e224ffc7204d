package parser

import (
	"strings"

	"github.com/starford/mad/internal/models"
)

const (
	markerOpen  = "{ #"
	markerClose = "}"
)

// FormatMarker renders the primary tag marker line, e.g. "{ #dev/project }".
func FormatMarker(tag models.TagPath) string {
	return markerOpen + tag.String() + " " + markerClose
}

// PrimaryTag returns the tag of the marker on the first significant line of
// body, or nil when the body does not start with a marker.
func PrimaryTag(body string) models.TagPath {
	line, _, _ := strings.Cut(strings.TrimLeft(body, " \t\r\n"), "\n")
	return parseMarker(line)
}

func parseMarker(line string) models.TagPath {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, markerOpen) || !strings.HasSuffix(line, markerClose) {
		return nil
	}
	inner := line[len(markerOpen) : len(line)-len(markerClose)]
	return models.ParseTagPath(inner)
}

// ReplacePrimaryTag swaps the marker line for one carrying tag, or inserts a
// marker followed by a blank line at the top when the body has none.
func ReplacePrimaryTag(body string, tag models.TagPath) string {
	rest := strings.TrimLeft(body, " \t\r\n")
	lead := body[:len(body)-len(rest)]

	line, _, _ := strings.Cut(rest, "\n")
	if parseMarker(line) != nil {
		marker := FormatMarker(tag)
		if strings.HasSuffix(line, "\r") {
			marker += "\r"
		}
		return lead + marker + rest[len(line):]
	}

	if rest == "" {
		return FormatMarker(tag) + "\n"
	}
	return FormatMarker(tag) + "\n\n" + strings.TrimLeft(body, "\r\n")
}

// BodyTags returns every #tag in body outside fenced code blocks. A line whose
// trimmed start is ``` or ~~~ toggles the fence state.
func BodyTags(body string) []models.TagPath {
	var tags []models.TagPath
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		tags = append(tags, lineTags(line)...)
	}
	return tags
}

func lineTags(line string) []models.TagPath {
	var tags []models.TagPath
	for i := 0; i < len(line); {
		if line[i] != '#' {
			i++
			continue
		}
		start := i + 1
		end := start
		for end < len(line) && isTagByte(line[end]) {
			end++
		}
		if end > start {
			if tag := models.ParseTagPath(line[start:end]); !tag.IsZero() {
				tags = append(tags, tag)
			}
		}
		i = end
	}
	return tags
}

func isTagByte(c byte) bool {
	return c >= 'a' && c <= 'z' ||
		c >= 'A' && c <= 'Z' ||
		c >= '0' && c <= '9' ||
		c == '_' || c == '-' || c == '/'
}

// Classify extracts the primary tag and the deduplicated secondary tags of a
// raw document. Secondary tags are frontmatter tags, then inline tags, then
// the primary tag. On malformed frontmatter both results are empty and the
// error is returned so callers can report it without failing a scan.
func Classify(data []byte) (models.TagPath, []models.TagPath, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, nil, err
	}
	primary := PrimaryTag(doc.Body)
	secondary := doc.FrontmatterTags()
	secondary = append(secondary, BodyTags(doc.Body)...)
	if primary != nil {
		secondary = append(secondary, primary)
	}
	return primary, models.DedupeTags(secondary), nil
}
