package loadergen

import "strings"

// Document is a generated text file split into its conventional sections.
type Document struct {
	Copyright string
	Header    string
	Body      string
	Footer    string
}

// Assemble joins the non-empty sections, in order, separated by a blank line.
func (d Document) Assemble() string {
	var parts []string
	for _, s := range []string{d.Copyright, d.Header, d.Body, d.Footer} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// IncludeHeader returns one #include directive per header, in order.
func IncludeHeader(headers ...string) string {
	lines := make([]string, len(headers))
	for i, h := range headers {
		lines[i] = "#include <" + h + ">"
	}
	return strings.Join(lines, "\n")
}
