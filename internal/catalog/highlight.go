package catalog

import (
	"html/template"
	"regexp"
	"strings"
)

// Segment is a run of text that either matched the query or not.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// Highlight splits text into segments around case-insensitive occurrences
// of query. The query is matched literally: regex metacharacters in it
// have no special meaning.
func Highlight(text, query string) []Segment {
	q := strings.TrimSpace(query)
	if q == "" || text == "" {
		return []Segment{{Text: text}}
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(q))
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return []Segment{{Text: text}}
	}

	var out []Segment
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			out = append(out, Segment{Text: text[last:loc[0]]})
		}
		out = append(out, Segment{Text: text[loc[0]:loc[1]], Match: true})
		last = loc[1]
	}
	if last < len(text) {
		out = append(out, Segment{Text: text[last:]})
	}
	return out
}

// HighlightHTML renders Highlight as escaped HTML with matches wrapped in
// <mark>.
func HighlightHTML(text, query string) template.HTML {
	var b strings.Builder
	for _, s := range Highlight(text, query) {
		if s.Match {
			b.WriteString("<mark>")
			b.WriteString(template.HTMLEscapeString(s.Text))
			b.WriteString("</mark>")
		} else {
			b.WriteString(template.HTMLEscapeString(s.Text))
		}
	}
	return template.HTML(b.String())
}
