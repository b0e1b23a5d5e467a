// Package sanitize turns user supplied text into plain text before it is stored.
// Repositories assume their input already went through Clean or Line.
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict drops every tag and attribute. It is shared between goroutines, so it
// must never be mutated after construction.
var strict = func() *bluemonday.Policy {
	p := bluemonday.StrictPolicy()
	p.AddSpaceWhenStrippingTag(true)
	return p
}()

// Sanitize strips all HTML, leaving a space where a tag was.
//
//	"<p>Hello <b>world</b></p>" -> " Hello  world  "
func Sanitize(s string) string {
	return strict.Sanitize(s)
}

// Clean strips HTML, unescapes entities and collapses runs of spaces on every
// line. Newlines survive, which suits descriptions and comments.
//
//	"  <p>Hello</p>   <p>World</p>" -> "Hello World"
func Clean(s string) string {
	out := strings.TrimSpace(strict.Sanitize(s))
	out = html.UnescapeString(out)
	out = strings.ReplaceAll(out, "\u00a0", " ")

	lines := strings.Split(out, "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Line is Clean for single line fields such as titles, tags or names.
func Line(s string) string {
	return strings.Join(strings.Fields(Clean(s)), " ")
}

// Ptr applies clean to *s, keeping nil as nil. Used for partial updates.
func Ptr(s *string, clean func(string) string) *string {
	if s == nil {
		return nil
	}
	v := clean(*s)
	return &v
}
