// Package convention holds the naming rules that map declared identifiers
// onto generated artifacts: camel-cased field names in type text, bare type
// names in interface headers and snake-cased path segments for output files.
package convention

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// separators normalizes a qualified declaration name to slash form.
// "Billing.LineItem", "Billing/LineItem" and "Billing::LineItem" are equivalent.
var separators = strings.NewReplacer("::", "/", ".", "/")

// FieldName returns the lower camel case rendering of a declared field name.
// is_active becomes isActive; names that are already camel cased are kept.
// Upper case runs are folded (user_ID -> userId, URL -> url) and a letter
// following a digit starts a new word (line1text -> line1Text).
func FieldName(name string) string {
	return strcase.ToLowerCamel(name)
}

// Segments splits a qualified declaration name into non-empty segments.
func Segments(qualified string) []string {
	raw := strings.Split(separators.Replace(qualified), "/")
	segments := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		segments = append(segments, s)
	}
	return segments
}

// TypeName returns the bare exported name of a qualified declaration name,
// without any namespace qualification.
func TypeName(qualified string) string {
	segments := Segments(qualified)
	if len(segments) == 0 {
		return ""
	}
	return segments[len(segments)-1]
}

// ModulePath returns the snake cased path segments of a qualified name.
// The last segment is the file base name, the rest are directories.
//
//	Billing.LineItem -> [billing line_item]
//	Shop.LineItemV2  -> [shop line_item_v2]
func ModulePath(qualified string) []string {
	segments := Segments(qualified)
	path := make([]string, len(segments))
	for i, s := range segments {
		path[i] = Underscore(s)
	}
	return path
}

// Underscore snake cases one name segment. Words break at case changes and
// digits stay attached to the word they follow: Address2 -> address2,
// Item2Detail -> item2_detail, HTTP2Server -> http2_server. An explicit
// underscore before a digit is kept (Version_2 -> version_2).
func Underscore(s string) string {
	runs := digitRuns(s)
	snake := strcase.ToSnake(s)

	var b strings.Builder
	b.Grow(len(snake))
	r := -1 // index of the last digit run written
	for i := 0; i < len(snake); i++ {
		c := snake[i]
		if c == '_' && i > 0 && i+1 < len(snake) {
			prevDigit, nextDigit := isDigit(snake[i-1]), isDigit(snake[i+1])
			if nextDigit && !prevDigit && r+1 < len(runs) && runs[r+1].attached {
				continue
			}
			if prevDigit && !nextDigit && r >= 0 && r < len(runs) && runs[r].joinsNext {
				continue
			}
		}
		if isDigit(c) && (i == 0 || !isDigit(snake[i-1])) {
			r++
		}
		b.WriteByte(c)
	}
	return b.String()
}

// digitRun describes a maximal run of digits in a name. attached is set
// when a letter precedes it, joinsNext when a lower case letter follows.
type digitRun struct {
	attached  bool
	joinsNext bool
}

func digitRuns(s string) []digitRun {
	s = strings.TrimSpace(s)
	var runs []digitRun
	for i := 0; i < len(s); {
		if !isDigit(s[i]) {
			i++
			continue
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		runs = append(runs, digitRun{
			attached:  start > 0 && isLetter(s[start-1]),
			joinsNext: i < len(s) && s[i] >= 'a' && s[i] <= 'z',
		})
	}
	return runs
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }

// Dir returns the directory segments of a qualified name.
func Dir(qualified string) []string {
	path := ModulePath(qualified)
	if len(path) == 0 {
		return nil
	}
	return path[:len(path)-1]
}

// BaseName returns the snake cased file base name of a qualified name.
func BaseName(qualified string) string {
	path := ModulePath(qualified)
	if len(path) == 0 {
		return ""
	}
	return path[len(path)-1]
}
