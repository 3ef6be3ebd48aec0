// Package pointer addresses fields inside records.
//
// A Pointer is an immutable sequence of key segments in the style of
// RFC 6901 JSON Pointer. The empty pointer addresses the record itself.
// Navigation never fails: any broken path yields (nil, false).
package pointer

import (
	"fmt"
	"strings"
)

// Pointer identifies a (possibly nested) field within a record.
// The zero value is the empty pointer.
type Pointer struct {
	segments []string
}

// New creates a pointer from raw (unescaped) segments.
func New(segments ...string) Pointer {
	if len(segments) == 0 {
		return Pointer{}
	}
	return Pointer{segments: append([]string(nil), segments...)}
}

// Parse parses RFC 6901 text. The empty string is the root pointer;
// anything else must start with '/'.
func Parse(s string) (Pointer, error) {
	if s == "" {
		return Pointer{}, nil
	}
	if s[0] != '/' {
		return Pointer{}, fmt.Errorf("pointer %q must be empty or start with '/'", s)
	}

	raw := strings.Split(s[1:], "/")
	segments := make([]string, len(raw))
	for i, seg := range raw {
		unescaped, err := unescape(seg)
		if err != nil {
			return Pointer{}, fmt.Errorf("pointer %q segment %d: %w", s, i, err)
		}
		segments[i] = unescaped
	}
	return Pointer{segments: segments}, nil
}

// From converts a path as written by callers: "" is the root, a leading
// '/' means RFC 6901 text, anything else is a single field name.
// A malformed RFC 6901 escape falls back to the raw segments.
func From(path string) Pointer {
	if path == "" {
		return Pointer{}
	}
	if path[0] != '/' {
		return New(path)
	}
	p, err := Parse(path)
	if err != nil {
		return New(strings.Split(path[1:], "/")...)
	}
	return p
}

// Segments returns a copy of the unescaped segments.
func (p Pointer) Segments() []string {
	return append([]string(nil), p.segments...)
}

// Len returns the number of segments.
func (p Pointer) Len() int {
	return len(p.segments)
}

// IsRoot reports whether p addresses the record itself.
func (p Pointer) IsRoot() bool {
	return len(p.segments) == 0
}

// Append returns a new pointer with extra segments.
func (p Pointer) Append(segments ...string) Pointer {
	out := make([]string, 0, len(p.segments)+len(segments))
	out = append(out, p.segments...)
	out = append(out, segments...)
	return Pointer{segments: out}
}

// String renders the RFC 6901 form, e.g. "/address/city".
// The root pointer renders as "".
func (p Pointer) String() string {
	if len(p.segments) == 0 {
		return ""
	}
	var b strings.Builder
	for _, seg := range p.segments {
		b.WriteByte('/')
		b.WriteString(escape(seg))
	}
	return b.String()
}

var escaper = strings.NewReplacer("~", "~0", "/", "~1")

func escape(seg string) string {
	return escaper.Replace(seg)
}

func unescape(seg string) (string, error) {
	if !strings.Contains(seg, "~") {
		return seg, nil
	}
	var b strings.Builder
	for i := 0; i < len(seg); i++ {
		if seg[i] != '~' {
			b.WriteByte(seg[i])
			continue
		}
		if i+1 >= len(seg) {
			return "", fmt.Errorf("dangling '~'")
		}
		switch seg[i+1] {
		case '0':
			b.WriteByte('~')
		case '1':
			b.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape '~%c'", seg[i+1])
		}
		i++
	}
	return b.String(), nil
}
