package render

import (
	"errors"
	"fmt"
	"strings"
)

// Template tag delimiters. They are chosen so that LaTeX sources, which use
// braces and percent signs freely, never open a tag by accident.
const (
	BlockStart    = "((*"
	BlockEnd      = "*))"
	VariableStart = "((("
	VariableEnd   = ")))"
	CommentStart  = "((="
	CommentEnd    = "=))"
)

// actionStart and actionEnd delimit every action once a template has been
// translated for text/template.
const (
	actionStart = VariableStart
	actionEnd   = VariableEnd
)

// ErrUnclosedTag is returned when a tag has no matching end delimiter.
var ErrUnclosedTag = errors.New("unclosed tag")

type tagKind int

const (
	tagVariable tagKind = iota
	tagBlock
	tagComment
)

type delimiter struct {
	kind       tagKind
	start, end string
}

var delimiters = []delimiter{
	{tagVariable, VariableStart, VariableEnd},
	{tagBlock, BlockStart, BlockEnd},
	{tagComment, CommentStart, CommentEnd},
}

// nextTag returns the position and delimiter of the first tag in s.
func nextTag(s string) (int, delimiter) {
	pos, found := -1, delimiter{}
	for _, d := range delimiters {
		i := strings.Index(s, d.start)
		if i >= 0 && (pos < 0 || i < pos) {
			pos, found = i, d
		}
	}
	return pos, found
}

// translate rewrites a template written with block, variable and comment
// tags into text/template source using actionStart/actionEnd for all of
// them.
//
// Block and comment tags trim whitespace: when only spaces or tabs precede
// such a tag on its line they are dropped, and a single newline directly
// after the tag is dropped. Variable tags are left as they are.
func translate(name, src string) (string, error) {
	var out strings.Builder
	out.Grow(len(src))

	line := 1
	lineStart := true
	for {
		pos, d := nextTag(src)
		if pos < 0 {
			out.WriteString(src)
			return out.String(), nil
		}

		text := src[:pos]
		line += strings.Count(text, "\n")
		if d.kind != tagVariable {
			text = lstrip(text, lineStart)
		}
		out.WriteString(text)

		rest := src[pos+len(d.start):]
		end := strings.Index(rest, d.end)
		if end < 0 {
			return "", fmt.Errorf("%s:%d: %w %q", name, line, ErrUnclosedTag, d.start)
		}
		inner := rest[:end]
		line += strings.Count(inner, "\n")

		switch d.kind {
		case tagComment:
			out.WriteString(actionStart + "/*" + inner + "*/" + actionEnd)
		default:
			out.WriteString(actionStart + inner + actionEnd)
		}

		src = rest[end+len(d.end):]
		lineStart = false
		if d.kind != tagVariable {
			if n := leadingNewline(src); n > 0 {
				src = src[n:]
				line++
				lineStart = true
			}
		}
	}
}

// lstrip drops the spaces and tabs between the last line start in text and
// its end, if nothing else is there. lineStart reports whether text itself
// begins a line.
func lstrip(text string, lineStart bool) string {
	i := strings.LastIndexByte(text, '\n')
	if i < 0 && !lineStart {
		return text
	}
	if strings.TrimLeft(text[i+1:], " \t") != "" {
		return text
	}
	return text[:i+1]
}

func leadingNewline(s string) int {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return 2
	case strings.HasPrefix(s, "\n"):
		return 1
	}
	return 0
}
