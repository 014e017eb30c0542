// Package text provides plain-text utilities for LLM output post-processing.
//
// LLMs often return markdown formatting even when instructed not to.
// This package strips residual markup and counts words the way the
// report statistics expect.
package text

import (
	"regexp"
	"strings"
)

var (
	fencedBlockRe   = regexp.MustCompile("(?s)```[a-zA-Z0-9]*\n?(.*?)```")
	inlineCodeRe    = regexp.MustCompile("`([^`]*)`")
	headingRe       = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	boldItalicRe    = regexp.MustCompile(`(\*{1,3}|_{1,3})([^*_]+?)(\*{1,3}|_{1,3})`)
	blockquoteRe    = regexp.MustCompile(`(?m)^>\s?`)
	horizontalRule  = regexp.MustCompile(`(?m)^(\s*)([-*_]){3,}\s*$`)
	listMarkerRe    = regexp.MustCompile(`(?m)^(\s*)[-*+]\s+`)
	linkRe          = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// StripMarkup removes common markdown syntax from s, keeping the text
// content. It is idempotent: StripMarkup(StripMarkup(s)) == StripMarkup(s).
func StripMarkup(s string) string {
	s = fencedBlockRe.ReplaceAllString(s, "$1")
	s = inlineCodeRe.ReplaceAllString(s, "$1")
	s = headingRe.ReplaceAllString(s, "")
	s = boldItalicRe.ReplaceAllString(s, "$2")
	s = linkRe.ReplaceAllString(s, "$1")
	s = blockquoteRe.ReplaceAllString(s, "")
	s = horizontalRule.ReplaceAllString(s, "")
	s = listMarkerRe.ReplaceAllString(s, "$1")
	return s
}

// CountWords returns the number of whitespace-separated words in s.
func CountWords(s string) int {
	return len(strings.Fields(s))
}
