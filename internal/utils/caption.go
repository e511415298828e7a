package utils

import (
	"regexp"
	"strings"
)

var (
	// Hashtag tokens including any whitespace trailing them
	hashtagTokens = regexp.MustCompile(`#\w+\s*`)
	// End of a sentence: terminal punctuation followed by whitespace
	sentenceBoundary = regexp.MustCompile(`[.!?]\s`)
)

// StripHashtags removes #word tokens (and the whitespace that follows
// them) from a caption.
func StripHashtags(caption string) string {
	return strings.TrimSpace(hashtagTokens.ReplaceAllString(caption, ""))
}

// FirstSentence returns the text up to and including the first
// sentence-ending punctuation mark followed by whitespace. Text without
// such a boundary is returned whole.
func FirstSentence(text string) string {
	loc := sentenceBoundary.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]+1])
}

// DeriveTitle builds a display title from a media caption: hashtags are
// stripped, then only the first sentence is kept.
func DeriveTitle(caption string) string {
	title := FirstSentence(StripHashtags(caption))
	if title == "" {
		title = "Untitled"
	}
	return title
}
