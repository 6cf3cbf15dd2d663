package rag

import "strings"

// TrimToSentence cuts text at the last sentence-terminal punctuation mark so
// citation previews do not end mid-sentence. Text with no terminal
// punctuation is returned unmodified.
func TrimToSentence(text string) string {
	cutoff := strings.LastIndexAny(text, ".!?")
	if cutoff == -1 {
		return text
	}
	return text[:cutoff+1]
}
