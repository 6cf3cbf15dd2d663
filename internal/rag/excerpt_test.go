package rag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimToSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trailing fragment", "He was brave. He", "He was brave."},
		{"complete sentence", "He was brave.", "He was brave."},
		{"exclamation", "Get down! Now the", "Get down!"},
		{"question mark", "Was it luck? Maybe", "Was it luck?"},
		{"no punctuation", "a fragment with no terminal mark", "a fragment with no terminal mark"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TrimToSentence(tt.in))
		})
	}
}
