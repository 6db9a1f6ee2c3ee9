package textutil

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Token is a contiguous run of either word or whitespace runes.
type Token struct {
	Text  string
	Start int // byte offset into the source text
	Space bool
}

// End returns the byte offset just past the token.
func (t Token) End() int {
	return t.Start + len(t.Text)
}

// Tokens splits text into alternating word and whitespace tokens. Concatenating
// the Text of every token reproduces the input exactly.
func Tokens(text string) []Token {
	if text == "" {
		return nil
	}
	tokens := make([]Token, 0, len(text)/3+1)
	start := 0
	space := false
	for i, r := range text {
		isSpace := unicode.IsSpace(r)
		if i == 0 {
			space = isSpace
			continue
		}
		if isSpace != space {
			tokens = append(tokens, Token{Text: text[start:i], Start: start, Space: space})
			start = i
			space = isSpace
		}
	}
	tokens = append(tokens, Token{Text: text[start:], Start: start, Space: space})
	return tokens
}

// Words returns the word tokens of text, skipping whitespace.
func Words(text string) []Token {
	all := Tokens(text)
	words := all[:0:0]
	for _, token := range all {
		if !token.Space {
			words = append(words, token)
		}
	}
	return words
}

// WordTexts returns just the word strings of text.
func WordTexts(text string) []string {
	words := Words(text)
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = w.Text
	}
	return out
}

// WordCount counts words without allocating tokens.
func WordCount(text string) int {
	count := 0
	inWord := false
	for len(text) > 0 {
		r, size := utf8.DecodeRuneInString(text)
		text = text[size:]
		if unicode.IsSpace(r) {
			inWord = false
			continue
		}
		if !inWord {
			count++
			inWord = true
		}
	}
	return count
}

// LastWords returns the final n words of text joined by single spaces.
func LastWords(text string, n int) string {
	if n <= 0 {
		return ""
	}
	words := WordTexts(text)
	if len(words) > n {
		words = words[len(words)-n:]
	}
	return strings.Join(words, " ")
}
