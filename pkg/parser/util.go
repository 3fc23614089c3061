package parser

import (
	"strings"
	"unicode"
)

// IsAllCaps は英字を含み、かつ小文字を含まない行を判定します。
func IsAllCaps(line string) bool {
	return hasLetter(line) && strings.ToUpper(line) == line
}

// Paragraphs は空行区切りの段落を、改行を空白に畳んで返します。
func Paragraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range ParagraphBreakRegex.Split(text, -1) {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FirstNonBlank は最初の空白でない行を返します。
func FirstNonBlank(lines []string) string {
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			return s
		}
	}
	return ""
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
