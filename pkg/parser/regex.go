package parser

import "regexp"

var (
	// SceneHeadingRegex は行頭の "INT." "EXT." "I/E." "INT/EXT." と、続く区切り文字1つをキャプチャします。
	SceneHeadingRegex = regexp.MustCompile(`(?i)^(INT/EXT\.|I/E\.|INT\.|EXT\.)[^A-Za-z0-9]?`)

	// CharacterCueRegex は大文字・数字・空白・アポストロフィ・ハイフンだけで構成される行に一致します。
	CharacterCueRegex = regexp.MustCompile(`^[A-Z0-9 '\-]+$`)

	// ParagraphBreakRegex は空行による段落区切りです。
	ParagraphBreakRegex = regexp.MustCompile(`\n[ \t]*\n`)
)
