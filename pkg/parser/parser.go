package parser

import (
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

const (
	// MaxCharacterCueLength はキャラクター名とみなす行の最大長です。
	MaxCharacterCueLength = 24
	// MaxCharacters は抽出するキャラクター数の上限です。
	MaxCharacters = 8
)

// headingKeywords は見出しの接頭辞そのもので、キャラクター名として扱いません。
var headingKeywords = map[string]struct{}{
	"INT":     {},
	"EXT":     {},
	"I/E":     {},
	"INT/EXT": {},
}

// Heading はシーン見出し行の解析結果です。
type Heading struct {
	Raw       string
	Location  string
	TimeOfDay domain.TimeOfDay
}

// Block は見出し1つと、次の見出しまでの本文です。
type Block struct {
	Heading Heading
	Body    []string
}

// Screenplay は行単位で分解した脚本です。
type Screenplay struct {
	Lines      []string
	Blocks     []Block
	Characters []string
}

// Parser は脚本テキストを解析するためのインターフェースです。
type Parser interface {
	Parse(input string) *Screenplay
}

// ScreenplayParser は見出し・キャラクター名を正規表現で拾う簡易パーサーです。
type ScreenplayParser struct{}

// NewScreenplayParser は ScreenplayParser を初期化します。
func NewScreenplayParser() *ScreenplayParser {
	return &ScreenplayParser{}
}

// Parse は入力を見出しごとのブロックに分割し、キャラクター名の候補を出現順に集めます。
// 見出しより前の行はどのブロックにも属しません。
func (p *ScreenplayParser) Parse(input string) *Screenplay {
	text := strings.ReplaceAll(input, "\r\n", "\n")
	sp := &Screenplay{Lines: strings.Split(text, "\n")}

	var current *Block
	seen := make(map[string]struct{})

	for _, line := range sp.Lines {
		trimmed := strings.TrimSpace(line)

		if IsSceneHeading(trimmed) {
			if current != nil {
				sp.Blocks = append(sp.Blocks, *current)
			}
			current = &Block{Heading: ParseHeading(trimmed)}
			continue
		}

		if current != nil {
			current.Body = append(current.Body, line)
		}

		if len(sp.Characters) < MaxCharacters && IsCharacterCue(trimmed) {
			if _, ok := seen[trimmed]; !ok {
				seen[trimmed] = struct{}{}
				sp.Characters = append(sp.Characters, trimmed)
			}
		}
	}
	if current != nil {
		sp.Blocks = append(sp.Blocks, *current)
	}

	return sp
}

// IsSceneHeading は行がシーン見出しかどうかを判定します。
func IsSceneHeading(line string) bool {
	return SceneHeadingRegex.MatchString(strings.TrimSpace(line))
}

// ParseHeading は見出しから場所と時間帯を取り出します。
// 場所は接頭辞を除いた最初の "-" より前の部分です。
func ParseHeading(line string) Heading {
	raw := strings.TrimSpace(line)
	rest := strings.TrimSpace(SceneHeadingRegex.ReplaceAllString(raw, ""))
	location := rest
	if i := strings.Index(rest, "-"); i >= 0 {
		location = strings.TrimSpace(rest[:i])
	}
	return Heading{
		Raw:       raw,
		Location:  location,
		TimeOfDay: timeOfDayFromHeading(raw),
	}
}

// timeOfDayFromHeading は見出し中のキーワードから時間帯を決めます。該当がなければ Day です。
func timeOfDayFromHeading(heading string) domain.TimeOfDay {
	upper := strings.ToUpper(heading)
	switch {
	case strings.Contains(upper, "NIGHT"):
		return domain.Night
	case strings.Contains(upper, "EVENING"):
		return domain.Evening
	case strings.Contains(upper, "MORNING"):
		return domain.Morning
	case strings.Contains(upper, "DAWN"):
		return domain.Dawn
	case strings.Contains(upper, "DUSK"):
		return domain.Dusk
	default:
		return domain.Day
	}
}

// IsCharacterCue は行がキャラクター名の候補かどうかを判定します。
// "CUT TO" のようなトランジションも候補に入りますが、これは既知の制限です。
func IsCharacterCue(line string) bool {
	if line == "" || len(line) > MaxCharacterCueLength {
		return false
	}
	if !CharacterCueRegex.MatchString(line) || !hasLetter(line) {
		return false
	}
	_, isKeyword := headingKeywords[line]
	return !isKeyword
}
