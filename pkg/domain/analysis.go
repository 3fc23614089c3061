package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// TimeOfDay はシーンの時間帯です。
type TimeOfDay string

const (
	Dawn    TimeOfDay = "Dawn"
	Morning TimeOfDay = "Morning"
	Day     TimeOfDay = "Day"
	Dusk    TimeOfDay = "Dusk"
	Evening TimeOfDay = "Evening"
	Night   TimeOfDay = "Night"
)

// ParseTimeOfDay は大文字小文字を問わず時間帯を解釈します。未知の値は Day になります。
func ParseTimeOfDay(s string) TimeOfDay {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dawn":
		return Dawn
	case "morning":
		return Morning
	case "dusk":
		return Dusk
	case "evening":
		return Evening
	case "night":
		return Night
	default:
		return Day
	}
}

// ScriptAnalysis は脚本解析の成果物全体です。ライブ解析でもオフライン解析でも同じ形になります。
type ScriptAnalysis struct {
	Title         string      `json:"title"`
	Logline       string      `json:"logline"`
	Summary       string      `json:"summary"`
	Scenes        []Scene     `json:"scenes"`
	Characters    []Character `json:"characters"`
	Locations     []Location  `json:"locations"`
	Props         []string    `json:"props"`
	Styling       []string    `json:"styling"`
	SetDressing   []string    `json:"setDressing"`
	MakeupAndHair []string    `json:"makeupAndHair"`
	Sound         []string    `json:"sound"`
	Moodboard     *Moodboard  `json:"moodboard,omitempty"`
}

// Scene は見出し1つ分のシーンです。
type Scene struct {
	ID          string    `json:"id"`
	SceneNumber int       `json:"sceneNumber"`
	Setting     string    `json:"setting"`
	Summary     string    `json:"summary"`
	TimeOfDay   TimeOfDay `json:"time_of_day"`
	Mood        string    `json:"mood"`
	Lighting    string    `json:"lighting"`
	Frames      []Frame   `json:"frames"`
}

// Frame はシーン内のショットです。
type Frame struct {
	ID          string      `json:"id"`
	ShotNumber  int         `json:"shot_number"`
	Description string      `json:"description"`
	Status      FrameStatus `json:"status"`
	Media       FrameMedia  `json:"media"`
}

// FrameMedia はショットに紐づく生成済みメディアの URL です。
type FrameMedia struct {
	ImageURL         string `json:"imageUrl,omitempty"`
	UpscaledImageURL string `json:"upscaledImageUrl,omitempty"`
	VideoURL         string `json:"videoUrl,omitempty"`
	UpscaledVideoURL string `json:"upscaledVideoUrl,omitempty"`
}

// Moodboard はルック開発用の参照画像群です。
type Moodboard struct {
	Templates []MoodboardItem    `json:"templates,omitempty"`
	Sections  []MoodboardSection `json:"sections,omitempty"`
}

// MoodboardItem はムードボード上の画像1枚です。
type MoodboardItem struct {
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// MoodboardSection は色彩・照明などテーマ別の区画です。
type MoodboardSection struct {
	Name        string          `json:"name"`
	Notes       string          `json:"notes,omitempty"`
	Description string          `json:"description,omitempty"`
	Items       []MoodboardItem `json:"items,omitempty"`
}

// TemplateURLs はテンプレート画像の URL を並び順のまま返します。
func (m *Moodboard) TemplateURLs() []string {
	if m == nil {
		return nil
	}
	urls := make([]string, 0, len(m.Templates))
	for _, it := range m.Templates {
		urls = append(urls, it.URL)
	}
	return urls
}

// SectionURLs は全セクションの画像 URL をセクション順に返します。
func (m *Moodboard) SectionURLs() []string {
	if m == nil {
		return nil
	}
	var urls []string
	for _, s := range m.Sections {
		for _, it := range s.Items {
			urls = append(urls, it.URL)
		}
	}
	return urls
}

var (
	urlSafeIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)
)

// IsURLSafeID は ID が URL にそのまま埋め込める文字だけで構成されているかを判定します。
func IsURLSafeID(id string) bool {
	return urlSafeIDRegex.MatchString(id)
}

// Slugify は名前を小文字英数字とハイフンだけの断片に変換します。
// 英数字が1文字も残らない場合は "unnamed" を返します。
func Slugify(name string) string {
	s := slugStripRegex.ReplaceAllString(strings.ToLower(name), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "unnamed"
	}
	return s
}

// Validate はシーン・キャラクター・ロケーションの ID が一意かつ URL セーフであることを検証します。
func (a *ScriptAnalysis) Validate() error {
	seen := make(map[string]string)
	check := func(kind, id string) error {
		if !IsURLSafeID(id) {
			return fmt.Errorf("%s id %q is not url-safe", kind, id)
		}
		if prev, ok := seen[id]; ok {
			return fmt.Errorf("%s id %q duplicates a %s id", kind, id, prev)
		}
		seen[id] = kind
		return nil
	}
	for _, s := range a.Scenes {
		if err := check("scene", s.ID); err != nil {
			return err
		}
	}
	for _, c := range a.Characters {
		if err := check("character", c.ID); err != nil {
			return err
		}
	}
	for _, l := range a.Locations {
		if err := check("location", l.ID); err != nil {
			return err
		}
	}
	return nil
}

// NormalizeIDs は外部の解析器が返した構造を、ID の一意性と連番の不変条件を満たす形に補正します。
// 既に正しい ID はそのまま残します。
func (a *ScriptAnalysis) NormalizeIDs() {
	seen := make(map[string]struct{})
	claim := func(id, fallback string) string {
		if IsURLSafeID(id) {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				return id
			}
		}
		candidate := fallback
		for n := 2; ; n++ {
			if _, dup := seen[candidate]; !dup {
				break
			}
			candidate = fmt.Sprintf("%s-%d", fallback, n)
		}
		seen[candidate] = struct{}{}
		return candidate
	}

	for i := range a.Scenes {
		s := &a.Scenes[i]
		s.SceneNumber = i + 1
		s.ID = claim(s.ID, fmt.Sprintf("scene-%d", i+1))
		s.TimeOfDay = ParseTimeOfDay(string(s.TimeOfDay))
		for j := range s.Frames {
			f := &s.Frames[j]
			f.ShotNumber = j + 1
			if f.Status == "" {
				f.Status = StatusDraft
			}
			f.ID = claim(f.ID, fmt.Sprintf("%s-shot-%d", s.ID, j+1))
		}
	}
	for i := range a.Characters {
		c := &a.Characters[i]
		c.ID = claim(c.ID, CharacterID(i+1, c.Name))
	}
	for i := range a.Locations {
		l := &a.Locations[i]
		l.ID = claim(l.ID, LocationID(i+1, l.Name))
	}
}

// SceneID はシーン番号から ID を作ります。
func SceneID(n int) string {
	return fmt.Sprintf("scene-%d", n)
}

// FindScene は ID でシーンを探し、そのインデックスを返します。
func (a *ScriptAnalysis) FindScene(id string) (int, bool) {
	for i, s := range a.Scenes {
		if s.ID == id {
			return i, true
		}
	}
	return -1, false
}

// FindFrame は ID でショットを探し、そのインデックスを返します。
func (s *Scene) FindFrame(id string) (int, bool) {
	for i, f := range s.Frames {
		if f.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Clone は入れ子のスライスも含めて共有しない複製を返します。
func (a ScriptAnalysis) Clone() ScriptAnalysis {
	out := a
	out.Scenes = make([]Scene, len(a.Scenes))
	for i, s := range a.Scenes {
		sc := s
		sc.Frames = append([]Frame(nil), s.Frames...)
		out.Scenes[i] = sc
	}
	out.Characters = append([]Character(nil), a.Characters...)
	for i := range out.Characters {
		out.Characters[i].VisualCues = append([]string(nil), a.Characters[i].VisualCues...)
	}
	out.Locations = append([]Location(nil), a.Locations...)
	out.Props = append([]string(nil), a.Props...)
	out.Styling = append([]string(nil), a.Styling...)
	out.SetDressing = append([]string(nil), a.SetDressing...)
	out.MakeupAndHair = append([]string(nil), a.MakeupAndHair...)
	out.Sound = append([]string(nil), a.Sound...)
	if a.Moodboard != nil {
		mb := *a.Moodboard
		mb.Templates = append([]MoodboardItem(nil), a.Moodboard.Templates...)
		mb.Sections = append([]MoodboardSection(nil), a.Moodboard.Sections...)
		for i := range mb.Sections {
			mb.Sections[i].Items = append([]MoodboardItem(nil), a.Moodboard.Sections[i].Items...)
		}
		out.Moodboard = &mb
	}
	return out
}
