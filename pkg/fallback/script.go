package fallback

import (
	"fmt"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/parser"
)

const (
	// OfflineSummaryPlaceholder は本文から要約を作れなかったシーンに入れる文言です。
	OfflineSummaryPlaceholder = "Scene summary generated automatically while AI services were offline."
	maxSummaryLines           = 3
	logLineParagraphs         = 2
)

// lightingByTime は時間帯ごとの照明メモです。
var lightingByTime = map[domain.TimeOfDay]string{
	domain.Dawn:    "Soft blue pre-dawn ambience",
	domain.Morning: "Low warm sun, long shadows",
	domain.Day:     "Natural daylight",
	domain.Dusk:    "Golden hour fading to blue",
	domain.Evening: "Warm practicals against cool exterior",
	domain.Night:   "Low-key, motivated practical sources",
}

// ParseScriptHeuristically は AI 解析が使えないときに、脚本テキストから ScriptAnalysis を組み立てます。
// 空または空白だけの入力では DefaultProject を返します。
func ParseScriptHeuristically(raw string) domain.ScriptAnalysis {
	if strings.TrimSpace(raw) == "" {
		return DefaultProject()
	}

	sp := parser.NewScreenplayParser().Parse(raw)
	blocks := sp.Blocks
	if len(blocks) == 0 {
		// 見出しが1つもない場合は文書全体を1シーンとして扱います
		blocks = []parser.Block{{
			Heading: parser.Heading{TimeOfDay: domain.Day},
			Body:    sp.Lines,
		}}
	}

	title := parser.FirstNonBlank(sp.Lines)
	paragraphs := parser.Paragraphs(raw)
	if len(paragraphs) > logLineParagraphs {
		paragraphs = paragraphs[:logLineParagraphs]
	}
	logline := strings.Join(paragraphs, " ")

	analysis := domain.ScriptAnalysis{
		Title:         title,
		Logline:       logline,
		Summary:       logline,
		Scenes:        make([]domain.Scene, 0, len(blocks)),
		Characters:    make([]domain.Character, 0, len(sp.Characters)),
		Locations:     make([]domain.Location, 0, len(blocks)),
		Props:         []string{},
		Styling:       []string{},
		SetDressing:   []string{},
		MakeupAndHair: []string{},
		Sound:         []string{},
	}

	for i, b := range blocks {
		n := i + 1
		sceneID := domain.SceneID(n)
		summary := summarize(b.Body)
		setting := b.Heading.Raw
		if setting == "" {
			setting = fmt.Sprintf("SCENE %d", n)
		}
		locName := b.Heading.Location
		if locName == "" {
			locName = fmt.Sprintf("Location %d", n)
		}

		analysis.Scenes = append(analysis.Scenes, domain.Scene{
			ID:          sceneID,
			SceneNumber: n,
			Setting:     setting,
			Summary:     summary,
			TimeOfDay:   b.Heading.TimeOfDay,
			Mood:        "Neutral",
			Lighting:    lightingByTime[b.Heading.TimeOfDay],
			Frames: []domain.Frame{{
				ID:          fmt.Sprintf("%s-shot-1", sceneID),
				ShotNumber:  1,
				Description: summary,
				Status:      domain.StatusDraft,
			}},
		})
		analysis.Locations = append(analysis.Locations, domain.Location{
			ID:          domain.LocationID(n, locName),
			Name:        locName,
			Description: setting,
		})
	}

	for i, name := range sp.Characters {
		analysis.Characters = append(analysis.Characters, domain.Character{
			ID:   domain.CharacterID(i+1, name),
			Name: name,
		})
	}

	return analysis
}

// summarize は本文から空行と全大文字行を除いた先頭3行を空白で連結します。
func summarize(body []string) string {
	var picked []string
	for _, line := range body {
		s := strings.TrimSpace(line)
		if s == "" || parser.IsAllCaps(s) {
			continue
		}
		picked = append(picked, s)
		if len(picked) == maxSummaryLines {
			break
		}
	}
	if len(picked) == 0 {
		return OfflineSummaryPlaceholder
	}
	return strings.Join(picked, " ")
}

// DefaultProject は入力が空のときに返す雛形プロジェクトです。
func DefaultProject() domain.ScriptAnalysis {
	return domain.ScriptAnalysis{
		Title:   "Untitled Project",
		Logline: "A lone courier crosses a sleeping city to deliver a message that could change everything.",
		Summary: "Demo project generated offline. Paste a screenplay to replace it with your own scenes.",
		Scenes: []domain.Scene{
			{
				ID:          domain.SceneID(1),
				SceneNumber: 1,
				Setting:     "EXT. CITY ROOFTOP - NIGHT",
				Summary:     "The courier studies the skyline, the envelope tucked inside her jacket.",
				TimeOfDay:   domain.Night,
				Mood:        "Tense",
				Lighting:    lightingByTime[domain.Night],
				Frames: []domain.Frame{
					{ID: "scene-1-shot-1", ShotNumber: 1, Description: "Wide shot of the rooftop against the city lights.", Status: domain.StatusDraft},
					{ID: "scene-1-shot-2", ShotNumber: 2, Description: "Close-up on the sealed envelope.", Status: domain.StatusDraft},
				},
			},
			{
				ID:          domain.SceneID(2),
				SceneNumber: 2,
				Setting:     "INT. TRAIN STATION - DAWN",
				Summary:     "She hands the envelope to a stranger as the first train arrives.",
				TimeOfDay:   domain.Dawn,
				Mood:        "Hopeful",
				Lighting:    lightingByTime[domain.Dawn],
				Frames: []domain.Frame{
					{ID: "scene-2-shot-1", ShotNumber: 1, Description: "Empty platform bathed in early light.", Status: domain.StatusDraft},
				},
			},
		},
		Characters: []domain.Character{
			{ID: domain.CharacterID(1, "Courier"), Name: "COURIER", Description: "Quiet, determined, always moving."},
			{ID: domain.CharacterID(2, "Stranger"), Name: "STRANGER", Description: "Waiting on the platform."},
		},
		Locations: []domain.Location{
			{ID: domain.LocationID(1, "City Rooftop"), Name: "CITY ROOFTOP"},
			{ID: domain.LocationID(2, "Train Station"), Name: "TRAIN STATION"},
		},
		Props:         []string{"Sealed envelope"},
		Styling:       []string{"Dark utility jacket"},
		SetDressing:   []string{"Rooftop vents", "Station benches"},
		MakeupAndHair: []string{"Natural, windswept"},
		Sound:         []string{"Distant traffic", "Arriving train"},
	}
}
