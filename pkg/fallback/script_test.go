package fallback

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

func TestParseScriptHeuristically_TwoScenes(t *testing.T) {
	raw := "INT. KITCHEN - DAY\nMara chops onions.\nMARA\nWhere is he?\n\nEXT. STREET - NIGHT\nRain hammers the pavement.\n"

	got := ParseScriptHeuristically(raw)

	require.Len(t, got.Scenes, 2)
	assert.Equal(t, "scene-1", got.Scenes[0].ID)
	assert.Equal(t, 1, got.Scenes[0].SceneNumber)
	assert.Equal(t, "INT. KITCHEN - DAY", got.Scenes[0].Setting)
	assert.Equal(t, domain.Day, got.Scenes[0].TimeOfDay)
	assert.Equal(t, "Mara chops onions. Where is he?", got.Scenes[0].Summary)
	assert.Equal(t, "scene-2", got.Scenes[1].ID)
	assert.Equal(t, domain.Night, got.Scenes[1].TimeOfDay)

	for _, s := range got.Scenes {
		require.Len(t, s.Frames, 1)
		assert.Equal(t, s.ID+"-shot-1", s.Frames[0].ID)
		assert.Equal(t, domain.StatusDraft, s.Frames[0].Status)
	}

	require.Len(t, got.Locations, 2)
	assert.Equal(t, "location-1-kitchen", got.Locations[0].ID)
	assert.Equal(t, "location-2-street", got.Locations[1].ID)

	require.Len(t, got.Characters, 1)
	assert.Equal(t, "char-1-mara", got.Characters[0].ID)
	assert.Equal(t, "MARA", got.Characters[0].Name)

	assert.Equal(t, "INT. KITCHEN - DAY", got.Title)
	assert.NoError(t, got.Validate())
}

func TestParseScriptHeuristically_EmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   ", "\n\t\n"} {
		got := ParseScriptHeuristically(raw)
		assert.Equal(t, DefaultProject(), got)
		assert.NotEmpty(t, got.Scenes)
	}
}

func TestParseScriptHeuristically_NoHeadings(t *testing.T) {
	got := ParseScriptHeuristically("A short treatment.\nNo sluglines at all.")

	require.Len(t, got.Scenes, 1)
	assert.Equal(t, "scene-1", got.Scenes[0].ID)
	assert.Equal(t, "A short treatment. No sluglines at all.", got.Scenes[0].Summary)
	require.Len(t, got.Locations, 1)
	assert.Equal(t, "Location 1", got.Locations[0].Name)
	assert.NoError(t, got.Validate())
}

func TestParseScriptHeuristically_PlaceholderSummary(t *testing.T) {
	got := ParseScriptHeuristically("INT. HALL - DAY\nMARA\n\nEXT. YARD - DUSK\n")

	require.Len(t, got.Scenes, 2)
	assert.Equal(t, OfflineSummaryPlaceholder, got.Scenes[0].Summary)
	assert.Equal(t, OfflineSummaryPlaceholder, got.Scenes[1].Summary)
	assert.Equal(t, domain.Dusk, got.Scenes[1].TimeOfDay)
}

func TestParseScriptHeuristically_Invariants(t *testing.T) {
	inputs := []string{
		"INT. A - DAY\nx\nINT. A - NIGHT\ny\nINT. B - DAY\nz",
		"FADE IN:\n\nINT. LAB - MORNING\nDR KIM\nIt works.\nCUT TO\nEXT. ROOF - NIGHT\nWind.",
		"no headings here",
		"I/E. CAR - DAWN\nENGINE",
	}
	for _, raw := range inputs {
		got := ParseScriptHeuristically(raw)
		require.NotEmpty(t, got.Scenes, raw)
		assert.NoError(t, got.Validate(), raw)
		for i, s := range got.Scenes {
			assert.Equal(t, i+1, s.SceneNumber)
			assert.NotEmpty(t, s.Frames)
			assert.False(t, strings.TrimSpace(s.Summary) == "")
		}
		assert.NotNil(t, got.Props)
		assert.NotNil(t, got.Sound)
		assert.LessOrEqual(t, len(got.Characters), 8)
		// 同じ入力は常に同じ結果になること
		assert.Equal(t, got, ParseScriptHeuristically(raw))
	}
}

func TestParseScriptHeuristically_Logline(t *testing.T) {
	raw := "THE LAST CALL\n\nA detective gets one chance.\n\nINT. OFFICE - NIGHT\nPhones ring."
	got := ParseScriptHeuristically(raw)
	assert.Equal(t, "THE LAST CALL", got.Title)
	assert.Equal(t, "THE LAST CALL A detective gets one chance.", got.Logline)
	assert.Equal(t, got.Logline, got.Summary)
}

func TestDefaultProject(t *testing.T) {
	p := DefaultProject()
	assert.NoError(t, p.Validate())
	assert.NotEmpty(t, p.Title)
	assert.Len(t, p.Scenes, 2)
}

func TestOfflineText(t *testing.T) {
	reply := OfflineDirectorReply("How do I frame the chase?")
	assert.True(t, strings.HasPrefix(reply, "(Offline mode) "))
	assert.Equal(t, reply, OfflineDirectorReply("  how do i frame the chase? "))

	desc := OfflineMoodboardDescription(domain.MoodboardSection{
		Name:  "Color",
		Notes: "teal and orange",
		Items: []domain.MoodboardItem{{URL: "https://example.com/a.jpg"}},
	})
	assert.Equal(t, "Color: teal and orange. 1 reference image(s) collected. (Generated offline)", desc)
	assert.Contains(t, OfflineMoodboardDescription(domain.MoodboardSection{Name: "Light"}), "No notes yet")
}
