package publisher

import (
	"fmt"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

const placeholder = "placeholder.png"

// BuildMarkdown は絵コンテの Markdown を組み立てます。
// links はショット ID から画像リンクへの対応です。リンクのないショットにはプレースホルダーを置きます。
func BuildMarkdown(a domain.ScriptAnalysis, links map[string]string) string {
	var sb strings.Builder
	title := a.Title
	if title == "" {
		title = "Untitled Project"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if a.Logline != "" {
		fmt.Fprintf(&sb, "> %s\n\n", a.Logline)
	}
	if a.Summary != "" && a.Summary != a.Logline {
		fmt.Fprintf(&sb, "%s\n\n", a.Summary)
	}

	if len(a.Characters) > 0 {
		sb.WriteString("## Characters\n\n")
		for _, c := range a.Characters {
			writeEntry(&sb, c.Name, c.ID, c.Description)
		}
		sb.WriteString("\n")
	}
	if len(a.Locations) > 0 {
		sb.WriteString("## Locations\n\n")
		for _, l := range a.Locations {
			writeEntry(&sb, l.Name, l.ID, l.Description)
		}
		sb.WriteString("\n")
	}
	writeList(&sb, "Props", a.Props)
	writeList(&sb, "Styling", a.Styling)
	writeList(&sb, "Set Dressing", a.SetDressing)
	writeList(&sb, "Makeup & Hair", a.MakeupAndHair)
	writeList(&sb, "Sound", a.Sound)

	for _, sc := range a.Scenes {
		fmt.Fprintf(&sb, "## Scene %d: %s\n", sc.SceneNumber, sc.Setting)
		fmt.Fprintf(&sb, "- id: %s\n", sc.ID)
		fmt.Fprintf(&sb, "- time: %s\n", sc.TimeOfDay)
		if sc.Mood != "" {
			fmt.Fprintf(&sb, "- mood: %s\n", sc.Mood)
		}
		if sc.Lighting != "" {
			fmt.Fprintf(&sb, "- lighting: %s\n", sc.Lighting)
		}
		sb.WriteString("\n")
		if sc.Summary != "" {
			fmt.Fprintf(&sb, "%s\n\n", sc.Summary)
		}

		for _, f := range sc.Frames {
			img, ok := links[f.ID]
			if !ok {
				img = placeholder
			}
			fmt.Fprintf(&sb, "### Shot %d\n", f.ShotNumber)
			fmt.Fprintf(&sb, "![%s](%s)\n", f.ID, img)
			fmt.Fprintf(&sb, "- status: %s\n", f.Status)
			if v := frameVideo(f); v != "" {
				fmt.Fprintf(&sb, "- video: %s\n", v)
			}
			if f.Description != "" {
				fmt.Fprintf(&sb, "- description: %s\n", strings.TrimSpace(f.Description))
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func writeEntry(sb *strings.Builder, name, id, desc string) {
	if desc == "" {
		fmt.Fprintf(sb, "- **%s** (`%s`)\n", name, id)
		return
	}
	fmt.Fprintf(sb, "- **%s** (`%s`): %s\n", name, id, desc)
}

func writeList(sb *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, it := range items {
		fmt.Fprintf(sb, "- %s\n", it)
	}
	sb.WriteString("\n")
}

func frameVideo(f domain.Frame) string {
	if f.Media.UpscaledVideoURL != "" {
		return f.Media.UpscaledVideoURL
	}
	return f.Media.VideoURL
}
