package fallback

import (
	"fmt"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

var directorTips = []string{
	"Start wide to establish geography, then push in as the tension rises.",
	"Let the lighting carry the mood: motivate every source you can see.",
	"Hold on the reaction, not the action. The audience reads faces first.",
	"Block the scene so the camera never has to chase the performance.",
	"Use a single strong color accent per scene to guide the eye.",
}

// OfflineDirectorReply はテキスト生成が使えないときの演出アドバイスを返します。
func OfflineDirectorReply(question string) string {
	tip := PickStockAsset(directorTips, strings.ToLower(strings.TrimSpace(question)))
	return fmt.Sprintf("(Offline mode) %s", tip)
}

// OfflineMoodboardDescription はムードボード区画の説明文を、メモと画像枚数から組み立てます。
func OfflineMoodboardDescription(section domain.MoodboardSection) string {
	notes := strings.TrimSpace(section.Notes)
	if notes == "" {
		notes = "No notes yet"
	}
	return fmt.Sprintf("%s: %s. %d reference image(s) collected. (Generated offline)", section.Name, notes, len(section.Items))
}
