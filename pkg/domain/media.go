package domain

import (
	"fmt"
	"strings"
)

// AspectRatio は生成する静止画・動画の縦横比です。
type AspectRatio string

const (
	AspectSquare   AspectRatio = "1:1"
	AspectWide     AspectRatio = "16:9"
	AspectTall     AspectRatio = "9:16"
	AspectClassic  AspectRatio = "4:3"
	AspectPortrait AspectRatio = "3:4"

	// DefaultAspect は縦横比未指定時の値です。
	DefaultAspect      = AspectWide
	// MaxReferenceImages は1リクエストに添付できる参照画像の上限です。
	MaxReferenceImages = 5
)

// Orientation はフォールバック素材のプールを選ぶための向きです。
type Orientation string

const (
	OrientationLandscape Orientation = "landscape"
	OrientationPortrait  Orientation = "portrait"
	OrientationSquare    Orientation = "square"
)

// ParseAspectRatio は文字列をサポート済みの AspectRatio に変換します。
func ParseAspectRatio(s string) (AspectRatio, error) {
	ar := AspectRatio(strings.TrimSpace(s))
	switch ar {
	case AspectSquare, AspectWide, AspectTall, AspectClassic, AspectPortrait:
		return ar, nil
	case "":
		return DefaultAspect, nil
	}
	return "", fmt.Errorf("unsupported aspect ratio %q", s)
}

// Orientation は 9:16 と 3:4 を縦長、1:1 を正方形、それ以外を横長として扱います。
func (a AspectRatio) Orientation() Orientation {
	switch a {
	case AspectTall, AspectPortrait:
		return OrientationPortrait
	case AspectSquare:
		return OrientationSquare
	default:
		return OrientationLandscape
	}
}

// Dimensions はピクセル指定が必要なプロバイダ向けの出力サイズを返します。
func (a AspectRatio) Dimensions() (width, height int) {
	switch a {
	case AspectSquare:
		return 1024, 1024
	case AspectTall:
		return 768, 1344
	case AspectPortrait:
		return 896, 1152
	case AspectClassic:
		return 1152, 896
	default:
		return 1344, 768
	}
}

// MediaKind は生成対象の種類です。
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaVideo MediaKind = "video"
)

// GenerationRequest は1回の生成バッチ要求です。発行後は値として扱い、変更しません。
type GenerationRequest struct {
	Prompt          string
	Seed            string
	AspectRatio     AspectRatio
	Count           int
	ReferenceImages []string
	Kind            MediaKind
}

// GenerationResult はバッチ内の1ユニット分の結果です。
// URL が空で Error が入っている場合、そのユニットは回復不能な失敗です。
// FromFallback はストック素材で代替したことを示し、エラーではありません。
type GenerationResult struct {
	URL          string `json:"url"`
	FromFallback bool   `json:"fromFallback"`
	Error        string `json:"error,omitempty"`
	Notice       string `json:"notice,omitempty"`
}

// Failed はユニットが失敗したかどうかを返します。
func (r GenerationResult) Failed() bool {
	return r.URL == "" && r.Error != ""
}
