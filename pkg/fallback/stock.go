package fallback

import (
	"unicode/utf16"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// 既定のストック素材プールです。差し替える場合は Synthesizer を直接組み立ててください。
var (
	LandscapePool = []string{
		"https://images.unsplash.com/photo-1500530855697-b586d89ba3ee?w=1600&q=80",
		"https://images.unsplash.com/photo-1469474968028-56623f02e42e?w=1600&q=80",
		"https://images.unsplash.com/photo-1477959858617-67f85cf4f1df?w=1600&q=80",
		"https://images.unsplash.com/photo-1501785888041-af3ef285b470?w=1600&q=80",
		"https://images.unsplash.com/photo-1519681393784-d120267933ba?w=1600&q=80",
		"https://images.unsplash.com/photo-1485846234645-a62644f84728?w=1600&q=80",
	}
	PortraitPool = []string{
		"https://images.unsplash.com/photo-1517841905240-472988babdf9?w=900&q=80",
		"https://images.unsplash.com/photo-1494790108377-be9c29b29330?w=900&q=80",
		"https://images.unsplash.com/photo-1500648767791-00dcc994a43e?w=900&q=80",
		"https://images.unsplash.com/photo-1534528741775-53994a69daeb?w=900&q=80",
	}
	SquarePool = []string{
		"https://images.unsplash.com/photo-1489599849927-2ee91cede3ba?w=1200&h=1200&fit=crop&q=80",
		"https://images.unsplash.com/photo-1440404653325-ab127d49abc1?w=1200&h=1200&fit=crop&q=80",
		"https://images.unsplash.com/photo-1478720568477-152d9b164e26?w=1200&h=1200&fit=crop&q=80",
		"https://images.unsplash.com/photo-1524985069026-dd778a71c7b4?w=1200&h=1200&fit=crop&q=80",
	}
	VideoPool = []string{
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerJoyrides.mp4",
		"https://storage.googleapis.com/gtv-videos-bucket/sample/ForBiggerMeltdowns.mp4",
	}
)

// StockHash は seed の UTF-16 コード単位に対して hash = hash*31 + code を符号付き32bitで畳み込みます。
func StockHash(seed string) int32 {
	var hash int32
	for _, c := range utf16.Encode([]rune(seed)) {
		hash = hash*31 + int32(c)
	}
	return hash
}

// PickStockAsset は seed から決定論的にプールの要素を1つ選びます。
// 同じ seed なら何度呼んでも同じ要素になるため、再描画や再試行で画像がちらつきません。
// 空のプールではゼロ値を返します。
func PickStockAsset[T any](pool []T, seed string) T {
	var zero T
	if len(pool) == 0 {
		return zero
	}
	h := int64(StockHash(seed))
	if h < 0 {
		h = -h
	}
	return pool[h%int64(len(pool))]
}

// Synthesizer はオフライン時の代替コンテンツを生成します。
type Synthesizer struct {
	Landscape []string
	Portrait  []string
	Square    []string
	Video     []string
}

// NewSynthesizer は既定のストック素材プールで Synthesizer を初期化します。
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		Landscape: LandscapePool,
		Portrait:  PortraitPool,
		Square:    SquarePool,
		Video:     VideoPool,
	}
}

// Asset は縦横比に応じたプールから静止画を選びます。
func (s *Synthesizer) Asset(ar domain.AspectRatio, seed string) string {
	switch ar.Orientation() {
	case domain.OrientationPortrait:
		return PickStockAsset(s.Portrait, seed)
	case domain.OrientationSquare:
		return PickStockAsset(s.Square, seed)
	default:
		return PickStockAsset(s.Landscape, seed)
	}
}

// VideoAsset はストック動画を選びます。
func (s *Synthesizer) VideoAsset(seed string) string {
	return PickStockAsset(s.Video, seed)
}

// Media は種類に応じて静止画か動画を選びます。
func (s *Synthesizer) Media(kind domain.MediaKind, ar domain.AspectRatio, seed string) string {
	if kind == domain.MediaVideo {
		return s.VideoAsset(seed)
	}
	return s.Asset(ar, seed)
}

var defaultSynthesizer = NewSynthesizer()

// GetFallbackAsset は既定のプールから静止画を選びます。
func GetFallbackAsset(ar domain.AspectRatio, seed string) string {
	return defaultSynthesizer.Asset(ar, seed)
}

// GetFallbackVideo は既定のプールから動画を選びます。
func GetFallbackVideo(seed string) string {
	return defaultSynthesizer.VideoAsset(seed)
}
