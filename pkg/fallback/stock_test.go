package fallback

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

func TestStockHash(t *testing.T) {
	assert.Equal(t, int32(0), StockHash(""))
	assert.Equal(t, int32(97), StockHash("a"))
	assert.Equal(t, int32(97*31+98), StockHash("ab"))
	// オーバーフローしても符号付き32bitで折り返すこと
	long := "the quick brown fox jumps over the lazy dog"
	assert.Equal(t, StockHash(long), StockHash(long))
}

func TestPickStockAsset_Deterministic(t *testing.T) {
	pool := []string{"a", "b", "c"}
	for _, seed := range []string{"", "scene-1", "長いシード値", "the quick brown fox jumps over the lazy dog"} {
		first := PickStockAsset(pool, seed)
		for i := 0; i < 5; i++ {
			assert.Equal(t, first, PickStockAsset(pool, seed), seed)
		}
		assert.Contains(t, pool, first)
	}
}

func TestPickStockAsset_EmptyPool(t *testing.T) {
	assert.Equal(t, "", PickStockAsset([]string(nil), "seed"))
	assert.Equal(t, 0, PickStockAsset([]int{}, "seed"))
}

func TestPickStockAsset_Index(t *testing.T) {
	pool := []string{"zero", "one", "two"}
	// "a" = 97, 97 % 3 = 1
	assert.Equal(t, "one", PickStockAsset(pool, "a"))
}

func TestSynthesizer_AssetByOrientation(t *testing.T) {
	s := &Synthesizer{
		Landscape: []string{"land"},
		Portrait:  []string{"port"},
		Square:    []string{"sq"},
		Video:     []string{"vid"},
	}
	tests := []struct {
		ar   domain.AspectRatio
		want string
	}{
		{domain.AspectWide, "land"},
		{domain.AspectClassic, "land"},
		{domain.AspectTall, "port"},
		{domain.AspectPortrait, "port"},
		{domain.AspectSquare, "sq"},
		{"", "land"},
	}
	for _, tt := range tests {
		t.Run(string(tt.ar), func(t *testing.T) {
			assert.Equal(t, tt.want, s.Asset(tt.ar, "seed"))
		})
	}
	assert.Equal(t, "vid", s.Media(domain.MediaVideo, domain.AspectSquare, "seed"))
	assert.Equal(t, "sq", s.Media(domain.MediaImage, domain.AspectSquare, "seed"))
}

func TestGetFallbackAsset(t *testing.T) {
	assert.Contains(t, PortraitPool, GetFallbackAsset(domain.AspectTall, "seed-1"))
	assert.Contains(t, LandscapePool, GetFallbackAsset(domain.AspectWide, "seed-1"))
	assert.Contains(t, SquarePool, GetFallbackAsset(domain.AspectSquare, "seed-1"))
	assert.Contains(t, VideoPool, GetFallbackVideo("seed-1"))
	assert.Equal(t, GetFallbackAsset(domain.AspectWide, "x"), GetFallbackAsset(domain.AspectWide, "x"))
}
