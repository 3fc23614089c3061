package generator

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestNewReferencePreparer(t *testing.T) {
	_, err := NewReferencePreparer(nil, nil, 0)
	assert.Error(t, err)

	p, err := NewReferencePreparer(&mockHTTPClient{}, nil, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultReferenceCacheTTL, p.cacheTTL)
}

func TestReferencePreparer_Prepare(t *testing.T) {
	ctx := context.Background()

	t.Run("取得した画像は JPEG に圧縮してキャッシュする", func(t *testing.T) {
		client := &mockHTTPClient{data: testPNG(t)}
		cache := &mockCache{data: make(map[string]any)}
		p, err := NewReferencePreparer(client, cache, 0)
		require.NoError(t, err)

		refs, err := p.Prepare(ctx, []string{"https://example.com/a.png"})
		require.NoError(t, err)
		require.Len(t, refs, 1)
		assert.Equal(t, "image/jpeg", refs[0].MimeType)
		assert.NotEmpty(t, refs[0].Data)

		_, err = p.Prepare(ctx, []string{"https://example.com/a.png"})
		require.NoError(t, err)
		assert.EqualValues(t, 1, client.calls.Load(), "2回目はキャッシュから返すこと")
	})

	t.Run("data URL はネットワークを使わない", func(t *testing.T) {
		client := &mockHTTPClient{}
		p, err := NewReferencePreparer(client, nil, 0)
		require.NoError(t, err)

		refs, err := p.Prepare(ctx, []string{EncodeDataURL("image/png", []byte("raw"))})
		require.NoError(t, err)
		assert.Equal(t, "image/png", refs[0].MimeType)
		assert.Equal(t, []byte("raw"), refs[0].Data)
		assert.EqualValues(t, 0, client.calls.Load())
	})

	t.Run("画像でないデータはエラー", func(t *testing.T) {
		p, err := NewReferencePreparer(&mockHTTPClient{data: []byte("<html></html>")}, nil, 0)
		require.NoError(t, err)
		_, err = p.Prepare(ctx, []string{"https://example.com/page"})
		assert.Error(t, err)
	})

	t.Run("取得失敗はエラー", func(t *testing.T) {
		p, err := NewReferencePreparer(&mockHTTPClient{err: errors.New("404")}, nil, 0)
		require.NoError(t, err)
		_, err = p.Prepare(ctx, []string{"https://example.com/missing.png"})
		assert.Error(t, err)
	})

	t.Run("順序を保つ", func(t *testing.T) {
		p, err := NewReferencePreparer(&mockHTTPClient{}, nil, 0)
		require.NoError(t, err)
		refs, err := p.Prepare(ctx, []string{
			EncodeDataURL("image/png", []byte("one")),
			EncodeDataURL("image/gif", []byte("two")),
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("one"), refs[0].Data)
		assert.Equal(t, "image/gif", refs[1].MimeType)
	})
}
