package generator

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectReferences(t *testing.T) {
	t.Run("重複を除き優先順を保って5件に切り詰める", func(t *testing.T) {
		user := []string{"u1", "u2", "u1"}
		templates := []string{"u2", "t1", "t2"}
		sections := []string{"s1", "s2"}

		refs, adjusted := CollectReferences(user, templates, sections)
		assert.Equal(t, []string{"u1", "u2", "t1", "t2", "s1"}, refs)
		assert.True(t, adjusted)
	})

	t.Run("調整が不要なら adjusted は false", func(t *testing.T) {
		refs, adjusted := CollectReferences([]string{"u1"}, []string{"t1"}, nil)
		assert.Equal(t, []string{"u1", "t1"}, refs)
		assert.False(t, adjusted)
	})

	t.Run("空文字は無視する", func(t *testing.T) {
		refs, adjusted := CollectReferences([]string{" ", "u1 "}, nil, nil)
		assert.Equal(t, []string{"u1"}, refs)
		assert.False(t, adjusted)
	})

	t.Run("上限ちょうどなら調整なし", func(t *testing.T) {
		var user []string
		for i := 0; i < 5; i++ {
			user = append(user, fmt.Sprintf("u%d", i))
		}
		refs, adjusted := CollectReferences(user, nil, nil)
		assert.Len(t, refs, 5)
		assert.False(t, adjusted)
	})
}

func TestValidateReference(t *testing.T) {
	assert.NoError(t, ValidateReference("https://example.com/a.png"))
	assert.NoError(t, ValidateReference("http://example.com/a.png"))
	assert.NoError(t, ValidateReference(EncodeDataURL("image/png", []byte("png"))))
	assert.Error(t, ValidateReference("example.com/a.png"))
	assert.Error(t, ValidateReference("file:///etc/passwd"))
	assert.Error(t, ValidateReference("data:text/plain;base64,aGVsbG8="))
	assert.Error(t, ValidateReference("data:image/png;base64,"))
}

func TestDecodeDataURL(t *testing.T) {
	mimeType, data, err := DecodeDataURL(EncodeDataURL("image/webp", []byte("hello")))
	require.NoError(t, err)
	assert.Equal(t, "image/webp", mimeType)
	assert.Equal(t, []byte("hello"), data)

	_, _, err = DecodeDataURL("data:image/png;base64,%%%")
	assert.Error(t, err)
	_, _, err = DecodeDataURL("data:image/png;base64,abc")
	assert.Error(t, err, "パディング不足の base64 は不正")
}
