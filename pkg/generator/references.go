package generator

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
)

// dataURLRegex は base64 で埋め込まれた画像の data URL に一致します。
var dataURLRegex = regexp.MustCompile(`^data:(image/[A-Za-z0-9.+-]+);base64,([A-Za-z0-9+/=\s]+)$`)

// CollectReferences は参照画像を 利用者の添付 -> ムードボードのテンプレート -> セクション の優先順で重複なく集め、
// 上限 domain.MaxReferenceImages 枚に切り詰めます。
// 重複の除去や切り詰めが起きた場合は adjusted が true になります。
func CollectReferences(user, templates, sections []string) (refs []string, adjusted bool) {
	seen := make(map[string]struct{})
	for _, group := range [][]string{user, templates, sections} {
		for _, raw := range group {
			u := strings.TrimSpace(raw)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				adjusted = true
				continue
			}
			seen[u] = struct{}{}
			if len(refs) == domain.MaxReferenceImages {
				adjusted = true
				continue
			}
			refs = append(refs, u)
		}
	}
	return refs, adjusted
}

// ValidateReference は参照画像が http(s) URL か、正しい形式の画像 data URL であることを確認します。
func ValidateReference(ref string) error {
	if strings.HasPrefix(ref, "data:") {
		_, _, err := DecodeDataURL(ref)
		return err
	}
	u, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("reference image %q is not a valid url: %w", ref, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("reference image %q must be an http(s) url or an image data url", ref)
	}
	return nil
}

// DecodeDataURL は data:image/...;base64,... を MIME タイプとバイト列に分解します。
func DecodeDataURL(ref string) (mimeType string, data []byte, err error) {
	m := dataURLRegex.FindStringSubmatch(ref)
	if m == nil {
		return "", nil, fmt.Errorf("malformed image data url")
	}
	payload := strings.Join(strings.Fields(m[2]), "")
	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("malformed image data url: %w", err)
	}
	if len(data) == 0 {
		return "", nil, fmt.Errorf("image data url is empty")
	}
	return m[1], data, nil
}

// EncodeDataURL はバイト列を data URL に変換します。
func EncodeDataURL(mimeType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))
}
