package publisher

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/generator"
)

// OutputWriter は成果物を保存先に書き出します。
type OutputWriter interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// LocalWriter はローカルファイルシステムに書き出す OutputWriter です。
type LocalWriter struct{}

// Write は親ディレクトリを作成してからファイルを書き出します。
func (LocalWriter) Write(_ context.Context, p string, r io.Reader, _ string) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.Create(p)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Options はパブリッシュ動作を制御する設定項目です。
type Options struct {
	OutputDir string
}

// PublishResult は書き出したファイルの情報です。
type PublishResult struct {
	MarkdownPath string
	ImagePaths   []string
}

const (
	defaultStoryboardName = "storyboard.md"
	defaultImageDirName   = "images"
)

var extByMime = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"video/mp4":  ".mp4",
}

// StoryboardPublisher は ScriptAnalysis と生成済みメディアを絵コンテ Markdown として書き出します。
type StoryboardPublisher struct {
	writer OutputWriter
}

// NewStoryboardPublisher は StoryboardPublisher を作成します。
func NewStoryboardPublisher(writer OutputWriter) (*StoryboardPublisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	return &StoryboardPublisher{writer: writer}, nil
}

// Publish はインライン画像をファイルに保存し、Markdown を書き出します。
// リモート URL の画像はダウンロードせず、そのままリンクします。
func (p *StoryboardPublisher) Publish(ctx context.Context, a domain.ScriptAnalysis, opts Options) (PublishResult, error) {
	result := PublishResult{}
	if opts.OutputDir == "" {
		return result, fmt.Errorf("output dir is required")
	}

	links := make(map[string]string)
	for _, sc := range a.Scenes {
		for _, f := range sc.Frames {
			src := frameImage(f)
			if src == "" {
				continue
			}
			if !strings.HasPrefix(src, "data:") {
				links[f.ID] = src
				continue
			}

			rel, full, err := p.saveInline(ctx, opts.OutputDir, f.ID, src)
			if err != nil {
				return result, fmt.Errorf("failed to save image for %s: %w", f.ID, err)
			}
			links[f.ID] = rel
			result.ImagePaths = append(result.ImagePaths, full)
		}
	}

	result.MarkdownPath = filepath.Join(opts.OutputDir, defaultStoryboardName)
	content := BuildMarkdown(a, links)
	if err := p.writer.Write(ctx, result.MarkdownPath, strings.NewReader(content), "text/markdown; charset=utf-8"); err != nil {
		return result, fmt.Errorf("failed to write storyboard: %w", err)
	}

	slog.InfoContext(ctx, "storyboard published",
		"title", a.Title,
		"path", result.MarkdownPath,
		"images", len(result.ImagePaths))
	return result, nil
}

func (p *StoryboardPublisher) saveInline(ctx context.Context, dir, frameID, src string) (rel, full string, err error) {
	mimeType, data, err := generator.DecodeDataURL(src)
	if err != nil {
		return "", "", err
	}
	ext, ok := extByMime[mimeType]
	if !ok {
		ext = ".bin"
	}
	name := frameID + ext
	full = filepath.Join(dir, defaultImageDirName, name)
	if err := p.writer.Write(ctx, full, bytes.NewReader(data), mimeType); err != nil {
		return "", "", err
	}
	return path.Join(defaultImageDirName, name), full, nil
}

// frameImage は最も完成度の高い静止画を返します。
func frameImage(f domain.Frame) string {
	if f.Media.UpscaledImageURL != "" {
		return f.Media.UpscaledImageURL
	}
	return f.Media.ImageURL
}
