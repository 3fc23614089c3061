package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// keyCmd は Gemini API キーの上書きを管理するのだ。REDIS_URL があればプロセスをまたいで残るのだ。
var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Gemini API キーの上書きを管理するのだ。",
}

var keySetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "API キーを保存するのだ。",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Credentials().Set(ctx, args[0]); err != nil {
			return fmt.Errorf("API キーの保存に失敗したのだ: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API キーを保存したのだ。")
		return nil
	},
}

var keyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "保存した API キーを消すのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()
		if err := m.Credentials().Clear(ctx); err != nil {
			return fmt.Errorf("API キーの削除に失敗したのだ: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API キーを削除したのだ。")
		return nil
	},
}

var keyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "API キーの状態とライブ/オフラインを表示するのだ。",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		m, err := newManager(ctx)
		if err != nil {
			return err
		}
		defer m.Close()

		mode := "offline"
		if m.Selector().ShouldPreferLive() {
			mode = "live"
		}
		imageMode := "offline"
		if m.ImageSelector().ShouldPreferLive() {
			imageMode = "live"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "key: %s\nmode: %s\nimage: %s (%s)\n",
			maskKey(m.Credentials().APIKey()), mode, m.ImageProviderName(), imageMode)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyClearCmd, keyStatusCmd)
}

// maskKey は末尾4文字だけを残して伏せるのだ。
func maskKey(key string) string {
	if key == "" {
		return "(not set)"
	}
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
