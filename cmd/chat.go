package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shouni/go-previz-kit/pkg/domain"
	"github.com/shouni/go-previz-kit/pkg/fallback"
)

// chatCmd は演出について AI 監督に相談するのだ。
var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "AI 監督に演出の相談をするのだ。",
	Args:  cobra.MinimumNArgs(1),
	RunE:  chatCommand,
}

func init() {
	chatCmd.Flags().StringVarP(&opts.ScriptFile, "script-file", "f", "", "相談の前提にする脚本ファイルなのだ。")
}

func chatCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	m, err := newManager(ctx)
	if err != nil {
		return err
	}
	defer m.Close()

	var proj *domain.ScriptAnalysis
	if opts.ScriptFile != "" {
		raw, err := readScript(opts.ScriptFile)
		if err != nil {
			return err
		}
		a := fallback.ParseScriptHeuristically(raw)
		proj = &a
	}

	res, err := m.Analyzer().AskDirector(ctx, strings.Join(args, " "), proj)
	if err != nil {
		return err
	}
	if res.Notice != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), res.Notice)
	}
	fmt.Fprintln(cmd.OutOrStdout(), res.Text)
	return nil
}
