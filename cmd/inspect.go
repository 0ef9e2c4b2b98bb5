package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"cip/internal/codec"
	"cip/internal/processor"
	"cip/internal/resolver"
	"cip/internal/tui"
	"cip/pkg/imgutil"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [flags] PATHS",
	Short: "Show what a run would do without modifying files",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildConfig(cmd, args)
		if err != nil {
			return err
		}

		fs := afero.NewOsFs()
		set, err := resolver.Resolve(fs, cfg.Paths, cfg.Depth)
		if err != nil {
			return err
		}

		plans, err := processor.New(fs, codec.New(), cfg).Inspect(set)
		if err != nil {
			return err
		}

		writePlans(cmd.OutOrStdout(), plans)
		return nil
	},
}

func writePlans(w io.Writer, plans []processor.Plan) {
	for i, plan := range plans {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, tui.FileStyle.Render(filepath.Join(plan.Dir, plan.Name)))

		if plan.Err != nil {
			writeField(w, "error", tui.ErrorStyle.Render(plan.Err.Error()))
			continue
		}
		if plan.Kind == imgutil.KindUnknown {
			writeField(w, "kind", tui.DimStyle.Render("unsupported, skipped"))
			continue
		}

		kind := plan.Kind.String()
		if plan.Content != plan.Kind {
			kind += tui.WarnStyle.Render(fmt.Sprintf(" (content is %s)", plan.Content))
		}
		writeField(w, "kind", kind)
		writeField(w, "size", fmt.Sprintf("%s, %dx%d", tui.HumanBytes(plan.Size), plan.Width, plan.Height))
		writeField(w, "resize eligible", fmt.Sprintf("%t", plan.Eligible))
		writeField(w, "actions", actionList(plan.Actions))
		if plan.Camera != "" {
			writeField(w, "camera", plan.Camera)
		}
		if plan.Taken != "" {
			writeField(w, "taken", plan.Taken)
		}
	}
}

func writeField(w io.Writer, key, value string) {
	fmt.Fprintf(w, "  %s %s %s\n",
		tui.BulletStyle.Render("-"),
		tui.KeyStyle.Render(key+":"),
		tui.ValueStyle.Render(value),
	)
}

func actionList(actions []processor.Action) string {
	if len(actions) == 0 {
		return "none"
	}
	names := make([]string, len(actions))
	for i, action := range actions {
		names[i] = action.String()
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
