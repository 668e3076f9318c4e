package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/catalog"
	"github.com/jingkaihe/skillaudit/pkg/presenter"
	"github.com/jingkaihe/skillaudit/pkg/report"
	"github.com/jingkaihe/skillaudit/pkg/skill"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <skill-directory>",
	Short: "Evaluate a single skill package",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		output, _ := cmd.Flags().GetString("output")
		ruleFiles, _ := cmd.Flags().GetStringSlice("rules-file")
		persist, _ := cmd.Flags().GetBool("persist")
		quiet, _ := cmd.Flags().GetBool("quiet")
		presenter.SetQuiet(quiet)

		formatter, err := report.New(format)
		if err != nil {
			return err
		}

		eng, err := buildEngine(ruleFiles)
		if err != nil {
			presenter.Error(err, "configuration")
			return err
		}

		discovery, err := skill.NewDiscovery(skill.WithExcludeGlobs(eng.cfg.ExcludeGlobs...))
		if err != nil {
			return err
		}

		var opts []catalog.RunnerOption
		if persist {
			store, err := openResultStore(cmd, eng)
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, catalog.WithResultStore(store))
		}
		runner := catalog.NewRunner(discovery, eng.registry, eng.cache, opts...)

		result, err := runner.EvaluateSkill(cmd.Context(), args[0])
		if err != nil {
			presenter.Error(err, "evaluation")
			return err
		}

		rendered, err := formatter.Format(result)
		if err != nil {
			return err
		}
		if output != "" {
			if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
				return errors.Wrapf(err, "failed to write report to %s", output)
			}
			presenter.Success("report written to " + output)
		} else {
			cmd.OutOrStdout().Write([]byte(rendered))
		}
		return nil
	},
}

// openResultStore opens the configured on-disk result cache
func openResultStore(cmd *cobra.Command, eng *engine) (*cache.ResultStore, error) {
	path := eng.cfg.ResultCachePath
	if path == "" {
		var err error
		path, err = cache.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return cache.OpenResultStore(cmd.Context(), path)
}

// addReportFlags registers the flags shared by evaluate and batch
func addReportFlags(flags *pflag.FlagSet) {
	flags.String("format", "text", "report format: text, json, or markdown")
	flags.StringSlice("rules-file", nil, "additional YAML rule files")
	flags.Bool("persist", false, "persist results in the on-disk cache")
	flags.Bool("quiet", false, "suppress non-report output")
}

func init() {
	addReportFlags(evaluateCmd.Flags())
	evaluateCmd.Flags().String("output", "", "write the report to a file instead of stdout")
}
