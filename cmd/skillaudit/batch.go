package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillaudit/pkg/catalog"
	"github.com/jingkaihe/skillaudit/pkg/presenter"
	"github.com/jingkaihe/skillaudit/pkg/report"
	"github.com/jingkaihe/skillaudit/pkg/skill"
)

var batchCmd = &cobra.Command{
	Use:   "batch <catalog-directory>",
	Short: "Evaluate every skill under a catalog directory",
	Long: `Evaluate all skill packages found directly under the catalog directory,
fanning out across a bounded worker pool. A skill that fails to load is
reported and skipped; the rest of the catalog still evaluates.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		concurrency, _ := cmd.Flags().GetInt("concurrency")
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
		if concurrency <= 0 {
			concurrency = eng.cfg.Concurrency
		}

		discovery, err := skill.NewDiscovery(
			skill.WithCatalogDirs(args[0]),
			skill.WithExcludeGlobs(eng.cfg.ExcludeGlobs...),
		)
		if err != nil {
			return err
		}

		opts := []catalog.RunnerOption{catalog.WithConcurrency(concurrency)}
		if persist {
			store, err := openResultStore(cmd, eng)
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, catalog.WithResultStore(store))
		}
		runner := catalog.NewRunner(discovery, eng.registry, eng.cache, opts...)

		results, runErr := runner.Run(cmd.Context())
		if runErr != nil {
			presenter.Error(runErr, "some skills failed to evaluate")
		}

		for _, result := range results {
			if format == "text" {
				presenter.GradeSummary(result)
				continue
			}
			rendered, err := formatter.Format(result)
			if err != nil {
				return err
			}
			cmd.OutOrStdout().Write([]byte(rendered))
		}

		if !presenter.IsQuiet() {
			stats := eng.cache.Stats()
			presenter.Info(fmt.Sprintf("evaluated %d skill(s); cache hit rate %.0f%%",
				len(results), stats.HitRate*100))
		}
		return runErr
	},
}

func init() {
	addReportFlags(batchCmd.Flags())
	batchCmd.Flags().Int("concurrency", 0, "worker pool size (defaults to config)")
}
