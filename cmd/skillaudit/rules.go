package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillaudit/pkg/presenter"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List the active security rule set",
	RunE: func(cmd *cobra.Command, args []string) error {
		ruleFiles, _ := cmd.Flags().GetStringSlice("rules-file")

		eng, err := buildEngine(ruleFiles)
		if err != nil {
			presenter.Error(err, "configuration")
			return err
		}

		presenter.Section("Active rules")
		for _, r := range eng.ruleSet.Rules() {
			line := fmt.Sprintf("%-24s [%s] (%s) %s",
				r.ID, r.Severity, strings.Join(r.Languages, ","), r.Message)
			presenter.Info(line)
		}
		return nil
	},
}

func init() {
	rulesCmd.Flags().StringSlice("rules-file", nil, "additional YAML rule files")
}
