package main

import (
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillaudit/pkg/report"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON schema of the machine-readable report",
	RunE: func(cmd *cobra.Command, args []string) error {
		schema, err := report.Schema()
		if err != nil {
			return err
		}
		cmd.OutOrStdout().Write([]byte(schema))
		return nil
	},
}
