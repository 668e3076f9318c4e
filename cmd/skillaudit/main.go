// skillaudit is a static-analysis engine for skill packages: it inspects a
// directory bundle of instructions and scripts and produces a quality and
// security score across seven weighted dimensions.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/config"
	"github.com/jingkaihe/skillaudit/pkg/evaluator"
	"github.com/jingkaihe/skillaudit/pkg/logger"
	"github.com/jingkaihe/skillaudit/pkg/rules"
	"github.com/jingkaihe/skillaudit/pkg/scanner"
	"github.com/jingkaihe/skillaudit/pkg/telemetry"
	"github.com/jingkaihe/skillaudit/pkg/version"
)

func init() {
	viper.SetEnvPrefix("SKILLAUDIT")
	viper.AutomaticEnv()

	viper.SetConfigName("skillaudit-config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillaudit")
	viper.AddConfigPath(".")

	// Config file is optional
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillaudit",
	Short: "Static quality and security analysis for skill packages",
	Long: `skillaudit evaluates skill packages: directories holding a SKILL.md
manifest and a scripts/ subtree. Scripts and the code fragments embedded in
prose documents are parsed into syntax trees and matched against a security
rule set; seven weighted dimensions combine into a total score and grade.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

// engine bundles the validated scoring pipeline shared by the commands
type engine struct {
	cfg      config.Config
	cache    *cache.Manager
	ruleSet  *rules.Set
	scanner  *scanner.Scanner
	registry *evaluator.Registry
}

// buildEngine loads configuration and rules and wires the registry with the
// builtin evaluators. Any configuration problem fails here, before a single
// skill is touched.
func buildEngine(ruleFiles []string) (*engine, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}

	files := cfg.RuleFiles
	if len(ruleFiles) > 0 {
		files = ruleFiles
	}
	ruleSet, err := rules.LoadSet(files...)
	if err != nil {
		return nil, err
	}
	if err := ruleSet.Validate(scanner.SupportedLanguages()); err != nil {
		return nil, err
	}

	cm := cache.NewManager()
	sc := scanner.New(ruleSet, cm, scanner.WithMaxFileSize(cfg.MaxFileSize))
	registry, err := evaluator.NewRegistryWithBuiltins(cfg, sc, cm)
	if err != nil {
		return nil, err
	}

	return &engine{cfg: cfg, cache: cm, ruleSet: ruleSet, scanner: sc, registry: registry}, nil
}

func main() {
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("trace", false, "enable OpenTelemetry tracing")
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("trace", rootCmd.PersistentFlags().Lookup("trace"))

	cobra.OnInitialize(func() {
		if level := viper.GetString("log_level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				fmt.Fprintf(os.Stderr, "invalid log level: %s\n", level)
			}
		}
	})

	rootCmd.AddCommand(evaluateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(rulesCmd)
	rootCmd.AddCommand(schemaCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	ctx := context.Background()
	shutdown, err := telemetry.InitTracer(ctx, telemetry.Config{
		Enabled:        viper.GetBool("trace"),
		ServiceName:    "skillaudit",
		ServiceVersion: version.Get().Version,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize tracing: %v\n", err)
	} else {
		defer shutdown(ctx)
	}

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
