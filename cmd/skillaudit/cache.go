package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillaudit/pkg/cache"
	"github.com/jingkaihe/skillaudit/pkg/presenter"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk result cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many results are cached on disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		count, err := store.Count(cmd.Context())
		if err != nil {
			return err
		}
		presenter.Info(fmt.Sprintf("%d cached result(s)", count))
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached result",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Clear(cmd.Context()); err != nil {
			return err
		}
		presenter.Success("result cache cleared")
		return nil
	},
}

func openStore(cmd *cobra.Command) (*cache.ResultStore, error) {
	path := viper.GetString("result_cache_path")
	if path == "" {
		var err error
		path, err = cache.DefaultStorePath()
		if err != nil {
			return nil, err
		}
	}
	return cache.OpenResultStore(cmd.Context(), path)
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
