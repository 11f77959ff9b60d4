package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"internmatch/internal/cleaning"
	"internmatch/internal/common"
	"internmatch/internal/types"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [items-file]",
	Short: "Normalize scraped internship listings",
	Long: `Clean a JSON file of scraped listings. The file holds either an array of
objects or {"items": [...]}. Locations are canonicalized (city aliases,
tuple-export debris, missing values become "Remote") and description and
requirement fields are stripped of HTML.`,
	Args: cobra.ExactArgs(1),
	RunE: runClean,
}

var (
	cleanConfig  common.CommandConfig
	cleanWorkers int
)

func init() {
	addOutputFlags(cleanCmd, &cleanConfig)
	cleanCmd.Flags().IntVar(&cleanWorkers, "workers", 0, "Parallel workers (default from config, 0 uses all CPUs)")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	workers := cfg.Server.CleanWorkers
	if cmd.Flags().Changed("workers") {
		workers = cleanWorkers
	}

	loadInput := func(fp *common.FileProcessor, args []string) ([]types.CleanItem, error) {
		content, err := fp.ReadBytes(args[0])
		if err != nil {
			return nil, err
		}
		return decodeCleanItems(content)
	}

	err = common.RunCommand(cmd.Context(), logger, cleanConfig, args, loadInput,
		func(ctx context.Context, items []types.CleanItem) ([]types.CleanItem, error) {
			return cleaning.CleanAll(ctx, items, workers)
		},
		func(items []types.CleanItem, cc common.CommandConfig) {
			logger.Info("Starting data cleaning", "items", len(items), "workers", workers)
		})
	if err != nil {
		return fmt.Errorf("failed to clean data: %w", err)
	}
	return nil
}

// decodeCleanItems accepts a bare array or an {"items": [...]} envelope
func decodeCleanItems(content []byte) ([]types.CleanItem, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []types.CleanItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid items array: %w", err)
		}
		return items, nil
	}

	var envelope struct {
		Items []types.CleanItem `json:"items"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("invalid items document: %w", err)
	}
	if envelope.Items == nil {
		return nil, fmt.Errorf("document has no items")
	}
	return envelope.Items, nil
}
