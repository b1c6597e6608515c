package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/liushu2048/booktoc/internal/config"
	"github.com/liushu2048/booktoc/internal/llm"
	"github.com/liushu2048/booktoc/internal/logging"
	"github.com/liushu2048/booktoc/internal/outline"
	"github.com/liushu2048/booktoc/internal/pipeline"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "booktoc",
		Short: "Extract tables of contents and chapter text from PDF and EPUB books",
		Long: `booktoc reads a PDF or EPUB ebook, repairs its table of contents
(encoding damage, garbled titles, corrupt chapter numbering) and can slice
the book's text into per-chapter content. Results are printed as JSON.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "Config file path (default: ~/.booktoc/config.yaml)")
	root.PersistentFlags().String("log-mode", "", "Log mode: production or development (overrides config)")
	root.PersistentFlags().Bool("refine", false, "Clean the outline through the configured LLM backend")

	root.AddCommand(newTOCCmd(), newChaptersCmd(), newVersionCmd())
	return root
}

func newTOCCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toc <book>",
		Short: "Extract the repaired table of contents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, opts, cleanup, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			toc, err := pipeline.ExtractTOC(cmd.Context(), data, args[0], opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd, toc)
		},
	}
}

func newChaptersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chapters <book>",
		Short: "Extract per-chapter content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, opts, cleanup, err := setup(cmd, args[0])
			if err != nil {
				return err
			}
			defer cleanup()

			var accepted []outline.Entry
			if tocPath, _ := cmd.Flags().GetString("toc"); tocPath != "" {
				if accepted, err = readAcceptedTOC(tocPath); err != nil {
					return err
				}
			}

			chapters, err := pipeline.ExtractChapters(cmd.Context(), data, args[0], accepted, opts)
			if err != nil {
				return err
			}
			return writeJSON(cmd, chapters)
		},
	}
	cmd.Flags().String("toc", "", "JSON table of contents to slice by, as produced by the toc command and possibly edited")
	return cmd
}

// readAcceptedTOC loads an outline from a toc command result or a bare
// entry array.
func readAcceptedTOC(path string) ([]outline.Entry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var toc pipeline.TOC
	if err := json.Unmarshal(raw, &toc); err == nil && len(toc.Entries) > 0 {
		return toc.Entries, nil
	}
	var entries []outline.Entry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse table of contents %s: %w", path, err)
	}
	return entries, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the booktoc version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "booktoc", version)
		},
	}
}

// setup loads the input file, the configuration and the logger, and builds
// the pipeline options for one invocation.
func setup(cmd *cobra.Command, path string) ([]byte, pipeline.Options, func(), error) {
	noop := func() {}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pipeline.Options{}, noop, fmt.Errorf("failed to read %s: %w", path, err)
	}

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, pipeline.Options{}, noop, err
	}

	mode, _ := cmd.Flags().GetString("log-mode")
	if mode == "" {
		mode = cfg.LogMode
	}
	log, err := logging.New(mode)
	if err != nil {
		return nil, pipeline.Options{}, noop, err
	}
	cleanup := func() { _ = log.Sync() }

	opts := pipeline.Options{Logger: log}
	if refineOn, _ := cmd.Flags().GetBool("refine"); refineOn {
		opts.Refiner = buildRefiner(cfg, log)
	}
	return data, opts, cleanup, nil
}

// buildRefiner wires the LLM client from configuration. Missing
// credentials disable refinement rather than failing the run.
func buildRefiner(cfg *config.Config, log *zap.Logger) *outline.Refiner {
	apiKey := cfg.ResolveAPIKey()
	if apiKey == "" {
		log.Warn("refinement requested but no API key configured, skipping")
		return nil
	}
	provider := cfg.Provider()
	timeout := time.Duration(cfg.Refine.TimeoutSec) * time.Second
	client := llm.NewClient(llm.Config{
		BaseURLs: provider.BaseURLs,
		APIKey:   apiKey,
		Model:    provider.Model,
		Timeout:  timeout,
	})
	return outline.NewRefiner(client, timeout, log)
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
