package cli

import (
	"context"
	"fmt"

	"internmatch/internal/common"
	"internmatch/internal/textutil"

	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [resume-file]",
	Short: "Extract skills, education and experience from a resume",
	Long: `Parse a resume (plain text, markdown or PDF).

By default the local keyword parser runs, which needs no network access.
With --deep the configured generator produces a structured profile; when
no generator is configured or the call fails, a local profile is returned.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResume(cmd, args, parseConfig, parseDeep)
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [resume-file]",
	Short: "Structured resume analysis (same as parse --deep)",
	Long: `Analyze a resume into a structured profile: contact details, skills,
tools, domains, soft skills, experience level and a resume strength score.
Resumes shorter than the configured minimum are rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runResume(cmd, args, analyzeConfig, true)
	},
}

var (
	parseConfig   common.CommandConfig
	analyzeConfig common.CommandConfig
	parseDeep     bool
	parseSkills   string
)

func init() {
	addOutputFlags(parseCmd, &parseConfig)
	parseCmd.Flags().BoolVar(&parseDeep, "deep", false, "Run the structured LLM analysis")
	parseCmd.Flags().StringVar(&parseSkills, "skills", "", "Comma-separated skills to merge into the result")

	addOutputFlags(analyzeCmd, &analyzeConfig)
}

func runResume(cmd *cobra.Command, args []string, cc common.CommandConfig, deep bool) error {
	cfg, err := getConfigFromContext(cmd.Context())
	if err != nil {
		return err
	}
	logger, err := getLoggerFromContext(cmd.Context())
	if err != nil {
		return err
	}

	rt, err := newRuntime(cfg, logger, runtimeOptions{})
	if err != nil {
		return err
	}
	defer rt.Close()

	loadInput := func(fp *common.FileProcessor, args []string) (string, error) {
		contents, err := fp.ValidateAndReadFiles(args...)
		if err != nil {
			return "", err
		}
		return contents[0], nil
	}

	mode := "quick"
	if deep {
		mode = "deep"
	}
	logDetails := func(text string, cc common.CommandConfig) {
		logger.Info("Starting resume parse",
			"mode", mode,
			"resume_chars", len(text),
			"output_format", cc.OutputFormat)
	}

	operation := func(ctx context.Context, text string) (any, error) {
		parsed := rt.matcher.ParseResume(text, textutil.SplitSkills(parseSkills))
		rt.obs.RecordResumeParsed(ctx, mode, nil)
		return parsed, nil
	}
	if deep {
		operation = func(ctx context.Context, text string) (any, error) {
			profile, err := rt.deepParser.Parse(ctx, text)
			rt.obs.RecordResumeParsed(ctx, mode, err)
			return profile, err
		}
	}

	if err := common.RunCommand(cmd.Context(), logger, cc, args, loadInput, operation, logDetails); err != nil {
		return fmt.Errorf("failed to parse resume: %w", err)
	}
	return nil
}
