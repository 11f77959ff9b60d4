package cli

import (
	"context"
	"fmt"

	"internmatch/internal/common"
	"internmatch/internal/types"

	"github.com/spf13/cobra"
)

var matchCmd = &cobra.Command{
	Use:   "match [request-file]",
	Short: "Rank internships for a student",
	Long: `Rank the internships in a request file for the student it describes.

The request file is JSON (or YAML when it ends in .yaml/.yml) with the same
shape as the POST /match body:

  {"student": {...}, "internships": [...], "workPreference": "remote"}

Use --resume to merge the text of a resume (text or PDF) into the profile.`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

var (
	matchConfig         common.CommandConfig
	matchResumeFile     string
	matchWorkPreference string
)

func init() {
	addOutputFlags(matchCmd, &matchConfig)
	matchCmd.Flags().StringVar(&matchResumeFile, "resume", "", "Resume file (text or PDF) to use as the student's resume text")
	matchCmd.Flags().StringVar(&matchWorkPreference, "work-preference", "", "Override the work preference: office, remote, or any")
}

func runMatch(cmd *cobra.Command, args []string) error {
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

	loadInput := func(fp *common.FileProcessor, args []string) (types.MatchRequest, error) {
		var req types.MatchRequest
		if err := fp.DecodeFile(args[0], &req); err != nil {
			return req, err
		}
		if matchResumeFile != "" {
			text, err := fp.ReadFile(matchResumeFile)
			if err != nil {
				return req, err
			}
			req.Student.ResumeText = text
		}
		if matchWorkPreference != "" {
			req.WorkPreference = matchWorkPreference
		}
		switch req.WorkPreference {
		case "", types.WorkModeOffice, types.WorkModeRemote, types.WorkModeAny:
		default:
			return req, fmt.Errorf("invalid work preference %q (must be office, remote, or any)", req.WorkPreference)
		}
		return req, nil
	}

	logDetails := func(req types.MatchRequest, cc common.CommandConfig) {
		logger.Info("Starting match",
			"internships", len(req.Internships),
			"skills", len(req.Student.Skills),
			"has_resume", req.Student.ResumeText != "",
			"output_format", cc.OutputFormat)
	}

	err = common.RunCommand(cmd.Context(), logger, matchConfig, args, loadInput,
		func(ctx context.Context, req types.MatchRequest) (types.MatchResponse, error) {
			return rt.matcher.Match(ctx, req)
		},
		logDetails)
	if err != nil {
		return fmt.Errorf("failed to match internships: %w", err)
	}
	logger.Info("Match completed successfully")
	return nil
}
