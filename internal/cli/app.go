// Package cli implements the terminal reveal command.
package cli

import (
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/okian/lineup/internal/domain/board"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/pkg/logger"
)

const (
	backendFlag    = "backend"
	urlFlag        = "url"
	matchIDFlag    = "match-id"
	teamAFlag      = "team-a"
	teamBFlag      = "team-b"
	settleFlag     = "settle"
	startDelayFlag = "start-delay"
	seedFlag       = "seed"
	outputFlag     = "output"
	logLevelFlag   = "log-level"
	timeoutFlag    = "timeout"
)

var semanticVersion = "v0.1.0-dev"

// NewApp builds the reveal command. The reveal and the final board go to
// out; logs go to errOut.
func NewApp(out, errOut io.Writer) *cli.App {
	return &cli.App{
		Name:      "reveal",
		Usage:     "Load a roster, generate teams and reveal them one player at a time",
		Version:   semanticVersion,
		Writer:    out,
		ErrWriter: errOut,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    backendFlag,
				Aliases: []string{"b"},
				Usage:   "Base URL of the team generation backend",
				EnvVars: []string{"LINEUP_BACKEND_URL"},
				Value:   "http://localhost:5000",
			},
			&cli.StringFlag{
				Name:    urlFlag,
				Aliases: []string{"u"},
				Usage:   "Sheet URL listing the attending players",
			},
			&cli.StringFlag{
				Name:    matchIDFlag,
				Aliases: []string{"m"},
				Usage:   "Match identifier to generate from instead of a sheet URL",
			},
			&cli.StringFlag{
				Name:  teamAFlag,
				Usage: "Team A label",
				Value: board.DefaultTeamALabel,
			},
			&cli.StringFlag{
				Name:  teamBFlag,
				Usage: "Team B label",
				Value: board.DefaultTeamBLabel,
			},
			&cli.DurationFlag{
				Name:  settleFlag,
				Usage: "Time each drawn player takes to land",
				Value: defaultSettle,
			},
			&cli.DurationFlag{
				Name:  startDelayFlag,
				Usage: "Pause before the first draw",
				Value: defaultStartDelay,
			},
			&cli.Int64Flag{
				Name:  seedFlag,
				Usage: "Seed for the draw order (0 for random)",
			},
			&cli.StringFlag{
				Name:    outputFlag,
				Aliases: []string{"o"},
				Usage:   "Final board format: text or yaml",
				Value:   OutputText,
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "debug, info, warn or error",
				Value: "warn",
			},
			&cli.DurationFlag{
				Name:  timeoutFlag,
				Usage: "Backend request timeout",
				Value: defaultTimeout,
			},
		},
		Action: func(cCtx *cli.Context) error {
			if err := logger.InitWithWriter(cCtx.App.ErrWriter); err != nil {
				return err
			}
			if err := logger.SetLevelString(cCtx.String(logLevelFlag)); err != nil {
				return err
			}

			cfg := Config{
				BackendURL: cCtx.String(backendFlag),
				Source:     model.Source{URL: cCtx.String(urlFlag), MatchID: cCtx.String(matchIDFlag)},
				TeamA:      cCtx.String(teamAFlag),
				TeamB:      cCtx.String(teamBFlag),
				StartDelay: cCtx.Duration(startDelayFlag),
				Settle:     cCtx.Duration(settleFlag),
				Seed:       cCtx.Int64(seedFlag),
				Output:     cCtx.String(outputFlag),
				Timeout:    cCtx.Duration(timeoutFlag),
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid flags: %w", err)
			}
			return Run(cCtx.Context, cfg, cCtx.App.Writer)
		},
	}
}
