// Package cli implements the botpanel command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/config"
	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/database"
	"github.com/edgard/botpanel/internal/gemini"
	"github.com/edgard/botpanel/internal/logger"
)

// Version is set at build time.
var Version = "dev"

// app carries the state shared by all commands. The database is opened on
// first use so that help output never touches it.
type app struct {
	configPath string
	logLevel   string
	out        io.Writer

	cfg     *config.Config
	logger  *slog.Logger
	db      *sqlx.DB
	service *control.Service
}

// Run runs the command line with args, writing command output to out.
func Run(ctx context.Context, args []string, out io.Writer) error {
	a := &app{out: out}
	defer a.close()

	root := &cli.Command{
		Name:    "botpanel",
		Usage:   "Manage Discord bot backends",
		Version: Version,
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "path to the configuration file",
				Value:       "./config.yaml",
				Sources:     cli.EnvVars(config.EnvPrefix + "_CONFIG"),
				Destination: &a.configPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error), overrides the configuration",
				Destination: &a.logLevel,
			},
		},
		Before: a.setup,
		Commands: []*cli.Command{
			a.cmdBot(),
			a.cmdGroup(),
			a.cmdStatus(),
			a.cmdStart(),
			a.cmdStop(),
			a.cmdMembers(),
			a.cmdRoles(),
			a.cmdChannels(),
			a.cmdRole(),
			a.cmdClear(),
			a.cmdAttendance(),
			a.cmdSurvey(),
			a.cmdServe(),
		},
	}

	return root.Run(ctx, args)
}

func (a *app) setup(ctx context.Context, _ *cli.Command) (context.Context, error) {
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return ctx, err
	}
	if a.logLevel != "" {
		cfg.Logger.Level = strings.ToLower(a.logLevel)
		if err := cfg.Validate(); err != nil {
			return ctx, err
		}
	}

	a.cfg = cfg
	a.logger = logger.NewLogger(cfg.Logger)
	slog.SetDefault(a.logger)
	return ctx, nil
}

// open connects to the database and builds the service.
func (a *app) open(ctx context.Context) error {
	if a.service != nil {
		return nil
	}

	db, err := database.NewDB(a.cfg.Database.Path)
	if err != nil {
		return err
	}
	a.db = db
	store := database.NewStore(db, a.logger)

	var summarizer gemini.Client
	if a.cfg.Gemini.APIKey != "" {
		summarizer, err = gemini.NewClient(ctx, a.cfg.Gemini, a.logger)
		if err != nil {
			a.logger.Warn("AI survey summaries disabled", "error", err)
			summarizer = nil
		}
	}

	a.service = control.NewService(store, api.Options{
		Timeout:    a.cfg.API.Timeout,
		RetryCount: a.cfg.API.RetryCount,
		UserAgent:  a.cfg.API.UserAgent,
	}, summarizer, a.logger)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		database.CloseDB(a.db)
		a.db = nil
	}
}

// action opens the service before running fn.
func (a *app) action(fn func(ctx context.Context, cmd *cli.Command, svc *control.Service) error) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		if err := a.open(ctx); err != nil {
			return err
		}
		return fn(ctx, cmd, a.service)
	}
}

func (a *app) println(s string) {
	fmt.Fprintln(a.out, s)
}

func botFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "bot",
		Aliases: []string{"b"},
		Usage:   "bot to operate on (default: the active bot)",
	}
}

// argsText joins the positional arguments into one name.
func argsText(cmd *cli.Command) string {
	return strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
}

// requireArg returns the joined arguments or a usage error naming what is missing.
func requireArg(cmd *cli.Command, what string) (string, error) {
	s := argsText(cmd)
	if s == "" {
		return "", fmt.Errorf("missing %s argument, see %s --help", what, cmd.FullName())
	}
	return s, nil
}
