package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/format"
)

func (a *app) cmdAttendance() *cli.Command {
	return &cli.Command{
		Name:  "attendance",
		Usage: "Take attendance of a group",
		Flags: []cli.Flag{botFlag()},
		Commands: []*cli.Command{
			{
				Name:      "start",
				Usage:     "Open attendance for a valid group",
				ArgsUsage: "<group>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "channel", Usage: "voice channel id to watch"},
				},
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					group, err := requireArg(cmd, "group")
					if err != nil {
						return err
					}
					file, err := svc.StartAttendance(ctx, cmd.String("bot"), group, cmd.String("channel"))
					if err != nil {
						return err
					}
					a.println("Attendance started: " + format.AttendanceFile(file))
					return nil
				}),
			},
			{
				Name:      "stop",
				Usage:     "Close attendance for a group",
				ArgsUsage: "<group>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					group, err := requireArg(cmd, "group")
					if err != nil {
						return err
					}
					file, err := svc.StopAttendance(ctx, cmd.String("bot"), group)
					if err != nil {
						return err
					}
					a.println("Attendance stopped: " + format.AttendanceFile(file))
					return nil
				}),
			},
			{
				Name:  "files",
				Usage: "List attendance files",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					files, err := svc.AttendanceFiles(ctx, cmd.String("bot"))
					if err != nil {
						return err
					}
					a.println(format.AttendanceFiles(files))
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show an attendance report",
				ArgsUsage: "<file>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "file")
					if err != nil {
						return err
					}
					report, err := svc.AttendanceFile(ctx, cmd.String("bot"), name)
					if err != nil {
						return err
					}
					a.println(format.AttendanceReport(report))
					return nil
				}),
			},
		},
	}
}

func (a *app) cmdSurvey() *cli.Command {
	return &cli.Command{
		Name:  "survey",
		Usage: "Run surveys in the guild",
		Flags: []cli.Flag{botFlag()},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Post a survey",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "title", Usage: "survey title", Required: true},
					&cli.StringFlag{Name: "question", Usage: "question asked"},
					&cli.StringSliceFlag{Name: "option", Aliases: []string{"o"}, Usage: "answer option, repeat for each", Required: true},
					&cli.StringFlag{Name: "channel", Usage: "channel id to post in", Required: true},
					&cli.IntFlag{Name: "duration", Usage: "minutes until the survey closes, 0 for no limit"},
				},
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					file, err := svc.CreateSurvey(ctx, cmd.String("bot"), api.SurveyRequest{
						Title:           cmd.String("title"),
						Question:        cmd.String("question"),
						Options:         cmd.StringSlice("option"),
						ChannelID:       cmd.String("channel"),
						DurationMinutes: int(cmd.Int("duration")),
					})
					if err != nil {
						return err
					}
					a.println("Survey created: " + file.Name)
					return nil
				}),
			},
			{
				Name:  "files",
				Usage: "List surveys",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					files, err := svc.SurveyFiles(ctx, cmd.String("bot"))
					if err != nil {
						return err
					}
					a.println(format.SurveyFiles(files))
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show survey results",
				ArgsUsage: "<file>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "file")
					if err != nil {
						return err
					}
					result, err := svc.SurveyFile(ctx, cmd.String("bot"), name)
					if err != nil {
						return err
					}
					a.println(format.SurveyResult(result))
					return nil
				}),
			},
			{
				Name:      "summarize",
				Usage:     "Summarize survey results, with Gemini when configured",
				ArgsUsage: "<file>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "file")
					if err != nil {
						return err
					}
					summary, err := svc.SummarizeSurvey(ctx, cmd.String("bot"), name)
					if err != nil {
						return err
					}
					a.println(summary)
					return nil
				}),
			},
		},
	}
}
