package cli

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/database"
	"github.com/edgard/botpanel/internal/format"
)

// lifecycleCommand builds status, start and stop, which share their output.
func (a *app) lifecycleCommand(name, usage string,
	op func(*control.Service, context.Context, string) (*database.Bot, *api.BotStatus, error),
) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Flags: []cli.Flag{botFlag()},
		Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			bot, status, err := op(svc, ctx, cmd.String("bot"))
			if err != nil {
				return err
			}
			a.println(format.Status(bot, status))
			return nil
		}),
	}
}

func (a *app) cmdStatus() *cli.Command {
	return a.lifecycleCommand("status", "Show whether the bot is running", (*control.Service).Status)
}

func (a *app) cmdStart() *cli.Command {
	return a.lifecycleCommand("start", "Start the bot with the token of its mode", (*control.Service).Start)
}

func (a *app) cmdStop() *cli.Command {
	return a.lifecycleCommand("stop", "Stop the bot", (*control.Service).Stop)
}

func (a *app) cmdMembers() *cli.Command {
	return &cli.Command{
		Name:  "members",
		Usage: "List guild members",
		Flags: []cli.Flag{
			botFlag(),
			&cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "only members with this role"},
		},
		Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			members, err := svc.Members(ctx, cmd.String("bot"), cmd.String("role"))
			if err != nil {
				return err
			}
			a.println(format.Members(members))
			return nil
		}),
	}
}

func (a *app) cmdRoles() *cli.Command {
	return &cli.Command{
		Name:  "roles",
		Usage: "List guild roles",
		Flags: []cli.Flag{botFlag()},
		Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			roles, err := svc.Roles(ctx, cmd.String("bot"))
			if err != nil {
				return err
			}
			a.println(format.Roles(roles))
			return nil
		}),
	}
}

func (a *app) cmdChannels() *cli.Command {
	return &cli.Command{
		Name:  "channels",
		Usage: "List guild channels",
		Flags: []cli.Flag{botFlag()},
		Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			channels, err := svc.Channels(ctx, cmd.String("bot"))
			if err != nil {
				return err
			}
			a.println(format.Channels(channels))
			return nil
		}),
	}
}

func (a *app) cmdRole() *cli.Command {
	roleChange := func(verb string,
		op func(*control.Service, context.Context, string, string, []string) (*api.AssignRoleResult, error),
	) cli.ActionFunc {
		return a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			result, err := op(svc, ctx, cmd.String("bot"), cmd.String("role"), cmd.Args().Slice())
			if err != nil {
				return err
			}
			a.println(format.RoleChange(verb, result))
			return nil
		})
	}
	roleFlag := func() cli.Flag {
		return &cli.StringFlag{Name: "role", Aliases: []string{"r"}, Usage: "role name or id", Required: true}
	}

	return &cli.Command{
		Name:  "role",
		Usage: "Grant or revoke a role",
		Flags: []cli.Flag{botFlag()},
		Commands: []*cli.Command{
			{
				Name:      "assign",
				Usage:     "Grant a role to members",
				ArgsUsage: "<member id>...",
				Flags:     []cli.Flag{roleFlag()},
				Action:    roleChange("assigned to", (*control.Service).AssignRole),
			},
			{
				Name:      "remove",
				Usage:     "Revoke a role from members",
				ArgsUsage: "<member id>...",
				Flags:     []cli.Flag{roleFlag()},
				Action:    roleChange("removed from", (*control.Service).RemoveRole),
			},
		},
	}
}

func (a *app) cmdClear() *cli.Command {
	return &cli.Command{
		Name:  "clear",
		Usage: "Delete the most recent messages of a channel",
		Flags: []cli.Flag{
			botFlag(),
			&cli.StringFlag{Name: "channel", Usage: "channel id", Required: true},
			&cli.IntFlag{Name: "limit", Usage: "number of messages, at most 100", Value: 10},
		},
		Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
			result, err := svc.ClearMessages(ctx, cmd.String("bot"), cmd.String("channel"), int(cmd.Int("limit")))
			if err != nil {
				return err
			}
			a.println(format.Cleared(result))
			return nil
		}),
	}
}
