package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/edgard/botpanel/internal/control"
	"github.com/edgard/botpanel/internal/database"
	"github.com/edgard/botpanel/internal/format"
)

func botFieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "server", Usage: "backend address, host[:port] or URL"},
		&cli.StringFlag{Name: "api-key", Usage: "backend API key"},
		&cli.StringFlag{Name: "role", Usage: "Discord role the bot manages"},
		&cli.StringFlag{Name: "token", Usage: "Discord bot token"},
		&cli.StringFlag{Name: "dev-token", Usage: "Discord bot token used in developer mode"},
	}
}

// applyBotFields copies the bot field flags that were set onto bot.
func applyBotFields(cmd *cli.Command, bot *database.Bot) {
	fields := map[string]*string{
		"server":    &bot.ServerIP,
		"api-key":   &bot.APIKey,
		"role":      &bot.Role,
		"token":     &bot.Token,
		"dev-token": &bot.DevToken,
	}
	for name, dst := range fields {
		if cmd.IsSet(name) {
			*dst = strings.TrimSpace(cmd.String(name))
		}
	}
}

func (a *app) cmdBot() *cli.Command {
	return &cli.Command{
		Name:  "bot",
		Usage: "Manage configured bots",
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a bot",
				ArgsUsage: "<name>",
				Flags: append(botFieldFlags(),
					&cli.BoolFlag{Name: "active", Usage: "make the new bot the active one"},
				),
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "name")
					if err != nil {
						return err
					}
					bot := &database.Bot{Name: name, IsActive: cmd.Bool("active")}
					applyBotFields(cmd, bot)
					if err := svc.Store().CreateBot(ctx, bot); err != nil {
						return err
					}
					a.println("Added " + format.BotLine(bot))
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List bots, the active one marked with *",
				Action: a.action(func(ctx context.Context, _ *cli.Command, svc *control.Service) error {
					bots, err := svc.Store().ListBots(ctx)
					if err != nil {
						return err
					}
					a.println(format.Bots(bots))
					return nil
				}),
			},
			{
				Name:      "show",
				Usage:     "Show a bot, secrets masked",
				ArgsUsage: "[name]",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					bot, err := svc.ResolveBot(ctx, argsText(cmd))
					if err != nil {
						return err
					}
					a.println(format.BotDetails(bot))
					return nil
				}),
			},
			{
				Name:      "update",
				Usage:     "Change fields of a bot",
				ArgsUsage: "<name>",
				Flags: append(botFieldFlags(),
					&cli.StringFlag{Name: "rename", Usage: "new name of the bot"},
				),
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "name")
					if err != nil {
						return err
					}
					bot, err := svc.Store().GetBotByName(ctx, name)
					if err != nil {
						return err
					}
					applyBotFields(cmd, bot)
					if cmd.IsSet("rename") {
						bot.Name = strings.TrimSpace(cmd.String("rename"))
					}
					if err := svc.Store().UpdateBot(ctx, bot); err != nil {
						return err
					}
					a.println("Updated " + format.BotLine(bot))
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Remove a bot and its groups",
				ArgsUsage: "<name>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "name")
					if err != nil {
						return err
					}
					bot, err := svc.Store().GetBotByName(ctx, name)
					if err != nil {
						return err
					}
					if err := svc.Store().DeleteBot(ctx, bot.ID); err != nil {
						return err
					}
					a.println("Removed " + bot.Name)
					return nil
				}),
			},
			{
				Name:      "activate",
				Usage:     "Make a bot the active one",
				ArgsUsage: "<name>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "name")
					if err != nil {
						return err
					}
					bot, err := svc.ActivateBot(ctx, name)
					if err != nil {
						return err
					}
					a.println("Active bot: " + bot.Name)
					return nil
				}),
			},
			{
				Name:      "devmode",
				Usage:     "Switch developer mode on or off",
				ArgsUsage: "on|off",
				Flags:     []cli.Flag{botFlag()},
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					var enabled bool
					switch strings.ToLower(cmd.Args().First()) {
					case "on":
						enabled = true
					case "off":
						enabled = false
					default:
						return fmt.Errorf("expected on or off, got %q", cmd.Args().First())
					}
					bot, err := svc.SetDeveloperMode(ctx, cmd.String("bot"), enabled)
					if err != nil {
						return err
					}
					a.println(format.BotLine(bot))
					return nil
				}),
			},
			{
				Name:      "export",
				Usage:     "Print bots and groups as YAML",
				ArgsUsage: "[name]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "secrets", Usage: "include API keys and tokens unmasked"},
				},
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					var bots []*database.Bot
					if name := argsText(cmd); name != "" {
						bot, err := svc.Store().GetBotByName(ctx, name)
						if err != nil {
							return err
						}
						bots = []*database.Bot{bot}
					} else {
						var err error
						if bots, err = svc.Store().ListBots(ctx); err != nil {
							return err
						}
					}
					return exportBots(a, bots, cmd.Bool("secrets"))
				}),
			},
		},
	}
}

type botExport struct {
	Bots []*database.Bot `yaml:"bots"`
}

func exportBots(a *app, bots []*database.Bot, secrets bool) error {
	if !secrets {
		masked := make([]*database.Bot, 0, len(bots))
		for _, b := range bots {
			c := *b
			c.APIKey = maskSet(c.APIKey)
			c.Token = maskSet(c.Token)
			c.DevToken = maskSet(c.DevToken)
			masked = append(masked, &c)
		}
		bots = masked
	}

	enc := yaml.NewEncoder(a.out)
	enc.SetIndent(2)
	if err := enc.Encode(botExport{Bots: bots}); err != nil {
		return fmt.Errorf("failed to encode bots: %w", err)
	}
	return enc.Close()
}

// maskSet masks a secret but keeps empty values empty so they are omitted.
func maskSet(s string) string {
	if s == "" {
		return ""
	}
	return format.Mask(s)
}

func (a *app) cmdGroup() *cli.Command {
	return &cli.Command{
		Name:  "group",
		Usage: "Manage the attendance groups of a bot",
		Flags: []cli.Flag{botFlag()},
		Commands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a group",
				ArgsUsage: "<group>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "group")
					if err != nil {
						return err
					}
					group, err := svc.AddGroup(ctx, cmd.String("bot"), name)
					if err != nil {
						return err
					}
					a.println("Added group " + group.Name + ", run group validate to check it against the guild roles")
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List groups",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					bot, err := svc.ResolveBot(ctx, cmd.String("bot"))
					if err != nil {
						return err
					}
					a.println(format.Groups(bot.Groups))
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Remove a group",
				ArgsUsage: "<group>",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					name, err := requireArg(cmd, "group")
					if err != nil {
						return err
					}
					if err := svc.RemoveGroup(ctx, cmd.String("bot"), name); err != nil {
						return err
					}
					a.println("Removed group " + name)
					return nil
				}),
			},
			{
				Name:  "validate",
				Usage: "Match groups against the guild roles",
				Action: a.action(func(ctx context.Context, cmd *cli.Command, svc *control.Service) error {
					groups, err := svc.ValidateGroups(ctx, cmd.String("bot"))
					if err != nil {
						return err
					}
					a.println(format.Groups(groups))
					return nil
				}),
			},
		},
	}
}
