// Package control runs panel operations against the backend of a persisted
// bot and keeps the local bot and group state in step with the results.
package control

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/database"
	"github.com/edgard/botpanel/internal/format"
	"github.com/edgard/botpanel/internal/gemini"
	"github.com/edgard/botpanel/internal/logger"
)

var (
	// ErrNoActiveBot is returned when no bot is named and none is active.
	ErrNoActiveBot = errors.New("no active bot")
	// ErrMissingToken is returned when starting a bot without a token for its mode.
	ErrMissingToken = errors.New("bot has no token for the current mode")
	// ErrGroupInvalid is returned when a group has no matching role on the backend.
	ErrGroupInvalid = errors.New("group is not valid")
	// ErrAttendanceActive is returned when attendance is already running for a group.
	ErrAttendanceActive = errors.New("attendance already active")
	// ErrAttendanceInactive is returned when stopping attendance that is not running.
	ErrAttendanceInactive = errors.New("attendance not active")
	// ErrAttendanceNotRecorded is returned when the backend changed attendance
	// but the local group state could not be saved.
	ErrAttendanceNotRecorded = errors.New("attendance state not recorded")
)

// Service executes operations for bots stored in a database.Store.
type Service struct {
	store      database.Store
	apiOpts    api.Options
	summarizer gemini.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a Service. summarizer may be nil, in which case survey
// summaries are rendered without AI.
func NewService(store database.Store, apiOpts api.Options, summarizer gemini.Client, log *slog.Logger) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if apiOpts.Logger == nil {
		apiOpts.Logger = log
	}
	return &Service{
		store:      store,
		apiOpts:    apiOpts,
		summarizer: summarizer,
		logger:     log.With("component", "control"),
		now:        time.Now,
	}
}

// Store exposes the underlying store for configuration commands.
func (s *Service) Store() database.Store {
	return s.store
}

// ResolveBot returns the bot called name, or the active bot when name is empty.
func (s *Service) ResolveBot(ctx context.Context, name string) (*database.Bot, error) {
	name = strings.TrimSpace(name)
	if name != "" {
		return s.store.GetBotByName(ctx, name)
	}
	bot, err := s.store.GetActiveBot(ctx)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoActiveBot
	}
	return bot, err
}

// ClientFor resolves a bot and builds an API client for its backend.
func (s *Service) ClientFor(ctx context.Context, name string) (*database.Bot, *api.Client, error) {
	bot, err := s.ResolveBot(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	client, err := api.NewClient(bot.ServerIP, bot.APIKey, s.apiOpts)
	if err != nil {
		return nil, nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}
	return bot, client, nil
}

// call resolves the bot, runs fn against its backend and returns the result.
func call[T any](ctx context.Context, s *Service, name string, fn func(*api.Client) (T, error)) (T, error) {
	var zero T
	bot, client, err := s.ClientFor(ctx, name)
	if err != nil {
		return zero, err
	}
	result, err := fn(client)
	if err != nil {
		return zero, fmt.Errorf("bot %q: %w", bot.Name, err)
	}
	return result, nil
}

// ActivateBot makes the named bot the active one.
func (s *Service) ActivateBot(ctx context.Context, name string) (*database.Bot, error) {
	bot, err := s.store.GetBotByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if err := s.store.SetActiveBot(ctx, bot.ID); err != nil {
		return nil, err
	}
	bot.IsActive = true
	return bot, nil
}

// SetDeveloperMode switches which token the bot is started with.
func (s *Service) SetDeveloperMode(ctx context.Context, name string, enabled bool) (*database.Bot, error) {
	bot, err := s.ResolveBot(ctx, name)
	if err != nil {
		return nil, err
	}
	bot.IsDeveloperMode = enabled
	if err := s.store.UpdateBot(ctx, bot); err != nil {
		return nil, err
	}
	return bot, nil
}

// Status queries the backend and records the observed state on the bot.
func (s *Service) Status(ctx context.Context, name string) (*database.Bot, *api.BotStatus, error) {
	bot, client, err := s.ClientFor(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	status, err := client.Status(ctx)
	s.recordStatus(ctx, bot, status, err)
	if err != nil {
		return bot, nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}
	return bot, status, nil
}

// Start starts the bot process with the token of its current mode.
func (s *Service) Start(ctx context.Context, name string) (*database.Bot, *api.BotStatus, error) {
	bot, client, err := s.ClientFor(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	token := bot.EffectiveToken()
	if token == "" {
		return bot, nil, fmt.Errorf("bot %q (developer mode %t): %w", bot.Name, bot.IsDeveloperMode, ErrMissingToken)
	}

	s.logger.InfoContext(ctx, "Starting bot", "bot", bot.Name, "developer_mode", bot.IsDeveloperMode)
	status, err := client.StartBot(ctx, token)
	s.recordStatus(ctx, bot, status, err)
	if err != nil {
		return bot, nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}
	return bot, status, nil
}

// Stop stops the bot process.
func (s *Service) Stop(ctx context.Context, name string) (*database.Bot, *api.BotStatus, error) {
	bot, client, err := s.ClientFor(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	s.logger.InfoContext(ctx, "Stopping bot", "bot", bot.Name)
	status, err := client.StopBot(ctx)
	s.recordStatus(ctx, bot, status, err)
	if err != nil {
		return bot, nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}
	return bot, status, nil
}

// CheckActiveStatus refreshes the recorded status of the active bot. Having
// no active bot is not an error.
func (s *Service) CheckActiveStatus(ctx context.Context) (*database.Bot, error) {
	bot, _, err := s.Status(ctx, "")
	if errors.Is(err, ErrNoActiveBot) {
		s.logger.DebugContext(ctx, "No active bot to check")
		return nil, nil
	}
	return bot, err
}

func (s *Service) recordStatus(ctx context.Context, bot *database.Bot, status *api.BotStatus, callErr error) {
	var value string
	switch {
	case callErr == nil && status != nil && status.Running:
		value = database.StatusRunning
	case callErr == nil && status != nil:
		value = database.StatusStopped
	case errors.Is(callErr, api.ErrUnreachable):
		value = database.StatusUnreachable
	default:
		return
	}

	checkedAt := s.now()
	if err := s.store.UpdateBotStatus(ctx, bot.ID, value, checkedAt); err != nil {
		s.logger.WarnContext(ctx, "Failed to record bot status", "bot", bot.Name, "status", value, "error", err)
		return
	}
	bot.LastStatus = value
	bot.LastCheckedAt.Time = checkedAt
	bot.LastCheckedAt.Valid = true
}

// Members lists guild members, optionally filtered by role.
func (s *Service) Members(ctx context.Context, name, role string) ([]api.Member, error) {
	return call(ctx, s, name, func(c *api.Client) ([]api.Member, error) {
		return c.Members(ctx, role)
	})
}

// Roles lists guild roles.
func (s *Service) Roles(ctx context.Context, name string) ([]api.Role, error) {
	return call(ctx, s, name, func(c *api.Client) ([]api.Role, error) {
		return c.Roles(ctx)
	})
}

// Channels lists guild channels.
func (s *Service) Channels(ctx context.Context, name string) ([]api.Channel, error) {
	return call(ctx, s, name, func(c *api.Client) ([]api.Channel, error) {
		return c.Channels(ctx)
	})
}

// AssignRole grants role to members.
func (s *Service) AssignRole(ctx context.Context, name, role string, memberIDs []string) (*api.AssignRoleResult, error) {
	return call(ctx, s, name, func(c *api.Client) (*api.AssignRoleResult, error) {
		return c.AssignRole(ctx, role, memberIDs)
	})
}

// RemoveRole revokes role from members.
func (s *Service) RemoveRole(ctx context.Context, name, role string, memberIDs []string) (*api.AssignRoleResult, error) {
	return call(ctx, s, name, func(c *api.Client) (*api.AssignRoleResult, error) {
		return c.RemoveRole(ctx, role, memberIDs)
	})
}

// ClearMessages deletes recent messages from a channel.
func (s *Service) ClearMessages(ctx context.Context, name, channelID string, limit int) (*api.ClearResult, error) {
	result, err := call(ctx, s, name, func(c *api.Client) (*api.ClearResult, error) {
		return c.ClearMessages(ctx, channelID, limit)
	})
	if err == nil {
		s.logger.InfoContext(ctx, "Cleared channel messages", "channel_id", channelID, "deleted", result.Deleted)
	}
	return result, err
}

// AttendanceFiles lists stored attendance files.
func (s *Service) AttendanceFiles(ctx context.Context, name string) ([]api.AttendanceFile, error) {
	return call(ctx, s, name, func(c *api.Client) ([]api.AttendanceFile, error) {
		return c.AttendanceFiles(ctx)
	})
}

// AttendanceFile fetches one attendance report.
func (s *Service) AttendanceFile(ctx context.Context, name, file string) (*api.AttendanceReport, error) {
	return call(ctx, s, name, func(c *api.Client) (*api.AttendanceReport, error) {
		return c.AttendanceFile(ctx, file)
	})
}

// CreateSurvey posts a survey.
func (s *Service) CreateSurvey(ctx context.Context, name string, survey api.SurveyRequest) (*api.SurveyFile, error) {
	return call(ctx, s, name, func(c *api.Client) (*api.SurveyFile, error) {
		return c.CreateSurvey(ctx, survey)
	})
}

// SurveyFiles lists stored survey files.
func (s *Service) SurveyFiles(ctx context.Context, name string) ([]api.SurveyFile, error) {
	return call(ctx, s, name, func(c *api.Client) ([]api.SurveyFile, error) {
		return c.SurveyFiles(ctx)
	})
}

// SurveyFile fetches one survey result.
func (s *Service) SurveyFile(ctx context.Context, name, file string) (*api.SurveyResult, error) {
	return call(ctx, s, name, func(c *api.Client) (*api.SurveyResult, error) {
		return c.SurveyFile(ctx, file)
	})
}

// SummarizeSurvey fetches a survey result and summarizes it. Without a
// summarizer, or when it fails, a plain text summary is returned.
func (s *Service) SummarizeSurvey(ctx context.Context, name, file string) (string, error) {
	result, err := s.SurveyFile(ctx, name, file)
	if err != nil {
		return "", err
	}
	if s.summarizer == nil {
		return format.SurveySummary(result), nil
	}

	summary, err := s.summarizer.SummarizeSurvey(ctx, result)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		s.logger.WarnContext(ctx, "AI survey summary failed, using plain summary", "survey", file, "error", err)
		return format.SurveySummary(result), nil
	}
	return summary, nil
}
