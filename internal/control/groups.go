package control

import (
	"context"
	"fmt"
	"strings"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/database"
)

// AddGroup registers a group on a bot. The group starts out unvalidated.
func (s *Service) AddGroup(ctx context.Context, botName, group string) (*database.Group, error) {
	bot, err := s.ResolveBot(ctx, botName)
	if err != nil {
		return nil, err
	}
	g := &database.Group{BotID: bot.ID, Name: strings.TrimSpace(group)}
	if err := s.store.AddGroup(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// RemoveGroup deletes a group from a bot.
func (s *Service) RemoveGroup(ctx context.Context, botName, group string) error {
	bot, err := s.ResolveBot(ctx, botName)
	if err != nil {
		return err
	}
	return s.store.DeleteGroup(ctx, bot.ID, group)
}

// ValidateGroups marks each group of the bot valid when the backend reports
// a role of the same name, compared case-insensitively.
func (s *Service) ValidateGroups(ctx context.Context, botName string) ([]database.Group, error) {
	bot, client, err := s.ClientFor(ctx, botName)
	if err != nil {
		return nil, err
	}
	roles, err := client.Roles(ctx)
	if err != nil {
		return nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}

	known := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		known[strings.ToLower(r.Name)] = struct{}{}
	}

	groups := bot.Groups
	for i := range groups {
		_, valid := known[strings.ToLower(groups[i].Name)]
		if groups[i].IsValid == valid {
			continue
		}
		groups[i].IsValid = valid
		if err := s.store.UpdateGroup(ctx, &groups[i]); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "Group validity changed", "bot", bot.Name, "group", groups[i].Name, "valid", valid)
	}
	return groups, nil
}

// StartAttendance opens attendance for a valid group that is not already
// taking attendance.
func (s *Service) StartAttendance(ctx context.Context, botName, group, channelID string) (*api.AttendanceFile, error) {
	bot, client, err := s.ClientFor(ctx, botName)
	if err != nil {
		return nil, err
	}
	g := bot.FindGroup(group)
	if g == nil {
		return nil, fmt.Errorf("bot %q group %q: %w", bot.Name, group, database.ErrNotFound)
	}
	if !g.IsValid {
		return nil, fmt.Errorf("bot %q group %q: %w", bot.Name, group, ErrGroupInvalid)
	}
	if g.AttendanceActive {
		return nil, fmt.Errorf("bot %q group %q: %w", bot.Name, group, ErrAttendanceActive)
	}

	file, err := client.StartAttendance(ctx, g.Name, channelID)
	if err != nil {
		return nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}

	g.AttendanceActive = true
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		s.logger.ErrorContext(ctx, "Attendance started but not recorded", "bot", bot.Name, "group", g.Name, "file", file.Name, "error", err)
		return file, fmt.Errorf("bot %q group %q: attendance file %q: %w: %w", bot.Name, g.Name, file.Name, ErrAttendanceNotRecorded, err)
	}
	s.logger.InfoContext(ctx, "Attendance started", "bot", bot.Name, "group", g.Name, "file", file.Name)
	return file, nil
}

// StopAttendance closes attendance for a group that is taking attendance.
func (s *Service) StopAttendance(ctx context.Context, botName, group string) (*api.AttendanceFile, error) {
	bot, client, err := s.ClientFor(ctx, botName)
	if err != nil {
		return nil, err
	}
	g := bot.FindGroup(group)
	if g == nil {
		return nil, fmt.Errorf("bot %q group %q: %w", bot.Name, group, database.ErrNotFound)
	}
	if !g.AttendanceActive {
		return nil, fmt.Errorf("bot %q group %q: %w", bot.Name, group, ErrAttendanceInactive)
	}

	file, err := client.StopAttendance(ctx, g.Name)
	if err != nil {
		return nil, fmt.Errorf("bot %q: %w", bot.Name, err)
	}

	g.AttendanceActive = false
	if err := s.store.UpdateGroup(ctx, g); err != nil {
		s.logger.ErrorContext(ctx, "Attendance stopped but not recorded", "bot", bot.Name, "group", g.Name, "file", file.Name, "error", err)
		return file, fmt.Errorf("bot %q group %q: attendance file %q: %w: %w", bot.Name, g.Name, file.Name, ErrAttendanceNotRecorded, err)
	}
	s.logger.InfoContext(ctx, "Attendance stopped", "bot", bot.Name, "group", g.Name, "file", file.Name)
	return file, nil
}
