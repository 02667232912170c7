package handlers

import (
	"context"
	"strings"
	"unicode"

	"github.com/edgard/botpanel/internal/format"
)

// attendanceCommand handles /attendance start|stop|files|show.
func attendanceCommand(deps HandlerDeps) commandFunc {
	return func(ctx context.Context, args []string) (string, error) {
		if len(args) == 0 {
			return "", errUsage
		}
		rest := args[1:]

		switch strings.ToLower(args[0]) {
		case "start":
			group, channelID := splitGroupChannel(rest)
			if group == "" {
				return "", errUsage
			}
			file, err := deps.Service.StartAttendance(ctx, "", group, channelID)
			if err != nil {
				return "", err
			}
			return "Attendance started: " + format.AttendanceFile(file), nil
		case "stop":
			group := joinArgs(rest)
			if group == "" {
				return "", errUsage
			}
			file, err := deps.Service.StopAttendance(ctx, "", group)
			if err != nil {
				return "", err
			}
			return "Attendance stopped: " + format.AttendanceFile(file), nil
		case "files":
			files, err := deps.Service.AttendanceFiles(ctx, "")
			if err != nil {
				return "", err
			}
			return format.AttendanceFiles(files), nil
		case "show":
			name := joinArgs(rest)
			if name == "" {
				return "", errUsage
			}
			report, err := deps.Service.AttendanceFile(ctx, "", name)
			if err != nil {
				return "", err
			}
			return format.AttendanceReport(report), nil
		default:
			return "", errUsage
		}
	}
}

// splitGroupChannel splits "<group words> [channel id]". A trailing numeric
// word is taken as the channel id when a group name precedes it.
func splitGroupChannel(args []string) (group, channelID string) {
	if n := len(args); n > 1 && isNumeric(args[n-1]) {
		return joinArgs(args[:n-1]), args[n-1]
	}
	return joinArgs(args), ""
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
