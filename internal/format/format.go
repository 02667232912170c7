// Package format renders bots and backend results as plain text for the
// command line and chat replies.
package format

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/edgard/botpanel/internal/api"
	"github.com/edgard/botpanel/internal/database"
)

const timeLayout = "2006-01-02 15:04"

// BotLine renders a one-line listing entry.
func BotLine(b *database.Bot) string {
	var sb strings.Builder
	if b.IsActive {
		sb.WriteString("* ")
	} else {
		sb.WriteString("  ")
	}
	fmt.Fprintf(&sb, "%s (%s)", b.Name, b.ServerIP)
	if b.IsDeveloperMode {
		sb.WriteString(" [dev]")
	}
	if b.LastStatus != "" {
		fmt.Fprintf(&sb, " %s", b.LastStatus)
	}
	if n := len(b.Groups); n > 0 {
		fmt.Fprintf(&sb, ", %d group(s)", n)
	}
	return sb.String()
}

// Bots renders a bot listing. The active bot is marked with '*'.
func Bots(bots []*database.Bot) string {
	if len(bots) == 0 {
		return "No bots configured."
	}
	lines := make([]string, 0, len(bots))
	for _, b := range bots {
		lines = append(lines, BotLine(b))
	}
	return strings.Join(lines, "\n")
}

// BotDetails renders every field of a bot except secrets.
func BotDetails(b *database.Bot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Name: %s\n", b.Name)
	fmt.Fprintf(&sb, "Server: %s\n", b.ServerIP)
	fmt.Fprintf(&sb, "API key: %s\n", Mask(b.APIKey))
	fmt.Fprintf(&sb, "Active: %s\n", yesNo(b.IsActive))
	if b.Role != "" {
		fmt.Fprintf(&sb, "Role: %s\n", b.Role)
	}
	fmt.Fprintf(&sb, "Token: %s\n", Mask(b.Token))
	fmt.Fprintf(&sb, "Dev token: %s\n", Mask(b.DevToken))
	fmt.Fprintf(&sb, "Developer mode: %s\n", yesNo(b.IsDeveloperMode))
	if b.LastStatus != "" {
		fmt.Fprintf(&sb, "Last status: %s", b.LastStatus)
		if b.LastCheckedAt.Valid {
			fmt.Fprintf(&sb, " (%s)", b.LastCheckedAt.Time.Local().Format(timeLayout))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(Groups(b.Groups))
	return strings.TrimRight(sb.String(), "\n")
}

// Groups renders the groups of a bot with their validity and attendance state.
func Groups(groups []database.Group) string {
	if len(groups) == 0 {
		return "No groups."
	}
	var sb strings.Builder
	sb.WriteString("Groups:\n")
	for _, g := range groups {
		state := "valid"
		if !g.IsValid {
			state = "unvalidated"
		}
		fmt.Fprintf(&sb, "- %s (%s", g.Name, state)
		if g.AttendanceActive {
			sb.WriteString(", attendance running")
		}
		sb.WriteString(")\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Mask hides all but the last four characters of a secret.
func Mask(secret string) string {
	switch {
	case secret == "":
		return "(not set)"
	case len(secret) <= 4:
		return "****"
	default:
		return strings.Repeat("*", 4) + secret[len(secret)-4:]
	}
}

// Status renders a backend status report.
func Status(b *database.Bot, s *api.BotStatus) string {
	if !s.Running {
		return fmt.Sprintf("%s: stopped", b.Name)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: running", b.Name)
	if s.Username != "" {
		fmt.Fprintf(&sb, " as %s", s.Username)
	}
	if s.GuildName != "" {
		fmt.Fprintf(&sb, " in %s", s.GuildName)
	}
	fmt.Fprintf(&sb, "\nUptime: %s", s.Uptime())
	if s.LatencyMS > 0 {
		fmt.Fprintf(&sb, "\nLatency: %dms", s.LatencyMS)
	}
	return sb.String()
}

// Members renders a member listing sorted by display name.
func Members(members []api.Member) string {
	if len(members) == 0 {
		return "No members."
	}
	sorted := append([]api.Member(nil), members...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(memberName(sorted[i])) < strings.ToLower(memberName(sorted[j]))
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d member(s):\n", len(sorted))
	for _, m := range sorted {
		fmt.Fprintf(&sb, "- %s (%s)", memberName(m), m.ID)
		if len(m.Roles) > 0 {
			fmt.Fprintf(&sb, " [%s]", strings.Join(m.Roles, ", "))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func memberName(m api.Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// Roles renders a role listing.
func Roles(roles []api.Role) string {
	if len(roles) == 0 {
		return "No roles."
	}
	var sb strings.Builder
	for _, r := range roles {
		fmt.Fprintf(&sb, "- %s (%s), %d member(s)\n", r.Name, r.ID, r.MemberCount)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Channels renders a channel listing grouped by category.
func Channels(channels []api.Channel) string {
	if len(channels) == 0 {
		return "No channels."
	}
	var sb strings.Builder
	for _, c := range channels {
		fmt.Fprintf(&sb, "- #%s (%s, %s)", c.Name, c.ID, c.Type)
		if c.Category != "" {
			fmt.Fprintf(&sb, " in %s", c.Category)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RoleChange renders the outcome of assigning or removing a role.
func RoleChange(verb string, r *api.AssignRoleResult) string {
	s := fmt.Sprintf("Role %s %s %d member(s).", r.Role, verb, len(r.Assigned))
	if len(r.Failed) > 0 {
		s += fmt.Sprintf(" Failed: %s.", strings.Join(r.Failed, ", "))
	}
	return s
}

// Cleared renders the outcome of clearing a channel.
func Cleared(r *api.ClearResult) string {
	return fmt.Sprintf("Deleted %d message(s) from channel %s.", r.Deleted, r.ChannelID)
}

// AttendanceFile renders a single attendance file entry.
func AttendanceFile(f *api.AttendanceFile) string {
	return fmt.Sprintf("%s (group %s, %s)", f.Name, f.Group, formatTime(f.CreatedAt))
}

// AttendanceFiles renders a list of attendance files.
func AttendanceFiles(files []api.AttendanceFile) string {
	if len(files) == 0 {
		return "No attendance files."
	}
	lines := make([]string, 0, len(files))
	for i := range files {
		lines = append(lines, "- "+AttendanceFile(&files[i]))
	}
	return strings.Join(lines, "\n")
}

// AttendanceReport renders who attended a session.
func AttendanceReport(r *api.AttendanceReport) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, group %s\n", r.Name, r.Group)
	if !r.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "From %s to %s\n", formatTime(r.StartedAt), formatTime(r.EndedAt))
	}
	fmt.Fprintf(&sb, "Present (%d): %s\n", len(r.Present), memberNames(r.Present))
	fmt.Fprintf(&sb, "Absent (%d): %s", len(r.Absent), memberNames(r.Absent))
	return sb.String()
}

func memberNames(members []api.Member) string {
	if len(members) == 0 {
		return "-"
	}
	names := make([]string, 0, len(members))
	for _, m := range members {
		names = append(names, memberName(m))
	}
	return strings.Join(names, ", ")
}

// SurveyFiles renders a list of survey files.
func SurveyFiles(files []api.SurveyFile) string {
	if len(files) == 0 {
		return "No surveys."
	}
	var sb strings.Builder
	for _, f := range files {
		fmt.Fprintf(&sb, "- %s: %s (%s)\n", f.Name, f.Title, formatTime(f.CreatedAt))
	}
	return strings.TrimRight(sb.String(), "\n")
}

// SurveyResult renders a survey with vote counts and percentages.
func SurveyResult(r *api.SurveyResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s", r.Title)
	if r.Closed {
		sb.WriteString(" (closed)")
	}
	sb.WriteString("\n")
	if r.Question != "" {
		fmt.Fprintf(&sb, "%s\n", r.Question)
	}
	total := r.TotalVotes()
	for _, o := range r.Options {
		fmt.Fprintf(&sb, "- %s: %d (%d%%)\n", o.Label, o.Votes, percent(o.Votes, total))
	}
	fmt.Fprintf(&sb, "Voters: %d", r.Voters)
	return sb.String()
}

// SurveySummary states the leading option of a survey in one sentence.
func SurveySummary(r *api.SurveyResult) string {
	total := r.TotalVotes()
	if total == 0 {
		return fmt.Sprintf("%s: no votes yet.", r.Title)
	}

	best := 0
	var leaders []string
	for _, o := range r.Options {
		switch {
		case o.Votes > best:
			best = o.Votes
			leaders = []string{o.Label}
		case o.Votes == best:
			leaders = append(leaders, o.Label)
		}
	}

	if len(leaders) > 1 {
		return fmt.Sprintf("%s: tie between %s with %d vote(s) each out of %d.",
			r.Title, strings.Join(leaders, " and "), best, total)
	}
	return fmt.Sprintf("%s: %s leads with %d of %d vote(s) (%d%%).",
		r.Title, leaders[0], best, total, percent(best, total))
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return n * 100 / total
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "unknown time"
	}
	return t.Local().Format(timeLayout)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
