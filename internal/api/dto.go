package api

import "time"

// BotStatus describes the bot process on the backend.
type BotStatus struct {
	Running       bool   `json:"running"`
	Username      string `json:"username"`
	GuildName     string `json:"guild_name"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	LatencyMS     int64  `json:"latency_ms"`
}

// Uptime returns UptimeSeconds as a duration.
func (s BotStatus) Uptime() time.Duration {
	return time.Duration(s.UptimeSeconds) * time.Second
}

// Member is a guild member.
type Member struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	DisplayName string   `json:"display_name"`
	Roles       []string `json:"roles"`
}

// Role is a guild role.
type Role struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       int    `json:"color"`
	MemberCount int    `json:"member_count"`
}

// Channel is a guild channel.
type Channel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Category string `json:"category"`
}

// AssignRoleResult reports per-member outcome of a role change.
type AssignRoleResult struct {
	Role     string   `json:"role"`
	Assigned []string `json:"assigned"`
	Failed   []string `json:"failed"`
}

// ClearResult reports how many messages were deleted from a channel.
type ClearResult struct {
	ChannelID string `json:"channel_id"`
	Deleted   int    `json:"deleted"`
}

// AttendanceFile is a stored attendance record listing entry.
type AttendanceFile struct {
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	CreatedAt time.Time `json:"created_at"`
	Size      int64     `json:"size"`
}

// AttendanceReport is the content of one attendance file.
type AttendanceReport struct {
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Present   []Member  `json:"present"`
	Absent    []Member  `json:"absent"`
}

// SurveyFile is a stored survey listing entry.
type SurveyFile struct {
	Name      string    `json:"name"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// SurveyOption is one answer of a survey with its vote count.
type SurveyOption struct {
	Label string `json:"label"`
	Votes int    `json:"votes"`
}

// SurveyResult is the content of one survey file.
type SurveyResult struct {
	Name     string         `json:"name"`
	Title    string         `json:"title"`
	Question string         `json:"question"`
	Options  []SurveyOption `json:"options"`
	Voters   int            `json:"voters"`
	Closed   bool           `json:"closed"`
}

// TotalVotes sums the votes of all options.
func (r SurveyResult) TotalVotes() int {
	total := 0
	for _, o := range r.Options {
		total += o.Votes
	}
	return total
}

// ErrorResponse is the JSON body of backend failures.
type ErrorResponse struct {
	Error string `json:"error"`
}

type startRequest struct {
	Token string `json:"token"`
}

type roleChangeRequest struct {
	Role      string   `json:"role"`
	MemberIDs []string `json:"member_ids"`
}

type clearRequest struct {
	Limit int `json:"limit"`
}

type attendanceRequest struct {
	Group     string `json:"group"`
	ChannelID string `json:"channel_id,omitempty"`
}

// SurveyRequest describes a survey to post.
type SurveyRequest struct {
	Title           string   `json:"title"`
	Question        string   `json:"question"`
	Options         []string `json:"options"`
	ChannelID       string   `json:"channel_id"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
}
