package database

import (
	"database/sql"
	"time"
)

// Bot status values recorded by the health check.
const (
	StatusRunning     = "running"
	StatusStopped     = "stopped"
	StatusUnreachable = "unreachable"
)

// Bot is the persisted configuration of one Discord bot connection: where its
// backend lives, how to authenticate against it and which token to start it
// with.
type Bot struct {
	ID        int64     `db:"id"         yaml:"-"`
	CreatedAt time.Time `db:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" yaml:"-"`

	Name            string `db:"name"              yaml:"name"`
	ServerIP        string `db:"server_ip"         yaml:"server_ip"`
	APIKey          string `db:"api_key"           yaml:"api_key,omitempty"`
	IsActive        bool   `db:"is_active"         yaml:"is_active"`
	Role            string `db:"role"              yaml:"role,omitempty"`
	Token           string `db:"token"             yaml:"token,omitempty"`
	DevToken        string `db:"dev_token"         yaml:"dev_token,omitempty"`
	IsDeveloperMode bool   `db:"is_developer_mode" yaml:"is_developer_mode"`

	LastStatus    string       `db:"last_status"     yaml:"-"`
	LastCheckedAt sql.NullTime `db:"last_checked_at" yaml:"-"`

	Groups []Group `db:"-" yaml:"groups,omitempty"`
}

// EffectiveToken is the token the backend should start the bot with.
func (b *Bot) EffectiveToken() string {
	if b.IsDeveloperMode {
		return b.DevToken
	}
	return b.Token
}

// FindGroup returns the group with the given name, or nil.
func (b *Bot) FindGroup(name string) *Group {
	for i := range b.Groups {
		if b.Groups[i].Name == name {
			return &b.Groups[i]
		}
	}
	return nil
}

// Group is a named set of members tracked for attendance. It belongs to
// exactly one Bot and is deleted with it.
type Group struct {
	ID        int64     `db:"id"         yaml:"-"`
	CreatedAt time.Time `db:"created_at" yaml:"-"`
	UpdatedAt time.Time `db:"updated_at" yaml:"-"`

	BotID            int64  `db:"bot_id"            yaml:"-"`
	Name             string `db:"name"              yaml:"name"`
	IsValid          bool   `db:"is_valid"          yaml:"is_valid"`
	AttendanceActive bool   `db:"attendance_active" yaml:"attendance_active"`
}
