package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/botpanel/internal/logger"
)

var (
	// ErrNotFound is returned when a bot or group does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a name is already taken.
	ErrDuplicate = errors.New("already exists")
	// ErrInvalid is returned when a record fails validation before reaching SQL.
	ErrInvalid = errors.New("invalid record")
)

// Store defines the persistence operations on bots and their groups.
type Store interface {
	Ping(ctx context.Context) error

	// CreateBot inserts a bot. The first bot created becomes the active one.
	CreateBot(ctx context.Context, bot *Bot) error
	GetBot(ctx context.Context, id int64) (*Bot, error)
	GetBotByName(ctx context.Context, name string) (*Bot, error)
	ListBots(ctx context.Context) ([]*Bot, error)
	// UpdateBot saves connection settings and tokens. Activation is changed
	// through SetActiveBot only.
	UpdateBot(ctx context.Context, bot *Bot) error
	// DeleteBot removes a bot together with its groups.
	DeleteBot(ctx context.Context, id int64) error
	// GetActiveBot returns ErrNotFound when no bot is active.
	GetActiveBot(ctx context.Context) (*Bot, error)
	// SetActiveBot activates one bot and deactivates all others atomically.
	SetActiveBot(ctx context.Context, id int64) error
	UpdateBotStatus(ctx context.Context, id int64, status string, checkedAt time.Time) error

	AddGroup(ctx context.Context, group *Group) error
	GetGroup(ctx context.Context, botID int64, name string) (*Group, error)
	ListGroups(ctx context.Context, botID int64) ([]Group, error)
	UpdateGroup(ctx context.Context, group *Group) error
	DeleteGroup(ctx context.Context, botID int64, name string) error

	// RunSQLMaintenance vacuums and optimizes the database file.
	RunSQLMaintenance(ctx context.Context) error
}

type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a Store backed by db.
func NewStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store"),
	}
}

const botColumns = `id, name, server_ip, api_key, is_active, role, token, dev_token,
	is_developer_mode, last_status, last_checked_at, created_at, updated_at`

const groupColumns = `id, bot_id, name, is_valid, attendance_active, created_at, updated_at`

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func validateBot(bot *Bot) error {
	if bot == nil {
		return fmt.Errorf("%w: bot is nil", ErrInvalid)
	}
	if strings.TrimSpace(bot.Name) == "" {
		return fmt.Errorf("%w: bot name is required", ErrInvalid)
	}
	if strings.TrimSpace(bot.ServerIP) == "" {
		return fmt.Errorf("%w: server address of bot %q is required", ErrInvalid, bot.Name)
	}
	return nil
}

// translateErr maps driver constraint failures to package errors.
func translateErr(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return err
}

// withTx runs fn in a transaction, committing on success.
func (s *sqlxStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *sqlxStore) CreateBot(ctx context.Context, bot *Bot) error {
	if err := validateBot(bot); err != nil {
		return err
	}

	now := time.Now().UTC()
	bot.CreatedAt = now
	bot.UpdatedAt = now

	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM bots`); err != nil {
			return fmt.Errorf("failed to count bots: %w", err)
		}
		if count == 0 {
			bot.IsActive = true
		}
		if bot.IsActive {
			if _, err := tx.ExecContext(ctx, `UPDATE bots SET is_active = 0 WHERE is_active = 1`); err != nil {
				return fmt.Errorf("failed to clear active bot: %w", err)
			}
		}

		result, err := tx.NamedExecContext(ctx, `
			INSERT INTO bots (name, server_ip, api_key, is_active, role, token, dev_token,
				is_developer_mode, last_status, last_checked_at, created_at, updated_at)
			VALUES (:name, :server_ip, :api_key, :is_active, :role, :token, :dev_token,
				:is_developer_mode, :last_status, :last_checked_at, :created_at, :updated_at)`, bot)
		if err != nil {
			return fmt.Errorf("failed to insert bot %q: %w", bot.Name, translateErr(err))
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read id of bot %q: %w", bot.Name, err)
		}
		bot.ID = id
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to create bot", "name", bot.Name, "error", err)
		return err
	}

	s.logger.InfoContext(ctx, "Bot created", "bot_id", bot.ID, "name", bot.Name, "active", bot.IsActive)
	return nil
}

func (s *sqlxStore) getBot(ctx context.Context, where string, arg any) (*Bot, error) {
	var bot Bot
	query := `SELECT ` + botColumns + ` FROM bots WHERE ` + where
	if err := s.db.GetContext(ctx, &bot, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get bot: %w", err)
	}

	groups, err := s.ListGroups(ctx, bot.ID)
	if err != nil {
		return nil, err
	}
	bot.Groups = groups
	return &bot, nil
}

func (s *sqlxStore) GetBot(ctx context.Context, id int64) (*Bot, error) {
	bot, err := s.getBot(ctx, `id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("bot %d: %w", id, err)
	}
	return bot, nil
}

func (s *sqlxStore) GetBotByName(ctx context.Context, name string) (*Bot, error) {
	bot, err := s.getBot(ctx, `name = ?`, name)
	if err != nil {
		return nil, fmt.Errorf("bot %q: %w", name, err)
	}
	return bot, nil
}

func (s *sqlxStore) GetActiveBot(ctx context.Context) (*Bot, error) {
	bot, err := s.getBot(ctx, `is_active = ?`, true)
	if err != nil {
		return nil, fmt.Errorf("active bot: %w", err)
	}
	return bot, nil
}

func (s *sqlxStore) ListBots(ctx context.Context) ([]*Bot, error) {
	var bots []*Bot
	if err := s.db.SelectContext(ctx, &bots, `SELECT `+botColumns+` FROM bots ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list bots: %w", err)
	}

	var groups []Group
	if err := s.db.SelectContext(ctx, &groups, `SELECT `+groupColumns+` FROM groups ORDER BY name`); err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	byBot := make(map[int64][]Group, len(bots))
	for _, g := range groups {
		byBot[g.BotID] = append(byBot[g.BotID], g)
	}
	for _, b := range bots {
		b.Groups = byBot[b.ID]
	}
	return bots, nil
}

func (s *sqlxStore) UpdateBot(ctx context.Context, bot *Bot) error {
	if err := validateBot(bot); err != nil {
		return err
	}
	bot.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE bots SET name = :name, server_ip = :server_ip, api_key = :api_key, role = :role,
			token = :token, dev_token = :dev_token, is_developer_mode = :is_developer_mode,
			updated_at = :updated_at
		WHERE id = :id`, bot)
	if err != nil {
		return fmt.Errorf("failed to update bot %q: %w", bot.Name, translateErr(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("bot %d: %w", bot.ID, err)
	}

	s.logger.DebugContext(ctx, "Bot updated", "bot_id", bot.ID, "name", bot.Name)
	return nil
}

func (s *sqlxStore) DeleteBot(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM bots WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete bot %d: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("bot %d: %w", id, err)
	}

	s.logger.InfoContext(ctx, "Bot deleted", "bot_id", id)
	return nil
}

func (s *sqlxStore) SetActiveBot(ctx context.Context, id int64) error {
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `UPDATE bots SET is_active = 0 WHERE is_active = 1 AND id <> ?`, id); err != nil {
			return fmt.Errorf("failed to clear active bot: %w", err)
		}
		result, err := tx.ExecContext(ctx, `UPDATE bots SET is_active = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
		if err != nil {
			return fmt.Errorf("failed to activate bot %d: %w", id, err)
		}
		if err := expectOneRow(result); err != nil {
			return fmt.Errorf("bot %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Active bot changed", "bot_id", id)
	return nil
}

func (s *sqlxStore) UpdateBotStatus(ctx context.Context, id int64, status string, checkedAt time.Time) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE bots SET last_status = ?, last_checked_at = ? WHERE id = ?`,
		status, checkedAt.UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to record status of bot %d: %w", id, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("bot %d: %w", id, err)
	}
	return nil
}

func (s *sqlxStore) AddGroup(ctx context.Context, group *Group) error {
	if group == nil || strings.TrimSpace(group.Name) == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalid)
	}
	if group.BotID == 0 {
		return fmt.Errorf("%w: group %q has no bot", ErrInvalid, group.Name)
	}

	now := time.Now().UTC()
	group.CreatedAt = now
	group.UpdatedAt = now

	result, err := s.db.NamedExecContext(ctx, `
		INSERT INTO groups (bot_id, name, is_valid, attendance_active, created_at, updated_at)
		VALUES (:bot_id, :name, :is_valid, :attendance_active, :created_at, :updated_at)`, group)
	if err != nil {
		return fmt.Errorf("failed to add group %q: %w", group.Name, translateErr(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read id of group %q: %w", group.Name, err)
	}
	group.ID = id

	s.logger.DebugContext(ctx, "Group added", "bot_id", group.BotID, "group", group.Name)
	return nil
}

func (s *sqlxStore) GetGroup(ctx context.Context, botID int64, name string) (*Group, error) {
	var group Group
	err := s.db.GetContext(ctx, &group,
		`SELECT `+groupColumns+` FROM groups WHERE bot_id = ? AND name = ?`, botID, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("group %q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get group %q: %w", name, err)
	}
	return &group, nil
}

func (s *sqlxStore) ListGroups(ctx context.Context, botID int64) ([]Group, error) {
	var groups []Group
	err := s.db.SelectContext(ctx, &groups,
		`SELECT `+groupColumns+` FROM groups WHERE bot_id = ? ORDER BY name`, botID)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups of bot %d: %w", botID, err)
	}
	return groups, nil
}

func (s *sqlxStore) UpdateGroup(ctx context.Context, group *Group) error {
	if group == nil || strings.TrimSpace(group.Name) == "" {
		return fmt.Errorf("%w: group name is required", ErrInvalid)
	}
	group.UpdatedAt = time.Now().UTC()

	result, err := s.db.NamedExecContext(ctx, `
		UPDATE groups SET name = :name, is_valid = :is_valid,
			attendance_active = :attendance_active, updated_at = :updated_at
		WHERE id = :id`, group)
	if err != nil {
		return fmt.Errorf("failed to update group %q: %w", group.Name, translateErr(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("group %q: %w", group.Name, err)
	}
	return nil
}

func (s *sqlxStore) DeleteGroup(ctx context.Context, botID int64, name string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM groups WHERE bot_id = ? AND name = ?`, botID, name)
	if err != nil {
		return fmt.Errorf("failed to delete group %q: %w", name, err)
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("group %q: %w", name, err)
	}

	s.logger.DebugContext(ctx, "Group deleted", "bot_id", botID, "group", name)
	return nil
}

func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}

	startTime := time.Now()
	if _, err := s.db.ExecContext(ctx, `VACUUM`); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `PRAGMA optimize`); err != nil {
		s.logger.WarnContext(ctx, "PRAGMA optimize failed", "error", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance finished", "duration", time.Since(startTime))
	return nil
}

func expectOneRow(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
