package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()
	db, err := NewDB(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })
	return NewStore(db, nil)
}

func TestCreateBot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	first := &Bot{Name: "alpha", ServerIP: "10.0.0.1:8080", APIKey: "k1", Token: "t1"}
	require.NoError(t, store.CreateBot(ctx, first))
	assert.NotZero(t, first.ID)
	assert.True(t, first.IsActive, "first bot becomes active")

	second := &Bot{Name: "beta", ServerIP: "10.0.0.2"}
	require.NoError(t, store.CreateBot(ctx, second))
	assert.False(t, second.IsActive)

	err := store.CreateBot(ctx, &Bot{Name: "alpha", ServerIP: "10.0.0.3"})
	assert.ErrorIs(t, err, ErrDuplicate)

	got, err := store.GetBotByName(ctx, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.1:8080", got.ServerIP)
	assert.Equal(t, "k1", got.APIKey)
	assert.Equal(t, "t1", got.Token)
	assert.True(t, got.IsActive)
	assert.False(t, got.LastCheckedAt.Valid)
}

func TestCreateBotValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	testCases := []struct {
		name string
		bot  *Bot
	}{
		{name: "nil bot", bot: nil},
		{name: "empty name", bot: &Bot{ServerIP: "host"}},
		{name: "blank name", bot: &Bot{Name: "  ", ServerIP: "host"}},
		{name: "empty server", bot: &Bot{Name: "bot"}},
	}
	for _, tc := range testCases {
		err := store.CreateBot(ctx, tc.bot)
		assert.ErrorIs(t, err, ErrInvalid, tc.name)
	}
}

func TestCreateActiveBotReplacesActive(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.CreateBot(ctx, &Bot{Name: "alpha", ServerIP: "a"}))
	require.NoError(t, store.CreateBot(ctx, &Bot{Name: "beta", ServerIP: "b", IsActive: true}))

	active, err := store.GetActiveBot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "beta", active.Name)

	alpha, err := store.GetBotByName(ctx, "alpha")
	require.NoError(t, err)
	assert.False(t, alpha.IsActive)
}

func TestSetActiveBot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	alpha := &Bot{Name: "alpha", ServerIP: "a"}
	beta := &Bot{Name: "beta", ServerIP: "b"}
	require.NoError(t, store.CreateBot(ctx, alpha))
	require.NoError(t, store.CreateBot(ctx, beta))

	require.NoError(t, store.SetActiveBot(ctx, beta.ID))
	active, err := store.GetActiveBot(ctx)
	require.NoError(t, err)
	assert.Equal(t, beta.ID, active.ID)

	bots, err := store.ListBots(ctx)
	require.NoError(t, err)
	activeCount := 0
	for _, b := range bots {
		if b.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)

	err = store.SetActiveBot(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)

	// A failed activation must not clear the current active bot.
	active, err = store.GetActiveBot(ctx)
	require.NoError(t, err)
	assert.Equal(t, beta.ID, active.ID)
}

func TestGetActiveBotNone(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	_, err := store.GetActiveBot(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	bot := &Bot{Name: "alpha", ServerIP: "a"}
	require.NoError(t, store.CreateBot(ctx, bot))

	bot.ServerIP = "b:9000"
	bot.DevToken = "dev"
	bot.IsDeveloperMode = true
	bot.Role = "Member"
	require.NoError(t, store.UpdateBot(ctx, bot))

	got, err := store.GetBot(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, "b:9000", got.ServerIP)
	assert.Equal(t, "Member", got.Role)
	assert.True(t, got.IsDeveloperMode)
	assert.Equal(t, "dev", got.EffectiveToken())

	missing := &Bot{ID: 4242, Name: "ghost", ServerIP: "x"}
	assert.ErrorIs(t, store.UpdateBot(ctx, missing), ErrNotFound)
}

func TestDeleteBotCascadesGroups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	bot := &Bot{Name: "alpha", ServerIP: "a"}
	require.NoError(t, store.CreateBot(ctx, bot))
	require.NoError(t, store.AddGroup(ctx, &Group{BotID: bot.ID, Name: "Class A"}))
	require.NoError(t, store.AddGroup(ctx, &Group{BotID: bot.ID, Name: "Class B"}))

	got, err := store.GetBot(ctx, bot.ID)
	require.NoError(t, err)
	require.Len(t, got.Groups, 2)

	require.NoError(t, store.DeleteBot(ctx, bot.ID))

	_, err = store.GetBot(ctx, bot.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	groups, err := store.ListGroups(ctx, bot.ID)
	require.NoError(t, err)
	assert.Empty(t, groups)

	assert.ErrorIs(t, store.DeleteBot(ctx, bot.ID), ErrNotFound)
}

func TestGroups(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	bot := &Bot{Name: "alpha", ServerIP: "a"}
	require.NoError(t, store.CreateBot(ctx, bot))

	group := &Group{BotID: bot.ID, Name: "Class A"}
	require.NoError(t, store.AddGroup(ctx, group))
	assert.NotZero(t, group.ID)

	assert.ErrorIs(t, store.AddGroup(ctx, &Group{BotID: bot.ID, Name: "Class A"}), ErrDuplicate)
	assert.ErrorIs(t, store.AddGroup(ctx, &Group{BotID: bot.ID}), ErrInvalid)
	assert.ErrorIs(t, store.AddGroup(ctx, &Group{BotID: 777, Name: "orphan"}), ErrNotFound)

	group.IsValid = true
	group.AttendanceActive = true
	require.NoError(t, store.UpdateGroup(ctx, group))

	got, err := store.GetGroup(ctx, bot.ID, "Class A")
	require.NoError(t, err)
	assert.True(t, got.IsValid)
	assert.True(t, got.AttendanceActive)

	require.NoError(t, store.DeleteGroup(ctx, bot.ID, "Class A"))
	_, err = store.GetGroup(ctx, bot.ID, "Class A")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, store.DeleteGroup(ctx, bot.ID, "Class A"), ErrNotFound)
}

func TestUpdateBotStatus(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := newTestStore(t)

	bot := &Bot{Name: "alpha", ServerIP: "a"}
	require.NoError(t, store.CreateBot(ctx, bot))

	checkedAt := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.UpdateBotStatus(ctx, bot.ID, StatusRunning, checkedAt))

	got, err := store.GetBot(ctx, bot.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, got.LastStatus)
	require.True(t, got.LastCheckedAt.Valid)
	assert.True(t, checkedAt.Equal(got.LastCheckedAt.Time))

	assert.ErrorIs(t, store.UpdateBotStatus(ctx, 999, StatusStopped, checkedAt), ErrNotFound)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.RunSQLMaintenance(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, store.RunSQLMaintenance(ctx), context.Canceled)
}

func TestExtractDBNameFromPath(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"storage.db":                      "storage.db",
		"file:storage.db":                 "storage.db",
		"file:storage.db?_pragma=x(1)":    "storage.db",
		"/var/lib/bot%20panel/storage.db": "/var/lib/bot panel/storage.db",
	}
	for in, want := range testCases {
		assert.Equal(t, want, ExtractDBNameFromPath(in), in)
	}
}

func TestBuildDSN(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "file:a.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", BuildDSN("a.db"))
	assert.Equal(t, "file:a.db?mode=rwc&_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", BuildDSN("file:a.db?mode=rwc"))
}
