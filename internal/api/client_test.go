package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	*httptest.Server
	hits atomic.Int32
}

func newFakeBackend(t *testing.T, routes map[string]http.HandlerFunc) *fakeBackend {
	t.Helper()
	fb := &fakeBackend{}
	mux := http.NewServeMux()
	for pattern, h := range routes {
		mux.HandleFunc(pattern, h)
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(fb.Close)
	return fb
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func newTestClient(t *testing.T, fb *fakeBackend) *Client {
	t.Helper()
	c, err := NewClient(fb.URL, "secret", Options{Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "192.168.1.10", want: "http://192.168.1.10"},
		{input: "192.168.1.10:8080", want: "http://192.168.1.10:8080"},
		{input: " bot.example.com/ ", want: "http://bot.example.com"},
		{input: "https://bot.example.com/", want: "https://bot.example.com"},
		{input: "", wantErr: true},
		{input: "   ", wantErr: true},
	}
	for _, tc := range testCases {
		got, err := BaseURL(tc.input)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidArgument, tc.input)
			continue
		}
		require.NoError(t, err, tc.input)
		assert.Equal(t, tc.want, got)
	}
}

func TestStatusSendsHeaders(t *testing.T) {
	t.Parallel()

	var gotKey, gotRequestID, gotAccept string
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/status": func(w http.ResponseWriter, r *http.Request) {
			gotKey = r.Header.Get(HeaderAPIKey)
			gotRequestID = r.Header.Get(HeaderRequestID)
			gotAccept = r.Header.Get("Accept")
			writeJSON(t, w, http.StatusOK, BotStatus{Running: true, Username: "panelbot", GuildName: "Guild", UptimeSeconds: 90, LatencyMS: 42})
		},
	})

	status, err := newTestClient(t, fb).Status(context.Background())
	require.NoError(t, err)

	assert.True(t, status.Running)
	assert.Equal(t, "panelbot", status.Username)
	assert.Equal(t, 90*time.Second, status.Uptime())
	assert.Equal(t, "secret", gotKey)
	assert.NotEmpty(t, gotRequestID)
	assert.Equal(t, "application/json", gotAccept)
}

func TestStartAndStopBot(t *testing.T) {
	t.Parallel()

	var gotToken string
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/bot/start": func(w http.ResponseWriter, r *http.Request) {
			var body startRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gotToken = body.Token
			writeJSON(t, w, http.StatusOK, BotStatus{Running: true})
		},
		"POST /api/bot/stop": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, BotStatus{Running: false})
		},
	})
	client := newTestClient(t, fb)

	status, err := client.StartBot(context.Background(), "discord-token")
	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, "discord-token", gotToken)

	status, err = client.StopBot(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Running)

	_, err = client.StartBot(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(2), fb.hits.Load())
}

func TestMembersRoleFilter(t *testing.T) {
	t.Parallel()

	var gotRole string
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/members": func(w http.ResponseWriter, r *http.Request) {
			gotRole = r.URL.Query().Get("role")
			writeJSON(t, w, http.StatusOK, []Member{
				{ID: "1", Name: "ann", DisplayName: "Ann", Roles: []string{"Class A"}},
				{ID: "2", Name: "bob", Roles: []string{"Class A", "Staff"}},
			})
		},
	})

	members, err := newTestClient(t, fb).Members(context.Background(), "Class A")
	require.NoError(t, err)
	assert.Equal(t, "Class A", gotRole)
	require.Len(t, members, 2)
	assert.Equal(t, []string{"Class A", "Staff"}, members[1].Roles)
}

func TestRolesAndChannels(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/roles": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []Role{{ID: "r1", Name: "Class A", MemberCount: 12}})
		},
		"GET /api/channels": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []Channel{{ID: "c1", Name: "general", Type: "text"}})
		},
	})
	client := newTestClient(t, fb)

	roles, err := client.Roles(context.Background())
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, 12, roles[0].MemberCount)

	channels, err := client.Channels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 1)
	assert.Equal(t, "general", channels[0].Name)
}

func TestAssignRole(t *testing.T) {
	t.Parallel()

	var got roleChangeRequest
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/roles/assign": func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusOK, AssignRoleResult{Role: got.Role, Assigned: got.MemberIDs[:1], Failed: got.MemberIDs[1:]})
		},
	})
	client := newTestClient(t, fb)

	result, err := client.AssignRole(context.Background(), "Class A", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "Class A", got.Role)
	assert.Equal(t, []string{"1"}, result.Assigned)
	assert.Equal(t, []string{"2"}, result.Failed)

	_, err = client.AssignRole(context.Background(), " ", []string{"1"})
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.RemoveRole(context.Background(), "Class A", nil)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.Equal(t, int32(1), fb.hits.Load())
}

func TestRemoveRole(t *testing.T) {
	t.Parallel()

	var got roleChangeRequest
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/roles/assign": func(w http.ResponseWriter, _ *http.Request) {
			t.Error("remove must not hit the assign endpoint")
			w.WriteHeader(http.StatusTeapot)
		},
		"POST /api/roles/remove": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "secret", r.Header.Get(HeaderAPIKey))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusOK, AssignRoleResult{Role: got.Role, Assigned: got.MemberIDs})
		},
	})
	client := newTestClient(t, fb)

	result, err := client.RemoveRole(context.Background(), "Class A", []string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, "Class A", got.Role)
	assert.Equal(t, []string{"1", "2"}, got.MemberIDs)
	assert.Equal(t, "Class A", result.Role)
	assert.Equal(t, []string{"1", "2"}, result.Assigned)
	assert.Empty(t, result.Failed)
	assert.Equal(t, int32(1), fb.hits.Load())
}

func TestRetriesOnlyReads(t *testing.T) {
	t.Parallel()

	readStatus := func(c *Client) error {
		_, err := c.Status(context.Background())
		return err
	}
	startBot := func(c *Client) error {
		_, err := c.StartBot(context.Background(), "tok")
		return err
	}
	clearChannel := func(c *Client) error {
		_, err := c.ClearMessages(context.Background(), "42", 5)
		return err
	}

	testCases := []struct {
		name     string
		status   int
		call     func(*Client) error
		wantHits int32
	}{
		{name: "status retried on 503", status: http.StatusServiceUnavailable, call: readStatus, wantHits: 3},
		{name: "status retried on 429", status: http.StatusTooManyRequests, call: readStatus, wantHits: 3},
		{name: "status not retried on 404", status: http.StatusNotFound, call: readStatus, wantHits: 1},
		{name: "start never retried", status: http.StatusServiceUnavailable, call: startBot, wantHits: 1},
		{name: "clear never retried", status: http.StatusBadGateway, call: clearChannel, wantHits: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fail := func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, tc.status, map[string]string{"error": "busy"})
			}
			fb := newFakeBackend(t, map[string]http.HandlerFunc{
				"GET /api/status":               fail,
				"POST /api/bot/start":           fail,
				"POST /api/channels/{id}/clear": fail,
			})
			client, err := NewClient(fb.URL, "secret", Options{Timeout: 2 * time.Second, RetryCount: 2})
			require.NoError(t, err)

			assert.Error(t, tc.call(client))
			assert.Equal(t, tc.wantHits, fb.hits.Load())
		})
	}
}

func TestClearMessages(t *testing.T) {
	t.Parallel()

	var gotChannel string
	var gotLimit int
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/channels/{id}/clear": func(w http.ResponseWriter, r *http.Request) {
			gotChannel = r.PathValue("id")
			var body clearRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gotLimit = body.Limit
			writeJSON(t, w, http.StatusOK, ClearResult{ChannelID: gotChannel, Deleted: body.Limit})
		},
	})
	client := newTestClient(t, fb)

	result, err := client.ClearMessages(context.Background(), "123456", 25)
	require.NoError(t, err)
	assert.Equal(t, "123456", gotChannel)
	assert.Equal(t, 25, gotLimit)
	assert.Equal(t, 25, result.Deleted)

	invalid := []struct {
		channel string
		limit   int
	}{
		{channel: "", limit: 10},
		{channel: "1", limit: 0},
		{channel: "1", limit: -5},
		{channel: "1", limit: MaxClearLimit + 1},
	}
	for _, tc := range invalid {
		_, err := client.ClearMessages(context.Background(), tc.channel, tc.limit)
		assert.ErrorIs(t, err, ErrInvalidArgument, "channel=%q limit=%d", tc.channel, tc.limit)
	}
	assert.Equal(t, int32(1), fb.hits.Load())
}

func TestAttendance(t *testing.T) {
	t.Parallel()

	created := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	var startBody attendanceRequest
	var gotFileName string
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/attendance/start": func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&startBody))
			writeJSON(t, w, http.StatusOK, AttendanceFile{Name: "class-a.json", Group: startBody.Group, CreatedAt: created})
		},
		"POST /api/attendance/stop": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, AttendanceFile{Name: "class-a.json", Group: "Class A", CreatedAt: created, Size: 512})
		},
		"GET /api/attendance/files": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []AttendanceFile{{Name: "class-a.json", Group: "Class A", CreatedAt: created}})
		},
		"GET /api/attendance/files/{name}": func(w http.ResponseWriter, r *http.Request) {
			gotFileName = r.PathValue("name")
			writeJSON(t, w, http.StatusOK, AttendanceReport{
				Name:    gotFileName,
				Group:   "Class A",
				Present: []Member{{ID: "1", Name: "ann"}},
				Absent:  []Member{{ID: "2", Name: "bob"}},
			})
		},
	})
	client := newTestClient(t, fb)
	ctx := context.Background()

	file, err := client.StartAttendance(ctx, "Class A", "voice-1")
	require.NoError(t, err)
	assert.Equal(t, attendanceRequest{Group: "Class A", ChannelID: "voice-1"}, startBody)
	assert.True(t, created.Equal(file.CreatedAt))

	file, err = client.StopAttendance(ctx, "Class A")
	require.NoError(t, err)
	assert.Equal(t, int64(512), file.Size)

	files, err := client.AttendanceFiles(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)

	report, err := client.AttendanceFile(ctx, "week 1.json")
	require.NoError(t, err)
	assert.Equal(t, "week 1.json", gotFileName)
	assert.Len(t, report.Present, 1)
	assert.Len(t, report.Absent, 1)

	_, err = client.StartAttendance(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.StopAttendance(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = client.AttendanceFile(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSurveys(t *testing.T) {
	t.Parallel()

	var got SurveyRequest
	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"POST /api/surveys": func(w http.ResponseWriter, r *http.Request) {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			writeJSON(t, w, http.StatusCreated, SurveyFile{Name: "lunch.json", Title: got.Title})
		},
		"GET /api/surveys/files": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, []SurveyFile{{Name: "lunch.json", Title: "Lunch"}})
		},
		"GET /api/surveys/files/{name}": func(w http.ResponseWriter, r *http.Request) {
			writeJSON(t, w, http.StatusOK, SurveyResult{
				Name:    r.PathValue("name"),
				Title:   "Lunch",
				Options: []SurveyOption{{Label: "Pizza", Votes: 3}, {Label: "Sushi", Votes: 5}},
				Voters:  8,
			})
		},
	})
	client := newTestClient(t, fb)
	ctx := context.Background()

	req := SurveyRequest{Title: "Lunch", Question: "What?", Options: []string{"Pizza", "Sushi"}, ChannelID: "c1", DurationMinutes: 30}
	file, err := client.CreateSurvey(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, req, got)
	assert.Equal(t, "lunch.json", file.Name)

	files, err := client.SurveyFiles(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	result, err := client.SurveyFile(ctx, "lunch.json")
	require.NoError(t, err)
	assert.Equal(t, 8, result.TotalVotes())

	invalid := map[string]SurveyRequest{
		"no title":       {Options: []string{"a", "b"}, ChannelID: "c"},
		"no channel":     {Title: "t", Options: []string{"a", "b"}},
		"single option":  {Title: "t", Options: []string{"a"}, ChannelID: "c"},
		"blank option":   {Title: "t", Options: []string{"a", " "}, ChannelID: "c"},
		"negative limit": {Title: "t", Options: []string{"a", "b"}, ChannelID: "c", DurationMinutes: -1},
	}
	for name, r := range invalid {
		_, err := client.CreateSurvey(ctx, r)
		assert.ErrorIs(t, err, ErrInvalidArgument, name)
	}
}

func TestErrorMapping(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		status      int
		body        string
		contentType string
		wantIs      error
		wantMessage string
	}{
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"error":"bad api key"}`, contentType: "application/json", wantIs: ErrUnauthorized, wantMessage: "bad api key"},
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"nope"}`, contentType: "application/json", wantIs: ErrUnauthorized, wantMessage: "nope"},
		{name: "not found", status: http.StatusNotFound, body: "no such file\n", contentType: "text/plain", wantIs: ErrNotFound, wantMessage: "no such file"},
		{name: "server error", status: http.StatusInternalServerError, body: `{"error":"bot crashed"}`, contentType: "application/json", wantMessage: "bot crashed"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			fb := newFakeBackend(t, map[string]http.HandlerFunc{
				"GET /api/status": func(w http.ResponseWriter, _ *http.Request) {
					w.Header().Set("Content-Type", tc.contentType)
					w.WriteHeader(tc.status)
					_, _ = w.Write([]byte(tc.body))
				},
			})

			_, err := newTestClient(t, fb).Status(context.Background())
			require.Error(t, err)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantMessage, apiErr.Message)
			assert.Equal(t, "/api/status", apiErr.Path)
			if tc.wantIs != nil {
				assert.ErrorIs(t, err, tc.wantIs)
			} else {
				assert.NotErrorIs(t, err, ErrUnauthorized)
				assert.NotErrorIs(t, err, ErrNotFound)
			}
		})
	}
}

func TestDecodeError(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/roles": func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"roles": "not a list"`))
		},
	})

	_, err := newTestClient(t, fb).Roles(context.Background())
	assert.ErrorIs(t, err, ErrDecode)
}

func TestUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.Listener.Addr().String()
	server.Close()

	client, err := NewClient(addr, "", Options{Timeout: time.Second})
	require.NoError(t, err)

	_, err = client.Status(context.Background())
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestContextCancelled(t *testing.T) {
	t.Parallel()

	fb := newFakeBackend(t, map[string]http.HandlerFunc{
		"GET /api/status": func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(t, w, http.StatusOK, BotStatus{})
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient(t, fb).Status(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, ErrUnreachable)
}
