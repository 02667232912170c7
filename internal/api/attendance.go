package api

import (
	"context"
	"net/http"
	"strings"
)

// StartAttendance opens an attendance session for group, optionally bound to
// a voice or text channel.
func (c *Client) StartAttendance(ctx context.Context, group, channelID string) (*AttendanceFile, error) {
	if strings.TrimSpace(group) == "" {
		return nil, invalidArg("group is empty")
	}
	var file AttendanceFile
	req := request{
		method: http.MethodPost,
		path:   "/api/attendance/start",
		body:   attendanceRequest{Group: group, ChannelID: channelID},
	}
	if err := c.do(ctx, req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// StopAttendance closes the attendance session of group and returns the
// file it was written to.
func (c *Client) StopAttendance(ctx context.Context, group string) (*AttendanceFile, error) {
	if strings.TrimSpace(group) == "" {
		return nil, invalidArg("group is empty")
	}
	var file AttendanceFile
	req := request{
		method: http.MethodPost,
		path:   "/api/attendance/stop",
		body:   attendanceRequest{Group: group},
	}
	if err := c.do(ctx, req, &file); err != nil {
		return nil, err
	}
	return &file, nil
}

// AttendanceFiles lists stored attendance files.
func (c *Client) AttendanceFiles(ctx context.Context) ([]AttendanceFile, error) {
	var files []AttendanceFile
	if err := c.do(ctx, request{method: http.MethodGet, path: "/api/attendance/files"}, &files); err != nil {
		return nil, err
	}
	return files, nil
}

// AttendanceFile fetches the report stored under name.
func (c *Client) AttendanceFile(ctx context.Context, name string) (*AttendanceReport, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalidArg("file name is empty")
	}
	var report AttendanceReport
	req := request{
		method:     http.MethodGet,
		path:       "/api/attendance/files/{name}",
		pathParams: map[string]string{"name": name},
	}
	if err := c.do(ctx, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}
