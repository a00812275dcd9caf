package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

type call struct {
	channel string
	args    []any
}

type fakeBridge struct {
	replies map[string]models.Envelope
	events  []models.Event
	calls   []call
	closed  bool
}

func (f *fakeBridge) Invoke(_ context.Context, channel string, args ...any) (models.Envelope, error) {
	f.calls = append(f.calls, call{channel: channel, args: args})
	if env, ok := f.replies[channel]; ok {
		return env, nil
	}
	return models.Success(nil), nil
}

func (f *fakeBridge) Subscribe(context.Context) (<-chan models.Event, <-chan error, error) {
	events := make(chan models.Event, len(f.events))
	for _, e := range f.events {
		events <- e
	}
	close(events)
	errs := make(chan error)
	close(errs)
	return events, errs, nil
}

func (f *fakeBridge) Close() error {
	f.closed = true
	return nil
}

func run(t *testing.T, f *fakeBridge, args ...string) (string, error) {
	t.Helper()
	var dialed string
	cmd := NewRootCmd(func(address string) (Bridge, error) {
		dialed = address
		return f, nil
	})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	if err == nil {
		assert.NotEmpty(t, dialed)
	}
	return out.String(), err
}

func TestList(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{
		"sources:list": models.Success([]any{
			map[string]any{"status": "success", "title": "Episode 1", "url": "https://x.com/1.m3u8", "createdAt": 1700000000000},
			map[string]any{"status": "ready", "title": "Episode 2", "url": "https://x.com/2.m3u8", "createdAt": 1700000001000},
		}),
	}}

	out, err := run(t, f, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "STATUS")
	assert.Contains(t, out, "Episode 1")
	assert.Contains(t, out, "https://x.com/2.m3u8")
	assert.True(t, f.closed)
}

func TestList_Empty(t *testing.T) {
	out, err := run(t, &fakeBridge{}, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No sources")
}

func TestAdd(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{
		"sources:add": models.Success(map[string]any{"status": "ready", "title": "clip", "url": "https://x.com/a.m3u8"}),
	}}

	out, err := run(t, f, "add", "https://x.com/a.m3u8", "--title", "clip",
		"-H", "Origin: https://x.com", "-H", "Referer: https://x.com/p", "--download")
	require.NoError(t, err)
	assert.Contains(t, out, "clip")

	require.Len(t, f.calls, 1)
	assert.Equal(t, "sources:add", f.calls[0].channel)
	form, ok := f.calls[0].args[0].(models.SourceForm)
	require.True(t, ok)
	assert.Equal(t, "https://x.com/a.m3u8", form.URL)
	assert.Equal(t, "clip", form.Title)
	assert.Equal(t, "Origin: https://x.com\nReferer: https://x.com/p", form.Headers)
	assert.Equal(t, true, f.calls[0].args[1])
}

func TestAdd_RequiresURL(t *testing.T) {
	_, err := run(t, &fakeBridge{}, "add")
	assert.Error(t, err)
}

func TestDownload_FailureEnvelope(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{
		"sources:download": models.Failure(models.CodeFailure, "invalid status transition"),
	}}

	_, err := run(t, f, "download", "https://x.com/a.m3u8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid status transition")
}

func TestUpdate(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{
		"sources:update": models.Success(map[string]any{"status": "ready", "title": "new", "url": "https://x.com/b.m3u8"}),
	}}

	_, err := run(t, f, "update", "https://x.com/a.m3u8", "--title", "new", "--url", "https://x.com/b.m3u8")
	require.NoError(t, err)
	require.Len(t, f.calls, 2)
	assert.Equal(t, []any{"https://x.com/a.m3u8", "title", "new"}, f.calls[0].args)
	assert.Equal(t, []any{"https://x.com/a.m3u8", "url", "https://x.com/b.m3u8"}, f.calls[1].args)
}

func TestUpdate_NothingToDo(t *testing.T) {
	f := &fakeBridge{}
	_, err := run(t, f, "update", "https://x.com/a.m3u8")
	assert.Error(t, err)
	assert.Empty(t, f.calls)
}

func TestRemove(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{"sources:remove": models.Success(2)}}

	out, err := run(t, f, "remove", "https://x.com/a.m3u8", "https://x.com/b.m3u8")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2")
	assert.Equal(t, []any{[]any{"https://x.com/a.m3u8", "https://x.com/b.m3u8"}}, f.calls[0].args)
}

func TestGetAndSet(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{"getLocalPath": models.Success("/home/me/Videos")}}

	out, err := run(t, f, "get", "workspace")
	require.NoError(t, err)
	assert.Equal(t, "/home/me/Videos\n", out)

	_, err = run(t, f, "set", "tip", "false")
	require.NoError(t, err)
	last := f.calls[len(f.calls)-1]
	assert.Equal(t, "setLocalPath", last.channel)
	assert.Equal(t, []any{"tip", false}, last.args)

	_, err = run(t, f, "set", "exeFile", "N_m3u8DL-CLI")
	require.NoError(t, err)
	last = f.calls[len(f.calls)-1]
	assert.Equal(t, []any{"exeFile", "N_m3u8DL-CLI"}, last.args)
}

func TestProxy(t *testing.T) {
	f := &fakeBridge{}
	_, err := run(t, f, "proxy", "on")
	require.NoError(t, err)
	assert.Equal(t, []any{true}, f.calls[0].args)

	_, err = run(t, f, "proxy", "maybe")
	assert.Error(t, err)
}

func TestInspect_AddsFirstPlaylist(t *testing.T) {
	f := &fakeBridge{replies: map[string]models.Envelope{
		"browser:inspect": models.Success(map[string]any{
			"url":       "https://x.com/watch",
			"title":     "Show",
			"mediaUrls": []any{"https://cdn.x.com/a.m3u8", "https://cdn.x.com/b.m3u8"},
		}),
		"sources:add": models.Success(map[string]any{"status": "ready", "title": "Show", "url": "https://cdn.x.com/a.m3u8"}),
	}}

	out, err := run(t, f, "inspect", "https://x.com/watch", "--add")
	require.NoError(t, err)
	assert.Contains(t, out, "https://cdn.x.com/b.m3u8")

	require.Len(t, f.calls, 2)
	form := f.calls[1].args[0].(models.SourceForm)
	assert.Equal(t, "https://cdn.x.com/a.m3u8", form.URL)
	assert.Equal(t, "Referer: https://x.com/watch", form.Headers)
}

func TestExec_RequiresURL(t *testing.T) {
	f := &fakeBridge{}
	_, err := run(t, f, "exec", "mediago")
	assert.Error(t, err)
	assert.Empty(t, f.calls)

	_, err = run(t, f, "exec", "mediago", "--url", "https://x.com/a.m3u8", "--name", "clip")
	require.NoError(t, err)
	assert.Equal(t, "exec", f.calls[0].channel)
}

func TestWatch(t *testing.T) {
	f := &fakeBridge{events: []models.Event{
		{Channel: "sourceUpdated", Data: map[string]any{"status": "downloading"}},
		{Channel: "execReply", Data: models.Success("done")},
	}}

	out, err := run(t, f, "watch")
	require.NoError(t, err)
	assert.Contains(t, out, `"channel": "sourceUpdated"`)
	assert.Contains(t, out, `"channel": "execReply"`)
}

func TestDialError(t *testing.T) {
	cmd := NewRootCmd(func(string) (Bridge, error) { return nil, errors.New("connection refused") })
	cmd.SetArgs([]string{"bindir", "--address", "localhost:1"})
	cmd.SetOut(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
