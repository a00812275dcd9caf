package ipc

import (
	"context"
	"fmt"

	"github.com/Belphemur/MediaDownloader/internal/browser"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/downloads"
	"github.com/Belphemur/MediaDownloader/internal/executor"
	"github.com/Belphemur/MediaDownloader/internal/models"
	"github.com/Belphemur/MediaDownloader/internal/store"
	"github.com/Belphemur/MediaDownloader/internal/window"
)

// Channel names
const (
	ChannelExec               = "exec"
	ChannelSetLocalPath       = "setLocalPath"
	ChannelGetLocalPath       = "getLocalPath"
	ChannelCloseMainWindow    = "closeMainWindow"
	ChannelOpenBrowserWindow  = "openBrowserWindow"
	ChannelCloseBrowserWindow = "closeBrowserWindow"
	ChannelOpenSettingWindow  = "openSettingWindow"
	ChannelGetBinDir          = "getBinDir"
	ChannelOpenURL            = "open-url"
	ChannelSetProxy           = "setProxy"
	ChannelSourcesList        = "sources:list"
	ChannelSourcesAdd         = "sources:add"
	ChannelSourcesDownload    = "sources:download"
	ChannelSourcesReset       = "sources:reset"
	ChannelSourcesUpdate      = "sources:update"
	ChannelSourcesRemove      = "sources:remove"
	ChannelBrowserInspect     = "browser:inspect"
)

// Services are the collaborators the channel handlers call into
type Services struct {
	Settings  *store.Settings
	Downloads *downloads.Service
	Executor  executor.Executor
	Windows   *window.Manager
	Inspector *browser.Inspector
	// Quit is called after closeMainWindow has published the quit event
	Quit func()
}

// execPayload accepts the argument names of either downloader
type execPayload struct {
	URL                string `json:"url"`
	Path               string `json:"path"`
	WorkDir            string `json:"workDir"`
	Name               string `json:"name"`
	SaveName           string `json:"saveName"`
	Headers            string `json:"headers"`
	EnableDelAfterDone bool   `json:"enableDelAfterDone"`
}

func (p execPayload) args() models.ExecArgs {
	args := models.ExecArgs{
		URL:            p.URL,
		WorkDir:        p.WorkDir,
		Name:           p.Name,
		Headers:        p.Headers,
		DeleteSegments: p.EnableDelAfterDone,
	}
	if args.WorkDir == "" {
		args.WorkDir = p.Path
	}
	if args.Name == "" {
		args.Name = p.SaveName
	}
	return args
}

// Register wires every channel to svc
func Register(b *Bridge, svc Services) {
	h := &handlers{svc: svc, events: b.Events()}

	b.On(ChannelExec, EventExecReply, h.exec)
	b.On(ChannelSetLocalPath, EventSetLocalPathReply, h.setLocalPath)
	b.Handle(ChannelGetLocalPath, h.getLocalPath)
	b.On(ChannelCloseMainWindow, "", h.closeMainWindow)
	b.On(ChannelOpenBrowserWindow, "", h.openBrowserWindow)
	b.On(ChannelCloseBrowserWindow, "", h.closeBrowserWindow)
	b.Handle(ChannelOpenSettingWindow, h.openSettingWindow)
	b.Handle(ChannelGetBinDir, h.getBinDir)
	b.On(ChannelOpenURL, "", h.openURL)
	b.On(ChannelSetProxy, "", h.setProxy)

	b.Handle(ChannelSourcesList, h.listSources)
	b.Handle(ChannelSourcesAdd, h.addSource)
	b.Handle(ChannelSourcesDownload, h.downloadSource)
	b.Handle(ChannelSourcesReset, h.resetSource)
	b.Handle(ChannelSourcesUpdate, h.updateSource)
	b.Handle(ChannelSourcesRemove, h.removeSources)
	b.Handle(ChannelBrowserInspect, h.inspect)
}

type handlers struct {
	svc    Services
	events *EventBus
}

func (h *handlers) publish(channel string, data any) {
	if h.events != nil {
		h.events.Publish(channel, data)
	}
}

func (h *handlers) exec(ctx context.Context, args Args) (any, error) {
	exeFile, err := args.String(0)
	if err != nil {
		return nil, err
	}
	var payload execPayload
	if err := args.Decode(1, &payload); err != nil {
		return nil, err
	}
	result, err := h.svc.Downloads.Exec(ctx, exeFile, payload.args())
	if err != nil {
		return nil, err
	}
	return result.Message, nil
}

func (h *handlers) setLocalPath(ctx context.Context, args Args) (any, error) {
	key, err := args.String(0)
	if err != nil {
		return nil, err
	}
	if !h.svc.Settings.Set(ctx, key, args.Value(1)) {
		return nil, fmt.Errorf("failed to save setting %s", key)
	}
	return "", nil
}

// getLocalPath never fails: unreadable or unknown keys yield ""
func (h *handlers) getLocalPath(ctx context.Context, args Args) (any, error) {
	key := args.OptionalString(0)
	switch key {
	case store.KeyWorkspace:
		return h.svc.Settings.Workspace(ctx), nil
	case store.KeyExeFile:
		return h.svc.Settings.ExeFile(ctx), nil
	case store.KeyPromptTip:
		return h.svc.Settings.PromptTip(ctx), nil
	case store.KeyUseProxy:
		return h.svc.Settings.UseProxy(ctx), nil
	case "":
		return "", nil
	}
	return h.svc.Settings.Get(ctx, key), nil
}

func (h *handlers) closeMainWindow(context.Context, Args) (any, error) {
	if err := h.svc.Windows.Hide(window.Main); err != nil {
		return nil, err
	}
	h.publish(EventQuit, nil)
	if h.svc.Quit != nil {
		h.svc.Quit()
	}
	return nil, nil
}

func (h *handlers) openBrowserWindow(_ context.Context, args Args) (any, error) {
	return nil, h.svc.Windows.OpenBrowser(args.OptionalString(0))
}

func (h *handlers) closeBrowserWindow(context.Context, Args) (any, error) {
	return nil, h.svc.Windows.Hide(window.Browser)
}

func (h *handlers) openSettingWindow(context.Context, Args) (any, error) {
	if err := h.svc.Windows.Show(window.Setting); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *handlers) getBinDir(context.Context, Args) (any, error) {
	return h.svc.Executor.BinDir(), nil
}

func (h *handlers) openURL(_ context.Context, args Args) (any, error) {
	target, err := args.String(0)
	if err != nil {
		return nil, err
	}
	return nil, h.svc.Windows.Open(target)
}

func (h *handlers) setProxy(ctx context.Context, args Args) (any, error) {
	enable := args.Bool(0)
	h.svc.Settings.Set(ctx, store.KeyUseProxy, enable)

	proxy := ""
	if enable {
		proxy = h.svc.Settings.Proxy(ctx)
	}
	if err := h.svc.Inspector.SetProxy(proxy); err != nil {
		return nil, err
	}

	logger := config.GetLogger()
	logger.Info().Bool("enabled", enable).Str("proxy", proxy).Msg("Proxy toggled")
	h.publish(EventProxyChanged, map[string]any{"enabled": enable, "proxy": proxy})
	return nil, nil
}

func (h *handlers) listSources(ctx context.Context, _ Args) (any, error) {
	return h.svc.Downloads.Sources().List(ctx)
}

func (h *handlers) addSource(ctx context.Context, args Args) (any, error) {
	var form models.SourceForm
	if err := args.Decode(0, &form); err != nil {
		return nil, err
	}
	item, err := h.svc.Downloads.Add(ctx, form)
	if err != nil {
		return nil, err
	}
	if args.Bool(1) {
		return h.svc.Downloads.Download(ctx, item.URL)
	}
	return item, nil
}

func (h *handlers) downloadSource(ctx context.Context, args Args) (any, error) {
	url, err := args.String(0)
	if err != nil {
		return nil, err
	}
	return h.svc.Downloads.Download(ctx, url)
}

func (h *handlers) resetSource(ctx context.Context, args Args) (any, error) {
	url, err := args.String(0)
	if err != nil {
		return nil, err
	}
	return h.svc.Downloads.Reset(ctx, url)
}

func (h *handlers) updateSource(ctx context.Context, args Args) (any, error) {
	url, err := args.String(0)
	if err != nil {
		return nil, err
	}
	field, err := args.String(1)
	if err != nil {
		return nil, err
	}
	value, err := args.String(2)
	if err != nil {
		return nil, err
	}

	repo := h.svc.Downloads.Sources()
	var item *models.SourceItem
	switch field {
	case "title":
		item, err = repo.UpdateTitle(ctx, url, value)
	case "url":
		item, err = repo.UpdateURL(ctx, url, value)
	default:
		return nil, fmt.Errorf("field %q cannot be updated", field)
	}
	if err != nil {
		return nil, err
	}
	h.publish(downloads.EventSourceUpdated, item)
	return item, nil
}

func (h *handlers) removeSources(ctx context.Context, args Args) (any, error) {
	urls := args.Strings(0)
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one URL is required")
	}
	return h.svc.Downloads.Sources().Remove(ctx, urls...)
}

// inspect reads the given page, or the one loaded in the browser surface
func (h *handlers) inspect(ctx context.Context, args Args) (any, error) {
	target := args.OptionalString(0)
	if target == "" {
		target = h.svc.Windows.CurrentURL()
	}
	if target == "" {
		return nil, fmt.Errorf("no page is loaded in the browser")
	}
	return h.svc.Inspector.Inspect(ctx, target)
}
