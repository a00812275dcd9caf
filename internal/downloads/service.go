package downloads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Belphemur/MediaDownloader/internal/apperrors"
	"github.com/Belphemur/MediaDownloader/internal/config"
	"github.com/Belphemur/MediaDownloader/internal/executor"
	"github.com/Belphemur/MediaDownloader/internal/metrics"
	"github.com/Belphemur/MediaDownloader/internal/models"
	"github.com/Belphemur/MediaDownloader/internal/sources"
	"github.com/Belphemur/MediaDownloader/internal/store"
)

// Events published while downloads progress
const (
	EventSourceUpdated = "sourceUpdated"
	EventDownloadTip   = "downloadTip"
)

// Publisher receives events for presentation processes
type Publisher interface {
	Publish(channel string, data any)
}

// Service drives the download flow for items of the source list:
// Ready → Downloading → Success/Failed, plus the manual reset back to Ready.
type Service struct {
	repo     sources.Repository
	settings *store.Settings
	exec     executor.Executor
	events   Publisher
	now      func() time.Time

	wg     sync.WaitGroup
	active atomic.Int64
}

// NewService creates a download service
func NewService(repo sources.Repository, settings *store.Settings, exec executor.Executor, events Publisher) *Service {
	return &Service{
		repo:     repo,
		settings: settings,
		exec:     exec,
		events:   events,
		now:      time.Now,
	}
}

// Sources exposes the underlying repository
func (s *Service) Sources() sources.Repository {
	return s.repo
}

// Add creates a ready source from the new-source form. The download directory is the
// current workspace setting.
func (s *Service) Add(ctx context.Context, form models.SourceForm) (*models.SourceItem, error) {
	url := strings.TrimSpace(form.URL)
	if url == "" {
		return nil, fmt.Errorf("source URL is required")
	}
	title := strings.TrimSpace(form.Title)
	if title == "" {
		title = fmt.Sprintf("%d", s.now().UnixMilli())
	}

	item, err := s.repo.Insert(ctx, models.SourceItem{
		Status:         models.SourceStatusReady,
		Type:           models.SourceTypeM3u8,
		Directory:      s.settings.Workspace(ctx),
		Title:          title,
		URL:            url,
		CreatedAt:      s.now().UnixMilli(),
		Headers:        models.ParseHeaders(form.Headers),
		DeleteSegments: form.Delete,
	})
	if err != nil {
		return nil, err
	}
	s.publish(item)
	return item, nil
}

// Download starts the downloader for the source stored under url and returns the
// source in the downloading state. The process runs in the background, detached from
// ctx, and the final status is published as a sourceUpdated event.
//
// A finished source is restarted first, so "retry download" goes through Ready again.
func (s *Service) Download(ctx context.Context, url string) (*models.SourceItem, error) {
	item, err := s.repo.Get(ctx, url)
	if err != nil {
		return nil, err
	}

	kind, err := executor.ParseKind(s.settings.ExeFile(ctx))
	if err != nil {
		return nil, err
	}

	if item.Status.IsFinished() {
		if item, err = s.repo.Restart(ctx, url); err != nil {
			return nil, err
		}
	}
	if item, err = s.repo.UpdateStatus(ctx, url, models.SourceStatusDownloading); err != nil {
		return nil, err
	}
	s.publish(item)

	directory := item.Directory
	if directory == "" {
		directory = s.settings.Workspace(ctx)
	}
	args := models.ExecArgs{
		URL:            item.URL,
		WorkDir:        directory,
		Name:           item.Title,
		Headers:        kind.HeaderString(item.Headers),
		DeleteSegments: item.DeleteSegments,
	}

	runCtx := context.WithoutCancel(ctx)
	s.wg.Add(1)
	s.active.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.active.Add(-1)
		s.finish(runCtx, url, kind, args)
	}()

	return item, nil
}

// finish runs the downloader and records its outcome on the source
func (s *Service) finish(ctx context.Context, url string, kind executor.DownloaderKind, args models.ExecArgs) {
	logger := config.GetLogger()

	status := models.SourceStatusSuccess
	if _, err := s.Run(ctx, kind, args); err != nil {
		status = models.SourceStatusFailed
	}

	item, err := s.repo.UpdateStatus(ctx, url, status)
	if err != nil {
		// The source was removed, re-keyed or reset while the process ran.
		logger.Warn().Err(err).Str("url", url).Str("status", status.String()).Msg("Could not record download outcome")
		return
	}
	s.publish(item)

	if s.events != nil && s.settings.PromptTip(ctx) {
		s.events.Publish(EventDownloadTip, item)
	}
}

// Reset moves a source stuck in downloading back to ready
func (s *Service) Reset(ctx context.Context, url string) (*models.SourceItem, error) {
	item, err := s.repo.UpdateStatus(ctx, url, models.SourceStatusReady)
	if err != nil {
		return nil, err
	}
	s.publish(item)
	return item, nil
}

// Exec runs the downloader named exeFile with ready-made arguments and waits for it
// to exit. It does not touch the source list.
func (s *Service) Exec(ctx context.Context, exeFile string, args models.ExecArgs) (*models.ExecResult, error) {
	kind, err := executor.ParseKind(exeFile)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, kind, args)
}

// Run executes one downloader process and records the run in the download metrics
func (s *Service) Run(ctx context.Context, kind executor.DownloaderKind, args models.ExecArgs) (*models.ExecResult, error) {
	metrics.DownloadsActive.Inc()
	defer metrics.DownloadsActive.Dec()

	start := time.Now()
	result, err := s.exec.Execute(ctx, kind, args)
	metrics.DownloadDuration.WithLabelValues(kind.String()).Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.DownloadsTotal.WithLabelValues(kind.String(), models.SourceStatusFailed.String()).Inc()
		var execErr *apperrors.ErrExecFailed
		if !errors.As(err, &execErr) {
			err = &apperrors.ErrExecFailed{Code: -1, Message: err.Error()}
		}
		return nil, err
	}
	metrics.DownloadsTotal.WithLabelValues(kind.String(), models.SourceStatusSuccess.String()).Inc()
	return result, nil
}

// Wait blocks until every background download has finished
func (s *Service) Wait() {
	s.wg.Wait()
}

// Active returns the number of background downloads still running
func (s *Service) Active() int {
	return int(s.active.Load())
}

// WaitTimeout waits for background downloads for at most timeout. It reports whether
// they all finished; a zero or negative timeout only checks.
func (s *Service) WaitTimeout(timeout time.Duration) bool {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	timer := time.NewTimer(max(timeout, 0))
	defer timer.Stop()
	select {
	case <-done:
		return true
	case <-timer.C:
		select {
		case <-done:
			return true
		default:
			return false
		}
	}
}

func (s *Service) publish(item *models.SourceItem) {
	if s.events != nil {
		s.events.Publish(EventSourceUpdated, item)
	}
}
