package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

func (a *app) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open [url]",
		Short: "Show the browser window, optionally loading a page",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target any
			if len(args) == 1 {
				target = args[0]
			}
			_, err := a.call(cmd, "openBrowserWindow", target)
			return err
		},
	}
}

func (a *app) inspectCmd() *cobra.Command {
	var add, download bool
	cmd := &cobra.Command{
		Use:   "inspect [url]",
		Short: "List the media playlists of a page",
		Long:  "List the media playlists of a page, or of the page loaded in the browser window when no URL is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var target any
			if len(args) == 1 {
				target = args[0]
			}
			data, err := a.call(cmd, "browser:inspect", target)
			if err != nil {
				return err
			}
			var page models.PageInfo
			if err := decode(data, &page); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s\n", page.Title)
			for _, u := range page.MediaURLs {
				fmt.Fprintf(out, "  %s\n", u)
			}
			if !add || len(page.MediaURLs) == 0 {
				return nil
			}

			form := models.SourceForm{
				Title:   page.Title,
				URL:     page.MediaURLs[0],
				Headers: "Referer: " + page.URL,
			}
			item, err := a.call(cmd, "sources:add", form, download)
			if err != nil {
				return err
			}
			return printItem(cmd, item)
		},
	}
	cmd.Flags().BoolVar(&add, "add", false, "Add the first playlist found to the download list")
	cmd.Flags().BoolVarP(&download, "download", "d", false, "With --add, start downloading right away")
	return cmd
}

func (a *app) execCmd() *cobra.Command {
	var payload struct {
		URL     string `json:"url"`
		WorkDir string `json:"workDir"`
		Name    string `json:"name"`
		Headers string `json:"headers"`
		Delete  bool   `json:"enableDelAfterDone"`
	}
	cmd := &cobra.Command{
		Use:   "exec <downloader>",
		Short: "Run a downloader directly, outside of the download list",
		Long:  "Run mediago or N_m3u8DL-CLI directly. The outcome is published as an execReply event (see 'watch').",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if payload.URL == "" {
				return errors.New("--url is required")
			}
			if _, err := a.call(cmd, "exec", args[0], payload); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Started")
			return nil
		},
	}
	cmd.Flags().StringVar(&payload.URL, "url", "", "Playlist URL")
	cmd.Flags().StringVar(&payload.WorkDir, "dir", "", "Output directory")
	cmd.Flags().StringVar(&payload.Name, "name", "", "Output file name")
	cmd.Flags().StringVar(&payload.Headers, "headers", "", "Headers in the downloader's own encoding")
	cmd.Flags().BoolVar(&payload.Delete, "delete-segments", false, "Delete segments after merging")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Print bridge events as they happen",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := a.dial(a.address)
			if err != nil {
				return err
			}
			defer b.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			events, errs, err := b.Subscribe(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for e := range events {
				if err := printJSON(out, e); err != nil {
					return err
				}
			}
			if err := <-errs; err != nil && !errors.Is(err, context.Canceled) && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}
}
