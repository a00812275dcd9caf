package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Belphemur/MediaDownloader/internal/models"
)

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the download sources",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.call(cmd, "sources:list")
			if err != nil {
				return err
			}
			var items []models.SourceItem
			if err := decode(data, &items); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No sources. Use 'mediagoctl add <url>' to add one.")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tTITLE\tADDED\tURL")
			for _, item := range items {
				added := time.UnixMilli(item.CreatedAt).Format("2006-01-02 15:04")
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", item.Status, truncate(item.Title, 40), added, item.URL)
			}
			return tw.Flush()
		},
	}
}

func (a *app) addCmd() *cobra.Command {
	var (
		title    string
		headers  []string
		remove   bool
		download bool
	)
	cmd := &cobra.Command{
		Use:   "add <url>",
		Short: "Add a source to the download list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form := models.SourceForm{
				Title:   title,
				URL:     args[0],
				Headers: strings.Join(headers, "\n"),
				Delete:  remove,
			}
			data, err := a.call(cmd, "sources:add", form, download)
			if err != nil {
				return err
			}
			return printItem(cmd, data)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "Output file name")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, `Request header as "Name: value" (repeatable)`)
	cmd.Flags().BoolVar(&remove, "delete-segments", false, "Delete segments after merging")
	cmd.Flags().BoolVarP(&download, "download", "d", false, "Start downloading right away")
	return cmd
}

func (a *app) downloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <url>",
		Short: "Start or retry the download of a source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.call(cmd, "sources:download", args[0])
			if err != nil {
				return err
			}
			return printItem(cmd, data)
		},
	}
}

func (a *app) resetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <url>",
		Short: "Put a source stuck in downloading back to ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.call(cmd, "sources:reset", args[0])
			if err != nil {
				return err
			}
			return printItem(cmd, data)
		},
	}
}

func (a *app) updateCmd() *cobra.Command {
	var title, newURL string
	cmd := &cobra.Command{
		Use:   "update <url>",
		Short: "Rename a source or change its URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" && newURL == "" {
				return fmt.Errorf("nothing to update: set --title or --url")
			}
			var data any
			var err error
			if title != "" {
				if data, err = a.call(cmd, "sources:update", args[0], "title", title); err != nil {
					return err
				}
			}
			if newURL != "" {
				if data, err = a.call(cmd, "sources:update", args[0], "url", newURL); err != nil {
					return err
				}
			}
			return printItem(cmd, data)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "New title")
	cmd.Flags().StringVarP(&newURL, "url", "u", "", "New URL")
	return cmd
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <url>...",
		Short: "Remove sources from the download list",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			urls := make([]any, len(args))
			for i, u := range args {
				urls[i] = u
			}
			data, err := a.call(cmd, "sources:remove", urls)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %v source(s)\n", data)
			return nil
		},
	}
}

func printItem(cmd *cobra.Command, data any) error {
	var item models.SourceItem
	if err := decode(data, &item); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", item.Status, item.Title, item.URL)
	return nil
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
