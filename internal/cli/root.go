package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Belphemur/MediaDownloader/internal/config"
	bridgegrpc "github.com/Belphemur/MediaDownloader/internal/grpc"
	"github.com/Belphemur/MediaDownloader/internal/models"
)

// Bridge is the part of the bridge client the commands use
type Bridge interface {
	Invoke(ctx context.Context, channel string, args ...any) (models.Envelope, error)
	Subscribe(ctx context.Context) (<-chan models.Event, <-chan error, error)
	Close() error
}

// Dialer connects to the bridge at address
type Dialer func(address string) (Bridge, error)

// DialGRPC connects over gRPC
func DialGRPC(address string) (Bridge, error) {
	c, err := bridgegrpc.Dial(address)
	if err != nil {
		return nil, err
	}
	return c, nil
}

type app struct {
	dial    Dialer
	address string
	timeout time.Duration
}

// NewRootCmd builds the mediagoctl command tree
func NewRootCmd(dial Dialer) *cobra.Command {
	a := &app{dial: dial}

	rootCmd := &cobra.Command{
		Use:           "mediagoctl",
		Short:         "Control a running media downloader bridge",
		Long:          "Manage the download list, settings and windows of a running media downloader bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultAddress := "localhost:7790"
	if cfg := config.GetConfig(); cfg != nil && cfg.Bridge.Address != "" {
		defaultAddress = cfg.Bridge.Address
	}
	rootCmd.PersistentFlags().StringVarP(&a.address, "address", "a", defaultAddress, "Bridge address")
	rootCmd.PersistentFlags().DurationVar(&a.timeout, "timeout", 30*time.Second, "Request timeout")

	rootCmd.AddCommand(
		a.listCmd(),
		a.addCmd(),
		a.downloadCmd(),
		a.resetCmd(),
		a.updateCmd(),
		a.removeCmd(),
		a.getCmd(),
		a.setCmd(),
		a.proxyCmd(),
		a.binDirCmd(),
		a.openCmd(),
		a.inspectCmd(),
		a.execCmd(),
		a.watchCmd(),
	)
	return rootCmd
}

// Execute runs mediagoctl against the configured bridge
func Execute() {
	if err := NewRootCmd(DialGRPC).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// withBridge connects for the duration of fn
func (a *app) withBridge(cmd *cobra.Command, fn func(ctx context.Context, b Bridge) error) error {
	b, err := a.dial(a.address)
	if err != nil {
		return err
	}
	defer b.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), a.timeout)
	defer cancel()
	return fn(ctx, b)
}

// call invokes channel and returns the envelope data, turning a failed envelope into an error
func (a *app) call(cmd *cobra.Command, channel string, args ...any) (any, error) {
	var data any
	err := a.withBridge(cmd, func(ctx context.Context, b Bridge) error {
		env, err := b.Invoke(ctx, channel, args...)
		if err != nil {
			return fmt.Errorf("%s: %w", channel, err)
		}
		if !env.OK() {
			return fmt.Errorf("%s failed: %s", channel, env.Msg)
		}
		data = env.Data
		return nil
	})
	return data, err
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// decode converts generic envelope data into v
func decode(data any, v any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}
