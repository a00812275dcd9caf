package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (a *app) getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a setting",
		Long:  "Print a setting. Known keys: workspace, exeFile, proxy, useProxy, tip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.call(cmd, "getLocalPath", args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}
}

func (a *app) setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change a setting",
		Long:  `Change a setting. "true" and "false" are stored as booleans.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var value any = args[1]
			switch args[1] {
			case "true":
				value = true
			case "false":
				value = false
			}
			if _, err := a.call(cmd, "setLocalPath", args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", args[0], value)
			return nil
		},
	}
}

func (a *app) proxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "proxy <on|off>",
		Short:     "Toggle the proxy used by the browser",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"on", "off"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var enable bool
			switch args[0] {
			case "on":
				enable = true
			case "off":
			default:
				return fmt.Errorf("expected on or off, got %q", args[0])
			}
			if _, err := a.call(cmd, "setProxy", enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Proxy %s\n", args[0])
			return nil
		},
	}
}

func (a *app) binDirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bindir",
		Short: "Print the directory the downloaders are run from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := a.call(cmd, "getBinDir")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}
}
