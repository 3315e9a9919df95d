// Package main provides the entry point for the postdesk CLI.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// Build info set via ldflags at build time.
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "none"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	short := commit
	if len(short) > 7 {
		short = short[:7]
	}
	return fmt.Sprintf("%s (%s)", version, short)
}

func main() {
	if err := fang.Execute(context.Background(), newRootCmd(), fang.WithVersion(buildVersion())); err != nil {
		os.Exit(1)
	}
}

// newRootCmd creates the root command for the postdesk CLI.
func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "postdesk",
		Short: "A personal blog served from Markdown content files",
		Long: `postdesk serves a blog from a directory of .mdx content files.

In development mode it also serves an authoring UI and JSON API that
create, edit and delete posts while keeping the content index in sync.`,
		Version:       buildVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
	}
	cmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (default is ./postdesk.yaml)")

	lipgloss.SetHasDarkBackground(true)

	cmd.AddGroup(&cobra.Group{ID: "site", Title: "Site Commands:"})
	cmd.AddGroup(&cobra.Group{ID: "content", Title: "Content Commands:"})

	addGroupedCommand(cmd, newServeCmd(opts), "site")
	addGroupedCommand(cmd, newInitCmd(opts), "site")
	addGroupedCommand(cmd, newNewCmd(opts), "content")
	addGroupedCommand(cmd, newListCmd(opts), "content")
	addGroupedCommand(cmd, newReindexCmd(opts), "content")
	addGroupedCommand(cmd, newPreviewCmd(opts), "content")
	cmd.AddCommand(newVersionCmd())
	return cmd
}

func addGroupedCommand(parent, child *cobra.Command, groupID string) {
	child.GroupID = groupID
	parent.AddCommand(child)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the postdesk version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "postdesk %s\n", buildVersion())
			return err
		},
	}
}
