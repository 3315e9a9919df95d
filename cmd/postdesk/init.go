package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/postdesk/scaffold"
)

func newInitCmd(opts *options) *cobra.Command {
	var (
		name    string
		siteURL string
	)
	cmd := &cobra.Command{
		Use:   "init [dir]",
		Short: "Create a new site with a config file and a first post",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			if name == "" {
				abs, err := filepath.Abs(dir)
				if err != nil {
					return err
				}
				name = scaffold.TitleCase(filepath.Base(abs))
			}
			if siteURL == "" {
				siteURL = opts.cfg.URL
			}

			created, err := scaffold.Write(dir, scaffold.Data{
				SiteName: name,
				SiteURL:  siteURL,
				Date:     time.Now().Format("2006-01-02"),
			})
			st := newStyles()
			for _, p := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "  %s %s\n", st.success.Render("created"), p)
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprintln(cmd.OutOrStdout(), st.bold.Render("Done! Next steps:"))
			if dir != "." {
				fmt.Fprintf(cmd.OutOrStdout(), "  cd %s\n", dir)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "  postdesk serve --dev")
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "site name (default derived from the directory)")
	cmd.Flags().StringVar(&siteURL, "url", "", "canonical site URL")
	return cmd
}
