package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/eringen/postdesk"
	"github.com/eringen/postdesk/content"
	"github.com/eringen/postdesk/markdown"
	"github.com/eringen/postdesk/scaffold"
)

func newNewCmd(opts *options) *cobra.Command {
	var post content.Post
	cmd := &cobra.Command{
		Use:   "new <slug>",
		Short: "Create a post and add it to the content index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			post.Slug = args[0]
			if post.Title == "" {
				post.Title = scaffold.TitleCase(post.Slug)
			}
			if post.Content == "" {
				post.Content = "# " + post.Title + "\n"
			}
			post.Tags = postdesk.FilterEmpty(post.Tags)

			svc, err := opts.openContent()
			if err != nil {
				return err
			}
			defer svc.Close()

			created, err := svc.Create(cmd.Context(), post)
			if err != nil {
				return err
			}
			st := newStyles()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", st.success.Render("created"), created.Path)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&post.Title, "title", "", "post title (default derived from the slug)")
	f.StringVar(&post.Description, "description", "", "short description")
	f.StringVar(&post.Date, "date", time.Now().Format("2006-01-02"), "publication date")
	f.StringVar(&post.ReadTime, "read-time", "5 min", "estimated reading time")
	f.StringSliceVar(&post.Tags, "tag", nil, "tag, repeatable")
	f.BoolVar(&post.Featured, "featured", false, "show the post first on the home page")
	f.StringVar(&post.Content, "body", "", "post body (default a heading with the title)")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List content files and whether they are indexed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.openContent()
			if err != nil {
				return err
			}
			defer svc.Close()

			posts, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}
			return printPosts(cmd, svc, posts)
		},
	}
}

func printPosts(cmd *cobra.Command, svc *content.Service, posts []content.Summary) error {
	out := cmd.OutOrStdout()
	st := newStyles()
	if len(posts) == 0 {
		fmt.Fprintln(out, st.dim.Render("No posts in "+svc.Dir()))
		return nil
	}

	slugCol := lipgloss.NewStyle().Width(longestSlug(posts) + 2)
	dateCol := lipgloss.NewStyle().Width(12)
	for _, p := range posts {
		indexed, err := svc.Index().Has(cmd.Context(), p.Slug)
		if err != nil {
			return err
		}
		mark := st.success.Render("●")
		if !indexed {
			mark = st.warning.Render("○")
		}
		fmt.Fprintf(out, "%s %s%s%s\n",
			mark,
			slugCol.Render(st.accent.Render(p.Slug)),
			dateCol.Render(st.dim.Render(p.Date)),
			p.Title,
		)
	}
	fmt.Fprintf(out, "\n%s\n", st.dim.Render(fmt.Sprintf("%d posts, ○ = not indexed (run postdesk reindex)", len(posts))))
	return nil
}

func longestSlug(posts []content.Summary) int {
	n := 0
	for _, p := range posts {
		if len(p.Slug) > n {
			n = len(p.Slug)
		}
	}
	return n
}

func newReindexCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Bring the content index in line with the content directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := opts.openContent()
			if err != nil {
				return err
			}
			defer svc.Close()

			res, err := svc.Reconcile(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			st := newStyles()
			for _, slug := range res.Added {
				fmt.Fprintf(out, "  %s %s\n", st.success.Render("+"), slug)
			}
			for _, slug := range res.Removed {
				fmt.Fprintf(out, "  %s %s\n", st.warning.Render("-"), slug)
			}
			for _, slug := range res.Skipped {
				fmt.Fprintf(out, "  %s %s %s\n", st.warning.Render("!"), slug,
					st.dim.Render("not indexed: its component name is taken by another post"))
			}
			if len(res.Added) == 0 && len(res.Removed) == 0 && len(res.Skipped) == 0 {
				fmt.Fprintln(out, st.dim.Render("Index is up to date."))
			}
			return nil
		},
	}
}

func newPreviewCmd(opts *options) *cobra.Command {
	var published bool
	cmd := &cobra.Command{
		Use:   "preview <file|->",
		Short: "Render a Markdown file to HTML on stdout",
		Long: `Render the body of a content file with the live preview renderer, or
with --published the renderer used for published pages. Frontmatter is
stripped when present. Use - to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := readSource(cmd, args[0])
			if err != nil {
				return err
			}
			body := string(src)
			if strings.HasPrefix(body, "---") {
				p, err := content.ParseDocument(src)
				if err != nil {
					return err
				}
				body = p.Content
			}

			if !published {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), markdown.RenderPreview(body))
				return err
			}
			html, err := markdown.NewRenderer(opts.cfg.CodeStyle).Render([]byte(body))
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(html)
			return err
		},
	}
	cmd.Flags().BoolVar(&published, "published", false, "use the published page renderer")
	return cmd
}

func readSource(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
