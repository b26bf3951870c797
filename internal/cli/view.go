package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/deeptime/pkg/errors"
	"github.com/matzehuels/deeptime/pkg/session"
	"github.com/matzehuels/deeptime/pkg/view"
)

// viewCommand creates the saved view management command.
func (c *CLI) viewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Save, list and delete shareable views",
		Long: `Manage saved views.

A view is a named transform (x, k) with an optional language, stored in the
configured session backend (memory, file, redis or mongo).`,
	}
	cmd.AddCommand(c.viewSaveCommand())
	cmd.AddCommand(c.viewShowCommand())
	cmd.AddCommand(c.viewListCommand())
	cmd.AddCommand(c.viewDeleteCommand())
	cmd.AddCommand(c.viewCleanupCommand())
	return cmd
}

// withStore opens the store, runs fn and closes the store.
func (c *CLI) withStore(cmd *cobra.Command, fn func(context.Context, session.Store) error) error {
	ctx := commandContext(cmd)
	store, err := c.openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, store)
}

func (c *CLI) viewSaveCommand() *cobra.Command {
	var (
		name  string
		query string
		lang  string
		ttl   time.Duration
		t     = view.Identity
	)
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Save a view",
		Example: `  deeptime view save --name dinosaurs --x -1400 --k 8
  deeptime view save --query "k=2.00&x=-140.50"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st := session.FromTransform(t, lang)
			if query != "" {
				parsed, ok := session.ParseStateQuery(query)
				if !ok {
					return errors.New(errors.ErrCodeInvalidTransform, "query %q must carry finite x and k", query)
				}
				st = parsed
			}
			if err := view.Validate(st.Transform()); err != nil {
				return err
			}
			if ttl == 0 {
				ttl = c.cfg.Session.TTL
			}
			return c.withStore(cmd, func(ctx context.Context, store session.Store) error {
				sess := session.New(name, st, ttl)
				if err := store.Set(ctx, sess); err != nil {
					return err
				}
				p := printer{cmd.OutOrStdout()}
				p.success("Saved view %s", StyleHighlight.Render(sess.ID))
				p.detail("%s", st.Query())
				p.nextStep("Render it", appName+" render --view "+sess.ID)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().Float64Var(&t.X, "x", t.X, "view translation in px")
	cmd.Flags().Float64Var(&t.K, "k", t.K, "view scale factor")
	cmd.Flags().StringVar(&query, "query", "", "restore from a query string such as k=2.00&x=-140.50")
	cmd.Flags().StringVar(&lang, "lang", "", "language tag stored with the view")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "expire the view after this long (default from config, 0 keeps it)")
	return cmd
}

func (c *CLI) viewShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a saved view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store session.Store) error {
				sess, err := session.Lookup(ctx, store, args[0])
				if err != nil {
					return err
				}
				p := printer{cmd.OutOrStdout()}
				p.keyValue("ID", sess.ID)
				if sess.Name != "" {
					p.keyValue("Name", sess.Name)
				}
				p.keyValue("Query", sess.State.Query())
				p.keyValue("Created", sess.CreatedAt.Format(time.RFC3339))
				p.keyValue("Updated", sess.UpdatedAt.Format(time.RFC3339))
				if !sess.ExpiresAt.IsZero() {
					p.keyValue("Expires", sess.ExpiresAt.Format(time.RFC3339))
				}
				return nil
			})
		},
	}
}

func (c *CLI) viewListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved views, oldest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store session.Store) error {
				list, err := store.List(ctx)
				if err != nil {
					return err
				}
				p := printer{cmd.OutOrStdout()}
				if len(list) == 0 {
					p.info("No saved views")
					return nil
				}
				rows := make([][]string, 0, len(list))
				for _, s := range list {
					rows = append(rows, []string{s.ID, s.Name, formatFloat(s.State.X), formatFloat(s.State.K), formatRelativeTime(s.UpdatedAt)})
				}
				p.table([]string{"ID", "Name", "X", "K", "Updated"}, rows)
				return nil
			})
		},
	}
}

func (c *CLI) viewDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>...",
		Aliases: []string{"rm"},
		Short:   "Delete saved views",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store session.Store) error {
				p := printer{cmd.OutOrStdout()}
				for _, id := range args {
					if _, err := session.Lookup(ctx, store, id); err != nil {
						return err
					}
					if err := store.Delete(ctx, id); err != nil {
						return err
					}
					p.success("Deleted %s", id)
				}
				return nil
			})
		},
	}
}

func (c *CLI) viewCleanupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove expired views",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withStore(cmd, func(ctx context.Context, store session.Store) error {
				if err := store.Cleanup(ctx); err != nil {
					return err
				}
				printer{cmd.OutOrStdout()}.success("Expired views removed")
				return nil
			})
		},
	}
}

// formatRelativeTime renders t relative to now, e.g. "5m ago".
func formatRelativeTime(t time.Time) string {
	diff := time.Since(t)
	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	case diff < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
