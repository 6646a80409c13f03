package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	sitecontent "github.com/goliatone/go-sitecontent"
	"github.com/goliatone/go-sitecontent/content"
	"github.com/goliatone/go-sitecontent/internal/util"
	"github.com/goliatone/go-sitecontent/internal/validation"
)

type rootOptions struct {
	contentDir  string
	environment string
	useDatabase bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "sitecontent",
		Short:         "Bilingual site content: read, edit and audit pages",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.contentDir, "content-dir", "", "content directory (overrides SITE_CONTENT_DIR)")
	root.PersistentFlags().StringVar(&opts.environment, "env", "", "environment (overrides SITE_ENV)")
	root.PersistentFlags().BoolVar(&opts.useDatabase, "use-database", false, "read content from the database (overrides SITE_USE_DATABASE)")

	root.AddCommand(
		newServeCmd(opts),
		newGetCmd(opts),
		newSaveCmd(opts),
		newHistoryCmd(opts),
		newDiffCmd(opts),
		newLinksCmd(opts),
		newValidateCmd(),
		newMigrateCmd(opts),
	)
	return root
}

func (o *rootOptions) config(cmd *cobra.Command) (sitecontent.Config, error) {
	cfg, err := sitecontent.ConfigFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.Content.Dir = util.FirstNonEmpty(strings.TrimSpace(o.contentDir), cfg.Content.Dir)
	cfg.Environment = util.FirstNonEmpty(strings.TrimSpace(o.environment), cfg.Environment)
	if cmd.Flags().Changed("use-database") {
		cfg.Content.UseDatabase = o.useDatabase
	}
	return cfg, nil
}

func (o *rootOptions) module(cmd *cobra.Command) (*sitecontent.Module, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	return sitecontent.New(cfg)
}

func parseLocale(value string) (content.Language, error) {
	locale, ok := content.ParseLanguage(value)
	if !ok {
		return "", fmt.Errorf("%w: %q", content.ErrUnknownLanguage, value)
	}
	return locale, nil
}

func printJSON(w io.Writer, payload any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the content and admin HTTP APIs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if module.Container().Config.Content.Watch {
				go func() {
					if err := module.WatchContent(ctx); err != nil {
						module.Logger("site.content.watch").Error("content watcher stopped", "error", err)
					}
				}()
			}
			return module.Serve(ctx)
		},
	}
}

func newGetCmd(opts *rootOptions) *cobra.Command {
	var locale string
	cmd := &cobra.Command{
		Use:   "get <pageId>",
		Short: "Print a validated page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := parseLocale(locale)
			if err != nil {
				return err
			}
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()
			page, err := module.GetContent(cmd.Context(), args[0], lang)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), page)
		},
	}
	cmd.Flags().StringVar(&locale, "locale", string(content.DefaultLanguage), "locale (en or es)")
	return cmd
}

func newSaveCmd(opts *rootOptions) *cobra.Command {
	var locale, author, comment string
	var raw bool
	cmd := &cobra.Command{
		Use:   "save <pageId> <field> <value>",
		Short: "Patch one field through the admin pipeline",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()

			var value any = args[2]
			if raw {
				if err := json.Unmarshal([]byte(args[2]), &value); err != nil {
					return fmt.Errorf("decode value: %w", err)
				}
			}
			err = module.ExecuteSaveField(cmd.Context(), sitecontent.SaveContentFieldCommand{
				PageID:  args[0],
				Field:   args[1],
				Value:   value,
				Locale:  locale,
				Author:  author,
				Comment: comment,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s %s (%s)\n", args[0], args[1], locale)
			return nil
		},
	}
	cmd.Flags().StringVar(&locale, "locale", string(content.DefaultLanguage), "locale of the edited text")
	cmd.Flags().StringVar(&author, "author", "", "author recorded in history")
	cmd.Flags().StringVar(&comment, "comment", "", "comment recorded in history")
	cmd.Flags().BoolVar(&raw, "json", false, "treat value as JSON instead of a plain string")
	return cmd
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "history <pageId>",
		Short: "List recorded versions of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()
			history, err := module.Versions().GetHistory(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, entry := range history.Versions {
				fmt.Fprintf(out, "v%d\t%s\t%s\t%s\n", entry.Version, content.FormatTimestamp(entry.Timestamp), entry.Author, entry.Comment)
			}
			return nil
		},
	}
}

func newDiffCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "diff <pageId> <from> <to>",
		Short: "Compare the content of two versions",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("from: %w", err)
			}
			to, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("to: %w", err)
			}
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()
			diff, err := module.Versions().GetVersionDiff(cmd.Context(), args[0], from, to)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), diff)
		},
	}
}

func newLinksCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "links <pageId>...",
		Short: "Report broken links in pages",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			module, err := opts.module(cmd)
			if err != nil {
				return err
			}
			defer module.Close()
			out := cmd.OutOrStdout()
			broken := 0
			for _, pageID := range args {
				page, err := module.Content().GetFresh(cmd.Context(), pageID, content.DefaultLanguage)
				if err != nil {
					return err
				}
				result := module.ValidateLinks(page.Content)
				for _, invalid := range result.InvalidLinks {
					warning := content.LinkIntegrityWarning{PageID: pageID, InvalidLink: invalid}
					fmt.Fprintln(out, warning.String())
					broken++
				}
			}
			if broken > 0 {
				return fmt.Errorf("%d broken link(s)", broken)
			}
			fmt.Fprintln(out, "all links valid")
			return nil
		},
	}
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check page JSON files against the content schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				raw, err := validation.DecodeRaw(data)
				if err != nil {
					fmt.Fprintf(out, "%s: %v\n", path, err)
					failed++
					continue
				}
				result := sitecontent.SafeValidate(raw)
				if result.Success {
					fmt.Fprintf(out, "%s: ok\n", path)
					continue
				}
				failed++
				for _, issue := range result.Issues {
					fmt.Fprintf(out, "%s: %s\n", path, issue.String())
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d invalid file(s)", failed)
			}
			return nil
		},
	}
}

func newMigrateCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the page_content and content_versions tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.config(cmd)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			db, err := sitecontent.OpenDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := sitecontent.Migrate(ctx, db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
