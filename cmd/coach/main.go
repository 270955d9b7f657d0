package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"agentcoach/internal/bootstrap"
	reflectiondto "agentcoach/internal/modules/reflection/dto"
	sessioninadapter "agentcoach/internal/modules/session/adapter/in"
	sessiondto "agentcoach/internal/modules/session/dto"
	"agentcoach/internal/platform/config"
	"agentcoach/internal/ui/theme"
	sessionsview "agentcoach/internal/ui/views/sessions"
)

const banner = "=================================================="

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts config.Options

	root := &cobra.Command{
		Use:           "coach",
		Short:         "Agent learning coach: log coding sessions and reflect on them",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.Root, "root", "", "coach directory (default $COACH_ROOT or ~/.agent-coach)")
	root.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default <root>/config.yaml)")

	root.AddCommand(newInitCmd(&opts))
	root.AddCommand(newLogCmd(&opts))
	root.AddCommand(newSessionCmd(&opts))
	root.AddCommand(newReflectCmd(&opts))
	root.AddCommand(newReindexCmd(&opts))
	root.AddCommand(newTUICmd(&opts))
	return root
}

func loadApp(opts config.Options) (*bootstrap.App, error) {
	cfg, err := config.Load(opts)
	if err != nil {
		return nil, err
	}
	return bootstrap.New(cfg)
}

// withApp loads the app for one command run and releases it afterwards.
func withApp(opts *config.Options, run func(app *bootstrap.App) error) error {
	app, err := loadApp(*opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return run(app)
}

func newInitCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the coach directory with starter documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.WorkspaceCLI.Init(context.Background())
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				for _, entry := range out.Entries {
					mark := theme.MarkOK
					if entry.Status == "exists" {
						mark = theme.MarkNote
					}
					_, _ = fmt.Fprintf(w, "%s %-8s %s\n", mark, entry.Status, filepath.Join(out.Root, entry.Path))
				}
				_, _ = fmt.Fprintf(w, "\nAgent learning coach initialized at %s\n", out.Root)
				_, _ = fmt.Fprintln(w, "\nNext steps:")
				_, _ = fmt.Fprintf(w, "1. Edit %s with your details\n", filepath.Join(out.Root, "profile.md"))
				_, _ = fmt.Fprintln(w, "2. Log decisions and outcomes while you work: coach log ...")
				_, _ = fmt.Fprintln(w, "3. Run coach reflect after sessions to update patterns")
				return nil
			})
		},
	}
}

func newLogCmd(opts *config.Options) *cobra.Command {
	logCmd := &cobra.Command{Use: "log", Short: "Append records to today's session"}

	var reasoning string
	decisionCmd := &cobra.Command{
		Use:   "decision <category> <decision>",
		Short: "Log a key decision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.LogDecision(context.Background(), args[0], args[1], reasoning)
				if err != nil {
					return err
				}
				printRecord(cmd.OutOrStdout(), theme.MarkNote, "decision", out)
				return nil
			})
		},
	}
	decisionCmd.Flags().StringVar(&reasoning, "reasoning", "", "why this decision was made")

	outcomeCmd := &cobra.Command{
		Use:   "outcome <success|failure> <description>",
		Short: "Log an outcome",
		Args:  cobra.ExactArgs(2),
	}
	outcomeCtx := bindContextFlags(outcomeCmd)
	outcomeCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return logOutcome(cmd, opts, args[0], args[1], outcomeCtx)
	}

	logCmd.AddCommand(decisionCmd, outcomeCmd)
	for _, result := range []string{sessiondto.ResultSuccess, sessiondto.ResultFailure} {
		result := result
		shorthand := &cobra.Command{
			Use:   result + " <description>",
			Short: "Log a " + result + " outcome",
			Args:  cobra.ExactArgs(1),
		}
		flags := bindContextFlags(shorthand)
		shorthand.RunE = func(cmd *cobra.Command, args []string) error {
			return logOutcome(cmd, opts, result, args[0], flags)
		}
		logCmd.AddCommand(shorthand)
	}

	logCmd.AddCommand(&cobra.Command{
		Use:   "note <text>",
		Short: "Log an observation",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.LogNote(context.Background(), strings.Join(args, " "))
				if err != nil {
					return err
				}
				printRecord(cmd.OutOrStdout(), theme.MarkNote, "note", out)
				return nil
			})
		},
	})

	var original, revised, improvement string
	iterationCmd := &cobra.Command{
		Use:   "iteration",
		Short: "Log a prompt improvement iteration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.LogPromptIteration(context.Background(), original, revised, improvement)
				if err != nil {
					return err
				}
				printRecord(cmd.OutOrStdout(), theme.MarkNote, "prompt iteration", out)
				return nil
			})
		},
	}
	iterationCmd.Flags().StringVar(&original, "original", "", "the original prompt or a summary of it")
	iterationCmd.Flags().StringVar(&revised, "revised", "", "the improved prompt or a summary of it")
	iterationCmd.Flags().StringVar(&improvement, "improvement", "", "what was improved")
	_ = iterationCmd.MarkFlagRequired("improvement")
	logCmd.AddCommand(iterationCmd)

	var day string
	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "Print record counts for a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Summary(context.Background(), day)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), out.Summary)
			})
		},
	}
	summaryCmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today)")
	logCmd.AddCommand(summaryCmd)

	return logCmd
}

type contextFlags struct {
	pairs []string
	json  string
}

func bindContextFlags(cmd *cobra.Command) *contextFlags {
	flags := &contextFlags{}
	cmd.Flags().StringArrayVar(&flags.pairs, "context", nil, "context entry as key=value (repeatable)")
	cmd.Flags().StringVar(&flags.json, "context-json", "", "context as a JSON object")
	return flags
}

func logOutcome(cmd *cobra.Command, opts *config.Options, result, description string, flags *contextFlags) error {
	outcomeContext, err := sessioninadapter.ParseContext(flags.pairs, flags.json)
	if err != nil {
		return err
	}
	return withApp(opts, func(app *bootstrap.App) error {
		out, err := app.SessionCLI.LogOutcome(context.Background(), result, description, outcomeContext)
		if err != nil {
			return err
		}
		mark := theme.MarkOK
		if out.Result == sessiondto.ResultFailure {
			mark = theme.MarkFail
		}
		printRecord(cmd.OutOrStdout(), mark, "outcome", out)
		return nil
	})
}

func printRecord(w io.Writer, mark, kind string, out sessiondto.RecordOutput) {
	_, _ = fmt.Fprintf(w, "%s Logged %s: %s\n", mark, kind, out.Label)
	_, _ = fmt.Fprintln(w, theme.Muted.Render("  "+out.Day+"  "+sessionsview.SummaryLine(out.Summary)))
}

func newSessionCmd(opts *config.Options) *cobra.Command {
	session := &cobra.Command{Use: "session", Short: "Inspect session documents"}

	var day string
	var raw bool
	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show every record of a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.SessionCLI.Show(context.Background(), day)
				if err != nil {
					return err
				}
				if raw {
					return writeJSON(cmd.OutOrStdout(), out.Document)
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), sessionsview.RenderDocument(out.Document, nil))
				return nil
			})
		},
	}
	showCmd.Flags().StringVar(&day, "day", "", "day as YYYY-MM-DD (default today)")
	showCmd.Flags().BoolVar(&raw, "json", false, "print the stored JSON document")
	session.AddCommand(showCmd)
	return session
}

func newReflectCmd(opts *config.Options) *cobra.Command {
	var maxAgeDays, maxCount int
	var save, promptOnly bool

	reflect := &cobra.Command{
		Use:   "reflect",
		Short: "Render the reflection prompt from recent sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				if !cmd.Flags().Changed("max-age-days") {
					maxAgeDays = app.Config.Reflect.MaxAgeDays
				}
				if !cmd.Flags().Changed("max-count") {
					maxCount = app.Config.Reflect.MaxCount
				}
				out, err := app.ReflectionCLI.Reflect(context.Background(), maxAgeDays, maxCount, save)
				if err != nil {
					return err
				}
				if promptOnly {
					_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Prompt)
					return nil
				}
				printReflection(cmd.OutOrStdout(), cmd.ErrOrStderr(), app.Config.Root, out)
				return nil
			})
		},
	}
	reflect.Flags().IntVar(&maxAgeDays, "max-age-days", 0, "only sessions from the last N days; 0 disables the cutoff (default from config)")
	reflect.Flags().IntVar(&maxCount, "max-count", 0, "at most N sessions (default from config)")
	reflect.Flags().BoolVar(&save, "save", false, "archive the prompt under reflections/ and record it in history")
	reflect.Flags().BoolVar(&promptOnly, "prompt-only", false, "print only the prompt")

	var limit int
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List archived reflections, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ReflectionCLI.History(context.Background(), limit)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				if len(out.Runs) == 0 {
					_, _ = fmt.Fprintln(w, "no reflections archived")
					return nil
				}
				for _, run := range out.Runs {
					_, _ = fmt.Fprintf(w, "%s  %s  sessions=%d skipped=%d  %s\n",
						run.ID, run.CreatedAt.Local().Format("2006-01-02 15:04"), run.SessionCount, run.SkippedCount, run.Path)
				}
				return nil
			})
		},
	}
	historyCmd.Flags().IntVar(&limit, "limit", 20, "number of runs to list")

	showCmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print an archived reflection prompt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ReflectionCLI.Show(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprint(cmd.OutOrStdout(), out.Prompt)
				return nil
			})
		},
	}

	reflect.AddCommand(historyCmd, showCmd)
	return reflect
}

func printReflection(w, errW io.Writer, root string, out reflectiondto.ReflectOutput) {
	for _, skipped := range out.Skipped {
		_, _ = fmt.Fprintf(errW, "%s skipped %s: %s\n", theme.MarkWarn, skipped.Name, skipped.Reason)
	}
	_, _ = fmt.Fprintf(w, "Loaded %d recent sessions\n\n", out.SessionCount)
	_, _ = fmt.Fprintln(w, banner)
	_, _ = fmt.Fprintln(w, "REFLECTION PROMPT")
	_, _ = fmt.Fprintln(w, banner)
	_, _ = fmt.Fprint(w, "\nCopy this prompt to your assistant for analysis:\n\n")
	_, _ = fmt.Fprintln(w, out.Prompt)
	_, _ = fmt.Fprintln(w, banner)
	_, _ = fmt.Fprintln(w, "\nAfter the analysis, update by hand:")
	for _, rel := range out.Checklist {
		_, _ = fmt.Fprintf(w, "  - %s\n", filepath.Join(root, filepath.FromSlash(rel)))
	}
	if out.Run != nil {
		_, _ = fmt.Fprintf(w, "\n%s Archived as %s\n", theme.MarkOK, out.Run.Path)
	}
}

func newReindexCmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "reindex",
		Short: "Rebuild reflection history from archived notes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(opts, func(app *bootstrap.App) error {
				out, err := app.ReflectionCLI.Reindex(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d reflections\n", out.Indexed)
				return nil
			})
		},
	}
}

func newTUICmd(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse sessions and reflections in the terminal",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return withApp(opts, bootstrap.RunTUI)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
