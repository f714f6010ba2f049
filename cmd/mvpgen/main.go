package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/toyz/mvpgen/internal/cli"
	"github.com/toyz/mvpgen/internal/config"
	"github.com/toyz/mvpgen/internal/errors"
	"github.com/toyz/mvpgen/internal/host"
	"github.com/toyz/mvpgen/internal/logging"
	"github.com/toyz/mvpgen/internal/mvp"
	"github.com/toyz/mvpgen/internal/utils"
	"github.com/toyz/mvpgen/internal/workspace"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the flags shared by every command
type options struct {
	verbose bool
	quiet   bool
	config  string
	stdout  io.Writer
	stderr  io.Writer
}

func (o *options) diagnostics() *utils.DiagnosticSystem {
	level := utils.DiagnosticInfo
	switch {
	case o.quiet:
		level = utils.DiagnosticError
	case o.verbose:
		level = utils.DiagnosticVerbose
	}
	return utils.NewDiagnosticSystemWithWriters(level, o.stdout, o.stderr)
}

// loadConfig loads --config, or the configuration of the project containing path
func (o *options) loadConfig(path string) (*config.Config, string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	dir := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}
	root := host.FindProjectRoot(dir)

	var cfg *config.Config
	if o.config != "" {
		cfg, err = config.Load(o.config)
	} else {
		cfg, err = config.LoadForProject(root)
	}
	if err != nil {
		return nil, "", err
	}
	return cfg, root, nil
}

func (o *options) logger(cfg *config.Config) (*zap.Logger, error) {
	level := cfg.Logging.Level
	if o.verbose {
		level = "debug"
	}
	return logging.New(level, cfg.Logging.File)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &options{stdout: stdout, stderr: stderr}
	root := newRootCmd(opts)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	reporter := cli.NewDiagnosticReporter(stderr, opts.verbose)
	if stderrors.Is(err, mvp.ErrNotApplicable) {
		reporter.ReportWarning(err.Error())
		return 0
	}
	reporter.ReportError(err)
	return 1
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:           "mvpgen",
		Short:         "Android MVP scaffold generator",
		Long:          "mvpgen generates the View, Presenter and Model classes for an Android Activity or Fragment\nand makes the class implement its View contract.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose output and debug logging")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "Only show errors")
	root.PersistentFlags().StringVar(&opts.config, "config", "", "Configuration file (defaults to <project>/"+config.FileName+")")

	root.AddCommand(
		newInitCmd(opts),
		newGenerateCmd(opts),
		newClassifyCmd(opts),
		newUndoCmd(opts),
		newHistoryCmd(opts),
	)
	return root
}

func newInitCmd(opts *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init [project]",
		Short: "Write the default " + config.FileName + " into the project root",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			abs, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			path := filepath.Join(host.FindProjectRoot(abs), config.FileName)
			if _, err := os.Stat(path); err == nil && !force {
				return errors.New(errors.ConfigurationErrorCode, "configuration already exists").
					WithLocation(errors.SourceLocation{File: path}).
					WithSuggestion("pass --force to overwrite it with the defaults")
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			opts.diagnostics().Success("Wrote %s", path)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration")
	return cmd
}

func newGenerateCmd(opts *options) *cobra.Command {
	var (
		target host.Target
		dryRun bool
	)
	cmd := &cobra.Command{
		Use:   "generate <File.java>",
		Short: "Generate the MVP classes for an Activity or Fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig(args[0])
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			generator := mvp.NewGenerator(logger)
			req := mvp.Request{Path: args[0], Target: target, ConfigPath: opts.config}

			var result *mvp.Result
			if dryRun {
				result, err = generator.Plan(cmd.Context(), req)
			} else {
				result, err = generator.Run(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			printResult(opts.diagnostics(), result)
			return nil
		},
	}
	cmd.Flags().IntVarP(&target.Line, "line", "l", 0, "Caret line selecting the class (1-based)")
	cmd.Flags().StringVarP(&target.ClassName, "class", "c", "", "Name of the class to generate for, e.g. Outer.Inner")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the changes without writing them")
	return cmd
}

func printResult(d *utils.DiagnosticSystem, result *mvp.Result) {
	for _, w := range result.Warnings {
		d.Warn("%s", w)
	}
	d.Section(fmt.Sprintf("mvpgen: %s feature for %s (%s)", displayFeature(result.Feature), result.Class, result.Role))

	if len(result.Changes) == 0 {
		d.Success("Everything is already in place")
		return
	}

	if result.DryRun {
		d.Subsection("Planned changes (dry run)")
	} else {
		d.Subsection("Changes")
	}
	d.Indent()
	counts := map[string]interface{}{}
	for _, c := range result.Changes {
		d.Change(string(c.Action), c.Path)
		n, _ := counts[string(c.Action)].(int)
		counts[string(c.Action)] = n + 1
	}
	d.Unindent()

	if len(result.Mutation.AddedStubs) > 0 {
		d.Subsection("Stubbed methods")
		d.Indent()
		for _, s := range result.Mutation.AddedStubs {
			d.List("%s", s)
		}
		d.Unindent()
	}

	keys := []string{string(workspace.ActionMkdir), string(workspace.ActionCreate), string(workspace.ActionModify)}
	for _, k := range keys {
		if _, ok := counts[k]; !ok {
			counts[k] = 0
		}
	}
	d.Summary("Summary", keys, counts)
	if result.Journal != nil {
		d.Verbose("transaction %s (undo with: mvpgen undo %s)", result.Journal.ID, result.Journal.ID)
	}
}

func displayFeature(feature string) string {
	if feature == "" {
		return "unnamed"
	}
	return feature
}

func newClassifyCmd(opts *options) *cobra.Command {
	var target host.Target
	cmd := &cobra.Command{
		Use:   "classify <File.java>",
		Short: "Show the role and ancestor chain of a class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := opts.loadConfig(args[0])
			if err != nil {
				return err
			}
			logger, err := opts.logger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			result, err := mvp.NewGenerator(logger).Classify(cmd.Context(), mvp.Request{
				Path:       args[0],
				Target:     target,
				ConfigPath: opts.config,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if result.Class == "" {
				fmt.Fprintln(out, "no class selected")
				return nil
			}
			fmt.Fprintf(out, "class:   %s\n", result.Class)
			fmt.Fprintf(out, "role:    %s\n", result.Role)
			if result.Role != mvp.RoleNone {
				fmt.Fprintf(out, "feature: %s\n", displayFeature(result.Feature))
			}
			for i, ref := range result.Chain {
				fmt.Fprintf(out, "  %*s%s\n", i*2, "", ref.Name)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&target.Line, "line", "l", 0, "Caret line selecting the class (1-based)")
	cmd.Flags().StringVarP(&target.ClassName, "class", "c", "", "Name of the class to inspect")
	return cmd
}

func openWorkspace(opts *options, project string) (*workspace.Workspace, *zap.Logger, error) {
	cfg, root, err := opts.loadConfig(project)
	if err != nil {
		return nil, nil, err
	}
	logger, err := opts.logger(cfg)
	if err != nil {
		return nil, nil, err
	}
	return workspace.New(root, cfg.HistoryDir(root), logger), logger, nil
}

func newUndoCmd(opts *options) *cobra.Command {
	var (
		project string
		force   bool
	)
	cmd := &cobra.Command{
		Use:   "undo [transaction-id]",
		Short: "Revert the latest (or the given) generation",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, logger, err := openWorkspace(opts, project)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			journal, err := ws.Undo(id, force)
			if err != nil {
				return err
			}

			d := opts.diagnostics()
			d.Success("Reverted %s", journal.Description)
			d.Indent()
			for i := len(journal.Changes) - 1; i >= 0; i-- {
				d.Change(string(journal.Changes[i].Action), journal.Changes[i].Path)
			}
			d.Unindent()
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", ".", "Any path inside the project")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Revert even if files were changed since")
	return cmd
}

func newHistoryCmd(opts *options) *cobra.Command {
	var project string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generations, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, logger, err := openWorkspace(opts, project)
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			journals, err := ws.History()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(journals) == 0 {
				fmt.Fprintln(out, "no history")
				return nil
			}
			for _, j := range journals {
				state := ""
				if j.Undone() {
					state = " (undone)"
				}
				fmt.Fprintf(out, "%s  %s  %s, %d changes%s\n",
					j.ID, j.Time.Local().Format("2006-01-02 15:04:05"), j.Description, len(j.Changes), state)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&project, "project", "p", ".", "Any path inside the project")
	return cmd
}
