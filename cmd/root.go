// Package cmd provides the root command and CLI setup for dupeclean.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/adapter"
	"github.com/necromindcom/r36s-duplicate-cleaner/internal/controller"
	"github.com/necromindcom/r36s-duplicate-cleaner/internal/domain"
)

var treeWalker adapter.TreeSource
var reportWriter adapter.ReportWriter
var workflow domain.Workflow

var workersFlag int
var minSizeFlag int64
var skipDirsFlag []string
var verifyFlag bool
var logFileFlag string
var planFileFlag string
var plainFlag bool
var logVerboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies. The workflow itself is built per
	// invocation because the UI choice depends on flag state.
	treeWalker = adapter.NewLocalTreeWalker()
	reportWriter = adapter.NewFileReportWriter()
}

const rootLongDescription = `Dupeclean finds byte-identical files in a directory tree and keeps only
the oldest copy of each duplicate set. Files are grouped by size first,
then by a digest of their first kilobytes, and finally by a digest of
their full content, so large trees are scanned with as little I/O as
possible.

Typical use on a handheld's SD card:
  dupeclean scan /media/R36S-SD
  dupeclean clean --trash-dir TRASH_BIN /media/R36S-SD`

const scanLongDescription = `Scan the given root (default: current directory) for duplicate files and
report what a clean would delete. Nothing is removed. The duplicate log
and the machine readable deletion plan can be persisted with --log and
--plan.`

const cleanLongDescription = `Scan the given root like "scan", then delete every duplicate except the
oldest copy of each group. Files are moved into the trash directory
unless --permanent is set. A confirmation prompt is shown before
anything is deleted; --yes skips it.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dupeclean",
		Short: "Duplicate file finder and cleaner",
		Long:  rootLongDescription,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))

			if workflow == nil {
				workflow = buildWorkflow(cmd)
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// buildWorkflow wires the production collaborators. The live TUI is
// only used when stdout is a terminal and plain output was not forced.
func buildWorkflow(cmd *cobra.Command) domain.Workflow {
	interactive := controller.IsTTY(os.Stdout) && !viper.GetBool(plainConfigKey)
	ui := controller.NewUI(cmd, interactive)
	funnel := domain.NewFunnel(treeWalker, ui)

	return domain.NewWorkflow(funnel, ui, reportWriter)
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		IntVarP(
			&workersFlag, workersFlagName, "p",
			viper.GetInt(workersConfigKey),
			"number of parallel digest workers (0 = one per CPU, 1 = sequential)",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(workersFlagName), workersConfigKey)

	cmd.PersistentFlags().Int64Var(&minSizeFlag, minSizeFlagName, viper.GetInt64(minSizeConfigKey), "ignore files smaller than this many bytes")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(minSizeFlagName), minSizeConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&skipDirsFlag, skipFlagName, "x", viper.GetStringSlice(skipConfigKey), "directory basename to skip entirely (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(skipFlagName), skipConfigKey)

	cmd.PersistentFlags().BoolVar(&verifyFlag, verifyFlagName, viper.GetBool(verifyConfigKey), "byte-compare every duplicate group instead of trusting digests")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verifyFlagName), verifyConfigKey)

	cmd.PersistentFlags().StringVarP(&logFileFlag, logFileFlagName, "l", viper.GetString(logFileConfigKey), "write the duplicate log to this file (empty disables)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFileConfigKey)

	cmd.PersistentFlags().StringVar(&planFileFlag, planFileFlagName, viper.GetString(planFileConfigKey), "export the deletion plan as YAML to this file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(planFileFlagName), planFileConfigKey)

	cmd.PersistentFlags().BoolVar(&plainFlag, plainFlagName, viper.GetBool(plainConfigKey), "plain line output instead of the live progress display")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(plainFlagName), plainConfigKey)

	cmd.PersistentFlags().BoolVarP(&logVerboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log debug details to the log file")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := fang.Execute(context.Background(), rootCmd); err != nil {
		os.Exit(1)
	}
}
