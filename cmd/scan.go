package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/domain"
	m "github.com/necromindcom/r36s-duplicate-cleaner/internal/model"
)

// scanCmd represents the scan command.
var scanCmd = newScanCmd()

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [root]",
		Short: "Find duplicate files and report what a clean would delete",
		Long:  scanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Scan(cmd.Context(), scanArgsFromConfig(args))
		},
	}
}

func init() {
	rootCmd.AddCommand(scanCmd)
}

// scanArgsFromConfig assembles the scan arguments from the resolved
// configuration. Flags win over environment variables, which win over
// the config file.
func scanArgsFromConfig(args []string) domain.ScanArgs {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	return domain.ScanArgs{
		Root:     m.Path(root),
		Workers:  viper.GetInt(workersConfigKey),
		MinSize:  viper.GetInt64(minSizeConfigKey),
		SkipDirs: viper.GetStringSlice(skipConfigKey),
		Verify:   viper.GetBool(verifyConfigKey),
		LogFile:  m.Path(viper.GetString(logFileConfigKey)),
		PlanFile: m.Path(viper.GetString(planFileConfigKey)),
	}
}
