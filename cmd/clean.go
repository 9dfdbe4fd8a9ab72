package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/necromindcom/r36s-duplicate-cleaner/internal/domain"
)

var cleanAssumeYesFlag bool
var cleanPermanentFlag bool
var cleanTrashDirFlag string

// cleanCmd represents the clean command.
var cleanCmd = newCleanCmd()

func newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean [root]",
		Short: "Delete every duplicate except the oldest copy of each group",
		Long:  cleanLongDescription,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return workflow.Clean(cmd.Context(), domain.CleanArgs{
				ScanArgs:  scanArgsFromConfig(args),
				AssumeYes: viper.GetBool(yesConfigKey),
				Permanent: viper.GetBool(permanentConfigKey),
				TrashDir:  viper.GetString(trashDirConfigKey),
			})
		},
	}

	configureCleanFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(cleanCmd)
}

func configureCleanFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&cleanAssumeYesFlag, yesFlagName, "y", viper.GetBool(yesConfigKey), "delete without asking for confirmation")
	bindFlagToConfig(cmd.Flags().Lookup(yesFlagName), yesConfigKey)

	cmd.Flags().BoolVar(&cleanPermanentFlag, permanentFlagName, viper.GetBool(permanentConfigKey), "remove files permanently instead of moving them to the trash directory")
	bindFlagToConfig(cmd.Flags().Lookup(permanentFlagName), permanentConfigKey)

	cmd.Flags().StringVar(&cleanTrashDirFlag, trashDirFlagName, viper.GetString(trashDirConfigKey), "trash directory for recoverable deletes (relative paths anchor at the scan root)")
	bindFlagToConfig(cmd.Flags().Lookup(trashDirFlagName), trashDirConfigKey)
}
