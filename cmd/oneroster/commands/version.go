package commands

import (
	"github.com/fivetwenty-io/oneroster/internal/constants"
	"github.com/spf13/cobra"
)

// VersionInfo describes the CLI build.
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit"  yaml:"commit"`
	Built   string `json:"built"   yaml:"built"`
	Library string `json:"library" yaml:"library"`
}

// NewVersionCommand creates the version command.
func NewVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the OneRoster CLI",
		RunE: func(cmd *cobra.Command, args []string) error {
			info := VersionInfo{
				Version: version,
				Commit:  commit,
				Built:   date,
				Library: constants.ClientName + "/" + constants.ClientVersion,
			}

			rows := [][]string{
				{"Version", info.Version},
				{"Commit", info.Commit},
				{"Built", info.Built},
				{"Library", info.Library},
			}

			return render(cmd.OutOrStdout(), info, []string{"Property", "Value"}, rows)
		},
	}
}
