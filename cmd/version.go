package cmd

import (
	"runtime/debug"

	"github.com/spf13/cobra"
)

// buildRevision returns the VCS revision stamped into the binary, marking
// builds from a modified tree.
func buildRevision(info *debug.BuildInfo) string {
	var revision, modified string

	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			revision = setting.Value
		case "vcs.modified":
			modified = setting.Value
		}
	}

	if revision != "" && modified == "true" {
		revision += "-dirty"
	}

	return revision
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the muton version",
		Long:  "Print the muton module version, the VCS revision it was built from and the Go version.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			info, ok := debug.ReadBuildInfo()
			if !ok || info.Main.Version == "" {
				cmd.Println("muton version: unknown")
				return
			}

			cmd.Println("muton version\t", info.Main.Version)

			if revision := buildRevision(info); revision != "" {
				cmd.Println("revision\t", revision)
			}

			cmd.Println("go version\t", info.GoVersion)
		},
	}
}

func init() {
	rootCmd.AddCommand(newVersionCmd())
}
