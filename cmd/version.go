package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Build metadata, injected with -ldflags at release time.
var (
	version = "(devel)"
	commit  = ""
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current version",
	Run: func(cmd *cobra.Command, args []string) {
		line := "lernpath " + version
		if commit != "" {
			line += " (" + commit + ")"
		}
		fmt.Printf("%s %s/%s\n", line, runtime.GOOS, runtime.GOARCH)
	},
}
