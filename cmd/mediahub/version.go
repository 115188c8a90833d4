package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/mediahub/mediahub/internal/config"
)

func newVersionCmd() *cobra.Command {
	var short bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			if short {
				cmd.Println(config.Version)
				return
			}
			cmd.Printf("mediahub %s (%s/%s, %s)\n", config.Version, runtime.GOOS, runtime.GOARCH, runtime.Version())
		},
	}
	cmd.Flags().BoolVarP(&short, "short", "s", false, "Print only the version string")
	return cmd
}
