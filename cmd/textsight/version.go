package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/okellolabs/textsight/constants"
)

// version is set via -ldflags at release time.
var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the textsight version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("textsight %s\n", version)
	},
}

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List the supported image extensions",
	Run: func(cmd *cobra.Command, args []string) {
		for _, ext := range constants.SupportedExtensions() {
			fmt.Println(ext)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(formatsCmd)
}
