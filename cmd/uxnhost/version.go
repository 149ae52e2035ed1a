package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const currentReleaseVersion = "v0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "print uxnhost's version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(currentReleaseVersion)
	},
}
