package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "uxnhost [command]",
	Short: "uxnhost is a Uxn/Varvara virtual machine host",
	Long:  "uxnhost is a Uxn/Varvara virtual machine host",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Unknown command. Try `uxnhost help` for more information")
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
