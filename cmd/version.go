package cmd

import (
	"fmt"

	"github.com/alexiusacademia/gobulb/internal/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gobulb",
	Run: func(cmd *cobra.Command, args []string) {
		info := version.Current()
		fmt.Printf("gobulb v%s\n", info.Version)
		fmt.Println("Stress Bulb Analyzer (Boussinesq)")
		fmt.Printf("Commit %s, built %s\n", info.GitCommit, info.BuildTime)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
