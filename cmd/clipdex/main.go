package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:           "clipdex",
	Short:         "Keyphrase → video association service",
	Long:          "clipdex stores (phrase, video) associations taught by trusted owners\nand answers free-text queries with ranked matching videos.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clipdex version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("clipdex", version)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(ownerCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// A local .env is a convenience for development; absence is fine.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		printError("%v", err)
		os.Exit(1)
	}
}
