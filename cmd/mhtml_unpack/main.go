// Package main provides the entry point for the MHTML unpack CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "mhtml_unpack",
	Short: "MHTML archive converter",
	Long:  "mhtml_unpack repacks multipart MIME web-page archives into single self-contained HTML documents, either inlining resources as data URIs or extracting them into a content-addressed blob directory.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
