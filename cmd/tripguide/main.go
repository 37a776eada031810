// Package main provides the entry point for the trip guide service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tripguide",
	Short: "Trip guide generation service",
	Long:  "Tripguide turns trip facts and traveler preferences into a personalized destination guide with dining, attractions, events, weather, and a day-by-day itinerary.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
