package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/trip-guide/internal/job"
	"github.com/jonathan/trip-guide/internal/preferences"
	"github.com/jonathan/trip-guide/internal/types"
)

var (
	genConfigPath string
	genTripPath   string
	genPrefsPath  string
	genOutPath    string
	genWait       time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a guide for one trip end-to-end",
	Long: `Runs the full generation pipeline for a single trip without starting the server.

Trip facts are read from a JSON file; traveler preferences are optional and accepted in any supported shape. The finished guide is written as JSON to stdout or --out.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVar(&genConfigPath, "config", "", "Path to config.json file")
	generateCmd.Flags().StringVarP(&genTripPath, "trip", "t", "", "Path to trip facts JSON file (required)")
	generateCmd.Flags().StringVarP(&genPrefsPath, "prefs", "p", "", "Path to preferences JSON file (optional)")
	generateCmd.Flags().StringVarP(&genOutPath, "out", "o", "", "Write the guide JSON here instead of stdout")
	generateCmd.Flags().DurationVar(&genWait, "wait", 5*time.Minute, "How long to wait for generation to finish")
	_ = generateCmd.MarkFlagRequired("trip")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	cfg, err := loadConfig(genConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	tripData, err := os.ReadFile(genTripPath)
	if err != nil {
		return fmt.Errorf("failed to read trip file: %w", err)
	}
	var facts types.TripFacts
	if err := json.Unmarshal(tripData, &facts); err != nil {
		return fmt.Errorf("failed to parse trip file: %w", err)
	}
	if err := facts.Validate(); err != nil {
		return err
	}

	var rawPrefs []byte
	if genPrefsPath != "" {
		rawPrefs, err = os.ReadFile(genPrefsPath)
		if err != nil {
			return fmt.Errorf("failed to read preferences file: %w", err)
		}
	}
	prefs := preferences.Normalize(rawPrefs)

	a, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.trips.PutTrip(ctx, &facts); err != nil {
		return fmt.Errorf("failed to store trip facts: %w", err)
	}

	if _, _, err := a.manager.Start(ctx, facts.TripID, prefs, false); err != nil {
		return fmt.Errorf("failed to start generation: %w", err)
	}

	snap, err := waitForTerminal(a.manager, facts.TripID, genWait)
	if err != nil {
		return err
	}
	if snap.Status == job.StatusError {
		return fmt.Errorf("generation failed: %s", snap.Error)
	}

	guide, err := a.guides.GetGuide(ctx, facts.TripID)
	if err != nil {
		return fmt.Errorf("failed to load generated guide: %w", err)
	}

	out, err := json.MarshalIndent(guide, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode guide: %w", err)
	}
	if genOutPath != "" {
		if err := os.WriteFile(genOutPath, out, 0644); err != nil {
			return fmt.Errorf("failed to write guide: %w", err)
		}
		fmt.Printf("Guide written to %s\n", genOutPath)
		return nil
	}
	fmt.Println(string(out))
	return nil
}
