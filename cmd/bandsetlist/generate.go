package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bandsetlist/internal/catalogfile"
	"bandsetlist/internal/setlist"
	"bandsetlist/shared/go/config"
	"bandsetlist/shared/go/models"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Build a setlist from a YAML catalog without a database",
	Example: `  bandsetlist generate --catalog songs.yaml --duration "45 minutes" --event Wedding
  bandsetlist generate --catalog songs.yaml --minutes 20 --json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

var (
	generateCatalog  string
	generateDuration string
	generateMinutes  int
	generateEvent    string
	generateNotes    string
	generateName     string
	generateJSON     bool
)

func init() {
	generateCmd.Flags().StringVar(&generateCatalog, "catalog", "", "path to a YAML song catalog")
	generateCmd.Flags().StringVar(&generateDuration, "duration", "45 minutes", fmt.Sprintf("performance slot, one of: %s", strings.Join(setlist.DurationLabels, ", ")))
	generateCmd.Flags().IntVar(&generateMinutes, "minutes", 0, "explicit slot length in minutes, overrides --duration")
	generateCmd.Flags().StringVar(&generateEvent, "event", "", "event type, e.g. Wedding or Bar Gig")
	generateCmd.Flags().StringVar(&generateNotes, "notes", "", "free-form preferences passed to the model")
	generateCmd.Flags().StringVar(&generateName, "name", "Setlist", "setlist name")
	generateCmd.Flags().BoolVar(&generateJSON, "json", false, "print the setlist as JSON instead of share text")
	_ = generateCmd.MarkFlagRequired("catalog")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadOffline()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	if generateMinutes < 0 {
		return fmt.Errorf("--minutes must not be negative")
	}
	if _, ok := setlist.TargetMinutes(generateDuration); !ok && generateMinutes == 0 {
		return fmt.Errorf("unknown duration %q, expected one of: %s", generateDuration, strings.Join(setlist.DurationLabels, ", "))
	}

	songs, err := catalogfile.Load(generateCatalog)
	if err != nil {
		return err
	}

	engine := newEngine(cfg.Completion, nil)
	result, err := engine.Generate(cmd.Context(), models.GenerationRequest{
		Name:          generateName,
		DurationLabel: generateDuration,
		TargetMinutes: generateMinutes,
		EventType:     generateEvent,
		Notes:         generateNotes,
		Songs:         songs,
	})
	if err != nil {
		return err
	}

	return printSetlist(cmd.OutOrStdout(), result, generateJSON)
}

func printSetlist(w io.Writer, s models.Setlist, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	if _, err := fmt.Fprintln(w, setlist.ShareText(s)); err != nil {
		return err
	}
	for _, skipped := range s.Skipped {
		if _, err := fmt.Fprintf(w, "skipped %q: %s\n", skipped.Song.Title, skipped.Reason); err != nil {
			return err
		}
	}
	return nil
}
