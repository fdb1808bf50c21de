// Command locpick is a terminal location picker: type a city or zip code,
// move through the suggestions with the arrow keys and press Enter to pick.
// The chosen location is printed to stdout.
package main

import (
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/zerovacancy/zerovacancy/domain/autocomplete"
	"github.com/zerovacancy/zerovacancy/domain/locations"
)

var (
	delay       time.Duration
	maxPerGroup int
	asJSON      bool
)

var rootCmd = &cobra.Command{
	Use:   "locpick",
	Short: "Pick a US city or zip code from the suggestion dataset",
	Args:  cobra.NoArgs,
	RunE:  run,
}

func init() {
	rootCmd.Flags().DurationVar(&delay, "delay", autocomplete.DefaultDelay, "debounce delay between the last keystroke and the search")
	rootCmd.Flags().IntVar(&maxPerGroup, "max", locations.DefaultMaxPerGroup, "maximum suggestions per group")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "print the picked location as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, _ []string) error {
	locs, err := locations.LoadDefault()
	if err != nil {
		return err
	}
	index := locations.NewIndex(locs, locations.WithMaxPerGroup(maxPerGroup))

	m := newModel(index.Filter, autocomplete.WithDelay(delay))
	defer m.Close()

	final, err := tea.NewProgram(m).Run()
	if err != nil {
		return fmt.Errorf("run picker: %w", err)
	}

	picked, ok := final.(model).Picked()
	if !ok {
		return nil
	}
	out, err := formatPick(picked, asJSON)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
