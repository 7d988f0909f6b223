package cli

import (
	"errors"
	"sort"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kbrag/internal/core/domain"
)

var healthJSON bool

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the vector cluster and the LLM",
	Long: `Pings the vector-search cluster and the LLM and reports their status.
Exits non-zero when either is unreachable or not configured.`,
	Args: cobra.NoArgs,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "output status as JSON")
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	status := rt.Health().Check(cmd.Context())

	if healthJSON {
		if err := outputJSON(cmd, status); err != nil {
			return err
		}
	} else {
		cmd.Printf("Status: %s\n", status.Status)
		names := make([]string, 0, len(status.Services))
		for name := range status.Services {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cmd.Printf("  %-12s %s\n", name, status.Services[name])
		}
	}

	if status.Status != domain.StatusHealthy {
		if status.Error == "" {
			return errors.New("unhealthy")
		}
		return errors.New(status.Error)
	}
	return nil
}
