package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Serve Prometheus metrics",
	Long: `Serve autosave, version history and Go runtime metrics at /metrics
until stopped.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().String("addr", ":9090", "Listen address")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, _ []string) error {
	if metricsServer == nil {
		return errors.New("metrics not configured")
	}

	addr, _ := cmd.Flags().GetString("addr")
	cmd.PrintErrf("Serving metrics on http://%s/metrics\n", displayAddr(addr))
	return metricsServer.Serve(cmd.Context(), addr)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
