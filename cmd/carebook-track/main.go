// Command carebook-track follows the live location of one booking from a
// terminal. It polls the booking status and keeps a tracking listener
// subscribed while the caregiver is en route or on site.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "carebook-track",
	Short: "Follow a booking's caregiver location and geofence alerts",
	Long: `Follow the live location of a booking.

The command polls the booking until its status is en_route or in_progress,
then subscribes to the booking's live channel and prints every position
update and geofence alert as one JSON line.`,
	SilenceUsage: true,
	RunE:         runTrack,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&opts.server, "server", "http://localhost:8080", "API base URL")
	flags.StringVar(&opts.token, "token", os.Getenv("CAREBOOK_TOKEN"), "bearer token (defaults to $CAREBOOK_TOKEN)")
	flags.StringVar(&opts.booking, "booking", "", "booking id to follow")
	flags.DurationVar(&opts.interval, "interval", defaultInterval, "status poll interval")
	flags.BoolVar(&opts.keepAlerts, "keep-alerts", false, "do not auto-dismiss alerts")
	flags.BoolVar(&opts.verbose, "verbose", false, "log connection details")
	_ = rootCmd.MarkFlagRequired("booking")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
