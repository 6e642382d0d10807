package cmd

import (
	"fmt"

	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

func init() {
	rootCmd.AddCommand(portsCmd)
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Lists MIDI output ports",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		defer gomidi.CloseDriver()
		ports := midi.Ports()
		if len(ports) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no MIDI output ports")
			return
		}
		for i, p := range ports {
			fmt.Fprintf(cmd.OutOrStdout(), "%d: %s\n", i, p)
		}
	},
}
