package cmd

import (
	"fmt"

	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Inspects an exported exercise",
	Long:  `Prints the tempo, meters and note onsets (in beats) of a MIDI file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "tempo: %.1f\n", midi.Tempo(s))
		for _, m := range midi.Meters(s) {
			fmt.Fprintf(out, "meter: %d/%d at beat %g\n", m.Num, m.Den, m.Beat)
		}
		for _, o := range midi.Onsets(s) {
			kind := "note"
			if midi.IsClick(o) {
				kind = "click"
			}
			fmt.Fprintf(out, "%8.3f  %-5s key %3d vel %3d\n", o.Beat, kind, o.Key, o.Velocity)
		}
		return nil
	},
}
