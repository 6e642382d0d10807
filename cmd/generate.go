package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hako/durafmt"
	"github.com/jsphweid/rhythmdrill/drill"
	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/jsphweid/rhythmdrill/notation"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func init() {
	addParamFlags(generateCmd)
	generateCmd.Flags().String("format", "text", "output format: text, lily or json")
	generateCmd.Flags().String("midi", "", "also write a Standard MIDI File to this path")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generates an exercise",
	Long:  `Generates an exercise and prints it as text, LilyPond or JSON.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paramsFromFlags(cmd, cfg.Params)
		if err != nil {
			return err
		}
		d, err := drill.Regenerate(commandContext(cmd), p)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if err := render(cmd.OutOrStdout(), d, format, cfg.Transport.Systems); err != nil {
			return err
		}

		if path, _ := cmd.Flags().GetString("midi"); path != "" {
			if err := writeMidi(path, d); err != nil {
				return err
			}
			logger.Info("wrote midi", "path", path)
		}
		return nil
	},
}

func render(w io.Writer, d *drill.Drill, format string, perLine int) error {
	switch format {
	case "text":
		l, err := notation.Text(d.Exercise, perLine)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, l)
		fmt.Fprintln(w)
		fmt.Fprintln(w, summary(d))
	case "lily":
		src, err := notation.Lily(d.Exercise, d.Params.Tempo)
		if err != nil {
			return err
		}
		fmt.Fprint(w, src)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	default:
		return errors.Errorf("unknown format %q", format)
	}
	return nil
}

func summary(d *drill.Drill) string {
	return fmt.Sprintf("%d measures, %d notes, %s at %d bpm (seed %d)",
		len(d.Exercise.Measures), d.Exercise.NoteCount(),
		durafmt.Parse(d.Duration()).LimitFirstN(2), d.Params.Tempo, d.Params.Seed)
}

func writeMidi(path string, d *drill.Drill) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating midi file")
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = errors.Wrap(cerr, "closing midi file")
		}
	}()
	opts := midi.ExportOptions{Tempo: float64(d.Params.Tempo), Metronome: d.Params.Metronome}
	return midi.Export(d.Exercise, opts, f)
}
