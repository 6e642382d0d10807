package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/log"
	"github.com/hako/durafmt"
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/drill"
	"github.com/jsphweid/rhythmdrill/midi"
	"github.com/jsphweid/rhythmdrill/notation"
	"github.com/jsphweid/rhythmdrill/playback"
	"github.com/jsphweid/rhythmdrill/util"
	"github.com/spf13/cobra"
	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // autoregisters driver
)

const (
	cursorInterval = 100 * time.Millisecond
	tempoStep      = 5
)

func init() {
	addParamFlags(playCmd)
	playCmd.Flags().Int("port", -1, "MIDI output port (default from config or MIDI_OUT_PORT)")
	playCmd.Flags().Bool("dry", false, "log emissions instead of sending MIDI")
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Generates an exercise and plays it",
	Long: `Generates an exercise and plays it through a MIDI output with a metronome.

Controls (type and press enter):
  p        pause / resume
  s        stop
  + / -    tempo up / down
  j 0.5    jump to a fraction of the exercise
  m        metronome on / off
  q        quit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := paramsFromFlags(cmd, cfg.Params)
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt)
		defer stop()

		d, err := drill.Regenerate(ctx, p)
		if err != nil {
			return err
		}
		layout, err := notation.Text(d.Exercise, cfg.Transport.Systems)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, layout)
		fmt.Fprintln(out)
		fmt.Fprintln(out, summary(d))

		clock := playback.NewSystemClock()
		var output playback.Output
		if dry, _ := cmd.Flags().GetBool("dry"); dry {
			output = playback.LogOutput{Logger: logger}
		} else {
			defer gomidi.CloseDriver()
			port := cfg.Transport.MidiPort
			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetInt("port")
			}
			if port < 0 {
				port = 0
			}
			mo, err := midi.OpenPort(port, clock, logger)
			if err != nil {
				return err
			}
			defer mo.Close()
			output = mo
		}

		sched := playback.NewScheduler(d.Timeline(), output, playback.Config{
			Clock:     clock,
			Logger:    logger,
			Tempo:     float64(d.Params.Tempo),
			Metronome: d.Params.Metronome,
		})
		if err := sched.Play(); err != nil {
			return err
		}
		defer sched.Stop()

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go control(ctx, cancel, os.Stdin, sched)

		head, err := layout.Playhead()
		if err != nil {
			return err
		}
		playback.Watchdog(ctx, sched, cursorInterval, func(beat float64) {
			fmt.Fprintf(out, "\rbeat %6.2f  col %3.0f  %s   ", beat, head.X(beat),
				durafmt.Parse(time.Duration(beat*60/sched.Snapshot().Tempo*float64(time.Second))).LimitFirstN(1))
		})
		fmt.Fprintln(out)
		return nil
	},
}

// control reads transport commands until ctx is done or the input closes.
func control(ctx context.Context, quit func(), in io.Reader, sched *playback.Scheduler) {
	logger := log.FromContext(ctx)
	debounced := debounce.New(constants.TempoDebounce)
	tempo := sched.Snapshot().Tempo

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "p":
			if sched.State() == playback.Playing {
				sched.Pause()
			} else if err := sched.Play(); err != nil {
				logger.Error("cannot resume", "err", err)
			}
		case "s":
			sched.Stop()
		case "+", "-":
			if fields[0] == "+" {
				tempo += tempoStep
			} else {
				tempo -= tempoStep
			}
			tempo = util.Clamp(tempo, constants.MinTempo, constants.MaxTempo)
			bpm := tempo
			debounced(func() { sched.SetTempo(bpm) })
		case "j":
			if len(fields) < 2 {
				continue
			}
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				logger.Warn("bad jump target", "value", fields[1])
				continue
			}
			sched.Scrub(f)
		case "m":
			on := !sched.Snapshot().Metronome
			sched.SetMetronome(on)
			logger.Info("metronome", "on", on)
		case "q":
			quit()
			return
		}
	}
}
