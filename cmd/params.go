package cmd

import (
	"strings"

	"github.com/jsphweid/rhythmdrill/model"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var figureNames = []string{"quarters", "eighths", "sixteenths", "triplets", "quarterTriplets", "quintuplets", "sextuplets"}

func addParamFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("measures", 4, "number of measures (1-32)")
	f.Int("rest", 20, "rest percentage (0-60)")
	f.StringSlice("time", []string{"4/4"}, "time signatures to draw from: 2/4, 3/4, 4/4, 5/4, 6/4, 7/8")
	f.StringSlice("figures", nil, "figure families: "+strings.Join(figureNames, ", "))
	f.Int("tempo", 100, "tempo in BPM (40-220)")
	f.String("sticking", string(model.Natural), "natural, alternate, doubles or paradiddle")
	f.String("lead", string(model.Right), "lead hand, R or L")
	f.Int64("seed", 0, "random seed, 0 for a fresh one")
	f.Bool("no-sticking", false, "hide sticking")
	f.Bool("no-counts", false, "hide counts")
	f.Bool("no-metronome", false, "disable the metronome")
}

func parseFigures(names []string) (model.Figures, error) {
	var fig model.Figures
	for _, n := range names {
		switch strings.TrimSpace(n) {
		case "quarters":
			fig.Quarters = true
		case "eighths":
			fig.Eighths = true
		case "sixteenths":
			fig.Sixteenths = true
		case "triplets":
			fig.Triplets = true
		case "quarterTriplets":
			fig.QuarterTriplets = true
		case "quintuplets":
			fig.Quintuplets = true
		case "sextuplets":
			fig.Sextuplets = true
		default:
			return fig, errors.Errorf("unknown figure %q", n)
		}
	}
	return fig, nil
}

// paramsFromFlags starts from the config file and applies only the flags the
// user actually set.
func paramsFromFlags(cmd *cobra.Command, base model.Params) (model.Params, error) {
	f := cmd.Flags()
	p := base
	var err error
	if f.Changed("measures") {
		p.Measures, _ = f.GetInt("measures")
	}
	if f.Changed("rest") {
		p.RestPercent, _ = f.GetInt("rest")
	}
	if f.Changed("time") {
		p.TimeSignatures, _ = f.GetStringSlice("time")
		for _, s := range p.TimeSignatures {
			if _, perr := model.ParseTimeSignature(s); perr != nil {
				return p, perr
			}
		}
	}
	if f.Changed("figures") {
		names, _ := f.GetStringSlice("figures")
		if p.Figures, err = parseFigures(names); err != nil {
			return p, err
		}
	}
	if f.Changed("tempo") {
		p.Tempo, _ = f.GetInt("tempo")
	}
	if f.Changed("sticking") {
		s, _ := f.GetString("sticking")
		p.Sticking = model.Strategy(s)
	}
	if f.Changed("lead") {
		s, _ := f.GetString("lead")
		p.LeadHand = model.Hand(strings.ToUpper(s))
	}
	if f.Changed("seed") {
		p.Seed, _ = f.GetInt64("seed")
	}
	if v, _ := f.GetBool("no-sticking"); v {
		p.ShowSticking = false
	}
	if v, _ := f.GetBool("no-counts"); v {
		p.ShowCounts = false
	}
	if v, _ := f.GetBool("no-metronome"); v {
		p.Metronome = false
	}
	return p.Clamp(), nil
}
