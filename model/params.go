package model

import (
	"github.com/jsphweid/rhythmdrill/constants"
	"github.com/jsphweid/rhythmdrill/util"
)

type Strategy string

const (
	Natural    Strategy = "natural"
	Alternate  Strategy = "alternate"
	Doubles    Strategy = "doubles"
	Paradiddle Strategy = "paradiddle"
)

func (s Strategy) Valid() bool {
	switch s {
	case Natural, Alternate, Doubles, Paradiddle:
		return true
	}
	return false
}

// Figures enables the rhythmic figure families the generator may draw from.
type Figures struct {
	Quarters        bool `json:"allowQuarters" yaml:"quarters"`
	Eighths         bool `json:"allowEighths" yaml:"eighths"`
	Sixteenths      bool `json:"allowSixteenths" yaml:"sixteenths"`
	Triplets        bool `json:"allowTriplets" yaml:"triplets"`
	QuarterTriplets bool `json:"allowQuarterTriplets" yaml:"quarterTriplets"`
	Quintuplets     bool `json:"allowQuintuplets" yaml:"quintuplets"`
	Sextuplets      bool `json:"allowSextuplets" yaml:"sextuplets"`
}

type Params struct {
	Measures       int      `json:"measures" yaml:"measures"`
	RestPercent    int      `json:"restPercent" yaml:"restPercent"`
	TimeSignatures []string `json:"timeSignatures" yaml:"timeSignatures"`
	Figures        `yaml:"figures"`
	Tempo          int      `json:"tempoBpm" yaml:"tempo"`
	Sticking       Strategy `json:"sticking" yaml:"sticking"`
	LeadHand       Hand     `json:"leadHand" yaml:"leadHand"`
	ShowSticking   bool     `json:"showSticking" yaml:"showSticking"`
	ShowCounts     bool     `json:"showCounts" yaml:"showCounts"`
	Metronome      bool     `json:"metronome" yaml:"metronome"`
	Seed           int64    `json:"seed,omitempty" yaml:"seed"`
}

func DefaultParams() Params {
	return Params{
		Measures:       4,
		RestPercent:    20,
		TimeSignatures: []string{"4/4"},
		Figures:        Figures{Quarters: true, Eighths: true, Sixteenths: true, Triplets: true},
		Tempo:          constants.DefaultTempo,
		Sticking:       Natural,
		LeadHand:       Right,
		ShowSticking:   true,
		ShowCounts:     true,
		Metronome:      true,
	}
}

// Clamp forces every field into its valid range. Malformed values are never rejected.
func (p Params) Clamp() Params {
	p.Measures = util.Clamp(p.Measures, constants.MinMeasures, constants.MaxMeasures)
	p.RestPercent = util.Clamp(p.RestPercent, constants.MinRestPercent, constants.MaxRestPercent)
	p.Tempo = util.Clamp(p.Tempo, constants.MinTempo, constants.MaxTempo)
	if !p.Sticking.Valid() {
		p.Sticking = Natural
	}
	if !p.LeadHand.Valid() {
		p.LeadHand = Right
	}
	var sigs []string
	for _, s := range p.TimeSignatures {
		if ts, err := ParseTimeSignature(s); err == nil {
			sigs = append(sigs, ts.String())
		}
	}
	if len(sigs) == 0 {
		sigs = []string{FourFour.String()}
	}
	p.TimeSignatures = sigs
	return p
}

// Signatures returns the parsed enabled meters, falling back to 4/4.
func (p Params) Signatures() []TimeSignature {
	var res []TimeSignature
	for _, s := range p.TimeSignatures {
		if ts, err := ParseTimeSignature(s); err == nil {
			res = append(res, ts)
		}
	}
	if len(res) == 0 {
		res = []TimeSignature{FourFour}
	}
	return res
}
