package usecase

import "github.com/fivesquad/fivesquad/internal/domain/chip"

// modifierInput is the view one active effect gets when contributing to a
// participant's chipPoints.
type modifierInput struct {
	Effect            chip.Effect
	CaptainBasePoints int
	Shielded          bool
}

type chipModifier func(in modifierInput) float64

// chipModifiers maps each effect type to its scoring contribution. Swap and
// banish act on squads at use time and carry no scoring weight; shield only
// suppresses curses.
var chipModifiers = map[chip.EffectType]chipModifier{
	chip.EffectTripleCaptain: func(in modifierInput) float64 {
		return float64(in.CaptainBasePoints) * in.Effect.Magnitude
	},
	chip.EffectBenchBoost: func(in modifierInput) float64 {
		return in.Effect.Magnitude
	},
	chip.EffectCurse: func(in modifierInput) float64 {
		if in.Shielded {
			return 0
		}
		return -in.Effect.Magnitude
	},
	chip.EffectShield: func(modifierInput) float64 { return 0 },
	chip.EffectSwap:   func(modifierInput) float64 { return 0 },
	chip.EffectBanish: func(modifierInput) float64 { return 0 },
}

func chipPointsFor(effects []chip.Effect, captainBasePoints int) float64 {
	shielded := false
	for _, e := range effects {
		if e.ChipType == chip.EffectShield {
			shielded = true
			break
		}
	}

	var total float64
	for _, e := range effects {
		modifier, ok := chipModifiers[e.ChipType]
		if !ok {
			continue
		}
		total += modifier(modifierInput{
			Effect:            e,
			CaptainBasePoints: captainBasePoints,
			Shielded:          shielded,
		})
	}

	return total
}
