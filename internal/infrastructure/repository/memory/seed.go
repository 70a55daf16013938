package memory

import (
	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/participant"
	"github.com/fivesquad/fivesquad/internal/domain/player"
)

// Seed data for local runs and tests: a four-participant league with an open
// player pool large enough for every squad shape.

func SeedParticipants() []participant.Participant {
	return []participant.Participant{
		{ID: "part-01", Name: "Alex"},
		{ID: "part-02", Name: "Brook"},
		{ID: "part-03", Name: "Casey"},
		{ID: "part-04", Name: "Dana"},
	}
}

func SeedPlayers() []player.Player {
	specs := []struct {
		id       string
		name     string
		position player.Position
		season   int
	}{
		{"pl-gk-01", "Iker Mahrez", player.PositionGoalkeeper, 58},
		{"pl-gk-02", "Tomas Vrget", player.PositionGoalkeeper, 44},
		{"pl-gk-03", "Sam Duric", player.PositionGoalkeeper, 39},
		{"pl-gk-04", "Lev Arteaga", player.PositionGoalkeeper, 31},
		{"pl-def-01", "Mats Okafor", player.PositionDefender, 72},
		{"pl-def-02", "Rio Tanaka", player.PositionDefender, 65},
		{"pl-def-03", "Jon Petrov", player.PositionDefender, 61},
		{"pl-def-04", "Ade Lindgren", player.PositionDefender, 54},
		{"pl-def-05", "Noa Brandt", player.PositionDefender, 49},
		{"pl-def-06", "Kai Moreau", player.PositionDefender, 42},
		{"pl-mid-01", "Luka Deniz", player.PositionMidfielder, 91},
		{"pl-mid-02", "Eli Santos", player.PositionMidfielder, 84},
		{"pl-mid-03", "Oto Kargbo", player.PositionMidfielder, 78},
		{"pl-mid-04", "Ben Aziz", player.PositionMidfielder, 70},
		{"pl-mid-05", "Tim Rask", player.PositionMidfielder, 66},
		{"pl-mid-06", "Gus Ibarra", player.PositionMidfielder, 59},
		{"pl-mid-07", "Ivo Jensen", player.PositionMidfielder, 51},
		{"pl-mid-08", "Ray Fofana", player.PositionMidfielder, 47},
		{"pl-fwd-01", "Max Haller", player.PositionForward, 102},
		{"pl-fwd-02", "Nic Abara", player.PositionForward, 95},
		{"pl-fwd-03", "Zed Kumar", player.PositionForward, 88},
		{"pl-fwd-04", "Art Nowak", player.PositionForward, 74},
		{"pl-fwd-05", "Oli Baptiste", player.PositionForward, 63},
		{"pl-fwd-06", "Ren Castillo", player.PositionForward, 55},
	}

	players := make([]player.Player, 0, len(specs))
	for _, s := range specs {
		players = append(players, player.Player{
			ID:           s.id,
			Name:         s.name,
			Position:     s.position,
			SeasonPoints: s.season,
		})
	}

	return players
}

func SeedChips() []chip.Chip {
	return []chip.Chip{
		{ID: "chip-swap", Name: "Tactical Swap", Rarity: chip.RarityCommon, Effect: chip.EffectSwap, Magnitude: 0},
		{ID: "chip-shield", Name: "Iron Shield", Rarity: chip.RarityCommon, Effect: chip.EffectShield, Magnitude: 0},
		{ID: "chip-banish", Name: "Banishment", Rarity: chip.RarityRare, Effect: chip.EffectBanish, Magnitude: 0},
		{ID: "chip-bench-boost", Name: "Bench Boost", Rarity: chip.RarityRare, Effect: chip.EffectBenchBoost, Magnitude: 6},
		{ID: "chip-curse", Name: "Hex", Rarity: chip.RarityEpic, Effect: chip.EffectCurse, Magnitude: 5},
		{ID: "chip-triple-captain", Name: "Triple Captain", Rarity: chip.RarityLegendary, Effect: chip.EffectTripleCaptain, Magnitude: 1},
	}
}
