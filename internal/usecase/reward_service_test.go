package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivesquad/fivesquad/internal/domain/chip"
	"github.com/fivesquad/fivesquad/internal/domain/scoring"
	"github.com/fivesquad/fivesquad/internal/infrastructure/repository/memory"
	"github.com/fivesquad/fivesquad/internal/platform/cache"
	"github.com/fivesquad/fivesquad/internal/platform/rng"
)

type stubRanks struct {
	entries []scoring.LeaderboardEntry
	err     error
}

func (s stubRanks) Leaderboard(context.Context) ([]scoring.LeaderboardEntry, error) {
	return s.entries, s.err
}

func fourRanks() stubRanks {
	return stubRanks{entries: []scoring.LeaderboardEntry{
		{ParticipantID: "part-01", Rank: 1},
		{ParticipantID: "part-02", Rank: 2},
		{ParticipantID: "part-03", Rank: 3},
		{ParticipantID: "part-04", Rank: 4},
	}}
}

func newRewardService(chips *memory.ChipRepository, ranks RankSource, random rng.Source) *RewardService {
	service := NewRewardService(
		chips,
		memory.NewParticipantRepository(memory.SeedParticipants()),
		ranks,
		cache.NewStore(time.Minute),
		random,
		testLogger(),
	)
	service.now = func() time.Time { return time.Date(2026, 6, 20, 10, 0, 0, 0, time.UTC) }

	return service
}

func TestRewardService_CanDraw_DailyGate(t *testing.T) {
	tests := []struct {
		name      string
		grantedAt time.Time
		want      bool
	}{
		{name: "no prior grant", want: true},
		{name: "granted earlier today", grantedAt: time.Date(2026, 6, 20, 0, 15, 0, 0, time.UTC), want: false},
		{name: "granted yesterday just before midnight", grantedAt: time.Date(2026, 6, 19, 23, 59, 0, 0, time.UTC), want: true},
		{name: "granted last month", grantedAt: time.Date(2026, 5, 20, 10, 0, 0, 0, time.UTC), want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chips := memory.NewChipRepository(memory.SeedChips())
			service := newRewardService(chips, fourRanks(), rng.Fixed(0))

			if !tc.grantedAt.IsZero() {
				require.NoError(t, chips.SaveGrant(t.Context(), chip.Grant{
					ParticipantID: "part-01",
					ChipID:        "chip-swap",
					GrantedAt:     tc.grantedAt,
				}))
			}

			allowed, err := service.CanDraw(t.Context(), "part-01")
			require.NoError(t, err)
			assert.Equal(t, tc.want, allowed)
		})
	}
}

func TestRewardService_Draw_RarityWalk(t *testing.T) {
	// rank 1 sits in the top band: legendary 2, epic 8, rare 25, common 65
	tests := []struct {
		name string
		roll int
		want chip.Rarity
	}{
		{name: "roll inside legendary slice", roll: 1, want: chip.RarityLegendary},
		{name: "roll inside epic slice", roll: 9, want: chip.RarityEpic},
		{name: "roll inside rare slice", roll: 34, want: chip.RarityRare},
		{name: "roll lands on common remainder", roll: 99, want: chip.RarityCommon},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			chips := memory.NewChipRepository(memory.SeedChips())
			service := newRewardService(chips, fourRanks(), rng.Fixed(tc.roll, 0))

			result, err := service.Draw(t.Context(), "part-01")
			require.NoError(t, err)
			assert.Equal(t, tc.want, result.Chip.Rarity)
			assert.Equal(t, 1, result.Rank)

			holdings, err := chips.ListInventory(t.Context(), "part-01")
			require.NoError(t, err)
			require.Len(t, holdings, 1)
			assert.Equal(t, result.Chip.ID, holdings[0].ChipID)
			assert.Equal(t, 1, holdings[0].Quantity)
		})
	}
}

func TestRewardService_Draw_BottomBandCatchUp(t *testing.T) {
	// bottom band: legendary 10, epic 20, rare 35, common 35. A roll of 9
	// is legendary for rank 4 but epic for rank 1.
	chips := memory.NewChipRepository(memory.SeedChips())
	service := newRewardService(chips, fourRanks(), rng.Fixed(9, 0))

	result, err := service.Draw(t.Context(), "part-04")
	require.NoError(t, err)
	assert.Equal(t, chip.RarityLegendary, result.Chip.Rarity)
}

func TestRewardService_Draw_FallsBackToCommon(t *testing.T) {
	// no epic definitions in the pool: an epic roll must land on common
	defs := []chip.Chip{
		{ID: "chip-swap", Name: "Tactical Swap", Rarity: chip.RarityCommon, Effect: chip.EffectSwap},
	}
	chips := memory.NewChipRepository(defs)
	service := newRewardService(chips, fourRanks(), rng.Fixed(9, 0))

	result, err := service.Draw(t.Context(), "part-01")
	require.NoError(t, err)
	assert.Equal(t, chip.RarityCommon, result.Chip.Rarity)
}

func TestRewardService_Draw_SecondDrawSameDayRejected(t *testing.T) {
	chips := memory.NewChipRepository(memory.SeedChips())
	service := newRewardService(chips, fourRanks(), rng.Fixed(50, 0))

	_, err := service.Draw(t.Context(), "part-01")
	require.NoError(t, err)

	_, err = service.Draw(t.Context(), "part-01")
	require.ErrorIs(t, err, ErrPreconditionFailed)
}

func TestRewardService_Draw_UnknownParticipant(t *testing.T) {
	chips := memory.NewChipRepository(memory.SeedChips())
	service := newRewardService(chips, fourRanks(), rng.Fixed(0))

	_, err := service.Draw(t.Context(), "part-99")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRewardService_Draw_LeaderboardUnavailable(t *testing.T) {
	chips := memory.NewChipRepository(memory.SeedChips())
	service := newRewardService(chips, stubRanks{err: ErrPreconditionFailed}, rng.Fixed(0))

	_, err := service.Draw(t.Context(), "part-01")
	require.ErrorIs(t, err, ErrPreconditionFailed)
}
