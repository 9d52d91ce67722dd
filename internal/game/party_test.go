package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

// stubRoller walks a fixed sequence of draws, then repeats min
type stubRoller struct {
	values []int
	idx    int
}

func (s *stubRoller) NextInt(min, max int) int {
	if s.idx >= len(s.values) {
		return min
	}
	v := s.values[s.idx]
	s.idx++
	return v
}

func newTestParty(rng *stubRoller, recorder *EventRecorder) *Party {
	var randomizer interfaces.Randomizer
	if rng != nil {
		randomizer = rng
	}
	var events interfaces.EventPublisher
	if recorder != nil {
		events = recorder
	}
	return NewParty(types.PartyDef{
		Name: "Silver Hawks",
		Stats: map[types.StatKind]int{
			types.StatExploration: 15,
			types.StatCombat:      10,
			types.StatAdmin:       1,
		},
		Loyalty: 100,
	}, randomizer, events, zap.NewNop())
}

func TestEffectiveStat(t *testing.T) {
	party := newTestParty(nil, nil)

	// Test case 1: No equipment, base value
	assert.Equal(t, 15, party.EffectiveStat(types.StatExploration))

	// Test case 2: Bonuses sum linearly before the single final clamp
	party.AddEquipment(NewEquipment(types.EquipmentDef{
		Name:        "Climbing Gear",
		Cost:        50,
		StatBonuses: map[types.StatKind]int{types.StatExploration: 3},
	}))
	party.AddEquipment(NewEquipment(types.EquipmentDef{
		Name:        "Map Case",
		Cost:        20,
		StatBonuses: map[types.StatKind]int{types.StatExploration: 4},
	}))
	assert.Equal(t, 20, party.EffectiveStat(types.StatExploration)) // 15+3+4 clamps

	// Test case 3: Kind with no bonuses is untouched
	assert.Equal(t, 10, party.EffectiveStat(types.StatCombat))
}

func TestMeetsRequirements(t *testing.T) {
	party := newTestParty(nil, nil)

	assert.True(t, party.MeetsRequirements(map[types.StatKind]int{
		types.StatExploration: 10,
		types.StatCombat:      10,
	}))
	assert.False(t, party.MeetsRequirements(map[types.StatKind]int{
		types.StatAdmin: 5,
	}))

	// Empty requirement map is vacuously satisfied
	assert.True(t, party.MeetsRequirements(nil))
}

func TestCalculateSuccessRate(t *testing.T) {
	party := newTestParty(nil, nil)

	// Test case 1: Nil quest scores zero
	assert.Equal(t, 0.0, party.CalculateSuccessRate(nil))

	// Test case 2: Quest without required stats scores zero
	empty := NewQuest(types.QuestDef{Name: "Errand", Difficulty: 1, Duration: 1}, nil, zap.NewNop())
	assert.Equal(t, 0.0, party.CalculateSuccessRate(empty))

	// Test case 3: Fully capable party at loyalty 100 hits 1.0
	quest := NewQuest(types.QuestDef{
		Name:       "Scout the Pass",
		Difficulty: 2,
		Duration:   3,
		RequiredStats: map[types.StatKind]int{
			types.StatExploration: 10,
			types.StatCombat:      5,
		},
	}, nil, zap.NewNop())
	assert.InDelta(t, 1.0, party.CalculateSuccessRate(quest), 1e-9)

	// Test case 4: Zero loyalty halves the capability-derived rate
	party.Loyalty = 0
	assert.InDelta(t, 0.5, party.CalculateSuccessRate(quest), 1e-9)

	// Test case 5: Shortfall scales the base rate
	party.Loyalty = 100
	hard := NewQuest(types.QuestDef{
		Name:       "Hold the Keep",
		Difficulty: 2,
		Duration:   3,
		RequiredStats: map[types.StatKind]int{
			types.StatCombat: 20,
		},
	}, nil, zap.NewNop())
	assert.InDelta(t, 0.5, party.CalculateSuccessRate(hard), 1e-9) // 10/20

	// Test case 6: Requirements summing to zero give base rate 1.0, still
	// scaled by loyalty
	trivial := NewQuest(types.QuestDef{
		Name:       "Show the Flag",
		Difficulty: 1,
		Duration:   1,
		RequiredStats: map[types.StatKind]int{
			types.StatCombat: 0,
		},
	}, nil, zap.NewNop())
	assert.InDelta(t, 1.0, party.CalculateSuccessRate(trivial), 1e-9)
	party.Loyalty = 0
	assert.InDelta(t, 0.5, party.CalculateSuccessRate(trivial), 1e-9)
}

func TestAddRemoveEquipment(t *testing.T) {
	recorder := &EventRecorder{}
	party := newTestParty(nil, recorder)

	// Nil add is a no-op
	party.AddEquipment(nil)
	assert.Empty(t, party.Equipment)
	assert.Empty(t, recorder.Events)

	eq := NewEquipment(types.EquipmentDef{
		Name:        "Banner",
		Cost:        10,
		StatBonuses: map[types.StatKind]int{types.StatAdmin: 1},
	})
	party.AddEquipment(eq)
	assert.Len(t, party.Equipment, 1)

	events := recorder.ByKind(types.EventEquipmentAdded)
	assert.Len(t, events, 1)
	assert.Equal(t, eq.ID, events[0].(types.EquipmentAdded).EquipmentID)

	// Removing an absent id fails
	assert.False(t, party.RemoveEquipment("nope"))
	assert.True(t, party.RemoveEquipment(eq.ID))
	assert.Empty(t, party.Equipment)
}

func TestAddExperience(t *testing.T) {
	recorder := &EventRecorder{}
	rng := &stubRoller{values: []int{1, 2}} // combat, then admin
	party := newTestParty(rng, recorder)

	// 250 points grant exactly 2 stat increases and keep the remainder
	party.AddExperience(250)
	assert.Equal(t, 50, party.Experience)
	assert.Equal(t, 11, party.Stats[types.StatCombat])
	assert.Equal(t, 2, party.Stats[types.StatAdmin])

	events := recorder.ByKind(types.EventStatChanged)
	assert.Len(t, events, 2)

	// Remainder accumulates into the next chunk
	party.AddExperience(50)
	assert.Equal(t, 0, party.Experience)
}

func TestAddExperienceCeilingConsumesPoint(t *testing.T) {
	recorder := &EventRecorder{}
	rng := &stubRoller{} // always draws exploration
	party := newTestParty(rng, recorder)
	party.Stats[types.StatExploration] = 20

	// The draw lands on a maxed stat: the point is consumed, no retry
	party.AddExperience(100)
	assert.Equal(t, 0, party.Experience)
	assert.Equal(t, 20, party.Stats[types.StatExploration])
	assert.Equal(t, 10, party.Stats[types.StatCombat])
	assert.Empty(t, recorder.ByKind(types.EventStatChanged))
}

func TestModifyLoyalty(t *testing.T) {
	party := newTestParty(nil, nil)

	// Test case 1: Clamps at 100
	party.ModifyLoyalty(50)
	assert.Equal(t, 100, party.Loyalty)

	// Test case 2: Dropping below the threshold forces unavailability
	party.ModifyLoyalty(-85)
	assert.Equal(t, 15, party.Loyalty)
	assert.False(t, party.Available)

	// Test case 3: Raising loyalty back does NOT restore availability
	party.ModifyLoyalty(30)
	assert.Equal(t, 45, party.Loyalty)
	assert.False(t, party.Available)

	// Only UpdateAvailability does
	party.UpdateAvailability()
	assert.True(t, party.Available)

	// Test case 4: Clamps at 0
	party.ModifyLoyalty(-200)
	assert.Equal(t, 0, party.Loyalty)
	assert.False(t, party.Available)
}

func TestPartyIsValid(t *testing.T) {
	party := newTestParty(nil, nil)
	assert.True(t, party.IsValid())

	party.Stats[types.StatCombat] = 0
	assert.False(t, party.IsValid())

	party.Stats[types.StatCombat] = 10
	party.Loyalty = 150
	assert.False(t, party.IsValid())

	party.Loyalty = 50
	party.Experience = -1
	assert.False(t, party.IsValid())

	// A missing stat kind breaks the exactly-three invariant
	party.Experience = 0
	delete(party.Stats, types.StatAdmin)
	assert.False(t, party.IsValid())
}

func TestNewPartyFillsMissingStats(t *testing.T) {
	party := NewParty(types.PartyDef{
		Name:    "Ragtag",
		Stats:   map[types.StatKind]int{types.StatCombat: 7},
		Loyalty: 10,
	}, nil, nil, zap.NewNop())

	assert.Len(t, party.Stats, 3)
	assert.Equal(t, 1, party.Stats[types.StatExploration])
	assert.Equal(t, 7, party.Stats[types.StatCombat])

	// Loyalty below the threshold starts the party unavailable
	assert.False(t, party.Available)
}
