package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

func newTestCharacter(recorder *EventRecorder) *Character {
	var events interfaces.EventPublisher
	if recorder != nil {
		events = recorder
	}
	return NewCharacter(types.CharacterDef{
		Name: "Brix",
		Type: types.CharacterNPC,
		Stats: map[types.StatKind]int{
			types.StatExploration: 12,
			types.StatCombat:      8,
		},
	}, events, zap.NewNop())
}

func TestGetRelationship(t *testing.T) {
	character := newTestCharacter(nil)

	// Absent relation reads as the neutral default, not an error
	assert.Equal(t, 0, character.GetRelationship("stranger"))

	character.ModifyRelationship("friend", 30)
	assert.Equal(t, 30, character.GetRelationship("friend"))
}

func TestModifyRelationship(t *testing.T) {
	recorder := &EventRecorder{}
	character := newTestCharacter(recorder)

	// Test case 1: Initializes from 0 and adds the delta
	character.ModifyRelationship("rival", -40)
	assert.Equal(t, -40, character.GetRelationship("rival"))

	// Test case 2: Clamps at -100
	character.ModifyRelationship("rival", -90)
	assert.Equal(t, -100, character.GetRelationship("rival"))

	// Test case 3: Clamps at +100
	character.ModifyRelationship("friend", 250)
	assert.Equal(t, 100, character.GetRelationship("friend"))

	// Events carry the post-clamp value
	events := recorder.ByKind(types.EventRelationshipChanged)
	assert.Len(t, events, 3)
	second := events[1].(types.RelationshipChanged)
	assert.Equal(t, "rival", second.TargetID)
	assert.Equal(t, -100, second.Value)
}

func TestSetAlignment(t *testing.T) {
	character := newTestCharacter(nil)
	assert.Equal(t, types.AlignmentNeutral, character.Alignment)

	// Order and Chaos may be combined
	character.SetAlignment(types.AlignmentOrder | types.AlignmentChaos)
	assert.True(t, character.Alignment.Has(types.AlignmentOrder))
	assert.True(t, character.Alignment.Has(types.AlignmentChaos))

	character.SetAlignment(types.AlignmentOrder)
	assert.True(t, character.Alignment.Has(types.AlignmentOrder))
	assert.False(t, character.Alignment.Has(types.AlignmentChaos))
}

func TestModifyStat(t *testing.T) {
	character := newTestCharacter(nil)

	character.ModifyStat(types.StatCombat, 5)
	assert.Equal(t, 13, character.Stats[types.StatCombat])

	// Clamps at 20
	character.ModifyStat(types.StatCombat, 99)
	assert.Equal(t, 20, character.Stats[types.StatCombat])

	// Clamps at 1
	character.ModifyStat(types.StatExploration, -99)
	assert.Equal(t, 1, character.Stats[types.StatExploration])

	// Absent kind starts from the minimum
	character.ModifyStat(types.StatAdmin, 3)
	assert.Equal(t, 4, character.Stats[types.StatAdmin])
}

func TestCharacterIsValid(t *testing.T) {
	character := newTestCharacter(nil)
	assert.True(t, character.IsValid())
	assert.False(t, character.IsPlayer())

	// Out-of-range stat fails validation without mutating
	character.Stats[types.StatCombat] = 25
	assert.False(t, character.IsValid())
	assert.Equal(t, 25, character.Stats[types.StatCombat])

	character.Stats[types.StatCombat] = 8
	character.Relationships["x"] = -150
	assert.False(t, character.IsValid())
}

func TestNewCharacterClampsDefinition(t *testing.T) {
	character := NewCharacter(types.CharacterDef{
		Name:  "Overtuned",
		Type:  types.CharacterPlayer,
		Stats: map[types.StatKind]int{types.StatCombat: 99},
		Relationships: map[string]int{
			"someone": 500,
		},
	}, nil, zap.NewNop())

	assert.True(t, character.IsPlayer())
	assert.Equal(t, 20, character.Stats[types.StatCombat])
	assert.Equal(t, 100, character.GetRelationship("someone"))
}
