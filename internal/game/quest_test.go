package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

func newTestQuest(recorder *EventRecorder) *Quest {
	var events interfaces.EventPublisher
	if recorder != nil {
		events = recorder
	}
	return NewQuest(types.QuestDef{
		Name:       "Clear the Mine",
		Difficulty: 2,
		Duration:   5,
		RewardGold: 200,
		RequiredStats: map[types.StatKind]int{
			types.StatExploration: 12,
			types.StatCombat:      8,
		},
	}, events, zap.NewNop())
}

func TestQuestTransitionTable(t *testing.T) {
	legal := map[types.QuestState]types.QuestState{
		types.QuestAvailable: types.QuestAssigned,
		types.QuestAssigned:  types.QuestInProgress,
	}

	// Exhaustive over the full (from, to) space: only the listed edges
	// plus InProgress's two terminals are legal.
	for _, from := range types.QuestStates {
		for _, to := range types.QuestStates {
			expected := legal[from] == to ||
				(from == types.QuestInProgress &&
					(to == types.QuestCompleted || to == types.QuestFailed))

			assert.Equal(t, expected, CanTransition(from, to),
				"transition %s -> %s", from, to)

			quest := newTestQuest(nil)
			quest.State = from
			quest.AssignedPartyID = "party-1"
			ok := quest.transitionTo(to)
			assert.Equal(t, expected, ok, "apply %s -> %s", from, to)
			if !expected {
				assert.Equal(t, from, quest.State, "state must not change on %s -> %s", from, to)
			} else {
				assert.Equal(t, to, quest.State)
			}
		}
	}
}

func TestAssignToParty(t *testing.T) {
	recorder := &EventRecorder{}
	quest := newTestQuest(recorder)

	// Test case 1: Legal assignment from Available
	assert.True(t, quest.AssignToParty("party-1"))
	assert.Equal(t, types.QuestAssigned, quest.State)
	assert.Equal(t, "party-1", quest.AssignedPartyID)

	events := recorder.ByKind(types.EventQuestStateChanged)
	assert.Len(t, events, 1)
	change := events[0].(types.QuestStateChanged)
	assert.Equal(t, types.QuestAvailable, change.From)
	assert.Equal(t, types.QuestAssigned, change.To)

	// Test case 2: Re-assignment is rejected atomically
	assert.False(t, quest.AssignToParty("party-2"))
	assert.Equal(t, "party-1", quest.AssignedPartyID)

	// Test case 3: Empty party id is rejected
	fresh := newTestQuest(nil)
	assert.False(t, fresh.AssignToParty(""))
	assert.Equal(t, types.QuestAvailable, fresh.State)
	assert.Empty(t, fresh.AssignedPartyID)
}

func TestAssignToPartyAtomicOnIllegalState(t *testing.T) {
	quest := newTestQuest(nil)
	quest.State = types.QuestCompleted

	// Assignment on a terminal state must not record the party id
	assert.False(t, quest.AssignToParty("party-1"))
	assert.Empty(t, quest.AssignedPartyID)
	assert.Equal(t, types.QuestCompleted, quest.State)
}

func TestStartQuest(t *testing.T) {
	quest := newTestQuest(nil)

	// Test case 1: Cannot start without an assigned party
	assert.False(t, quest.StartQuest(3))
	assert.Equal(t, types.QuestAvailable, quest.State)

	// Test case 2: Assigned quest starts and records the day
	quest.AssignToParty("party-1")
	assert.True(t, quest.StartQuest(3))
	assert.Equal(t, types.QuestInProgress, quest.State)
	assert.Equal(t, 3, quest.StartDay)

	// Test case 3: Double start is rejected
	assert.False(t, quest.StartQuest(4))
	assert.Equal(t, 3, quest.StartDay)
}

func TestGetDaysRemaining(t *testing.T) {
	quest := newTestQuest(nil)

	// Not in progress reads as -1
	assert.Equal(t, -1, quest.GetDaysRemaining(0))

	quest.AssignToParty("party-1")
	quest.StartQuest(10)

	assert.Equal(t, 5, quest.GetDaysRemaining(10))
	assert.Equal(t, 2, quest.GetDaysRemaining(13))
	assert.Equal(t, 0, quest.GetDaysRemaining(15))
	// Floors at 0 after the duration has elapsed
	assert.Equal(t, 0, quest.GetDaysRemaining(40))

	assert.False(t, quest.IsReadyToComplete(13))
	assert.True(t, quest.IsReadyToComplete(15))

	quest.Complete()
	assert.Equal(t, -1, quest.GetDaysRemaining(16))
	assert.False(t, quest.IsReadyToComplete(16))
}

func TestQuestIsValid(t *testing.T) {
	quest := newTestQuest(nil)
	assert.True(t, quest.IsValid())

	// Requirement budget 20 = difficulty 2 × 10: balanced. An off-budget
	// profile is only a warning, still valid.
	quest.RequiredStats[types.StatAdmin] = 3
	assert.True(t, quest.IsValid())

	// Difficulty out of range is a hard failure
	quest.Difficulty = 6
	assert.False(t, quest.IsValid())
	quest.Difficulty = 0
	assert.False(t, quest.IsValid())

	// Non-positive duration is a hard failure
	quest.Difficulty = 2
	quest.Duration = 0
	assert.False(t, quest.IsValid())
}
