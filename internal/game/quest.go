package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

const (
	difficultyMin = 1
	difficultyMax = 5

	// requiredStatsPerDifficulty is the expected requirement budget per
	// difficulty level; a mismatch is a balance warning, not an error
	requiredStatsPerDifficulty = 10
)

// questTransitions is the legal-edge adjacency set of the quest lifecycle.
// Completed and Failed have no outgoing edges. Kept as data so the whole
// (from, to) space can be checked exhaustively.
var questTransitions = map[types.QuestState]map[types.QuestState]bool{
	types.QuestAvailable: {
		types.QuestAssigned: true,
	},
	types.QuestAssigned: {
		types.QuestInProgress: true,
	},
	types.QuestInProgress: {
		types.QuestCompleted: true,
		types.QuestFailed:    true,
	},
}

// CanTransition reports whether from → to is a legal lifecycle edge
func CanTransition(from, to types.QuestState) bool {
	return questTransitions[from][to]
}

// Quest is an offered mission: a requirement profile, a reward, and a
// lifecycle state machine. It references its assigned party by id only.
type Quest struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Difficulty      int                    `json:"difficulty"`
	RequiredStats   map[types.StatKind]int `json:"required_stats"`
	Duration        int                    `json:"duration"`
	RewardGold      int                    `json:"reward_gold"`
	RewardMaterials []types.MaterialReward `json:"reward_materials,omitempty"`
	State           types.QuestState       `json:"state"`
	AssignedPartyID string                 `json:"assigned_party_id,omitempty"`
	StartDay        int                    `json:"start_day"`

	events interfaces.EventPublisher
	logger *zap.Logger
}

// NewQuest creates a quest from a definition, starting Available
func NewQuest(def types.QuestDef, events interfaces.EventPublisher, logger *zap.Logger) *Quest {
	return &Quest{
		ID:              uuid.New().String(),
		Name:            def.Name,
		Difficulty:      def.Difficulty,
		RequiredStats:   def.RequiredStats,
		Duration:        def.Duration,
		RewardGold:      def.RewardGold,
		RewardMaterials: def.RewardMaterials,
		State:           types.QuestAvailable,
		events:          events,
		logger:          logger,
	}
}

// Attach wires the notification port and diagnostic logger
func (q *Quest) Attach(events interfaces.EventPublisher, logger *zap.Logger) {
	q.events = events
	q.logger = logger
}

// transitionTo applies a lifecycle edge after checking the transition
// table. Illegal requests leave the state unchanged and return false.
func (q *Quest) transitionTo(target types.QuestState) bool {
	if !CanTransition(q.State, target) {
		diag(q.logger).Warn("illegal quest transition",
			zap.String("quest_id", q.ID),
			zap.String("from", string(q.State)),
			zap.String("to", string(target)))
		return false
	}

	from := q.State
	q.State = target
	publish(q.events, types.QuestStateChanged{
		QuestID: q.ID,
		From:    from,
		To:      target,
		PartyID: q.AssignedPartyID,
	})
	return true
}

// AssignToParty binds the quest to a party and moves it to Assigned.
// Atomic: when the transition is illegal the party id is not recorded.
func (q *Quest) AssignToParty(partyID string) bool {
	if partyID == "" {
		diag(q.logger).Warn("quest assignment rejected",
			zap.String("quest_id", q.ID),
			zap.String("field", "assigned_party_id"))
		return false
	}
	if !CanTransition(q.State, types.QuestAssigned) {
		diag(q.logger).Warn("illegal quest transition",
			zap.String("quest_id", q.ID),
			zap.String("from", string(q.State)),
			zap.String("to", string(types.QuestAssigned)))
		return false
	}

	q.AssignedPartyID = partyID
	return q.transitionTo(types.QuestAssigned)
}

// StartQuest records the start day and moves the quest to InProgress.
// Requires an assigned party.
func (q *Quest) StartQuest(currentDay int) bool {
	if q.AssignedPartyID == "" {
		diag(q.logger).Warn("quest start without assigned party",
			zap.String("quest_id", q.ID),
			zap.String("field", "assigned_party_id"))
		return false
	}
	if !CanTransition(q.State, types.QuestInProgress) {
		diag(q.logger).Warn("illegal quest transition",
			zap.String("quest_id", q.ID),
			zap.String("from", string(q.State)),
			zap.String("to", string(types.QuestInProgress)))
		return false
	}

	q.StartDay = currentDay
	return q.transitionTo(types.QuestInProgress)
}

// Complete moves the quest to its successful terminal state
func (q *Quest) Complete() bool {
	return q.transitionTo(types.QuestCompleted)
}

// Fail moves the quest to its failed terminal state
func (q *Quest) Fail() bool {
	return q.transitionTo(types.QuestFailed)
}

// GetDaysRemaining returns -1 when the quest is not in progress, else the
// days left until the duration elapses, floored at 0
func (q *Quest) GetDaysRemaining(currentDay int) int {
	if q.State != types.QuestInProgress {
		return -1
	}

	remaining := q.Duration - (currentDay - q.StartDay)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsReadyToComplete reports whether an in-progress quest has run its
// full duration
func (q *Quest) IsReadyToComplete(currentDay int) bool {
	return q.State == types.QuestInProgress && q.GetDaysRemaining(currentDay) <= 0
}

// IsValid reports whether the quest satisfies its invariants. Difficulty
// and duration violations are hard failures; a requirement budget that
// does not match difficulty×10 only logs a balance warning.
func (q *Quest) IsValid() bool {
	if q.Difficulty < difficultyMin || q.Difficulty > difficultyMax {
		diag(q.logger).Warn("quest validation failed",
			zap.String("quest_id", q.ID),
			zap.String("field", "difficulty"),
			zap.Int("value", q.Difficulty))
		return false
	}
	if q.Duration <= 0 {
		diag(q.logger).Warn("quest validation failed",
			zap.String("quest_id", q.ID),
			zap.String("field", "duration"),
			zap.Int("value", q.Duration))
		return false
	}

	sum := 0
	for _, value := range q.RequiredStats {
		sum += value
	}
	if sum != q.Difficulty*requiredStatsPerDifficulty {
		diag(q.logger).Warn("quest requirement budget off balance",
			zap.String("quest_id", q.ID),
			zap.String("field", "required_stats"),
			zap.Int("sum", sum),
			zap.Int("expected", q.Difficulty*requiredStatsPerDifficulty))
	}

	return true
}
