package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

const (
	statMin = 1
	statMax = 20

	relationshipMin = -100
	relationshipMax = 100
)

// Character is an NPC or player record: a stat block, a relationship
// ledger keyed by character id, and a combinable alignment bitmask.
type Character struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Type          types.CharacterType    `json:"type"`
	Stats         map[types.StatKind]int `json:"stats"`
	Relationships map[string]int         `json:"relationships"`
	Alignment     types.Alignment        `json:"alignment"`

	events interfaces.EventPublisher
	logger *zap.Logger
}

// NewCharacter creates a character from a definition
func NewCharacter(def types.CharacterDef, events interfaces.EventPublisher, logger *zap.Logger) *Character {
	stats := make(map[types.StatKind]int, len(def.Stats))
	for kind, value := range def.Stats {
		stats[kind] = clampInt(value, statMin, statMax)
	}

	relationships := make(map[string]int, len(def.Relationships))
	for id, value := range def.Relationships {
		relationships[id] = clampInt(value, relationshipMin, relationshipMax)
	}

	return &Character{
		ID:            uuid.New().String(),
		Name:          def.Name,
		Type:          def.Type,
		Stats:         stats,
		Relationships: relationships,
		Alignment:     def.Alignment,
		events:        events,
		logger:        logger,
	}
}

// Attach wires the notification port and diagnostic logger
func (c *Character) Attach(events interfaces.EventPublisher, logger *zap.Logger) {
	c.events = events
	c.logger = logger
}

// IsPlayer reports whether this is the player record
func (c *Character) IsPlayer() bool {
	return c.Type == types.CharacterPlayer
}

// GetRelationship returns the stored value toward the given character, or
// 0 when none is recorded. 0 is the implicit neutral default, not a
// separate unknown state.
func (c *Character) GetRelationship(id string) int {
	return c.Relationships[id]
}

// ModifyRelationship adds delta to the relationship toward the given
// character, initializing absent entries to 0 and clamping to
// [-100, 100]. Emits the post-clamp value.
func (c *Character) ModifyRelationship(id string, delta int) {
	if c.Relationships == nil {
		c.Relationships = make(map[string]int)
	}

	value := clampInt(c.Relationships[id]+delta, relationshipMin, relationshipMax)
	c.Relationships[id] = value

	publish(c.events, types.RelationshipChanged{
		CharacterID: c.ID,
		TargetID:    id,
		Value:       value,
	})
}

// ModifyStat adds delta to a stat, clamping to [1, 20]. An absent kind
// starts from the minimum.
func (c *Character) ModifyStat(kind types.StatKind, delta int) {
	if c.Stats == nil {
		c.Stats = make(map[types.StatKind]int)
	}

	base, ok := c.Stats[kind]
	if !ok {
		base = statMin
	}
	c.Stats[kind] = clampInt(base+delta, statMin, statMax)
}

// SetAlignment overwrites the alignment bitmask. Order|Chaos together is
// a legal combination.
func (c *Character) SetAlignment(flags types.Alignment) {
	c.Alignment = flags
}

// IsValid reports whether every stat lies in [1, 20] and every
// relationship in [-100, 100]. Violations are logged and leave the
// character untouched.
func (c *Character) IsValid() bool {
	for kind, value := range c.Stats {
		if value < statMin || value > statMax {
			diag(c.logger).Warn("character validation failed",
				zap.String("character_id", c.ID),
				zap.String("field", "stats."+string(kind)),
				zap.Int("value", value))
			return false
		}
	}

	for id, value := range c.Relationships {
		if value < relationshipMin || value > relationshipMax {
			diag(c.logger).Warn("character validation failed",
				zap.String("character_id", c.ID),
				zap.String("field", "relationships."+id),
				zap.Int("value", value))
			return false
		}
	}

	return true
}

// clampInt bounds value to [min, max]
func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
