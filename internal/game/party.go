package game

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

const (
	loyaltyMin = 0
	loyaltyMax = 100

	// DefaultLoyaltyThreshold is the loyalty value below which a party
	// becomes unavailable for new assignments
	DefaultLoyaltyThreshold = 20

	// experiencePerStatPoint is how much accumulated experience buys one
	// random stat increase
	experiencePerStatPoint = 100
)

// Equipment is a stat-bonus modifier attachable to a party. The party
// only owns its list membership, not the item's lifetime.
type Equipment struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Cost        int                    `json:"cost"`
	StatBonuses map[types.StatKind]int `json:"stat_bonuses"`
}

// NewEquipment creates an equipment item from a definition
func NewEquipment(def types.EquipmentDef) *Equipment {
	return &Equipment{
		ID:          uuid.New().String(),
		Name:        def.Name,
		Cost:        def.Cost,
		StatBonuses: def.StatBonuses,
	}
}

// Party is an adventuring group: a three-stat block, an equipment list
// feeding the effective stats, loyalty, experience, and availability.
type Party struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Stats      map[types.StatKind]int `json:"stats"`
	Equipment  []*Equipment           `json:"equipment"`
	Loyalty    int                    `json:"loyalty"`
	Experience int                    `json:"experience"`
	Available  bool                   `json:"available"`

	loyaltyThreshold int
	rng              interfaces.Randomizer
	events           interfaces.EventPublisher
	logger           *zap.Logger
}

// NewParty creates a party from a definition. The stat block always holds
// exactly the three party stat kinds; missing kinds start at the minimum.
func NewParty(def types.PartyDef, rng interfaces.Randomizer, events interfaces.EventPublisher, logger *zap.Logger) *Party {
	stats := make(map[types.StatKind]int, len(types.PartyStatKinds))
	for _, kind := range types.PartyStatKinds {
		value, ok := def.Stats[kind]
		if !ok {
			value = statMin
		}
		stats[kind] = clampInt(value, statMin, statMax)
	}

	loyalty := clampInt(def.Loyalty, loyaltyMin, loyaltyMax)

	return &Party{
		ID:               uuid.New().String(),
		Name:             def.Name,
		Stats:            stats,
		Equipment:        make([]*Equipment, 0),
		Loyalty:          loyalty,
		Available:        loyalty >= DefaultLoyaltyThreshold,
		loyaltyThreshold: DefaultLoyaltyThreshold,
		rng:              rng,
		events:           events,
		logger:           logger,
	}
}

// Attach wires the randomness source, notification port and diagnostic
// logger; used after loading a saved state
func (p *Party) Attach(rng interfaces.Randomizer, events interfaces.EventPublisher, logger *zap.Logger) {
	p.rng = rng
	p.events = events
	p.logger = logger
	if p.loyaltyThreshold == 0 {
		p.loyaltyThreshold = DefaultLoyaltyThreshold
	}
}

// SetLoyaltyThreshold overrides the unavailability threshold
func (p *Party) SetLoyaltyThreshold(threshold int) {
	p.loyaltyThreshold = threshold
}

// EffectiveStat returns the base stat (0 when absent) plus the sum of all
// equipped bonuses for that kind, clamped to [1, 20]. Bonuses are summed
// linearly before the single final clamp.
func (p *Party) EffectiveStat(kind types.StatKind) int {
	value := p.Stats[kind]
	for _, eq := range p.Equipment {
		value += eq.StatBonuses[kind]
	}
	return clampInt(value, statMin, statMax)
}

// MeetsRequirements reports whether every required stat is met by the
// party's effective stats. Absent requirement kinds are vacuously
// satisfied.
func (p *Party) MeetsRequirements(required map[types.StatKind]int) bool {
	for kind, value := range required {
		if p.EffectiveStat(kind) < value {
			return false
		}
	}
	return true
}

// CalculateSuccessRate scores the party against a quest's requirement
// profile. The capability match (how much of each requirement the party
// covers) is scaled by morale: a fully capable but zero-loyalty party
// tops out at half its capability-derived rate.
func (p *Party) CalculateSuccessRate(quest *Quest) float64 {
	if quest == nil || len(quest.RequiredStats) == 0 {
		return 0
	}

	matched := 0
	required := 0
	for kind, value := range quest.RequiredStats {
		effective := p.EffectiveStat(kind)
		if effective < value {
			matched += effective
		} else {
			matched += value
		}
		required += value
	}

	base := 1.0
	if required > 0 {
		base = float64(matched) / float64(required)
	}

	rate := base * (0.5 + 0.5*float64(p.Loyalty)/100.0)
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}

// AddEquipment appends an item to the equipment list. No-op on nil.
func (p *Party) AddEquipment(eq *Equipment) {
	if eq == nil {
		return
	}

	p.Equipment = append(p.Equipment, eq)
	publish(p.events, types.EquipmentAdded{
		PartyID:     p.ID,
		EquipmentID: eq.ID,
		Name:        eq.Name,
	})
}

// RemoveEquipment drops the first item with the given id. Returns false
// when no item matches.
func (p *Party) RemoveEquipment(id string) bool {
	for i, eq := range p.Equipment {
		if eq.ID == id {
			p.Equipment = append(p.Equipment[:i], p.Equipment[i+1:]...)
			return true
		}
	}
	return false
}

// AddExperience accumulates experience; every full 100 points grants one
// stat point to a uniformly random stat kind. Each point is an
// independent draw, and a draw that would exceed the per-kind ceiling
// still consumes the point. Experience keeps only the remainder.
func (p *Party) AddExperience(amount int) {
	p.Experience += amount

	points := p.Experience / experiencePerStatPoint
	p.Experience %= experiencePerStatPoint

	for i := 0; i < points; i++ {
		kind := types.PartyStatKinds[p.nextInt(0, len(types.PartyStatKinds)-1)]
		if p.Stats[kind] >= statMax {
			// Point is consumed without a retry.
			continue
		}
		p.Stats[kind]++
		publish(p.events, types.StatChanged{
			PartyID: p.ID,
			Stat:    kind,
			Value:   p.Stats[kind],
		})
	}
}

// ModifyLoyalty adds delta to loyalty, clamping to [0, 100]. Falling
// below the threshold forces the party unavailable; rising back above it
// does NOT restore availability — only UpdateAvailability does.
func (p *Party) ModifyLoyalty(delta int) {
	p.Loyalty = clampInt(p.Loyalty+delta, loyaltyMin, loyaltyMax)
	if p.Loyalty < p.threshold() {
		p.Available = false
	}
}

// UpdateAvailability recomputes availability from loyalty. Idempotent,
// emits nothing.
func (p *Party) UpdateAvailability() {
	p.Available = p.Loyalty >= p.threshold()
}

// IsValid reports whether the party satisfies its invariants: exactly the
// three stat kinds, each in range, loyalty in range, experience
// non-negative.
func (p *Party) IsValid() bool {
	if len(p.Stats) != len(types.PartyStatKinds) {
		diag(p.logger).Warn("party validation failed",
			zap.String("party_id", p.ID),
			zap.String("field", "stats"),
			zap.Int("count", len(p.Stats)))
		return false
	}

	for _, kind := range types.PartyStatKinds {
		value, ok := p.Stats[kind]
		if !ok || value < statMin || value > statMax {
			diag(p.logger).Warn("party validation failed",
				zap.String("party_id", p.ID),
				zap.String("field", "stats."+string(kind)),
				zap.Int("value", value))
			return false
		}
	}

	if p.Loyalty < loyaltyMin || p.Loyalty > loyaltyMax {
		diag(p.logger).Warn("party validation failed",
			zap.String("party_id", p.ID),
			zap.String("field", "loyalty"),
			zap.Int("value", p.Loyalty))
		return false
	}

	if p.Experience < 0 {
		diag(p.logger).Warn("party validation failed",
			zap.String("party_id", p.ID),
			zap.String("field", "experience"),
			zap.Int("value", p.Experience))
		return false
	}

	return true
}

func (p *Party) threshold() int {
	if p.loyaltyThreshold == 0 {
		return DefaultLoyaltyThreshold
	}
	return p.loyaltyThreshold
}

func (p *Party) nextInt(min, max int) int {
	if p.rng == nil {
		p.rng = NewDiceRoller()
	}
	return p.rng.NextInt(min, max)
}
