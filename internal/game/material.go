package game

import (
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/user/guildmaster/internal/interfaces"
	"github.com/user/guildmaster/internal/types"
)

// Material is a tradable good held in the guild stores. Its market value
// fluctuates around the base value but never drops below 1.
type Material struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Rarity       types.Rarity   `json:"rarity"`
	Category     string         `json:"category"`
	BaseValue    int            `json:"base_value"`
	CurrentValue int            `json:"current_value"`
	Quantity     int            `json:"quantity"`
	Recipe       map[string]int `json:"recipe,omitempty"`

	events interfaces.EventPublisher
	logger *zap.Logger
}

// NewMaterial creates a material from a definition
func NewMaterial(def types.MaterialDef, events interfaces.EventPublisher, logger *zap.Logger) *Material {
	current := def.BaseValue
	if current < 1 {
		current = 1
	}

	return &Material{
		ID:           uuid.New().String(),
		Name:         def.Name,
		Rarity:       def.Rarity,
		Category:     def.Category,
		BaseValue:    def.BaseValue,
		CurrentValue: current,
		Quantity:     def.Quantity,
		Recipe:       def.Recipe,
		events:       events,
		logger:       logger,
	}
}

// Attach wires the notification port and diagnostic logger; used after
// loading a saved state, where only the data fields survive
func (m *Material) Attach(events interfaces.EventPublisher, logger *zap.Logger) {
	m.events = events
	m.logger = logger
}

// AddQuantity adjusts the stock by amount. The amount may be any integer;
// bounds are checked by IsValid, not here.
func (m *Material) AddQuantity(amount int) {
	m.Quantity += amount
	publish(m.events, types.QuantityChanged{
		MaterialID: m.ID,
		Delta:      amount,
		Quantity:   m.Quantity,
	})
}

// RemoveQuantity withdraws amount from stock. Returns false without
// mutating when the stock is insufficient.
func (m *Material) RemoveQuantity(amount int) bool {
	if amount > m.Quantity {
		diag(m.logger).Warn("insufficient material quantity",
			zap.String("material_id", m.ID),
			zap.String("field", "quantity"),
			zap.Int("requested", amount),
			zap.Int("available", m.Quantity))
		return false
	}

	m.Quantity -= amount
	publish(m.events, types.QuantityChanged{
		MaterialID: m.ID,
		Delta:      -amount,
		Quantity:   m.Quantity,
	})
	return true
}

// UpdateMarketValue recalculates the current value from the base value and
// a fluctuation percentage (e.g. -0.25 for a 25% drop). Rounds half away
// from zero and floors the result at 1.
func (m *Material) UpdateMarketValue(fluctuationPercent float64) {
	value := int(math.Round(float64(m.BaseValue) * (1 + fluctuationPercent)))
	if value < 1 {
		value = 1
	}
	m.CurrentValue = value
}

// IsValid reports whether the material satisfies its invariants. Failures
// are logged, never thrown; the material is left untouched.
func (m *Material) IsValid() bool {
	if m.Quantity < 0 {
		diag(m.logger).Warn("material validation failed",
			zap.String("material_id", m.ID),
			zap.String("field", "quantity"),
			zap.Int("value", m.Quantity))
		return false
	}
	if m.BaseValue < 0 {
		diag(m.logger).Warn("material validation failed",
			zap.String("material_id", m.ID),
			zap.String("field", "base_value"),
			zap.Int("value", m.BaseValue))
		return false
	}
	if m.CurrentValue < 0 {
		diag(m.logger).Warn("material validation failed",
			zap.String("material_id", m.ID),
			zap.String("field", "current_value"),
			zap.Int("value", m.CurrentValue))
		return false
	}
	return true
}
