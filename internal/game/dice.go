package game

import (
	"math/rand"
	"time"

	"github.com/user/guildmaster/internal/interfaces"
)

// DiceRoller is the default randomness source for the simulation
type DiceRoller struct {
	rng *rand.Rand
}

// Ensure DiceRoller satisfies the Randomizer port
var _ interfaces.Randomizer = (*DiceRoller)(nil)

// NewDiceRoller creates a dice roller with a time-seeded generator
func NewDiceRoller() *DiceRoller {
	return NewSeededDiceRoller(time.Now().UnixNano())
}

// NewSeededDiceRoller creates a dice roller with a fixed seed for
// reproducible simulations
func NewSeededDiceRoller(seed int64) *DiceRoller {
	return &DiceRoller{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NextInt returns a uniform value in [min, max], both ends inclusive
func (dr *DiceRoller) NextInt(min, max int) int {
	if max <= min {
		return min
	}
	return dr.rng.Intn(max-min+1) + min
}

// Roll rolls a dice with the specified number of sides
func (dr *DiceRoller) Roll(sides int) int {
	return dr.NextInt(1, sides)
}

// RollPercent rolls 1-100
func (dr *DiceRoller) RollPercent() int {
	return dr.Roll(100)
}
