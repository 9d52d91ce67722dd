package interfaces

import "github.com/user/guildmaster/internal/types"

// EventPublisher is the notification port entities publish to after a
// committed mutation. Fire-and-forget: no return value, no delivery
// guarantee.
type EventPublisher interface {
	Publish(event types.Event)
}

// Randomizer is the injectable randomness source consumed by the
// party stat-growth draw and quest resolution rolls.
type Randomizer interface {
	// NextInt returns a uniform value in [min, max], both ends inclusive.
	NextInt(min, max int) int
}
