// Package telemetry tracks ecosystem events and aggregates per-window
// statistics. The simulator emits events as plain data; rendering them
// (logs, CSV) happens outside the core.
package telemetry

// EventType identifies simulation events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventForage
	EventCombatWin
	EventCombatLoss
	EventBirth
	EventDeath
)

// String returns the event type name used in CSV output.
func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventForage:
		return "forage"
	case EventCombatWin:
		return "combat_win"
	case EventCombatLoss:
		return "combat_loss"
	case EventBirth:
		return "birth"
	case EventDeath:
		return "death"
	}
	return "unknown"
}

// Event is a single simulation event.
type Event struct {
	Type EventType
	Tick int32
	Name string // acting creature

	// Optional fields depending on event type
	Target     string  // mate, victim, or winner
	Amount     float64 // energy transferred
	Generation int
	Age        int32
	Children   int
}

// NewSpawnEvent records a fresh creature entering the world.
func NewSpawnEvent(tick int32, name string, generation int) Event {
	return Event{Type: EventSpawn, Tick: tick, Name: name, Generation: generation}
}

// NewForageEvent records a creature eating a plant.
func NewForageEvent(tick int32, name string, amount float64) Event {
	return Event{Type: EventForage, Tick: tick, Name: name, Amount: amount}
}

// NewCombatWinEvent records a successful attack: the victim is devoured.
func NewCombatWinEvent(tick int32, attacker, victim string, gained float64) Event {
	return Event{Type: EventCombatWin, Tick: tick, Name: attacker, Target: victim, Amount: gained}
}

// NewCombatLossEvent records an attack the defender survived.
func NewCombatLossEvent(tick int32, attacker, defender string) Event {
	return Event{Type: EventCombatLoss, Tick: tick, Name: attacker, Target: defender}
}

// NewBirthEvent records a reproduction. Target holds the second parent.
func NewBirthEvent(tick int32, child, parentA, parentB string, generation int) Event {
	return Event{Type: EventBirth, Tick: tick, Name: child, Target: parentA + "+" + parentB, Generation: generation}
}

// NewDeathEvent records a removal with the creature's final stats.
func NewDeathEvent(tick int32, name string, generation int, age int32, children int) Event {
	return Event{Type: EventDeath, Tick: tick, Name: name, Generation: generation, Age: age, Children: children}
}
