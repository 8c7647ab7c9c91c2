package telemetry

// Collector accumulates events within tick windows and produces WindowStats.
type Collector struct {
	windowTicks     int32
	windowStartTick int32

	events []Event

	// Event counters for the current window
	spawns  int
	forages int
	attacks int
	kills   int
	births  int
	deaths  int
}

// NewCollector creates a stats collector with the given window length in
// ticks.
func NewCollector(windowTicks int) *Collector {
	if windowTicks < 1 {
		windowTicks = 1
	}
	return &Collector{windowTicks: int32(windowTicks)}
}

// Record counts an event into the current window and retains it for output.
func (c *Collector) Record(e Event) {
	c.events = append(c.events, e)

	switch e.Type {
	case EventSpawn:
		c.spawns++
	case EventForage:
		c.forages++
	case EventCombatWin:
		c.attacks++
		c.kills++
	case EventCombatLoss:
		c.attacks++
	case EventBirth:
		c.births++
	case EventDeath:
		c.deaths++
	}
}

// DrainEvents returns the retained events and clears the buffer.
func (c *Collector) DrainEvents() []Event {
	out := c.events
	c.events = nil
	return out
}

// ShouldFlush returns true when the current window is complete.
func (c *Collector) ShouldFlush(tick int32) bool {
	return tick-c.windowStartTick >= c.windowTicks
}

// Flush closes the window and returns its stats. Population figures are
// sampled at flush time by the caller.
func (c *Collector) Flush(tick int32, pop Population) WindowStats {
	stats := NewWindowStats(c.windowStartTick, tick, pop)
	stats.Spawns = c.spawns
	stats.Forages = c.forages
	stats.Attacks = c.attacks
	stats.Kills = c.kills
	stats.Births = c.births
	stats.Deaths = c.deaths

	c.windowStartTick = tick
	c.spawns = 0
	c.forages = 0
	c.attacks = 0
	c.kills = 0
	c.births = 0
	c.deaths = 0

	return stats
}
