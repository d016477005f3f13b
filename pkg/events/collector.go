package events

// EventCollector gathers domain events raised while handling one request so
// they can be published together afterwards.
type EventCollector struct {
	events []DomainEvent
}

// Record appends events to the collector.
func (c *EventCollector) Record(events ...DomainEvent) {
	c.events = append(c.events, events...)
}

// Events returns the collected events without clearing them.
func (c *EventCollector) Events() []DomainEvent {
	return c.events
}

// Len returns the number of collected events.
func (c *EventCollector) Len() int {
	return len(c.events)
}

// ClearEvents returns the collected events and resets the collector.
func (c *EventCollector) ClearEvents() []DomainEvent {
	collected := c.events
	c.events = nil
	return collected
}
