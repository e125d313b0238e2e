// internal/handler/event_bus.go
package handler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Event types published by the stimulator
const (
	EventSerialOutput      = "serial_output"
	EventCommandSent       = "command_sent"
	EventConnectionChanged = "connection_changed"
	EventProgramChanged    = "program_changed"
)

// EventTypes lists every event type the bus carries
func EventTypes() []string {
	return []string{EventSerialOutput, EventCommandSent, EventConnectionChanged, EventProgramChanged}
}

// EventBus manages event distribution
type EventBus struct {
	subscribers map[string][]chan Event
	events      chan Event
	closed      bool
	mutex       sync.RWMutex
	logger      *zap.Logger
}

// Event represents a system event
type Event struct {
	Type      string                 `json:"type"`
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEventBus creates a new event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]chan Event),
		events:      make(chan Event, 1000),
		logger:      logger,
	}
}

// Start distributes events until Close is called
func (eb *EventBus) Start() {
	for event := range eb.events {
		eb.distributeEvent(event)
	}

	eb.mutex.Lock()
	defer eb.mutex.Unlock()
	for _, subscribers := range eb.subscribers {
		for _, subscriber := range subscribers {
			close(subscriber)
		}
	}
	eb.subscribers = make(map[string][]chan Event)
}

// Close stops accepting events. Subscriber channels are closed once the
// queue has drained.
func (eb *EventBus) Close() {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if eb.closed {
		return
	}
	eb.closed = true
	close(eb.events)
}

// Publish queues an event without blocking. Events are dropped when the
// queue is full.
func (eb *EventBus) Publish(event Event) {
	eb.mutex.RLock()
	defer eb.mutex.RUnlock()

	if eb.closed {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case eb.events <- event:
	default:
		if eb.logger != nil {
			eb.logger.Warn("Event bus full, dropping event",
				zap.String("event_type", event.Type),
			)
		}
	}
}

// Subscribe subscribes to events of a specific type
func (eb *EventBus) Subscribe(eventType string) <-chan Event {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	subscriber := make(chan Event, 100)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], subscriber)
	return subscriber
}

// distributeEvent distributes an event to subscribers
func (eb *EventBus) distributeEvent(event Event) {
	eb.mutex.RLock()
	subscribers := eb.subscribers[event.Type]
	eb.mutex.RUnlock()

	for _, subscriber := range subscribers {
		select {
		case subscriber <- event:
		default:
			// slow subscriber
		}
	}
}

// DeviceEventHandler turns stimulator callbacks into bus events. It never
// blocks, so it is safe to call with the controller lock held.
type DeviceEventHandler struct {
	bus    *EventBus
	logger *zap.Logger
}

// NewDeviceEventHandler creates a new device event handler
func NewDeviceEventHandler(bus *EventBus, logger *zap.Logger) *DeviceEventHandler {
	return &DeviceEventHandler{
		bus:    bus,
		logger: logger,
	}
}

// OnSerialOutput publishes text received from the device
func (deh *DeviceEventHandler) OnSerialOutput(text string) {
	deh.bus.Publish(Event{
		Type:   EventSerialOutput,
		Source: "stimulator",
		Data:   map[string]interface{}{"text": text},
	})
}

// OnCommandSent publishes a command written to the device
func (deh *DeviceEventHandler) OnCommandSent(command string) {
	deh.bus.Publish(Event{
		Type:   EventCommandSent,
		Source: "stimulator",
		Data:   map[string]interface{}{"command": command},
	})
}

// OnConnectionChanged publishes link state changes
func (deh *DeviceEventHandler) OnConnectionChanged(connected bool, port string, err error) {
	data := map[string]interface{}{
		"connected": connected,
		"port":      port,
	}
	if err != nil {
		data["error"] = err.Error()
	}

	deh.bus.Publish(Event{
		Type:   EventConnectionChanged,
		Source: "stimulator",
		Data:   data,
	})

	deh.logger.Info("Connection change event published",
		zap.Bool("connected", connected),
		zap.String("port", port),
	)
}

// OnProgramChanged publishes edits to a program instance
func (deh *DeviceEventHandler) OnProgramChanged(mode string) {
	deh.bus.Publish(Event{
		Type:   EventProgramChanged,
		Source: "stimulator",
		Data:   map[string]interface{}{"mode": mode},
	})
}
