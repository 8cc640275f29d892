package metrics

import (
	"context"
	"log/slog"
	"time"
)

type EventType string

const (
	EventRequestReceived   EventType = "request_received"
	EventErrorRecorded     EventType = "error_recorded"
	EventResponseCompleted EventType = "response_completed"
	EventCacheHit          EventType = "cache_hit"
	EventCacheMiss         EventType = "cache_miss"
)

type Event struct {
	Type       EventType
	ErrorType  string
	StatusCode int
	Duration   time.Duration
}

// Collector processes metric events off the request path through a buffered
// channel. Emission is non-blocking: when the buffer is full the event is
// dropped rather than delaying a request.
type Collector struct {
	eventCh chan Event
	metrics *Metrics
	logger  *slog.Logger
}

func NewCollector(bufferSize int, logger *slog.Logger) *Collector {
	return &Collector{
		eventCh: make(chan Event, bufferSize),
		metrics: NewMetrics(),
		logger:  logger,
	}
}

// Emit enqueues an event without blocking.
func (c *Collector) Emit(event Event) {
	select {
	case c.eventCh <- event:
	default:
	}
}

func (c *Collector) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Collector) run(ctx context.Context) {
	c.logger.Info("Metrics collector started")
	defer c.logger.Info("Metrics collector stopped")

	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		case <-ctx.Done():
			// Drain remaining events before shutdown
			c.drain()
			return
		}
	}
}

func (c *Collector) processEvent(event Event) {
	switch event.Type {
	case EventRequestReceived:
		c.metrics.RecordRequest()

	case EventErrorRecorded:
		c.metrics.RecordError(event.ErrorType)

	case EventResponseCompleted:
		c.metrics.RecordResponseTime(event.Duration)

	case EventCacheHit:
		c.metrics.RecordCacheHit()

	case EventCacheMiss:
		c.metrics.RecordCacheMiss()
	}
}

func (c *Collector) drain() {
	for {
		select {
		case event := <-c.eventCh:
			c.processEvent(event)
		default:
			return
		}
	}
}

func (c *Collector) Snapshot() Stats {
	return c.metrics.Snapshot()
}
