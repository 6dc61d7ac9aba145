package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"go-transcript-gpa/internal/logger"
)

// EventType classifies pipeline events.
type EventType string

const (
	// ImageProcessed fires when one image's pipeline produced records
	ImageProcessed EventType = "image_processed"
	// ImageFailed fires when one image's pipeline was aborted
	ImageFailed EventType = "image_failed"
	// RunCompleted fires once per aggregation run
	RunCompleted EventType = "run_completed"
)

// PipelineEvent describes one observable step of a run.
type PipelineEvent struct {
	Type        EventType     `json:"type"`
	ImageURL    string        `json:"image_url,omitempty"`
	Duration    time.Duration `json:"duration"`
	RecordCount int           `json:"record_count"`
	Error       string        `json:"error,omitempty"`
}

// Observer receives pipeline events.
type Observer interface {
	OnEvent(ctx context.Context, event PipelineEvent)
	Name() string
}

// LoggingObserver writes pipeline events to the structured log.
type LoggingObserver struct{}

// NewLoggingObserver creates a logging observer.
func NewLoggingObserver() *LoggingObserver {
	return &LoggingObserver{}
}

// OnEvent logs the event at a level matching its type.
func (o *LoggingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	fields := logrus.Fields{
		"event_type":   event.Type,
		"image_url":    event.ImageURL,
		"duration_ms":  event.Duration.Milliseconds(),
		"record_count": event.RecordCount,
	}
	if event.Error != "" {
		fields["error"] = event.Error
	}

	switch event.Type {
	case ImageFailed:
		logger.WithFields(fields).Error("Image pipeline failed")
	case RunCompleted:
		logger.WithFields(fields).Info("GPA run completed")
	default:
		logger.WithFields(fields).Info("Image processed")
	}
}

// Name identifies the observer.
func (o *LoggingObserver) Name() string { return "logging_observer" }

// MetricsObserver keeps running counters over pipeline events.
type MetricsObserver struct {
	mu              sync.RWMutex
	imagesProcessed int64
	imagesFailed    int64
	recordsTotal    int64
	runs            int64
}

// NewMetricsObserver creates a metrics observer.
func NewMetricsObserver() *MetricsObserver {
	return &MetricsObserver{}
}

// OnEvent updates counters.
func (o *MetricsObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch event.Type {
	case ImageProcessed:
		o.imagesProcessed++
		o.recordsTotal += int64(event.RecordCount)
	case ImageFailed:
		o.imagesFailed++
	case RunCompleted:
		o.runs++
	}
}

// Name identifies the observer.
func (o *MetricsObserver) Name() string { return "metrics_observer" }

// Metrics returns a snapshot of the counters.
func (o *MetricsObserver) Metrics() map[string]int64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return map[string]int64{
		"images_processed": o.imagesProcessed,
		"images_failed":    o.imagesFailed,
		"records_total":    o.recordsTotal,
		"runs":             o.runs,
	}
}

// Publisher fans events out to subscribed observers.
type Publisher struct {
	mu        sync.RWMutex
	observers []Observer
}

// NewPublisher creates an empty publisher.
func NewPublisher() *Publisher {
	return &Publisher{}
}

// Subscribe registers an observer.
func (p *Publisher) Subscribe(observer Observer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.observers = append(p.observers, observer)
}

// Notify delivers the event to every observer. A panicking observer is
// logged and never takes down the pipeline.
func (p *Publisher) Notify(ctx context.Context, event PipelineEvent) {
	p.mu.RLock()
	observers := make([]Observer, len(p.observers))
	copy(observers, p.observers)
	p.mu.RUnlock()

	for _, observer := range observers {
		func(obs Observer) {
			defer func() {
				if r := recover(); r != nil {
					logger.WithField("observer", obs.Name()).
						WithField("panic", r).
						Error("Observer panicked while handling event")
				}
			}()
			obs.OnEvent(ctx, event)
		}(observer)
	}
}
