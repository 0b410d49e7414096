package metadata

import (
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

/*
Recorder captures structured collection events.
It must not:
- perform I/O decisions
- affect control flow
Ordering guarantees:
- Events are recorded synchronously in the order they are received.
- Ordering is provided for debuggability, not causality.
*/
type Recorder struct {
	runId  string
	logger zerolog.Logger
}

// NewRecorder creates a Recorder writing structured events to stderr,
// tagged with a fresh run id so output from overlapping runs against the
// same cache root can be told apart.
func NewRecorder(component string) Recorder {
	return NewRecorderWithWriter(component, os.Stderr)
}

// NewRecorderWithWriter allows tests to capture the structured output.
func NewRecorderWithWriter(component string, w io.Writer) Recorder {
	runId := uuid.NewString()
	logger := zerolog.New(w).With().
		Timestamp().
		Str("run_id", runId).
		Str("component", component).
		Logger()
	return Recorder{
		runId:  runId,
		logger: logger,
	}
}

func (r *Recorder) RunId() string {
	return r.runId
}

func (r *Recorder) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
	event := r.logger.Warn().
		Time("observed_at", observedAt).
		Str("package", packageName).
		Str("action", action).
		Str("cause", causeLabel(cause)).
		Str("error", errorString)
	appendAttrs(event, attrs)
	event.Msg("pipeline error")
}

func (r *Recorder) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	fromCache bool,
) {
	r.logger.Info().
		Str("url", fetchUrl).
		Int("status", httpStatus).
		Dur("duration", duration).
		Str("content_type", contentType).
		Int("retries", retryCount).
		Bool("from_cache", fromCache).
		Msg("fetch")
}

func (r *Recorder) RecordCacheEvent(event CacheEvent, key string, fetchUrl string) {
	r.logger.Debug().
		Str("event", string(event)).
		Str("cache_key", key).
		Str("url", fetchUrl).
		Msg("cache")
}

func (r *Recorder) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {
	event := r.logger.Info().
		Str("kind", string(kind)).
		Str("path", path)
	appendAttrs(event, attrs)
	event.Msg("artifact")
}

/*
RecordFinalRunStats records a terminal, derived summary of a completed run.

Contract:
  - MUST be called exactly once per run.
  - MUST be called only after the pagination loop has terminated.
  - The provided counts MUST be derived from collector state,
    not accumulated incrementally via the recorder.
  - Recorded stats MUST NOT influence control flow.
*/
func (r *Recorder) RecordFinalRunStats(
	pagesProcessed int,
	itemsCollected int,
	totalErrors int,
	cacheHits uint64,
	cacheMisses uint64,
	duration time.Duration,
) {
	r.logger.Info().
		Int("pages_processed", pagesProcessed).
		Int("items_collected", itemsCollected).
		Int("errors", totalErrors).
		Uint64("cache_hits", cacheHits).
		Uint64("cache_misses", cacheMisses).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("run finished")
}

func appendAttrs(event *zerolog.Event, attrs []Attribute) {
	for _, attr := range attrs {
		event.Str(string(attr.Key()), attr.Value())
	}
}

type MetadataSink interface {
	RecordError(
		observedAt time.Time,
		packageName string,
		action string,
		cause ErrorCause,
		details string,
		attrs []Attribute,
	)

	RecordFetch(
		fetchUrl string,
		httpStatus int,
		duration time.Duration,
		contentType string,
		retryCount int,
		fromCache bool,
	)

	RecordCacheEvent(event CacheEvent, key string, fetchUrl string)

	RecordArtifact(kind ArtifactKind, path string, attrs []Attribute)
}

type RunFinalizer interface {
	RecordFinalRunStats(
		pagesProcessed int,
		itemsCollected int,
		totalErrors int,
		cacheHits uint64,
		cacheMisses uint64,
		duration time.Duration,
	)
}

// NoopSink implements MetadataSink but does nothing.
// The collector (or a test) decides whether to inject Recorder or NoopSink;
// the purpose is to keep metadata orthogonal.
type NoopSink struct{}

func (n *NoopSink) RecordError(
	observedAt time.Time,
	packageName string,
	action string,
	cause ErrorCause,
	errorString string,
	attrs []Attribute,
) {
}

func (n *NoopSink) RecordFetch(
	fetchUrl string,
	httpStatus int,
	duration time.Duration,
	contentType string,
	retryCount int,
	fromCache bool,
) {
}

func (n *NoopSink) RecordCacheEvent(event CacheEvent, key string, fetchUrl string) {}

func (n *NoopSink) RecordArtifact(kind ArtifactKind, path string, attrs []Attribute) {}

var _ MetadataSink = (*Recorder)(nil)
var _ MetadataSink = (*NoopSink)(nil)
var _ RunFinalizer = (*Recorder)(nil)
