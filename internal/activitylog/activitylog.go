// Package activitylog collects follow/unfollow events in memory and flushes
// them in batches from a background goroutine.
package activitylog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/patric-chuzhbe/travelboard/internal/logger"
)

const (
	ActionFollow   = "follow"
	ActionUnfollow = "unfollow"
)

type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewFollowEvent builds the event for a toggle whose resulting state is following.
func NewFollowEvent(followerID, followeeID string, following bool) Event {
	action := ActionUnfollow
	if following {
		action = ActionFollow
	}

	return Event{
		ID:         uuid.NewString(),
		Action:     action,
		FollowerID: followerID,
		FolloweeID: followeeID,
		Timestamp:  time.Now().UTC(),
	}
}

type Sink interface {
	WriteEvents(ctx context.Context, events []Event) error
}

// Journal buffers events and hands them to the sink every flush interval.
type Journal struct {
	queue         chan Event
	sink          Sink
	flushInterval time.Duration
	errorsMu      sync.Mutex
	errorsClosed  bool
	errorChannel  chan error
	done          chan struct{}
}

func New(
	theSink Sink,
	channelCapacity int,
	flushInterval time.Duration,
) *Journal {
	return &Journal{
		queue:         make(chan Event, channelCapacity),
		sink:          theSink,
		flushInterval: flushInterval,
		errorChannel:  make(chan error, channelCapacity),
		done:          make(chan struct{}),
	}
}

// EnqueueEvent never blocks the caller: when the queue is full the event is
// dropped and reported on the error channel.
func (j *Journal) EnqueueEvent(event Event) {
	select {
	case j.queue <- event:
	default:
		j.reportError(fmt.Errorf("activity queue is full, event %s dropped", event.ID))
	}
}

// ListenErrors calls callback for every reported error. The listener exits
// once Run has flushed its last batch and closed the error channel.
func (j *Journal) ListenErrors(callback func(error)) (stopped <-chan struct{}) {
	listenerDone := make(chan struct{})
	go func() {
		defer close(listenerDone)
		for err := range j.errorChannel {
			callback(err)
		}
	}()

	return listenerDone
}

// Run processes the queue until ctx is cancelled. Pending events are flushed
// before Run's goroutine exits; Wait blocks until then.
func (j *Journal) Run(ctx context.Context) {
	go func() {
		defer close(j.done)
		defer j.closeErrors()

		ticker := time.NewTicker(j.flushInterval)
		defer ticker.Stop()

		var events []Event

		flush := func(flushCtx context.Context) {
			if len(events) == 0 {
				return
			}
			if err := j.sink.WriteEvents(flushCtx, events); err != nil {
				j.reportError(err)
				return
			}
			logger.Log.Debugf("flushed %d activity events", len(events))
			events = nil
		}

		for {
			select {
			case event := <-j.queue:
				events = append(events, event)
			case <-ticker.C:
				flush(ctx)
			case <-ctx.Done():
			drain:
				for {
					select {
					case event := <-j.queue:
						events = append(events, event)
					default:
						break drain
					}
				}
				flush(context.Background())
				return
			}
		}
	}()
}

// Wait blocks until Run has flushed its last batch.
func (j *Journal) Wait() {
	<-j.done
}

// reportError drops err when nobody drains the channel fast enough or the
// journal has stopped.
func (j *Journal) reportError(err error) {
	j.errorsMu.Lock()
	defer j.errorsMu.Unlock()

	if j.errorsClosed {
		return
	}
	select {
	case j.errorChannel <- err:
	default:
	}
}

func (j *Journal) closeErrors() {
	j.errorsMu.Lock()
	defer j.errorsMu.Unlock()

	j.errorsClosed = true
	close(j.errorChannel)
}

// FileSink appends events as JSON lines.
type FileSink struct {
	mu       sync.Mutex
	fileName string
}

func NewFileSink(fileName string) *FileSink {
	return &FileSink{fileName: fileName}
}

func (s *FileSink) WriteEvents(ctx context.Context, events []Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("in internal/activitylog/activitylog.go/WriteEvents(): error while `os.OpenFile()` calling: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	for _, event := range events {
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("in internal/activitylog/activitylog.go/WriteEvents(): error while `encoder.Encode()` calling: %w", err)
		}
	}

	return nil
}

// LogSink writes events to the application logger.
type LogSink struct{}

func (LogSink) WriteEvents(ctx context.Context, events []Event) error {
	for _, event := range events {
		logger.Log.Infoln(
			"activity",
			"action", event.Action,
			"follower", event.FollowerID,
			"followee", event.FolloweeID,
			"at", event.Timestamp,
		)
	}

	return nil
}
