package agent

import (
	"time"

	"golang.org/x/sync/singleflight"
)

// TaskUpdate mirrors the Rust Update<T> enum consumed by the FSMs: a task
// that hasn't finished this tick yields Pending, one that just completed
// yields Complete with its result.
type TaskUpdate[T any] struct {
	done  bool
	value T
}

func (u TaskUpdate[T]) Done() (T, bool) {
	return u.value, u.done
}

// Task wraps a one-shot detection closure. It auto-re-arms after
// RepeatDelay has elapsed since the previous completion, and guarantees at
// most one in-flight run via singleflight.Group, the idiomatic fit for the
// "one in-flight run at a time" guarantee in spec §5.
type Task[T any] struct {
	group      singleflight.Group
	running    bool
	resultCh   chan T
	lastResult T
	hasResult  bool
	finishedAt time.Time
	RepeatDelay time.Duration
}

// NewTask constructs a Task that re-arms repeatDelay after the previous run
// completed. repeatDelay of 0 means "rearm immediately every tick".
func NewTask[T any](repeatDelay time.Duration) *Task[T] {
	return &Task[T]{RepeatDelay: repeatDelay, resultCh: make(chan T, 1)}
}

// Completed reports whether a result is ready to be drained via Poll.
func (t *Task[T]) Completed() bool {
	if t.running {
		select {
		case v := <-t.resultCh:
			t.lastResult = v
			t.hasResult = true
			t.running = false
			t.finishedAt = time.Now()
		default:
			return false
		}
	}
	return t.hasResult
}

// Poll drives the task: if idle and due to re-arm, starts work (on a
// goroutine, coalesced via singleflight so a racing re-arm attaches to the
// same run); returns TaskUpdate with done=true exactly once per completed
// run, after which the task returns to idle and waits out RepeatDelay
// before the next run is armed.
func (t *Task[T]) Poll(work func() T) TaskUpdate[T] {
	if t.Completed() {
		v := t.lastResult
		t.hasResult = false
		return TaskUpdate[T]{done: true, value: v}
	}
	if t.running {
		return TaskUpdate[T]{done: false}
	}
	if !t.finishedAt.IsZero() && time.Since(t.finishedAt) < t.RepeatDelay {
		return TaskUpdate[T]{done: false}
	}
	t.running = true
	go func() {
		v, _, _ := t.group.Do("run", func() (interface{}, error) {
			return work(), nil
		})
		t.resultCh <- v.(T)
	}()
	return TaskUpdate[T]{done: false}
}

// UpdateDetectionTask is the one-shot (non-repeating) helper named in §2:
// it behaves like Poll with RepeatDelay=0 but never re-arms once a result
// has been delivered, leaving the Task in its single-assignment terminal
// state (§3 Lifecycles) until the caller explicitly resets it by replacing
// the Task with a fresh one.
func UpdateDetectionTask[T any](t *Task[T], work func() T) TaskUpdate[T] {
	if !t.running && !t.hasResult && !t.finishedAt.IsZero() {
		return TaskUpdate[T]{done: false}
	}
	return t.Poll(work)
}

// UpdateTaskRepeatable arms or polls an optional *Task[T] held behind a
// pointer field (as buff.rs and skill.rs do), constructing it lazily with
// the given repeat delay on first use.
func UpdateTaskRepeatable[T any](repeatDelay time.Duration, slot **Task[T], work func() T) TaskUpdate[T] {
	if *slot == nil {
		*slot = NewTask[T](repeatDelay)
	}
	return (*slot).Poll(work)
}
