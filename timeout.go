package agent

// Timeout is a monotonic tick counter shared by every FSM that needs to
// bound how long it waits in a substate. Invariants (§3, §8): started=false
// implies current=total=0, and current never exceeds the max passed to
// UpdateWithTimeout.
type Timeout struct {
	Current uint32
	Total   uint32
	Started bool
}

// UpdateWithTimeout dispatches on t's lifecycle: not started yet runs
// onStart; current>=max runs onTimeout; otherwise runs onUpdate with
// current and total both incremented by one tick.
//
// onStart, onTimeout and onUpdate each receive the Timeout to use for the
// resulting value and return the caller's result type R.
func UpdateWithTimeout[R any](
	t Timeout,
	max uint32,
	onStart func(Timeout) R,
	onTimeout func(Timeout) R,
	onUpdate func(Timeout) R,
) R {
	if !t.Started {
		return onStart(Timeout{Current: 0, Total: 0, Started: true})
	}
	if t.Current >= max {
		return onTimeout(t)
	}
	return onUpdate(Timeout{Current: t.Current + 1, Total: t.Total + 1, Started: true})
}

// UpdateMovingAxisTimeout is the Moving-state specialization named in
// §4.5.7/§8: it resets Current to 0 whenever the tracked axis value changed
// since the previous tick, regardless of the Timeout's own progress. It is
// idempotent when prev=cur and t.Current=max (§8 round-trip property).
func UpdateMovingAxisTimeout(prev, cur int, t Timeout, max uint32) Timeout {
	if prev != cur {
		return Timeout{Current: 0, Total: t.Total, Started: t.Started}
	}
	if !t.Started {
		return Timeout{Current: 0, Total: 0, Started: true}
	}
	if t.Current >= max {
		return t
	}
	return Timeout{Current: t.Current + 1, Total: t.Total + 1, Started: true}
}
