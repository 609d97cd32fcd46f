package agent

// KeySender is the key/mouse injection boundary (§6.2). Backends live in
// internal/keyinput; the core only ever holds this interface.
type KeySender interface {
	Send(k KeyKind) error
	SendUp(k KeyKind) error
	SendDown(k KeyKind) error
	SendClickToFocus() error
}

// KeyInputKind selects how a Local backend delivers input.
type KeyInputKind int

const (
	KeyInputLocal KeyInputKind = iota
	KeyInputForeground
)

// DownKeyTracker is embedded by KeySender backends (notably the RPC
// backend, §6.2/§5) to reject redundant down/up transitions: send_down on
// an already-down key, or send_up on an already-up key, is a no-op.
type DownKeyTracker struct {
	down map[KeyKind]bool
}

func NewDownKeyTracker() *DownKeyTracker {
	return &DownKeyTracker{down: make(map[KeyKind]bool)}
}

// MarkDown marks k as held. It returns true if this call is a no-op (k was
// already down).
func (d *DownKeyTracker) MarkDown(k KeyKind) (redundant bool) {
	if d.down[k] {
		return true
	}
	d.down[k] = true
	return false
}

// MarkUp marks k as released, returning true if this call is a no-op (k
// was already up).
func (d *DownKeyTracker) MarkUp(k KeyKind) (redundant bool) {
	if !d.down[k] {
		return true
	}
	delete(d.down, k)
	return false
}
