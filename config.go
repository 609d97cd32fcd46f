package agent

// Configuration is the per-character, persisted configuration surface
// (§3, §6.5): slots, thresholds, pathing flags, class. Grounded on the
// teacher's data.go Config field-grouping style, generalized to the
// spec's key/class/pathing vocabulary.
type Configuration struct {
	ID      int64
	Name    string
	Class   string

	Mode RotationMode

	Keys ConfigurationKeys

	DisableGrappling bool

	PotionThreshold   float64
	PotionKey         KeyKind
	PotionEveryMillis int64
	FeedPetKey        KeyKind

	UseKeyRedoPrecondition bool
}

// ConfigurationKeys is the key-binding subset the Player FSM reads
// through PlayerConfigSnapshot.
type ConfigurationKeys struct {
	Interact KeyKind
	CashShop KeyKind
	Jump     KeyKind
	UpJump   KeyKind
	Teleport KeyKind
	Grapple  KeyKind
}

// ToPlayerSnapshot projects the persisted Configuration down to the
// fields the Player FSM actually consults (§3 "a snapshot of player
// configuration").
func (c Configuration) ToPlayerSnapshot() PlayerConfigSnapshot {
	return PlayerConfigSnapshot{
		Class:                  c.Class,
		DisableGrappling:       c.DisableGrappling,
		InteractKey:            c.Keys.Interact,
		CashShopKey:            c.Keys.CashShop,
		JumpKey:                c.Keys.Jump,
		UpJumpKey:              c.Keys.UpJump,
		TeleportKey:            c.Keys.Teleport,
		GrappleKey:             c.Keys.Grapple,
		UseKeyRedoPrecondition: c.UseKeyRedoPrecondition,
	}
}
