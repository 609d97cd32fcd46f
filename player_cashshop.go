package agent

const (
	cashShopEnteredDwellTicks = 305
	cashShopStallTicks        = 90
)

// updateCashShopThenExit is CashShopThenExit's Contextual.update (§4.5.10).
func updateCashShopThenExit(current Player, ctx *Context, state *PlayerPersistent) Player {
	switch current.CashShopStage {
	case CashShopEntering:
		if ctx.Detector.DetectPlayerInCashShop() {
			state.RuneCashShop = false
			return Player{Kind: PlayerCashShopThenExitState, CashShopStage: CashShopEntered}
		}
		ctx.Keys.Send(state.Config.CashShopKey)
		return current

	case CashShopEntered:
		return UpdateWithTimeout(current.CashShop, cashShopEnteredDwellTicks,
			func(t Timeout) Player { current.CashShop = t; return current },
			func(t Timeout) Player {
				return Player{Kind: PlayerCashShopThenExitState, CashShopStage: CashShopExitting}
			},
			func(t Timeout) Player { current.CashShop = t; return current },
		)

	case CashShopExitting:
		if !ctx.Detector.DetectPlayerInCashShop() {
			return Player{Kind: PlayerCashShopThenExitState, CashShopStage: CashShopExitted}
		}
		ctx.Keys.SendClickToFocus()
		ctx.Keys.Send(KeyEsc)
		ctx.Keys.Send(KeyEnter)
		return current

	case CashShopExitted:
		if _, found := ctx.Detector.DetectPlayer(ctx.Minimap.Bbox); found {
			return Player{Kind: PlayerCashShopThenExitState, CashShopStage: CashShopStalling}
		}
		return current

	default: // CashShopStalling
		return UpdateWithTimeout(current.CashShop, cashShopStallTicks,
			func(t Timeout) Player { current.CashShop = t; return current },
			func(t Timeout) Player { return Player{Kind: PlayerIdle} },
			func(t Timeout) Player { current.CashShop = t; return current },
		)
	}
}
