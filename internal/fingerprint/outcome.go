package fingerprint

import "github.com/yourusername/true-odds/internal/models"

// Qualifies reports whether the fingerprint settles a market as a winner.
// known is false for open market keys no rule exists for.
func (f Fingerprint) Qualifies(key models.MarketKey) (hit bool, known bool) {
	switch key {
	case models.MarketHomeWin:
		return f.FTResult == ResultWin, true
	case models.MarketDraw:
		return f.FTResult == ResultDraw, true
	case models.MarketAwayWin:
		return f.FTResult == ResultLoss, true

	case models.MarketHTHomeWin:
		return f.HTResult == ResultWin, true
	case models.MarketHTDraw:
		return f.HTResult == ResultDraw, true
	case models.MarketHTAwayWin:
		return f.HTResult == ResultLoss, true

	case models.MarketOver15:
		return f.Over(1.5), true
	case models.MarketUnder15:
		return !f.Over(1.5), true
	case models.MarketOver25:
		return f.Over(2.5), true
	case models.MarketUnder25:
		return !f.Over(2.5), true
	case models.MarketOver35:
		return f.Over(3.5), true
	case models.MarketUnder35:
		return !f.Over(3.5), true
	case models.MarketOver45:
		return f.Over(4.5), true
	case models.MarketUnder45:
		return !f.Over(4.5), true
	case models.MarketOver55:
		return f.Over(5.5), true
	case models.MarketUnder55:
		return !f.Over(5.5), true

	case models.MarketHTOver05:
		return f.HTOver(0.5), true
	case models.MarketHTUnder05:
		return !f.HTOver(0.5), true
	case models.MarketHTOver15:
		return f.HTOver(1.5), true
	case models.MarketHTUnder15:
		return !f.HTOver(1.5), true
	case models.MarketHTOver25:
		return f.HTOver(2.5), true
	case models.MarketHTUnder25:
		return !f.HTOver(2.5), true
	case models.MarketHTOver35:
		return f.HTOver(3.5), true
	case models.MarketHTUnder35:
		return !f.HTOver(3.5), true
	case models.MarketHTOver45:
		return f.HTOver(4.5), true
	case models.MarketHTUnder45:
		return !f.HTOver(4.5), true

	case models.MarketBTTSYes:
		return f.FTBTTS, true
	case models.MarketBTTSNo:
		return !f.FTBTTS, true
	case models.MarketHTBTTSYes:
		return f.HTBTTS, true
	case models.MarketHTBTTSNo:
		return !f.HTBTTS, true

	case models.MarketAHHomeMinus1:
		return f.SignedMargin() >= 2, true
	case models.MarketAHHomeMinus1Push:
		return f.SignedMargin() == 1, true
	case models.MarketAHAwayPlus1:
		return f.SignedMargin() <= 0, true
	case models.MarketAHAwayMinus1:
		return f.SignedMargin() <= -2, true
	case models.MarketAHAwayMinus1Push:
		return f.SignedMargin() == -1, true
	case models.MarketAHHomePlus1:
		return f.SignedMargin() >= 0, true

	case models.MarketDCHomeDraw:
		return f.FTResult != ResultLoss, true
	case models.MarketDCHomeAway:
		return f.FTResult != ResultDraw, true
	case models.MarketDCDrawAway:
		return f.FTResult != ResultWin, true
	}
	return false, false
}

// Mask returns a bit set over the market catalogue, bit i set when
// models.Catalogue()[i] is a winner for this fingerprint.
func (f Fingerprint) Mask() uint64 {
	var mask uint64
	for i, key := range catalogue {
		if hit, _ := f.Qualifies(key); hit {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

var catalogue = models.Catalogue()
