package pipeline

import (
	"carvan/internal"
	"carvan/internal/util"
)

// Listed prices arrive net under the old 19% VAT regime; the catalog sells
// under 21%. The commission tier is chosen from the original net amount, not
// the rebased one.
const vatRebase = 1.21 / 1.19

func commissionRate(amount float64) float64 {
	switch {
	case amount < 25000:
		return 0.095
	case amount < 40000:
		return 0.075
	case amount < 60000:
		return 0.065
	case amount < 90000:
		return 0.055
	case amount < 250000:
		return 0.045
	default:
		return 0.035
	}
}

// variantPrice computes the adjusted selling price from a record's price
// field. The first non-empty source wins: price.amount, price.total.amount,
// price.value, then the flat "price/total/amount" key. Returns ok=false when
// no valid positive amount parses.
func variantPrice(rec internal.RawRecord) (string, bool) {
	raw := ""
	for _, candidate := range []string{
		lookupPath(rec, "price", "amount"),
		lookupPath(rec, "price", "total", "amount"),
		lookupPath(rec, "price", "value"),
		util.Stringify(rec["price/total/amount"]),
	} {
		if candidate != "" {
			raw = candidate
			break
		}
	}

	amount, ok := util.ParseAmount(raw)
	if !ok || amount <= 0 {
		return "", false
	}
	adjusted := amount * vatRebase * (1 + commissionRate(amount))
	return util.FormatAmount(util.RoundHalfUp2(adjusted)), true
}

// lookupPath walks nested maps tolerantly and stringifies the leaf; any
// missing or wrong-typed step yields "".
func lookupPath(rec internal.RawRecord, keys ...string) string {
	var current any = map[string]any(rec)
	for _, key := range keys {
		m, ok := current.(map[string]any)
		if !ok {
			return ""
		}
		current = m[key]
	}
	return util.Stringify(current)
}
