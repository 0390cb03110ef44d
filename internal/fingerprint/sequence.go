package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/yourusername/true-odds/internal/models"
)

// SequenceLength is the number of most recent matches encoded per stream
const SequenceLength = 8

// SequenceCode encodes the most recent matches of a stream, e.g.
// "H2H:HOG-DUN" or "HOME:WOG-LUN". Each match is result, over/under 2.5 and
// btts. Head-to-head results are H/D/A; form results are W/D/L from the
// perspective of the team the stream belongs to.
func SequenceCode(role models.Role, prints []Fingerprint) string {
	prefix := sequencePrefix(role)
	if len(prints) == 0 {
		return "NO_" + prefix + "_DATA"
	}
	if len(prints) > SequenceLength {
		prints = prints[:SequenceLength]
	}

	parts := make([]string, 0, len(prints))
	for _, f := range prints {
		var b strings.Builder
		b.WriteByte(resultCode(role, f.FTResult))
		if f.Over(2.5) {
			b.WriteByte('O')
		} else {
			b.WriteByte('U')
		}
		b.WriteByte(flag(f.FTBTTS))
		parts = append(parts, b.String())
	}
	return prefix + ":" + strings.Join(parts, "-")
}

func sequencePrefix(role models.Role) string {
	switch role {
	case models.RoleHomeForm:
		return "HOME"
	case models.RoleAwayForm:
		return "AWAY"
	default:
		return "H2H"
	}
}

func resultCode(role models.Role, r Result) byte {
	switch role {
	case models.RoleHeadToHead:
		switch r {
		case ResultWin:
			return 'H'
		case ResultLoss:
			return 'A'
		}
		return 'D'
	case models.RoleAwayForm:
		// away form records carry the team on the away side
		switch r {
		case ResultWin:
			return 'L'
		case ResultLoss:
			return 'W'
		}
		return 'D'
	}
	return byte(r)
}

// PatternID hashes stream sequence codes into a short stable identifier
func PatternID(codes ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(codes, "|")))
	return hex.EncodeToString(sum[:8])
}
