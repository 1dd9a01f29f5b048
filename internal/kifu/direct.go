package kifu

import (
	"regexp"
	"strings"
)

// 移動元の注記: "７六歩(77)" の "(77)"
var originRe = regexp.MustCompile(`\(([1-9])([1-9])\)`)

// directMove converts one description without consulting a rules engine.
// KIF move lines annotate the origin square in parentheses, which together
// with the destination is enough to form the USI token; only 同 needs the
// previous destination. Returns ok=false when the annotation is missing.
func directMove(desc, prevDest string) (usiMove, dest string, ok bool) {
	desc = normalizeDigits(desc)

	if strings.HasPrefix(desc, "同") {
		if prevDest == "" {
			return "", "", false
		}
		dest = prevDest
	} else {
		var found bool
		dest, found = destFromDesc(desc)
		if !found {
			return "", "", false
		}
	}

	if strings.Contains(desc, "打") {
		for _, p := range pieceNames {
			if strings.Contains(desc, p.Ja) {
				return p.USI + "*" + dest, dest, true
			}
		}
		return "", "", false
	}

	m := originRe.FindStringSubmatch(desc)
	if m == nil {
		return "", "", false
	}
	from := Square(int(m[1][0]-'0'), int(m[2][0]-'0'))

	body := desc
	if i := strings.IndexByte(desc, '('); i >= 0 {
		body = desc[:i]
	}
	move := from + dest
	// Promotion is the trailing 成; a leading 成 belongs to a promoted piece
	// name (成銀 etc.) and must not be mistaken for it.
	if strings.HasSuffix(body, "成") && !strings.HasSuffix(body, "不成") {
		move += "+"
	}
	return move, dest, true
}
