package kifu

import "strings"

// 漢数字の段 → 1-9
var kanjiDigits = map[rune]int{
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

type pieceName struct {
	Ja  string
	USI string
}

// 玉 and 王 are both kings.
var pieceNames = []pieceName{
	{"歩", "P"}, {"香", "L"}, {"桂", "N"}, {"銀", "S"}, {"金", "G"},
	{"角", "B"}, {"飛", "R"}, {"玉", "K"}, {"王", "K"},
}

// Square renders a 1-9 file/rank pair in the USI square encoding: the file
// digit as-is and the rank as 'a'..'i'. This must stay identical to the
// encoding inside LegalMove tokens or destination filtering matches nothing.
func Square(file, rank int) string {
	if file < 1 || file > 9 || rank < 1 || rank > 9 {
		return ""
	}
	return string([]byte{byte('0' + file), byte('a' + rank - 1)})
}

// normalizeDigits rewrites full-width digits to ASCII.
func normalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '０' && r <= '９' {
			return '0' + (r - '０')
		}
		return r
	}, s)
}

// destFromDesc reads the destination square from a (digit-normalized) move
// description: a 1-9 file digit followed by a rank written either as a digit
// or as a kanji numeral. Scanning stops at the origin annotation.
func destFromDesc(desc string) (string, bool) {
	runes := []rune(desc)
	if len(runes) < 2 {
		return "", false
	}
	if runes[0] < '1' || runes[0] > '9' {
		return "", false
	}
	file := int(runes[0] - '0')
	for _, r := range runes[1:] {
		if r == '(' {
			break
		}
		if r >= '1' && r <= '9' {
			return Square(file, int(r-'0')), true
		}
		if rank, ok := kanjiDigits[r]; ok {
			return Square(file, rank), true
		}
	}
	return "", false
}

// Resolver converts one Japanese move description into a USI move by
// filtering the legal-move set of the current position.
type Resolver struct{}

// Resolve picks the legal move matching desc. prevDest is the destination of
// the previous resolved move, needed for the 同 ("same square") shorthand;
// pass "" when no move has been resolved yet.
//
// KIF descriptions carry no origin square, so several legal moves can survive
// filtering; the first in enumeration order is taken. Callers must treat that
// as a known ambiguity, not a uniqueness guarantee.
func (Resolver) Resolve(desc string, legal []LegalMove, prevDest string) (LegalMove, bool) {
	desc = normalizeDigits(desc)

	var dest string
	if strings.HasPrefix(desc, "同") {
		if prevDest == "" {
			return LegalMove{}, false
		}
		dest = prevDest
	} else {
		var ok bool
		dest, ok = destFromDesc(desc)
		if !ok {
			return LegalMove{}, false
		}
	}

	isDrop := strings.Contains(desc, "打")
	// A move without an explicit 成 never promotes, even when promotion is
	// legal; 不成 declines explicitly.
	promotes := strings.Contains(desc, "成") && !strings.Contains(desc, "不成")

	for _, mv := range legal {
		if mv.Dest != dest {
			continue
		}
		if isDrop {
			if !mv.IsDrop {
				continue
			}
			if dropPieceMatches(desc, mv.Piece) {
				return mv, true
			}
			continue
		}
		if mv.IsDrop {
			continue
		}
		if mv.Promotes != promotes {
			continue
		}
		return mv, true
	}
	return LegalMove{}, false
}

func dropPieceMatches(desc, piece string) bool {
	for _, p := range pieceNames {
		if p.USI == piece && strings.Contains(desc, p.Ja) {
			return true
		}
	}
	return false
}
