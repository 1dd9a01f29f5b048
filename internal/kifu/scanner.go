package kifu

import (
	"regexp"
	"strings"
)

// 指し手行: "   1 ７六歩(77)   ( 0:03/00:00:03)"
var moveLineRe = regexp.MustCompile(`^(\d+)\s+(.+?)\s+\(`)

// terminalResults end the record; they are not moves.
var terminalResults = map[string]struct{}{
	"投了":   {},
	"中断":   {},
	"反則勝ち": {},
	"反則負け": {},
	"千日手":  {},
	"持将棋":  {},
}

// MoveScanner walks the numbered move lines of a KIF record in order and
// stops, permanently, at the first terminal-result line. A scanner cannot be
// rewound; create a new one per pass.
type MoveScanner struct {
	lines   []string
	text    string
	stopped bool
}

func NewMoveScanner(kifText string) *MoveScanner {
	return &MoveScanner{lines: strings.Split(kifText, "\n")}
}

// Scan advances to the next move description. It returns false once the
// record is exhausted or a terminal result was reached.
func (s *MoveScanner) Scan() bool {
	if s.stopped {
		return false
	}
	for len(s.lines) > 0 {
		line := strings.TrimSpace(s.lines[0])
		s.lines = s.lines[1:]

		m := moveLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		desc := strings.TrimSpace(m[2])
		if _, terminal := terminalResults[desc]; terminal {
			s.stopped = true
			return false
		}
		s.text = desc
		return true
	}
	s.stopped = true
	return false
}

// Text returns the description matched by the last successful Scan.
func (s *MoveScanner) Text() string { return s.text }

// JaMoves collects every move description up to the first terminal result.
// The list is independent of move resolution: a record whose moves cannot be
// converted to USI still yields its full Japanese notation here.
func JaMoves(kifText string) []string {
	var out []string
	sc := NewMoveScanner(kifText)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out
}
