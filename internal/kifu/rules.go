package kifu

// LegalMove is one legal move as enumerated by an external rules engine.
// Dest uses the same square encoding as the USI token itself (file digit +
// rank letter), so resolver-computed squares compare byte-for-byte.
type LegalMove struct {
	USI      string
	IsDrop   bool
	Dest     string
	Piece    string
	Promotes bool
}

// Board is a mutable position owned by a single Builder pass.
type Board interface {
	LegalMoves() []LegalMove
	Push(usi string) error
}

// Rules produces fresh start-position boards. Shogi rule implementation is
// deliberately out of scope here; callers inject one. When none is wired the
// Builder still handles standard KIF through the direct parser.
type Rules interface {
	NewBoard() Board
}

// DestSquare extracts the destination square from a USI move token.
// Works for both board moves ("7g7f", "2b3a+") and drops ("P*7f").
func DestSquare(usi string) string {
	if len(usi) < 4 {
		return ""
	}
	return usi[2:4]
}
