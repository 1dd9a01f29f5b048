package kifu

import "testing"

// A handful of legal moves from the start position plus drops, in a fixed
// enumeration order.
func startposMoves() []LegalMove {
	return []LegalMove{
		{USI: "7g7f", Dest: "7f", Piece: "P"},
		{USI: "2g2f", Dest: "2f", Piece: "P"},
		{USI: "6i7h", Dest: "7h", Piece: "G"},
		{USI: "8h2b+", Dest: "2b", Piece: "B", Promotes: true},
		{USI: "8h2b", Dest: "2b", Piece: "B"},
	}
}

func TestResolveSimplePawnPush(t *testing.T) {
	var r Resolver
	mv, ok := r.Resolve("７六歩(77)", startposMoves(), "")
	if !ok || mv.USI != "7g7f" {
		t.Fatalf("resolve ７六歩 = %+v ok=%v, want 7g7f", mv, ok)
	}
}

func TestResolveKanjiRankAndZenkakuFile(t *testing.T) {
	var r Resolver
	mv, ok := r.Resolve("２六歩", startposMoves(), "")
	if !ok || mv.USI != "2g2f" {
		t.Fatalf("resolve ２六歩 = %+v ok=%v, want 2g2f", mv, ok)
	}
}

func TestResolvePromotionMarkers(t *testing.T) {
	var r Resolver
	mv, ok := r.Resolve("２二角成(88)", startposMoves(), "")
	if !ok || mv.USI != "8h2b+" {
		t.Fatalf("成 must pick the promoting move, got %+v ok=%v", mv, ok)
	}
	mv, ok = r.Resolve("２二角不成(88)", startposMoves(), "")
	if !ok || mv.USI != "8h2b" {
		t.Fatalf("不成 must pick the non-promoting move, got %+v ok=%v", mv, ok)
	}
	// No marker at all never promotes, even when promotion is legal.
	mv, ok = r.Resolve("２二角(88)", startposMoves(), "")
	if !ok || mv.USI != "8h2b" {
		t.Fatalf("unmarked move must not promote, got %+v ok=%v", mv, ok)
	}
}

func TestResolveSameSquare(t *testing.T) {
	var r Resolver
	legal := []LegalMove{{USI: "3a2b", Dest: "2b", Piece: "S"}}
	mv, ok := r.Resolve("同　銀(31)", legal, "2b")
	if !ok || mv.USI != "3a2b" {
		t.Fatalf("同 with prev dest = %+v ok=%v, want 3a2b", mv, ok)
	}
}

func TestResolveSameSquareWithoutPriorMove(t *testing.T) {
	var r Resolver
	if _, ok := r.Resolve("同　歩", startposMoves(), ""); ok {
		t.Fatalf("同 as first move must fail to resolve")
	}
}

func TestResolveDropFiltering(t *testing.T) {
	legal := []LegalMove{
		{USI: "5h5e", Dest: "5e", Piece: "R"},
		{USI: "P*5e", IsDrop: true, Dest: "5e", Piece: "P"},
		{USI: "B*5e", IsDrop: true, Dest: "5e", Piece: "B"},
	}
	var r Resolver
	mv, ok := r.Resolve("５五角打", legal, "")
	if !ok || mv.USI != "B*5e" {
		t.Fatalf("drop must match piece and drop type, got %+v ok=%v", mv, ok)
	}
	// A board-move description must never resolve to a drop: only the rook
	// move survives the type filter.
	mv, ok = r.Resolve("５五飛(58)", legal, "")
	if !ok || mv.USI != "5h5e" {
		t.Fatalf("board move matched a drop: %+v ok=%v", mv, ok)
	}
	if _, ok := r.Resolve("５五金打", legal, ""); ok {
		t.Fatalf("drop with no matching piece in hand must fail")
	}
}

func TestResolveKingSpellings(t *testing.T) {
	legal := []LegalMove{{USI: "K*5e", IsDrop: true, Dest: "5e", Piece: "K"}}
	var r Resolver
	for _, name := range []string{"玉", "王"} {
		if _, ok := r.Resolve("５五"+name+"打", legal, ""); !ok {
			t.Fatalf("%s must map to K", name)
		}
	}
}

func TestResolveAmbiguityTakesFirst(t *testing.T) {
	legal := []LegalMove{
		{USI: "6i5h", Dest: "5h", Piece: "G"},
		{USI: "4i5h", Dest: "5h", Piece: "G"},
	}
	var r Resolver
	mv, ok := r.Resolve("５八金(69)", legal, "")
	if !ok || mv.USI != "6i5h" {
		t.Fatalf("ambiguous description must take enumeration order, got %+v", mv)
	}
}

func TestResolveUnparsableSquare(t *testing.T) {
	var r Resolver
	if _, ok := r.Resolve("歩成", startposMoves(), ""); ok {
		t.Fatalf("description without a square must fail")
	}
}

// The square encoding computed from KIF coordinates has to be byte-identical
// to the encoding inside legal-move tokens, or destination filtering silently
// matches nothing.
func TestSquareMatchesLegalMoveEncoding(t *testing.T) {
	if got := Square(7, 6); got != "7f" {
		t.Fatalf("Square(7,6) = %q, want 7f", got)
	}
	sample := LegalMove{USI: "7g7f", Dest: "7f"}
	if DestSquare(sample.USI) != sample.Dest {
		t.Fatalf("token dest %q != move dest %q", DestSquare(sample.USI), sample.Dest)
	}
	if Square(7, 6) != DestSquare("7g7f") {
		t.Fatalf("hand-computed square diverges from token encoding")
	}
	if DestSquare("P*7f") != "7f" {
		t.Fatalf("drop token dest = %q, want 7f", DestSquare("P*7f"))
	}
}
