package kifu

import (
	"reflect"
	"testing"
)

const sampleKif = `# ---- Kifu for Windows V7 棋譜ファイル ----
開始日時：2024/01/01 10:00
手合割：平手
先手：先手太郎
後手：後手次郎
手数----指手---------消費時間--
   1 ７六歩(77)   ( 0:03/00:00:03)
   2 ３四歩(33)   ( 0:02/00:00:02)
   3 ２二角成(88)   ( 0:05/00:00:08)
   4 同　銀(31)   ( 0:01/00:00:03)
   5 投了   ( 0:04/00:00:12)
`

func TestJaMovesStopsAtTerminalResult(t *testing.T) {
	got := JaMoves(sampleKif)
	want := []string{"７六歩(77)", "３四歩(33)", "２二角成(88)", "同　銀(31)"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ja moves = %v, want %v", got, want)
	}
}

func TestJaMovesIgnoresLinesAfterTerminal(t *testing.T) {
	kif := sampleKif + "   6 ７八金(69)   ( 0:01/00:00:04)\n"
	got := JaMoves(kif)
	if len(got) != 4 {
		t.Fatalf("expected 4 moves, got %d: %v", len(got), got)
	}
	for _, mv := range got {
		if _, terminal := terminalResults[mv]; terminal {
			t.Fatalf("terminal marker leaked into move list: %v", got)
		}
	}
}

func TestScannerIsNotRestartable(t *testing.T) {
	sc := NewMoveScanner(sampleKif)
	n := 0
	for sc.Scan() {
		n++
	}
	if n != 4 {
		t.Fatalf("first pass scanned %d moves, want 4", n)
	}
	if sc.Scan() {
		t.Fatalf("exhausted scanner must keep returning false")
	}
}

func TestJaMovesEmptyRecord(t *testing.T) {
	if got := JaMoves("手合割：平手\n"); len(got) != 0 {
		t.Fatalf("expected no moves, got %v", got)
	}
}

func TestTerminalVariants(t *testing.T) {
	for _, marker := range []string{"投了", "中断", "反則勝ち", "反則負け", "千日手", "持将棋"} {
		kif := "   1 ７六歩(77)   ( 0:03/00:00:03)\n   2 " + marker + "   ( 0:01/00:00:01)\n"
		got := JaMoves(kif)
		if len(got) != 1 || got[0] != "７六歩(77)" {
			t.Fatalf("marker %s: got %v", marker, got)
		}
	}
}
