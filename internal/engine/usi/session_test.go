package usi

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"go.uber.org/zap"
)

func writeFakeEngine(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-engine.sh")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write fake engine: %v", err)
	}
	return path
}

const respondingEngine = `while read line; do
  case "$line" in
    usi) echo "id name fake"; echo "usiok" ;;
    isready) echo "readyok" ;;
    go*) echo "info depth 3 score cp 10 pv 7g7f"
         echo "info depth 12 score cp 31 pv 7g7f 3c3d"
         echo "bestmove 7g7f ponder 3c3d" ;;
    quit) exit 0 ;;
  esac
done
`

func waitGone(t *testing.T, pid int) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if err := syscall.Kill(pid, 0); err != nil {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("engine process %d still alive", pid)
}

func TestSessionLifecycle(t *testing.T) {
	path := writeFakeEngine(t, respondingEngine)
	ctx := context.Background()

	s, err := NewSession(ctx, path, Options{Variant: "shogi", Threads: 1, HashMB: 16}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	pid := s.cmd.Process.Pid

	ev, err := s.Evaluate(ctx, []string{"7g7f", "3c3d"}, 12)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if ev.ScoreCP != 31 {
		t.Fatalf("score = %d, want 31 (last score+depth line before bestmove)", ev.ScoreCP)
	}
	if ev.BestMove != "7g7f" {
		t.Fatalf("bestmove = %q, want 7g7f", ev.BestMove)
	}

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitGone(t, pid)
	// Close must stay idempotent.
	if err := s.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestSessionSpawnFailureIsNotTimeout(t *testing.T) {
	_, err := NewSession(context.Background(), filepath.Join(t.TempDir(), "missing"), Options{}, nil)
	if err == nil {
		t.Fatalf("expected spawn error")
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("spawn failure must be distinguishable from timeout: %v", err)
	}
	if !strings.Contains(err.Error(), "start engine") {
		t.Fatalf("unexpected spawn error: %v", err)
	}
}

func TestSessionSearchTimeoutKillsProcess(t *testing.T) {
	// Handshake works, go is never answered.
	path := writeFakeEngine(t, `while read line; do
  case "$line" in
    usi) echo "usiok" ;;
    isready) echo "readyok" ;;
    quit) exit 0 ;;
  esac
done
`)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s, err := NewSession(ctx, path, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	pid := s.cmd.Process.Pid

	searchCtx, searchCancel := context.WithTimeout(ctx, 200*time.Millisecond)
	defer searchCancel()
	if _, err := s.Evaluate(searchCtx, nil, 12); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	cancel()
	_ = s.Close()
	waitGone(t, pid)
}

func TestSessionEngineCrashDuringSearch(t *testing.T) {
	path := writeFakeEngine(t, `while read line; do
  case "$line" in
    usi) echo "usiok" ;;
    isready) echo "readyok" ;;
    go*) exit 3 ;;
  esac
done
`)
	ctx := context.Background()
	s, err := NewSession(ctx, path, Options{}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	pid := s.cmd.Process.Pid

	if _, err := s.Evaluate(ctx, nil, 12); err == nil {
		t.Fatalf("expected read error after crash")
	}
	_ = s.Close()
	waitGone(t, pid)
}

func TestSessionHandshakeTimeout(t *testing.T) {
	// Engine says nothing at all.
	path := writeFakeEngine(t, "sleep 60\n")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	_, err := NewSession(ctx, path, Options{}, zap.NewNop())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestParseScore(t *testing.T) {
	cases := []struct {
		line string
		want int
	}{
		{"info depth 12 seldepth 16 score cp -54 nodes 120000 pv 3c3d", -54},
		{"info depth 10 score mate 3 pv 2b3a", mateScore},
		{"info depth 10 score mate -2 pv 5i4h", -mateScore},
		{"info depth 10 score mate 0", mateScore},
		{"info depth 12 score cp garbage", 0},
		{"", 0},
		{"info depth 12 nodes 500", 0},
	}
	for _, c := range cases {
		if got := parseScore(c.line); got != c.want {
			t.Fatalf("parseScore(%q) = %d, want %d", c.line, got, c.want)
		}
	}
}

func TestParseBestMove(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"bestmove 7g7f ponder 3c3d", "7g7f"},
		{"bestmove P*5e", "P*5e"},
		{"bestmove resign", ""},
		{"bestmove (none)", ""},
		{"bestmove", ""},
	}
	for _, c := range cases {
		if got := parseBestMove(c.line); got != c.want {
			t.Fatalf("parseBestMove(%q) = %q, want %q", c.line, got, c.want)
		}
	}
}

func TestGetPreset(t *testing.T) {
	p, err := GetPreset("standard")
	if err != nil {
		t.Fatalf("GetPreset: %v", err)
	}
	if p.Depth != 12 || p.HashMB != 64 {
		t.Fatalf("standard preset = %+v", p)
	}
	if _, err := GetPreset("nonsense"); err == nil {
		t.Fatalf("unknown preset must error")
	}
	names := PresetNames()
	if len(names) != 3 || names[0] != "deep" {
		t.Fatalf("preset names = %v", names)
	}
}
