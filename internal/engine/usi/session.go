package usi

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Per-line read budget at every protocol stage. A stage that stays
	// silent longer than this is fatal to the whole session.
	lineReadTimeout = 30 * time.Second
	// How long quit gets before the process is killed.
	quitWaitTimeout = 5 * time.Second

	mateScore = 30000
)

type Options struct {
	Variant string
	Threads int
	HashMB  int
}

// Session owns one USI engine process for the duration of one analysis
// request. It is not reusable: Close terminates the process, and sessions
// must never be shared between requests.
type Session struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *bufio.Reader
	logger *zap.Logger

	mu        sync.Mutex
	closeOnce sync.Once
	closeErr  error
}

// NewSession spawns the engine and completes the USI handshake: usi/usiok,
// variant, thread and hash options, then isready/readyok. Any timeout here
// tears the process down and fails the session.
func NewSession(ctx context.Context, binaryPath string, opt Options, logger *zap.Logger) (*Session, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	cmd := exec.CommandContext(ctx, binaryPath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutPipe, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdoutPipe.Close()
		return nil, fmt.Errorf("start engine: %w", err)
	}

	s := &Session{
		cmd:    cmd,
		stdin:  stdin,
		stdout: bufio.NewReader(stdoutPipe),
		logger: logger,
	}

	if err := s.handshake(ctx, opt); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) handshake(ctx context.Context, opt Options) error {
	if err := s.send("usi\n"); err != nil {
		return fmt.Errorf("send usi: %w", err)
	}
	if err := s.awaitToken(ctx, "usiok"); err != nil {
		return fmt.Errorf("wait usiok: %w", err)
	}

	variant := strings.TrimSpace(opt.Variant)
	if variant == "" {
		variant = "shogi"
	}
	threads := opt.Threads
	if threads <= 0 {
		threads = 1
	}
	hash := opt.HashMB
	if hash <= 0 {
		hash = 64
	}
	cmds := []string{
		fmt.Sprintf("setoption name USI_Variant value %s\n", variant),
		fmt.Sprintf("setoption name Threads value %d\n", threads),
		fmt.Sprintf("setoption name Hash value %d\n", hash),
	}
	for _, cmd := range cmds {
		if err := s.send(cmd); err != nil {
			return fmt.Errorf("apply options: %w", err)
		}
	}

	if err := s.send("isready\n"); err != nil {
		return fmt.Errorf("send isready: %w", err)
	}
	if err := s.awaitToken(ctx, "readyok"); err != nil {
		return fmt.Errorf("wait readyok: %w", err)
	}
	return nil
}

// Evaluation is one position's raw engine verdict. ScoreCP is relative to
// the side to move; mates saturate to ±30000.
type Evaluation struct {
	ScoreCP  int
	BestMove string
}

// Evaluate sets up the start position plus the given move prefix and runs a
// fixed-depth search. Of all info lines carrying both a score and a depth,
// the last one before bestmove is the representative evaluation.
func (s *Session) Evaluate(ctx context.Context, moves []string, depth int) (Evaluation, error) {
	positionCmd := buildPositionCommand(moves)
	if err := s.send(positionCmd); err != nil {
		return Evaluation{}, fmt.Errorf("send position: %w", err)
	}
	goCmd := "go depth " + strconv.Itoa(depth)
	if err := s.send(goCmd + "\n"); err != nil {
		return Evaluation{}, fmt.Errorf("send go: %w", err)
	}

	var infoLine string
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			s.logger.Error("usi read failed",
				zap.String("position", strings.TrimSpace(positionCmd)),
				zap.String("go", goCmd),
				zap.Error(err))
			return Evaluation{}, fmt.Errorf("read line: %w", err)
		}
		if strings.Contains(line, "score") && strings.Contains(line, "depth") {
			infoLine = line
		}
		if strings.HasPrefix(line, "bestmove") {
			return Evaluation{
				ScoreCP:  parseScore(infoLine),
				BestMove: parseBestMove(line),
			}, nil
		}
	}
}

func buildPositionCommand(moves []string) string {
	var sb strings.Builder
	sb.WriteString("position startpos")
	if len(moves) > 0 {
		sb.WriteString(" moves ")
		sb.WriteString(strings.Join(moves, " "))
	}
	sb.WriteString("\n")
	return sb.String()
}

// parseScore extracts the score following the score tag: cp as-is, mate
// saturated to ±30000. Malformed or missing scores yield 0.
func parseScore(infoLine string) int {
	parts := strings.Fields(infoLine)
	for i := 0; i+2 < len(parts); i++ {
		if parts[i] != "score" {
			continue
		}
		switch parts[i+1] {
		case "cp":
			if v, err := strconv.Atoi(parts[i+2]); err == nil {
				return v
			}
		case "mate":
			if v, err := strconv.Atoi(parts[i+2]); err == nil {
				if v >= 0 {
					return mateScore
				}
				return -mateScore
			}
		}
		return 0
	}
	return 0
}

// parseBestMove pulls the move token off a bestmove line. Engines answer
// "bestmove resign" or "bestmove (none)" when no legal reply exists; both
// map to the empty token.
func parseBestMove(line string) string {
	parts := strings.Fields(line)
	if len(parts) < 2 {
		return ""
	}
	switch parts[1] {
	case "resign", "(none)", "none":
		return ""
	}
	return parts[1]
}

// Close sends quit and waits briefly for the process to exit, killing it when
// it does not. Safe to call multiple times; the process is guaranteed gone
// (or reaped) when Close returns.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		_ = s.send("quit\n")
		s.mu.Lock()
		if s.stdin != nil {
			_ = s.stdin.Close()
		}
		s.mu.Unlock()

		if s.cmd == nil || s.cmd.Process == nil {
			return
		}
		done := make(chan error, 1)
		go func() { done <- s.cmd.Wait() }()
		select {
		case err := <-done:
			s.closeErr = err
		case <-time.After(quitWaitTimeout):
			_ = s.cmd.Process.Kill()
			s.closeErr = <-done
		}
	})
	return s.closeErr
}

func (s *Session) send(msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := io.WriteString(s.stdin, msg)
	return err
}

func (s *Session) awaitToken(ctx context.Context, token string) error {
	for {
		line, err := s.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.Contains(line, token) {
			return nil
		}
	}
}

func (s *Session) readLine(ctx context.Context) (string, error) {
	lineCtx, cancel := context.WithTimeout(ctx, lineReadTimeout)
	defer cancel()

	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		line, err := s.stdout.ReadString('\n')
		ch <- result{line: strings.TrimSpace(line), err: err}
	}()

	select {
	case <-lineCtx.Done():
		return "", lineCtx.Err()
	case res := <-ch:
		return res.line, res.err
	}
}
