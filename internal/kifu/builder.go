package kifu

// Outcome distinguishes why a build produced no USI moves.
type Outcome int

const (
	// OutcomeOK means at least one move was converted.
	OutcomeOK Outcome = iota
	// OutcomeEmpty means the record contained no move lines at all.
	OutcomeEmpty
	// OutcomeUnresolved means move lines existed but none could be converted.
	OutcomeUnresolved
)

// Moves is the result of converting one KIF record. USI may be shorter than
// Ja: conversion stops at the first description it cannot handle while the
// Japanese list always runs to the terminal-result marker.
type Moves struct {
	USI     []string
	Ja      []string
	Outcome Outcome
}

// Builder converts whole KIF records to USI move lists. The direct parser
// (origin squares from the KIF annotations) runs first; whenever it yields
// nothing the legal-move resolver takes over, driving the injected rules
// engine position by position.
type Builder struct {
	rules Rules
}

// NewBuilder returns a Builder. rules may be nil, in which case only the
// direct strategy is available.
func NewBuilder(rules Rules) *Builder {
	return &Builder{rules: rules}
}

func (b *Builder) Build(kifText string) Moves {
	out := Moves{Ja: JaMoves(kifText)}
	if len(out.Ja) == 0 {
		out.Outcome = OutcomeEmpty
		return out
	}

	if usi := directPass(kifText); len(usi) > 0 {
		out.USI = usi
		return out
	}
	if b.rules != nil {
		if usi := b.resolvePass(kifText); len(usi) > 0 {
			out.USI = usi
			return out
		}
	}
	out.Outcome = OutcomeUnresolved
	return out
}

func directPass(kifText string) []string {
	var moves []string
	prev := ""
	sc := NewMoveScanner(kifText)
	for sc.Scan() {
		usi, dest, ok := directMove(sc.Text(), prev)
		if !ok {
			break
		}
		moves = append(moves, usi)
		prev = dest
	}
	return moves
}

// resolvePass replays the record on a fresh board so that each description is
// matched against the legal moves of the position it was played in.
func (b *Builder) resolvePass(kifText string) []string {
	board := b.rules.NewBoard()
	var r Resolver
	var moves []string
	prev := ""
	sc := NewMoveScanner(kifText)
	for sc.Scan() {
		mv, ok := r.Resolve(sc.Text(), board.LegalMoves(), prev)
		if !ok {
			break
		}
		if err := board.Push(mv.USI); err != nil {
			break
		}
		moves = append(moves, mv.USI)
		prev = mv.Dest
	}
	return moves
}
