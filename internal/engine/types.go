package engine

// Seeds identifies a provably-fair randomness stream. The server seed is
// kept secret while a player uses it; only its SHA-256 hash is exposed.
type Seeds struct {
	Server string // ASCII; do NOT hex-decode
	Client string
}

// Source yields uniform floats in [0, 1). The engine consumes a Source but
// never constructs one inside game logic, so tests can substitute a
// fixed-seed stream and replay any card or roll exactly.
type Source interface {
	NextFloat() float64
}
