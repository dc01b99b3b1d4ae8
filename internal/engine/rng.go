package engine

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
)

// ByteGenerator generates cryptographically unpredictable bytes using
// HMAC-SHA256 in a streaming fashion. Each (seeds, nonce) pair produces an
// independent stream; the same pair always produces the same stream.
type ByteGenerator struct {
	seeds        Seeds
	nonce        uint64
	currentRound uint64
	currentPos   int
	buffer       [32]byte
}

// NewByteGenerator creates a byte generator for the given seeds and nonce.
func NewByteGenerator(seeds Seeds, nonce uint64) *ByteGenerator {
	bg := &ByteGenerator{
		seeds: seeds,
		nonce: nonce,
	}
	bg.generateRound()
	return bg
}

// Next returns the next byte from the stream.
func (bg *ByteGenerator) Next() byte {
	if bg.currentPos >= 32 {
		bg.currentRound++
		bg.currentPos = 0
		bg.generateRound()
	}

	b := bg.buffer[bg.currentPos]
	bg.currentPos++
	return b
}

// NextFloat generates the next float in [0, 1) using exactly 4 bytes.
func (bg *ByteGenerator) NextFloat() float64 {
	b0 := bg.Next()
	b1 := bg.Next()
	b2 := bg.Next()
	b3 := bg.Next()

	return bytesToFloat([4]byte{b0, b1, b2, b3})
}

func (bg *ByteGenerator) generateRound() {
	h := hmac.New(sha256.New, []byte(bg.seeds.Server))
	message := fmt.Sprintf("%s:%d:%d", bg.seeds.Client, bg.nonce, bg.currentRound)
	h.Write([]byte(message))
	copy(bg.buffer[:], h.Sum(nil))
}

// bytesToFloat converts exactly 4 bytes to a float64 in [0, 1).
func bytesToFloat(bytes [4]byte) float64 {
	result := 0.0
	for i, b := range bytes {
		divider := math.Pow(256, float64(i+1))
		result += float64(b) / divider
	}
	return result
}

// Floats generates count floats for the given seeds and nonce.
func Floats(seeds Seeds, nonce uint64, count int) []float64 {
	bg := NewByteGenerator(seeds, nonce)
	floats := make([]float64, count)

	for i := 0; i < count; i++ {
		floats[i] = bg.NextFloat()
	}

	return floats
}

// NewServerSeed returns a fresh 32-byte hex server seed from crypto/rand.
func NewServerSeed() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate server seed: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// SeedHash returns the SHA-256 hex digest of a server seed. Only the hash
// is ever exposed to players while the seed is in use.
func SeedHash(serverSeed string) string {
	if serverSeed == "" {
		return ""
	}

	hash := sha256.Sum256([]byte(serverSeed))
	return hex.EncodeToString(hash[:])
}
