package idgen

import (
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"

	"github.com/mcoot/colorclaim/internal/dependencies/clock"
	"github.com/mcoot/colorclaim/internal/model"
)

// DefaultSeed is the hash seed used when none is configured
const DefaultSeed uint64 = 0xCAFEBABE

// Generator produces player ids that can be mocked for testing
type Generator interface {
	NewPlayerID() model.PlayerID
}

// HashGenerator derives ids by hashing a random per-connection nonce with the
// connect time, rendered as lowercase hex. Safe for concurrent use.
type HashGenerator struct {
	seed  uint64
	clock clock.Clock
}

// New creates a HashGenerator
func New(seed uint64, clk clock.Clock) *HashGenerator {
	return &HashGenerator{seed: seed, clock: clk}
}

// NewPlayerID returns a fresh id
func (g *HashGenerator) NewPlayerID() model.PlayerID {
	d := xxhash.NewWithSeed(g.seed)
	nonce := uuid.New()
	_, _ = d.Write(nonce[:])
	_, _ = d.WriteString(strconv.FormatInt(g.clock.Now().UnixNano(), 10))
	return model.PlayerID(strconv.FormatUint(d.Sum64(), 16))
}
