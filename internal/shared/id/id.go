// Package id provides centralized ID generation for the emulator.
//
// Two formats are in use:
//   - App instances: "<appId>-<uuid>", matching what presentation code already
//     expects when it parses an instance id back to its app
//   - Everything else: prefixed ULIDs (ntf_*, trc_*, req_*), which sort by
//     creation time and read well in logs
package id

import (
	"crypto/rand"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// ============================================================================
// ID Prefixes
// ============================================================================

const (
	NotificationPrefix = "ntf"
	TracePrefix        = "trc"
	SpanPrefix         = "spn"
	RequestPrefix      = "req"
)

// ============================================================================
// ULID Generator
// ============================================================================

// Generator generates ULIDs with optional prefixes
type Generator struct {
	entropy   io.Reader
	entropyMu sync.Mutex
	now       func() time.Time
}

var (
	defaultGenerator *Generator
	once             sync.Once
)

// Default returns the singleton generator instance
func Default() *Generator {
	once.Do(func() {
		defaultGenerator = NewGenerator()
	})
	return defaultGenerator
}

// NewGenerator creates a generator backed by crypto/rand
func NewGenerator() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// NewGeneratorWithEntropy creates a generator with a custom entropy source
// and clock, for deterministic tests
func NewGeneratorWithEntropy(entropy io.Reader, now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{
		entropy: entropy,
		now:     now,
	}
}

// Generate creates a new ULID
func (g *Generator) Generate() ulid.ULID {
	g.entropyMu.Lock()
	defer g.entropyMu.Unlock()

	return ulid.MustNew(ulid.Timestamp(g.now()), g.entropy)
}

// GenerateWithPrefix creates a prefixed ULID string
func (g *Generator) GenerateWithPrefix(prefix string) string {
	return fmt.Sprintf("%s_%s", prefix, g.Generate().String())
}

// ============================================================================
// Typed Generators
// ============================================================================

// Instance returns a fresh instance id for an app
func Instance(appID string) string {
	return appID + "-" + uuid.NewString()
}

// Notification returns a fresh notification id
func Notification() string {
	return Default().GenerateWithPrefix(NotificationPrefix)
}

// Trace returns a fresh trace id
func Trace() string {
	return Default().GenerateWithPrefix(TracePrefix)
}

// Span returns a fresh span id
func Span() string {
	return Default().GenerateWithPrefix(SpanPrefix)
}

// ============================================================================
// Parsing
// ============================================================================

// IsValid checks if an ID string is a valid ULID
func IsValid(id string) bool {
	_, err := ulid.Parse(id)
	return err == nil
}

// Timestamp extracts the creation time from a ULID
func Timestamp(id string) (time.Time, error) {
	parsed, err := ulid.Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return ulid.Time(parsed.Time()), nil
}
