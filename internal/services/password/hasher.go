package password

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Errors
var (
	ErrMismatch      = errors.New("password does not match hash")
	ErrMalformedHash = errors.New("malformed password hash")
)

// Params are the argon2id cost parameters baked into each encoded hash.
type Params struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	SaltLen uint32
	KeyLen  uint32
}

// DefaultParams returns the current recommended cost parameters.
// Hashes produced with older parameters still verify; NeedsRehash
// reports when a stored hash should be upgraded to these.
func DefaultParams() Params {
	return Params{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 2,
		SaltLen: 16,
		KeyLen:  32,
	}
}

// Config holds configuration for the hasher
type Config struct {
	Params Params
	// MaxConcurrent bounds how many hash computations run at once.
	// Hashing is memory-hard, so an unbounded burst of logins could
	// exhaust the process.
	MaxConcurrent int
}

// DefaultConfig returns default hasher configuration
func DefaultConfig() Config {
	return Config{
		Params:        DefaultParams(),
		MaxConcurrent: runtime.GOMAXPROCS(0),
	}
}

// Hasher computes and verifies argon2id password hashes with a bound
// on concurrent computations.
type Hasher struct {
	params Params
	sem    chan struct{}
}

// New creates a new Hasher
func New(cfg Config) *Hasher {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = DefaultConfig().MaxConcurrent
	}
	if cfg.Params == (Params{}) {
		cfg.Params = DefaultParams()
	}
	return &Hasher{
		params: cfg.Params,
		sem:    make(chan struct{}, cfg.MaxConcurrent),
	}
}

// acquire blocks until a hashing slot is free or the context is done
func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() {
	<-h.sem
}

// Hash derives an encoded argon2id hash of the password
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt,
		h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	return encodeHash(h.params, salt, key), nil
}

// Verify checks the password against an encoded hash. It returns
// ErrMismatch when the password is wrong and ErrMalformedHash when
// the stored value cannot be decoded.
func (h *Hasher) Verify(ctx context.Context, encoded, password string) error {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return err
	}

	if err := h.acquire(ctx); err != nil {
		return err
	}
	defer h.release()

	candidate := argon2.IDKey([]byte(password), salt,
		params.Time, params.Memory, params.Threads, uint32(len(key)))

	if subtle.ConstantTimeCompare(candidate, key) != 1 {
		return ErrMismatch
	}
	return nil
}

// NeedsRehash reports whether the encoded hash was produced with cost
// parameters weaker than the hasher's current ones
func (h *Hasher) NeedsRehash(encoded string) bool {
	params, _, key, err := decodeHash(encoded)
	if err != nil {
		return true
	}
	return params.Time < h.params.Time ||
		params.Memory < h.params.Memory ||
		params.Threads < h.params.Threads ||
		uint32(len(key)) < h.params.KeyLen
}

// encodeHash renders the standard $argon2id$... encoded form
func encodeHash(params Params, salt, key []byte) string {
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, params.Memory, params.Time, params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key))
}

func decodeHash(encoded string) (Params, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return Params{}, nil, nil, ErrMalformedHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	if version != argon2.Version {
		return Params{}, nil, nil, fmt.Errorf("%w: unsupported version %d", ErrMalformedHash, version)
	}

	var params Params
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&params.Memory, &params.Time, &params.Threads); err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return Params{}, nil, nil, ErrMalformedHash
	}

	params.SaltLen = uint32(len(salt))
	params.KeyLen = uint32(len(key))
	return params, salt, key, nil
}
