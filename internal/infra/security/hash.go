package security

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"

	"github.com/arklim/user-permission-service/internal/core/port"
)

// Hash algorithm identifiers accepted in configuration.
const (
	AlgoSHA256   = "sha256"
	AlgoArgon2id = "argon2id"
)

// SHA256Hasher produces the legacy digest format: base64 of the raw
// SHA-256 of the password, 44 printable characters. It is deterministic
// and unsalted, kept for byte-for-byte compatibility with digests already
// stored by earlier deployments. New installations should prefer
// Argon2Hasher.
type SHA256Hasher struct{}

// NewSHA256Hasher constructs the legacy hasher.
func NewSHA256Hasher() *SHA256Hasher { return &SHA256Hasher{} }

// Hash digests the password. Equal inputs always produce equal digests.
func (h *SHA256Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

// Verify compares password against a stored digest. Empty plaintext or
// digest verifies false, never errors.
func (h *SHA256Hasher) Verify(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}
	sum := sha256.Sum256([]byte(password))
	computed := base64.StdEncoding.EncodeToString(sum[:])
	return subtle.ConstantTimeCompare([]byte(computed), []byte(encoded)) == 1
}

// Argon2Config defines tunable parameters for Argon2id hashing.
type Argon2Config struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultArgon2Config returns the default Argon2id parameters.
func DefaultArgon2Config() Argon2Config {
	return Argon2Config{
		Memory:      64 * 1024,
		Iterations:  3,
		Parallelism: 4,
		SaltLength:  16,
		KeyLength:   32,
	}
}

// Argon2Hasher hashes with Argon2id and a random salt. Encoded form:
// argon2id$v=19$m=<memory>,t=<iterations>,p=<parallelism>$<salt>$<hash>
// with both binary components base64-encoded without padding.
//
// Verify also accepts legacy SHA-256 digests (no '$' separator) so a
// population hashed under the old scheme keeps authenticating while new
// writes migrate to Argon2id.
type Argon2Hasher struct {
	cfg    Argon2Config
	legacy *SHA256Hasher
}

// NewArgon2Hasher constructs an Argon2id hasher; zero-value fields fall
// back to defaults.
func NewArgon2Hasher(cfg Argon2Config) *Argon2Hasher {
	def := DefaultArgon2Config()
	if cfg.Memory == 0 {
		cfg.Memory = def.Memory
	}
	if cfg.Iterations == 0 {
		cfg.Iterations = def.Iterations
	}
	if cfg.Parallelism == 0 {
		cfg.Parallelism = def.Parallelism
	}
	if cfg.SaltLength == 0 {
		cfg.SaltLength = def.SaltLength
	}
	if cfg.KeyLength == 0 {
		cfg.KeyLength = def.KeyLength
	}
	return &Argon2Hasher{cfg: cfg, legacy: NewSHA256Hasher()}
}

// Hash generates a salted Argon2id digest.
func (h *Argon2Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", fmt.Errorf("password is required")
	}

	salt := make([]byte, h.cfg.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(password), salt, h.cfg.Iterations, h.cfg.Memory, h.cfg.Parallelism, h.cfg.KeyLength)

	encoded := strings.Join([]string{
		AlgoArgon2id,
		"v=19",
		fmt.Sprintf("m=%d,t=%d,p=%d", h.cfg.Memory, h.cfg.Iterations, h.cfg.Parallelism),
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	}, "$")

	return encoded, nil
}

// Verify dispatches on the stored digest shape: structured Argon2id
// digests are parameter-decoded, anything else falls back to the legacy
// SHA-256 comparison. Returns false, never errors.
func (h *Argon2Hasher) Verify(password, encoded string) bool {
	if password == "" || encoded == "" {
		return false
	}
	if !strings.Contains(encoded, "$") {
		return h.legacy.Verify(password, encoded)
	}

	cfg, salt, expected, err := decodeArgon2(encoded)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, cfg.Iterations, cfg.Memory, cfg.Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

func decodeArgon2(encoded string) (Argon2Config, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 5 {
		return Argon2Config{}, nil, nil, fmt.Errorf("invalid argon2 hash format")
	}
	if parts[0] != AlgoArgon2id {
		return Argon2Config{}, nil, nil, fmt.Errorf("unexpected variant %q", parts[0])
	}
	if parts[1] != "v=19" {
		return Argon2Config{}, nil, nil, fmt.Errorf("unsupported version %q", parts[1])
	}

	var cfg Argon2Config
	for _, entry := range strings.Split(parts[2], ",") {
		kv := strings.SplitN(entry, "=", 2)
		if len(kv) != 2 {
			return Argon2Config{}, nil, nil, fmt.Errorf("invalid argon2 parameters")
		}
		value, err := strconv.ParseUint(kv[1], 10, 32)
		if err != nil {
			return Argon2Config{}, nil, nil, fmt.Errorf("parse argon2 parameter %s: %w", kv[0], err)
		}
		switch kv[0] {
		case "m":
			cfg.Memory = uint32(value)
		case "t":
			cfg.Iterations = uint32(value)
		case "p":
			cfg.Parallelism = uint8(value)
		default:
			return Argon2Config{}, nil, nil, fmt.Errorf("unknown argon2 parameter %q", kv[0])
		}
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return Argon2Config{}, nil, nil, fmt.Errorf("decode salt: %w", err)
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return Argon2Config{}, nil, nil, fmt.Errorf("decode hash: %w", err)
	}

	return cfg, salt, hash, nil
}

// NewHasher selects the configured algorithm. Unknown values default to
// the legacy digest so existing deployments keep verifying.
func NewHasher(algo string, argonCfg Argon2Config) port.PasswordHasher {
	if strings.EqualFold(algo, AlgoArgon2id) {
		return NewArgon2Hasher(argonCfg)
	}
	return NewSHA256Hasher()
}
