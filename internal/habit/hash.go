package habit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefix for content-addressed config versions. The version suffix
// allows a future algorithm migration without ambiguity.
const domainConfig = "tally/config/v1"

// hashWithDomain computes SHA-256 with domain separation:
// SHA256(domain + 0x00 + data). The null byte prevents domain/data
// boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ConfigVersionHash computes the content-addressed version identity of a
// configuration. The hash covers the semantic fields only — not the
// VersionHash itself — so the same values always produce the same version
// regardless of how the Config struct was populated.
//
// Two edits that arrive at identical values are the same version, which
// makes edit history deduplication trivial for the store.
func ConfigVersionHash(cfg Config) (string, error) {
	obj := map[string]any{
		"id":       cfg.ID,
		"user_id":  cfg.UserID,
		"name":     cfg.Name,
		"kind":     string(cfg.Kind),
		"goal":     cfg.Goal,
		"baseline": cfg.Baseline,
		"target":   cfg.Target,
		"schedule": cfg.Schedule,
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("ConfigVersionHash: failed to marshal: %w", err)
	}
	return hashWithDomain(domainConfig, canonical), nil
}

// MustConfigVersionHash is like ConfigVersionHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustConfigVersionHash(cfg Config) string {
	hash, err := ConfigVersionHash(cfg)
	if err != nil {
		panic(err)
	}
	return hash
}
