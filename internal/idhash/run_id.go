// Package idhash derives deterministic identifiers from run inputs.
package idhash

import (
	"crypto/sha256"

	"github.com/mr-tron/base58"

	"walkforward-lab/internal/domain"
)

// ComputeRunID computes a deterministic run_id.
// Formula: base58(SHA256(config|fingerprint(prices)))
// Identical configuration and prices always give the same ID.
func ComputeRunID(config []byte, prices *domain.PriceSeries) string {
	return digest("run", config, prices)
}

// ComputeUniverseKey computes the cache key of a strategy universe. Only
// the inputs that shape per-strategy PnL belong in config; walk-forward
// settings do not change the universe.
func ComputeUniverseKey(config []byte, prices *domain.PriceSeries) string {
	return "universe:" + digest("universe", config, prices)
}

func digest(kind string, config []byte, prices *domain.PriceSeries) string {
	h := sha256.New()
	h.Write([]byte(kind))
	h.Write([]byte{'|'})
	h.Write(config)
	h.Write([]byte{'|'})
	if prices != nil {
		h.Write([]byte(prices.Fingerprint()))
	}
	return base58.Encode(h.Sum(nil))
}
