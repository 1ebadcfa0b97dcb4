package atc

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// radioRand builds a deterministic source for one sector assignment. The
// same session, sector kind, instance and seed always yield the same draws.
func radioRand(sessionID string, kind SectorKind, instance int, seed int64, salt int) *rand.Rand {
	h := fnv.New64a()
	fmt.Fprintf(h, "%s|%s|%d|%d|%d", sessionID, kind, instance, seed, salt)
	return rand.New(rand.NewSource(int64(h.Sum64())))
}

// GenerateSquawk returns a four digit octal transponder code, never one of
// the reserved emergency or non-discrete codes.
func GenerateSquawk(sessionID string, seed int64) string {
	for salt := 0; ; salt++ {
		rng := radioRand(sessionID, "squawk", 0, seed, salt)
		code := fmt.Sprintf("%d%d%d%d",
			rng.Intn(8), rng.Intn(8), rng.Intn(8), rng.Intn(8))
		if !reservedSquawks[code] {
			return code
		}
	}
}

// GenerateFrequency returns a VHF frequency string like "121.725" inside
// the band for the sector kind, snapped to 25 kHz spacing. The avoid set
// holds frequencies already active in the session; a salted redraw keeps
// the result deterministic while skipping collisions.
func GenerateFrequency(sessionID string, kind SectorKind, instance int, seed int64, avoid map[string]bool) string {
	band, ok := freqBands[kind]
	if !ok {
		band = freqBands[SectorCenter]
	}
	var last string
	for salt := 0; salt < 64; salt++ {
		rng := radioRand(sessionID, kind, instance, seed, salt)
		khz := band.minKHz + rng.Intn(band.maxKHz-band.minKHz+1)
		khz = khz / 25 * 25
		last = fmt.Sprintf("%d.%03d", band.base, khz)
		if !avoid[last] {
			return last
		}
	}
	// band exhausted by actives, reuse is preferable to failing
	return last
}
