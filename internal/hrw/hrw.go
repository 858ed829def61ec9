// Package hrw implements rendezvous (highest random weight) hashing: every
// key is placed on the candidate with the highest score, so removing a
// candidate only moves the keys it owned.
package hrw

import (
	"encoding/binary"
	"sort"

	"golang.org/x/crypto/blake2b"
)

type scored struct {
	score uint64
	idx   int
}

// TopK returns up to k candidates ordered by descending score for key.
// seed separates otherwise identical placements.
func TopK(key string, candidates []string, k int, seed string) []string {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	k = min(k, len(candidates))

	all := make([]scored, len(candidates))
	keyB := []byte(key)
	for i, c := range candidates {
		all[i] = scored{score: score64(keyB, c, seed), idx: i}
	}
	sort.Slice(all, func(a, b int) bool {
		if all[a].score == all[b].score {
			return all[a].idx < all[b].idx
		}
		return all[a].score > all[b].score
	})

	out := make([]string, k)
	for i := range out {
		out[i] = candidates[all[i].idx]
	}
	return out
}

// Best returns the top-1 candidate. ok is false if candidates is empty.
func Best(key string, candidates []string, seed string) (best string, ok bool) {
	out := TopK(key, candidates, 1, seed)
	if len(out) == 0 {
		return "", false
	}
	return out[0], true
}

func score64(key []byte, candidate string, seed string) uint64 {
	// 8-byte digest => uint64 score
	h, _ := blake2b.New(8, nil)
	if seed != "" {
		h.Write([]byte(seed))
		h.Write([]byte{0})
	}
	h.Write(key)
	h.Write([]byte{0})
	h.Write([]byte(candidate))
	return binary.BigEndian.Uint64(h.Sum(nil))
}
