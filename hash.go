package ddup

import (
	"io"
	"os"

	"github.com/cespare/xxhash/v2"
	"lukechampine.com/blake3"
)

// HashFunc computes a digest for the file at path, given its already-known
// size, per the (path, size) -> HashDigest contract in spec §9. Both modes
// share this signature so the pipeline (spec §4.5) doesn't care which one
// is in effect.
type HashFunc func(path string, size uint64) (digest any, err error)

// fuzzyChunk is the fixed sample size for fuzzy hashing (spec §4.5, §9:
// "Implementations reproducing this system must honor C = 4096 exactly").
const fuzzyChunk = 4096

// FuzzyHash computes the 64-bit non-cryptographic sample hash described in
// spec §4.5: an exponentially thinning sequence of 4096-byte samples
// (offset doubles after each read) plus a trailing block, hashed with
// xxhash. It is explicitly not collision-proof — a fast rough clustering
// for inspection, not a proof of equivalence. Size-0 files hash to 0.
func FuzzyHash(path string, size uint64) (any, error) {
	if size == 0 {
		return uint64(0), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := xxhash.New()
	buf := make([]byte, fuzzyChunk)

	var offset uint64
	for offset+fuzzyChunk < size {
		n, err := f.ReadAt(buf, int64(offset))
		if n > 0 {
			h.Write(buf[:n])
		}
		if err != nil && err != io.EOF {
			return nil, err
		}
		if n == 0 {
			break
		}
		offset = 2 * (offset + fuzzyChunk)
	}

	tail := fuzzyChunk
	if size < uint64(tail) {
		tail = int(size)
	}
	tailBuf := make([]byte, tail)
	if _, err := f.ReadAt(tailBuf, int64(size)-int64(tail)); err != nil && err != io.EOF {
		return nil, err
	}
	h.Write(tailBuf)

	return h.Sum64(), nil
}

// StrictHash computes a full-content, collision-resistant hash (spec
// §4.5: "256-bit construction suitable for collision resistance; a
// Merkle-tree parallel construction or a streaming one are both
// acceptable"). BLAKE3 is itself a Merkle tree over fixed-size chunks,
// which is why it's the strict-mode hash here rather than a metaphorical
// stand-in. The file is streamed through the hasher in fixed-size chunks
// so the whole file is never held in the heap at once (spec §5, resource
// limits).
func StrictHash(path string, size uint64) (any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return nil, err
	}

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest, nil
}
