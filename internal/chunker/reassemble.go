package chunker

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/qrferry/qrferry/internal/digest"
)

// Reassembler collects the chunks of one transfer, tolerating arbitrary
// arrival order, duplicates from re-scans, and partial sets. It owns its
// state exclusively; drive one instance from a single goroutine, or put
// external synchronization in front of it. Independent transfers get
// independent instances and share nothing.
type Reassembler struct {
	meta  TransferMeta
	total int
	parts map[uint32][]byte
}

// NewReassembler starts collecting a transfer. The identity and expected
// total are fixed by the first accepted chunk.
func NewReassembler() *Reassembler {
	return &Reassembler{parts: make(map[uint32][]byte)}
}

// Meta returns the transfer metadata, valid once a chunk has been accepted.
func (r *Reassembler) Meta() TransferMeta { return r.meta }

// Total returns the expected chunk count, or 0 before the first accept.
func (r *Reassembler) Total() int { return r.total }

// Received returns the number of distinct chunk indices accepted so far.
func (r *Reassembler) Received() int { return len(r.parts) }

// Accept adds a chunk. Re-accepting an index with an identical payload is
// a no-op; the same index with a different payload is a
// *ConflictingChunkError and leaves state untouched. A chunk for another
// transfer digest is a *ForeignChunkError, and a chunk that agrees on the
// digest but claims different transfer metadata (total, filename,
// compression flag) is treated as corruption and rejected.
func (r *Reassembler) Accept(c *Chunk) error {
	if r.total == 0 {
		r.meta = c.Meta()
		r.total = int(c.Total)
	} else {
		if c.Digest != r.meta.Digest {
			return &ForeignChunkError{Want: r.meta.Digest, Got: c.Digest}
		}
		if int(c.Total) != r.total {
			return &ConflictingChunkError{Index: c.Index,
				Detail: fmt.Sprintf("claims %d total chunks, transfer expects %d", c.Total, r.total)}
		}
		if c.FileName != r.meta.FileName {
			return &ConflictingChunkError{Index: c.Index, Detail: "filename disagrees with transfer"}
		}
		if c.Compressed != r.meta.Compressed || c.OrigSize != r.meta.OrigSize {
			return &ConflictingChunkError{Index: c.Index, Detail: "transfer metadata disagrees"}
		}
	}

	if prev, ok := r.parts[c.Index]; ok {
		if bytes.Equal(prev, c.Payload) {
			return nil
		}
		return &ConflictingChunkError{Index: c.Index, Detail: "payload differs from previously accepted chunk"}
	}

	payload := make([]byte, len(c.Payload))
	copy(payload, c.Payload)
	r.parts[c.Index] = payload
	return nil
}

// Complete reports whether every index 0..total-1 has been received.
func (r *Reassembler) Complete() bool {
	return r.total > 0 && len(r.parts) == r.total
}

// Missing returns the sorted indices not yet received. It never mutates
// state and is valid in any phase of collection.
func (r *Reassembler) Missing() []int {
	missing := make([]int, 0)
	for i := 0; i < r.total; i++ {
		if _, ok := r.parts[uint32(i)]; !ok {
			missing = append(missing, i)
		}
	}
	sort.Ints(missing)
	return missing
}

// Finalize concatenates the payloads in index order, yielding the
// compressed stream. It fails with an *IncompleteError carrying the
// missing indices if collection is not complete.
func (r *Reassembler) Finalize() ([]byte, error) {
	if !r.Complete() {
		return nil, &IncompleteError{Missing: r.Missing()}
	}
	var out bytes.Buffer
	for i := 0; i < r.total; i++ {
		out.Write(r.parts[uint32(i)])
	}
	return out.Bytes(), nil
}

// ID returns the hex transfer digest, usable as a routing key.
func (r *Reassembler) ID() string {
	return digest.Hex(r.meta.Digest)
}
