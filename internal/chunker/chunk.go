package chunker

import (
	"fmt"

	"github.com/qrferry/qrferry/internal/digest"
)

// MaxFileNameLen bounds the filename carried in every chunk. Longer names
// are truncated at split time to keep the wire header small.
const MaxFileNameLen = 255

// TransferMeta identifies one logical file conversion. The content digest
// of the uncompressed original bytes is the grouping key for chunks.
type TransferMeta struct {
	Digest     [digest.Size]byte
	FileName   string
	OrigSize   uint64
	Compressed bool
}

// Chunk is one addressable slice of the compressed stream. Every chunk
// repeats the transfer metadata so a single chunk is self-describing and
// reassembly needs no out-of-band state.
type Chunk struct {
	Digest     [digest.Size]byte
	Index      uint32
	Total      uint32
	FileName   string
	OrigSize   uint64
	Compressed bool
	Payload    []byte
}

// Meta returns the transfer metadata embedded in the chunk.
func (c *Chunk) Meta() TransferMeta {
	return TransferMeta{
		Digest:     c.Digest,
		FileName:   c.FileName,
		OrigSize:   c.OrigSize,
		Compressed: c.Compressed,
	}
}

// MalformedChunkError reports a buffer that is not a valid wire-format
// chunk. Reason names the check that failed.
type MalformedChunkError struct {
	Reason string
}

func (e *MalformedChunkError) Error() string {
	return fmt.Sprintf("malformed chunk: %s", e.Reason)
}

// ForeignChunkError reports a chunk whose transfer digest does not match
// the transfer a Reassembler is tracking.
type ForeignChunkError struct {
	Want [digest.Size]byte
	Got  [digest.Size]byte
}

func (e *ForeignChunkError) Error() string {
	return fmt.Sprintf("chunk belongs to transfer %s, reassembler tracks %s",
		digest.Hex(e.Got), digest.Hex(e.Want))
}

// ConflictingChunkError reports two chunks claiming the same transfer and
// index with differing content, or inconsistent transfer metadata for one
// transfer. Either way it signals transmission corruption or a scan of the
// wrong chunk, and is never auto-resolved.
type ConflictingChunkError struct {
	Index  uint32
	Detail string
}

func (e *ConflictingChunkError) Error() string {
	return fmt.Sprintf("conflicting chunk %d: %s", e.Index, e.Detail)
}

// IncompleteError reports a finalize attempt with chunks still missing.
type IncompleteError struct {
	Missing []int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("transfer incomplete: %d chunk(s) missing %v", len(e.Missing), e.Missing)
}
