package pipeline

import (
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/qrferry/qrferry/internal/chunker"
	"github.com/qrferry/qrferry/internal/compressor"
	"github.com/qrferry/qrferry/internal/digest"
)

// Pipeline orchestrates the conversion between file bytes and wire-format
// chunk buffers. It holds no per-transfer state; every call is
// self-contained.
type Pipeline struct {
	log *logrus.Logger
}

// New creates a pipeline logging through log.
func New(log *logrus.Logger) *Pipeline {
	return &Pipeline{log: log}
}

// IntegrityMismatchError reports a transfer that reassembled and
// decompressed cleanly but whose recomputed digest disagrees with the one
// embedded in its chunks. It signals silent bit corruption that happened
// to leave the compressed stream structurally valid.
type IntegrityMismatchError struct {
	Want string
	Got  string
}

func (e *IntegrityMismatchError) Error() string {
	return fmt.Sprintf("content digest mismatch: chunks claim %s, reconstructed data hashes to %s", e.Want, e.Got)
}

// Encode converts file bytes into the ordered sequence of wire-format
// chunk buffers: digest over the original bytes, compress, split, marshal.
// The buffers are what the cell codec renders into images.
func (p *Pipeline) Encode(data []byte, filename string, cfg Config) ([][]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	sum := digest.Compute(data)

	stream, err := compressor.Compress(data, cfg.Effort)
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload: %w", err)
	}

	meta := chunker.TransferMeta{
		Digest:     sum,
		FileName:   filename,
		OrigSize:   uint64(len(data)),
		Compressed: cfg.Effort > compressor.EffortNone,
	}
	chunks := chunker.Split(stream, cfg.ChunkSize, meta)

	p.log.WithFields(logrus.Fields{
		"file":       filename,
		"orig_size":  len(data),
		"compressed": len(stream),
		"chunks":     len(chunks),
	}).Info("encoded file into chunks")

	buffers := make([][]byte, 0, len(chunks))
	for i := range chunks {
		buffers = append(buffers, chunker.Marshal(&chunks[i]))
	}
	return buffers, nil
}

// Result is the outcome of decoding one transfer. Err is nil exactly when
// Data holds the reconstructed original bytes.
type Result struct {
	Digest   string
	FileName string
	OrigSize uint64
	Data     []byte
	Err      error
}

// Decode parses wire buffers, routes chunks into per-transfer
// reassemblers, and reconstructs every complete transfer. Buffers that
// fail to parse are dropped with a warning since they may be noise from
// unrelated scans. One transfer failing never aborts the others; results
// come back per transfer, sorted by digest for determinism.
func (p *Pipeline) Decode(buffers [][]byte) []Result {
	groups, errsByID := p.collect(buffers)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	results := make([]Result, 0, len(ids))
	for _, id := range ids {
		r := groups[id]
		meta := r.Meta()
		res := Result{
			Digest:   id,
			FileName: meta.FileName,
			OrigSize: meta.OrigSize,
		}

		if err := errsByID[id]; err != nil {
			res.Err = err
			results = append(results, res)
			continue
		}

		res.Data, res.Err = p.reconstruct(r)
		results = append(results, res)
	}
	return results
}

// reconstruct finalizes one reassembler and undoes compression, then
// verifies end-to-end integrity against the embedded digest.
func (p *Pipeline) reconstruct(r *chunker.Reassembler) ([]byte, error) {
	stream, err := r.Finalize()
	if err != nil {
		return nil, err
	}

	meta := r.Meta()
	data := stream
	if meta.Compressed {
		data, err = compressor.Decompress(stream)
		if err != nil {
			return nil, err
		}
	}

	if !digest.Verify(data, meta.Digest[:]) {
		got := digest.Compute(data)
		return nil, &IntegrityMismatchError{Want: digest.Hex(meta.Digest), Got: digest.Hex(got)}
	}
	return data, nil
}

// Report describes one transfer's completeness without verifying content.
type Report struct {
	Digest   string
	FileName string
	OrigSize uint64
	Total    int
	Received int
	Missing  []int
	Complete bool
}

// Analyze groups buffers by transfer identity and reports per-transfer
// completeness and missing indices. No decompression or digest
// verification happens, so it is safe to call on arbitrarily partial sets
// to decide which cells still need scanning.
func (p *Pipeline) Analyze(buffers [][]byte) []Report {
	groups, errsByID := p.collect(buffers)

	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	reports := make([]Report, 0, len(ids))
	for _, id := range ids {
		r := groups[id]
		meta := r.Meta()
		reports = append(reports, Report{
			Digest:   id,
			FileName: meta.FileName,
			OrigSize: meta.OrigSize,
			Total:    r.Total(),
			Received: r.Received(),
			Missing:  r.Missing(),
			Complete: r.Complete() && errsByID[id] == nil,
		})
	}
	return reports
}

// collect parses buffers and feeds valid chunks into per-digest
// reassemblers. Conflicts are recorded per transfer rather than
// propagated, so a corrupt chunk poisons only its own transfer.
func (p *Pipeline) collect(buffers [][]byte) (map[string]*chunker.Reassembler, map[string]error) {
	groups := make(map[string]*chunker.Reassembler)
	errsByID := make(map[string]error)

	for i, buf := range buffers {
		c, err := chunker.ParseChunk(buf)
		if err != nil {
			p.log.WithFields(logrus.Fields{"buffer": i, "error": err}).
				Warn("dropping unparseable buffer")
			continue
		}

		id := digest.Hex(c.Digest)
		r, ok := groups[id]
		if !ok {
			r = chunker.NewReassembler()
			groups[id] = r
		}
		if err := r.Accept(c); err != nil {
			if errsByID[id] == nil {
				errsByID[id] = err
			}
			p.log.WithFields(logrus.Fields{"transfer": id, "chunk": c.Index, "error": err}).
				Warn("chunk rejected during reassembly")
		}
	}
	return groups, errsByID
}
