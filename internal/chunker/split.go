package chunker

// Split partitions a compressed stream into ceil(len/chunkSize) chunks,
// minimum one even for empty input, each chunkSize bytes except possibly
// the last. Indices run 0..N-1 in stream order and the total count is
// stamped into every chunk. Splitting is deterministic: identical input
// and chunkSize reproduce identical chunks byte for byte.
//
// Payloads are copied, so the returned chunks do not alias data.
func Split(data []byte, chunkSize int, meta TransferMeta) []Chunk {
	if chunkSize <= 0 {
		chunkSize = 1
	}

	total := (len(data) + chunkSize - 1) / chunkSize
	if total == 0 {
		total = 1
	}

	name := meta.FileName
	if len(name) > MaxFileNameLen {
		name = name[:MaxFileNameLen]
	}

	chunks := make([]Chunk, 0, total)
	for i := 0; i < total; i++ {
		start := i * chunkSize
		end := start + chunkSize
		if end > len(data) {
			end = len(data)
		}
		payload := make([]byte, end-start)
		copy(payload, data[start:end])

		chunks = append(chunks, Chunk{
			Digest:     meta.Digest,
			Index:      uint32(i),
			Total:      uint32(total),
			FileName:   name,
			OrigSize:   meta.OrigSize,
			Compressed: meta.Compressed,
			Payload:    payload,
		})
	}
	return chunks
}
