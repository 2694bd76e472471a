package chunker

import (
	"bytes"
	"encoding/binary"

	"github.com/qrferry/qrferry/internal/digest"
)

// Wire layout, all integers big-endian:
//
//	offset  size  field
//	0       4     magic "QFC1"
//	4       32    transfer digest (SHA-256 of the uncompressed original)
//	36      4     chunk index, 0-based
//	40      4     total chunk count
//	44      8     original file size in bytes
//	52      1     flags (bit 0: payload stream is compressed)
//	53      1     filename length n
//	54      n     filename
//	54+n    4     payload length m
//	58+n    m     payload
var magic = [4]byte{'Q', 'F', 'C', '1'}

const (
	flagCompressed = 0x01

	// headerLen is the fixed part of the header, excluding the filename.
	headerLen = 4 + digest.Size + 4 + 4 + 8 + 1 + 1 + 4
)

// Marshal serializes a chunk into its self-describing wire buffer.
func Marshal(c *Chunk) []byte {
	name := c.FileName
	if len(name) > MaxFileNameLen {
		name = name[:MaxFileNameLen]
	}

	buf := make([]byte, 0, headerLen+len(name)+len(c.Payload))
	buf = append(buf, magic[:]...)
	buf = append(buf, c.Digest[:]...)
	buf = binary.BigEndian.AppendUint32(buf, c.Index)
	buf = binary.BigEndian.AppendUint32(buf, c.Total)
	buf = binary.BigEndian.AppendUint64(buf, c.OrigSize)
	var flags byte
	if c.Compressed {
		flags |= flagCompressed
	}
	buf = append(buf, flags)
	buf = append(buf, byte(len(name)))
	buf = append(buf, name...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Payload)))
	buf = append(buf, c.Payload...)
	return buf
}

// ParseChunk validates and decodes a wire buffer. Buffers produced by
// unrelated scans fail one of the checks and come back as a
// *MalformedChunkError, never a panic. The payload is copied out of buf.
func ParseChunk(buf []byte) (*Chunk, error) {
	if len(buf) < headerLen {
		return nil, &MalformedChunkError{Reason: "buffer shorter than fixed header"}
	}
	if !bytes.Equal(buf[:4], magic[:]) {
		return nil, &MalformedChunkError{Reason: "bad magic"}
	}

	c := &Chunk{}
	copy(c.Digest[:], buf[4:4+digest.Size])
	off := 4 + digest.Size
	c.Index = binary.BigEndian.Uint32(buf[off:])
	c.Total = binary.BigEndian.Uint32(buf[off+4:])
	c.OrigSize = binary.BigEndian.Uint64(buf[off+8:])
	flags := buf[off+16]
	c.Compressed = flags&flagCompressed != 0
	nameLen := int(buf[off+17])
	off += 18

	if len(buf) < off+nameLen+4 {
		return nil, &MalformedChunkError{Reason: "buffer truncated inside filename"}
	}
	c.FileName = string(buf[off : off+nameLen])
	off += nameLen

	if c.Total == 0 {
		return nil, &MalformedChunkError{Reason: "total chunk count is zero"}
	}
	if c.Index >= c.Total {
		return nil, &MalformedChunkError{Reason: "chunk index not below total count"}
	}

	payloadLen := binary.BigEndian.Uint32(buf[off:])
	off += 4
	if uint32(len(buf)-off) != payloadLen {
		return nil, &MalformedChunkError{Reason: "declared payload length disagrees with buffer"}
	}
	c.Payload = make([]byte, payloadLen)
	copy(c.Payload, buf[off:])
	return c, nil
}
