package chunker

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

func sampleChunks(t *testing.T, data []byte, chunkSize int) []Chunk {
	t.Helper()
	return Split(data, chunkSize, testMeta(data, "sample.bin"))
}

func TestReassembleInOrder(t *testing.T) {
	data := []byte("reassembly should reproduce the stream exactly, byte for byte")
	chunks := sampleChunks(t, data, 10)

	r := NewReassembler()
	for i := range chunks {
		if err := r.Accept(&chunks[i]); err != nil {
			t.Fatalf("accept chunk %d: %v", i, err)
		}
	}
	if !r.Complete() {
		t.Fatalf("expected complete after all chunks accepted")
	}

	out, err := r.Finalize()
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Errorf("finalized stream differs from input")
	}
}

func TestOrderIndependence(t *testing.T) {
	data := []byte("order of arrival must not matter at all")
	chunks := sampleChunks(t, data, 8)

	permutations := [][]int{
		{4, 3, 2, 1, 0},
		{2, 0, 4, 1, 3},
		{1, 4, 0, 3, 2},
	}
	if len(chunks) != 5 {
		t.Fatalf("expected 5 chunks for this input, got %d", len(chunks))
	}

	for _, perm := range permutations {
		r := NewReassembler()
		for _, idx := range perm {
			if err := r.Accept(&chunks[idx]); err != nil {
				t.Fatalf("perm %v: accept chunk %d: %v", perm, idx, err)
			}
		}
		out, err := r.Finalize()
		if err != nil {
			t.Fatalf("perm %v: finalize failed: %v", perm, err)
		}
		if !bytes.Equal(out, data) {
			t.Errorf("perm %v: reassembled stream differs", perm)
		}
	}
}

func TestDuplicateAcceptIsIdempotent(t *testing.T) {
	data := []byte("duplicates come from re-scans and must be harmless")
	chunks := sampleChunks(t, data, 16)

	r := NewReassembler()
	if err := r.Accept(&chunks[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}
	missingBefore := r.Missing()
	receivedBefore := r.Received()

	if err := r.Accept(&chunks[0]); err != nil {
		t.Fatalf("duplicate accept should be a no-op, got: %v", err)
	}
	if r.Received() != receivedBefore {
		t.Errorf("duplicate accept changed received count")
	}
	if !reflect.DeepEqual(r.Missing(), missingBefore) {
		t.Errorf("duplicate accept changed missing set")
	}
}

func TestConflictingPayloadRejected(t *testing.T) {
	data := []byte("conflicting payloads are ambiguous and never auto-resolved")
	chunks := sampleChunks(t, data, 16)

	r := NewReassembler()
	if err := r.Accept(&chunks[1]); err != nil {
		t.Fatalf("accept: %v", err)
	}

	tampered := chunks[1]
	tampered.Payload = append([]byte{}, chunks[1].Payload...)
	tampered.Payload[0] ^= 0xff

	err := r.Accept(&tampered)
	var conflict *ConflictingChunkError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictingChunkError, got %v", err)
	}

	// State must be untouched: the original payload still wins.
	if err := r.Accept(&chunks[1]); err != nil {
		t.Errorf("original chunk should still be accepted as duplicate: %v", err)
	}
}

func TestForeignChunkRejected(t *testing.T) {
	a := sampleChunks(t, []byte("transfer a"), 4)
	b := Split([]byte("transfer b"), 4, testMeta([]byte("transfer b"), "other.bin"))

	r := NewReassembler()
	if err := r.Accept(&a[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}

	err := r.Accept(&b[0])
	var foreign *ForeignChunkError
	if !errors.As(err, &foreign) {
		t.Fatalf("expected *ForeignChunkError, got %v", err)
	}
}

func TestInconsistentTotalRejected(t *testing.T) {
	data := []byte("every chunk repeats the total; disagreement is corruption")
	chunks := sampleChunks(t, data, 8)

	r := NewReassembler()
	if err := r.Accept(&chunks[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}

	liar := chunks[1]
	liar.Total++

	err := r.Accept(&liar)
	var conflict *ConflictingChunkError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *ConflictingChunkError for total mismatch, got %v", err)
	}
}

func TestMissingAndIncomplete(t *testing.T) {
	data := make([]byte, 100)
	chunks := sampleChunks(t, data, 10) // 10 chunks

	r := NewReassembler()
	for _, idx := range []int{0, 2, 4, 6, 8} {
		if err := r.Accept(&chunks[idx]); err != nil {
			t.Fatalf("accept chunk %d: %v", idx, err)
		}
	}

	want := []int{1, 3, 5, 7, 9}
	if got := r.Missing(); !reflect.DeepEqual(got, want) {
		t.Errorf("missing = %v, want %v", got, want)
	}
	if r.Complete() {
		t.Errorf("reassembler claims complete with half the chunks")
	}

	_, err := r.Finalize()
	var incomplete *IncompleteError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected *IncompleteError, got %v", err)
	}
	if !reflect.DeepEqual(incomplete.Missing, want) {
		t.Errorf("IncompleteError.Missing = %v, want %v", incomplete.Missing, want)
	}
}

func TestSingleChunkTransfer(t *testing.T) {
	chunks := sampleChunks(t, nil, 1024)
	if len(chunks) != 1 {
		t.Fatalf("expected a single chunk for empty input")
	}

	r := NewReassembler()
	if err := r.Accept(&chunks[0]); err != nil {
		t.Fatalf("accept: %v", err)
	}
	out, err := r.Finalize()
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("expected empty stream, got %d bytes", len(out))
	}
}
