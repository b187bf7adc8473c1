// Package store persists complete index snapshots to disk and loads them
// back. A snapshot is a single file: a fixed binary header (magic bytes,
// format version, payload size), a JSON payload with an explicit field
// schema for every entity, and a CRC32 footer. Saving writes to a temporary
// file and renames, so a crash mid-write never leaves a file that Load
// accepts.
package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"

	"pubsearch/internal/index"
	apperrors "pubsearch/pkg/errors"
)

const (
	// MagicBytes identifies a valid .psix index file.
	MagicBytes    uint32 = 0x50534958
	FormatVersion uint32 = 1
	headerSize           = 16
	footerSize           = 4
)

// fileState is the on-disk schema. Field names and shapes are part of the
// format; changing them requires a version bump.
type fileState struct {
	Documents          []index.Document           `json:"documents"`
	InvertedIndex      map[string][]index.Posting `json:"inverted_index"`
	DocumentVectors    map[int]index.Vector       `json:"document_vectors"`
	TermDocumentCounts map[string]int             `json:"term_document_counts"`
}

// Save writes the snapshot to path atomically. The destination is replaced
// only after the full file has been written and synced; a failure at any
// point leaves either the previous file or no file, never a torn one.
func Save(state *index.State, path string) error {
	payload, err := json.Marshal(fileState{
		Documents:          state.Docs,
		InvertedIndex:      state.Inverted,
		DocumentVectors:    state.Vectors,
		TermDocumentCounts: state.DocCounts,
	})
	if err != nil {
		return fmt.Errorf("marshaling index state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	header := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(header[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(header[4:8], FormatVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(payload)))

	footer := make([]byte, footerSize)
	binary.LittleEndian.PutUint32(footer, crc32.ChecksumIEEE(payload))

	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	defer func() {
		f.Close()
		os.Remove(tmpPath)
	}()

	for _, chunk := range [][]byte{header, payload, footer} {
		if _, err := f.Write(chunk); err != nil {
			return fmt.Errorf("writing index file: %w", err)
		}
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("syncing index file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing index file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("publishing index file: %w", err)
	}
	return nil
}

// Load reads a snapshot from path. A missing file yields ErrIndexMissing; a
// structurally invalid one yields ErrCorruptIndex. On any error the returned
// state is nil, never partially populated.
func Load(path string) (*index.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrIndexMissing, path)
		}
		return nil, fmt.Errorf("reading index file %s: %w", path, err)
	}

	if len(data) < headerSize+footerSize {
		return nil, fmt.Errorf("%w: file too short (%d bytes)", apperrors.ErrCorruptIndex, len(data))
	}
	if magic := binary.LittleEndian.Uint32(data[0:4]); magic != MagicBytes {
		return nil, fmt.Errorf("%w: bad magic bytes %x", apperrors.ErrCorruptIndex, magic)
	}
	if version := binary.LittleEndian.Uint32(data[4:8]); version != FormatVersion {
		return nil, fmt.Errorf("%w: unsupported format version %d", apperrors.ErrCorruptIndex, version)
	}
	payloadLen := binary.LittleEndian.Uint64(data[8:16])
	if payloadLen != uint64(len(data)-headerSize-footerSize) {
		return nil, fmt.Errorf("%w: payload length mismatch", apperrors.ErrCorruptIndex)
	}
	payload := data[headerSize : headerSize+int(payloadLen)]
	checksum := binary.LittleEndian.Uint32(data[len(data)-footerSize:])
	if crc32.ChecksumIEEE(payload) != checksum {
		return nil, fmt.Errorf("%w: checksum mismatch", apperrors.ErrCorruptIndex)
	}

	var fs fileState
	if err := json.Unmarshal(payload, &fs); err != nil {
		return nil, fmt.Errorf("%w: parsing payload: %v", apperrors.ErrCorruptIndex, err)
	}

	state := &index.State{
		Inverted:  fs.InvertedIndex,
		Vectors:   fs.DocumentVectors,
		DocCounts: fs.TermDocumentCounts,
		Docs:      fs.Documents,
	}
	if state.Docs == nil {
		state.Docs = []index.Document{}
	}
	if err := validate(state); err != nil {
		return nil, err
	}
	return state, nil
}

// validate rejects payloads that parsed but do not describe a well-formed
// snapshot.
func validate(s *index.State) error {
	if s.Inverted == nil || s.Vectors == nil || s.DocCounts == nil {
		return fmt.Errorf("%w: missing index sections", apperrors.ErrCorruptIndex)
	}
	// The document list must be ordered by ID; IDs are assigned by build
	// position, so position and ID must agree.
	for i, doc := range s.Docs {
		if doc.ID != i {
			return fmt.Errorf("%w: document list out of order at position %d (id %d)", apperrors.ErrCorruptIndex, i, doc.ID)
		}
	}
	for id := range s.Vectors {
		if id < 0 || id >= len(s.Docs) {
			return fmt.Errorf("%w: vector for unknown document id %d", apperrors.ErrCorruptIndex, id)
		}
	}
	for term, postings := range s.Inverted {
		for _, p := range postings {
			if p.DocID < 0 || p.DocID >= len(s.Docs) {
				return fmt.Errorf("%w: posting for term %q references unknown document id %d", apperrors.ErrCorruptIndex, term, p.DocID)
			}
		}
	}
	return nil
}
