package flat

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
	"io/fs"
	"math"
	"os"
	"path/filepath"

	"github.com/custodia-labs/wikichat/internal/core/domain"
)

// File layout, little-endian:
//
//	magic    [8]byte  "WKCHIDX1"
//	version  uint32
//	dims     uint32
//	count    uint32
//	count x {
//	    idLen   uint32, id       [idLen]byte
//	    metaLen uint32, metadata [metaLen]byte (JSON)
//	    textLen uint32, content  [textLen]byte
//	    vector  [dims]float32
//	}
//	crc32    uint32   IEEE over every preceding byte
const (
	fileMagic   = "WKCHIDX1"
	fileVersion = 1

	// maxFieldLen bounds a single string field so a corrupt length
	// cannot trigger a huge allocation.
	maxFieldLen = 64 << 20

	maxDims = 1 << 16
)

// storedMetadata is the JSON form of a chunk's provenance.
// The article ID and position ride along so reloaded chunks are complete.
type storedMetadata struct {
	domain.ChunkMetadata
	ArticleID string `json:"article_id,omitempty"`
	Position  int    `json:"position"`
}

// writeFile writes entries to a temp file beside path and renames it into place.
func writeFile(path string, dims int, entries []entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // no-op after a successful rename

	crc := crc32.NewIEEE()
	bw := bufio.NewWriter(io.MultiWriter(tmp, crc))
	if err := encode(bw, dims, entries); err != nil {
		tmp.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		return fmt.Errorf("writing index: %w", err)
	}
	if err := binary.Write(tmp, binary.LittleEndian, crc.Sum32()); err != nil {
		tmp.Close()
		return fmt.Errorf("writing checksum: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("syncing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing index: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replacing index file: %w", err)
	}
	return nil
}

func encode(w io.Writer, dims int, entries []entry) error {
	le := binary.LittleEndian

	if _, err := io.WriteString(w, fileMagic); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	header := []uint32{fileVersion, uint32(dims), uint32(len(entries))}
	if err := binary.Write(w, le, header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, e := range entries {
		meta, err := json.Marshal(storedMetadata{
			ChunkMetadata: e.chunk.Metadata,
			ArticleID:     e.chunk.ArticleID,
			Position:      e.chunk.Position,
		})
		if err != nil {
			return fmt.Errorf("marshalling chunk metadata: %w", err)
		}

		for _, field := range [][]byte{[]byte(e.chunk.ID), meta, []byte(e.chunk.Content)} {
			if err := binary.Write(w, le, uint32(len(field))); err != nil {
				return fmt.Errorf("writing entry: %w", err)
			}
			if _, err := w.Write(field); err != nil {
				return fmt.Errorf("writing entry: %w", err)
			}
		}
		if err := binary.Write(w, le, e.vector); err != nil {
			return fmt.Errorf("writing vector: %w", err)
		}
	}
	return nil
}

// readFile loads and verifies an index file.
func readFile(path string, wantDims int) (int, []entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil, fmt.Errorf("%w: %s", domain.ErrIndexNotFound, path)
		}
		return 0, nil, fmt.Errorf("reading index: %w", err)
	}

	if len(data) < len(fileMagic)+16 {
		return 0, nil, fmt.Errorf("%w: file too short", domain.ErrIndexCorrupt)
	}
	body, tail := data[:len(data)-4], data[len(data)-4:]
	if crc32.ChecksumIEEE(body) != binary.LittleEndian.Uint32(tail) {
		return 0, nil, fmt.Errorf("%w: checksum mismatch", domain.ErrIndexCorrupt)
	}
	if string(body[:len(fileMagic)]) != fileMagic {
		return 0, nil, fmt.Errorf("%w: bad magic", domain.ErrIndexCorrupt)
	}

	r := bytes.NewReader(body[len(fileMagic):])
	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return 0, nil, fmt.Errorf("%w: reading header: %v", domain.ErrIndexCorrupt, err)
	}
	version, dims, count := header[0], int(header[1]), int(header[2])

	if version != fileVersion {
		return 0, nil, fmt.Errorf("%w: unsupported version %d", domain.ErrIndexCorrupt, version)
	}
	if dims <= 0 || dims > maxDims {
		return 0, nil, fmt.Errorf("%w: dimension %d out of range", domain.ErrIndexCorrupt, dims)
	}
	if wantDims > 0 && dims != wantDims {
		return 0, nil, &domain.DimensionMismatchError{Expected: wantDims, Actual: dims}
	}

	entries, err := decodeEntries(r, dims, count)
	if err != nil {
		return 0, nil, err
	}
	if r.Len() != 0 {
		return 0, nil, fmt.Errorf("%w: %d trailing bytes", domain.ErrIndexCorrupt, r.Len())
	}
	return dims, entries, nil
}

func decodeEntries(r *bytes.Reader, dims, count int) ([]entry, error) {
	// Every entry takes at least its three length prefixes and its vector
	if count > r.Len()/(12+4*dims) {
		return nil, fmt.Errorf("%w: entry count %d exceeds file size", domain.ErrIndexCorrupt, count)
	}

	entries := make([]entry, 0, count)
	for i := 0; i < count; i++ {
		id, err := readField(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d id: %v", domain.ErrIndexCorrupt, i, err)
		}
		metaRaw, err := readField(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d metadata: %v", domain.ErrIndexCorrupt, i, err)
		}
		content, err := readField(r)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d content: %v", domain.ErrIndexCorrupt, i, err)
		}

		var meta storedMetadata
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return nil, fmt.Errorf("%w: entry %d metadata: %v", domain.ErrIndexCorrupt, i, err)
		}

		vec := make([]float32, dims)
		if err := binary.Read(r, binary.LittleEndian, vec); err != nil {
			return nil, fmt.Errorf("%w: entry %d vector: %v", domain.ErrIndexCorrupt, i, err)
		}
		for _, x := range vec {
			if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
				return nil, fmt.Errorf("%w: entry %d has a non-finite component", domain.ErrIndexCorrupt, i)
			}
		}

		entries = append(entries, entry{
			chunk: domain.Chunk{
				ID:        string(id),
				ArticleID: meta.ArticleID,
				Content:   string(content),
				Position:  meta.Position,
				Metadata:  meta.ChunkMetadata,
			},
			vector: vec,
			norm:   norm(vec),
		})
	}
	return entries, nil
}

func readField(r *bytes.Reader) ([]byte, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, err
	}
	if n > maxFieldLen || int(n) > r.Len() {
		return nil, fmt.Errorf("field length %d out of range", n)
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
