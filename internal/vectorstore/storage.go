package vectorstore

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"supportbot/internal/domain"
	"supportbot/internal/vectorstore/memory"
)

// On-disk index layout, little-endian:
//
//	magic   [4]byte "SBIX"
//	version uint32
//	dim     uint32
//	count   uint32
//	rows    count*dim float32
var indexMagic = [4]byte{'S', 'B', 'I', 'X'}

const indexVersion = 1

type indexHeader struct {
	Magic   [4]byte
	Version uint32
	Dim     uint32
	Count   uint32
}

const headerSize = 16

func encodeIndex(w io.Writer, idx *memory.Storage) error {
	vectors := idx.Vectors()
	h := indexHeader{Magic: indexMagic, Version: indexVersion, Dim: uint32(idx.Dimension()), Count: uint32(len(vectors))}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, h); err != nil {
		return err
	}
	for _, v := range vectors {
		if err := binary.Write(bw, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func readIndexFile(path string) (*memory.Storage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	br := bufio.NewReader(f)
	var h indexHeader
	if err := binary.Read(br, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: reading header: %w", domain.ErrIndexCorrupt, err)
	}
	if h.Magic != indexMagic || h.Version != indexVersion {
		return nil, fmt.Errorf("%w: unknown index format", domain.ErrIndexCorrupt)
	}
	if h.Dim == 0 || info.Size() != headerSize+int64(h.Count)*int64(h.Dim)*4 {
		return nil, fmt.Errorf("%w: size does not match header (dim %d, count %d)", domain.ErrIndexCorrupt, h.Dim, h.Count)
	}
	vectors := make([][]float32, h.Count)
	for i := range vectors {
		vectors[i] = make([]float32, h.Dim)
		if err := binary.Read(br, binary.LittleEndian, vectors[i]); err != nil {
			return nil, fmt.Errorf("%w: reading row %d: %w", domain.ErrIndexCorrupt, i, err)
		}
	}
	idx := memory.NewStorage()
	if err := idx.Init(int(h.Dim)); err != nil {
		return nil, err
	}
	if err := idx.Add(vectors); err != nil {
		return nil, err
	}
	return idx, nil
}

func readDocumentsFile(path string) ([]domain.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []domain.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("%w: parsing documents: %w", domain.ErrIndexCorrupt, err)
	}
	return docs, nil
}

// writeTemp writes into a temporary sibling of path and returns its name.
// The caller renames it into place.
func writeTemp(path string, write func(io.Writer) error) (string, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", err
	}
	name := f.Name()
	if err := write(f); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(name)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return "", err
	}
	return name, nil
}

// writeArtifacts persists the index and its documents. Both are staged as
// temporary files before either is renamed, so a failed encode leaves the
// previous pair untouched.
func writeArtifacts(indexPath, documentsPath string, idx *memory.Storage, docs []domain.Document) error {
	idxTmp, err := writeTemp(indexPath, func(w io.Writer) error { return encodeIndex(w, idx) })
	if err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	docsTmp, err := writeTemp(documentsPath, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	})
	if err != nil {
		os.Remove(idxTmp)
		return fmt.Errorf("write documents: %w", err)
	}
	if err := os.Rename(idxTmp, indexPath); err != nil {
		os.Remove(idxTmp)
		os.Remove(docsTmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := os.Rename(docsTmp, documentsPath); err != nil {
		os.Remove(docsTmp)
		return fmt.Errorf("write documents: %w", err)
	}
	return nil
}

func artifactsExist(paths ...string) (bool, error) {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return false, nil
			}
			return false, err
		}
	}
	return true, nil
}
