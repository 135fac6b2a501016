package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/complyhub/complyhub/internal/domain"
)

// DecodeSnapshot reads one JSON snapshot document from r.
func DecodeSnapshot(r io.Reader) (*domain.Snapshot, error) {
	var s domain.Snapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return &s, nil
}

// EncodeSnapshot serializes s into the JSON wire shape.
func EncodeSnapshot(s *domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// JSONFileSource loads a snapshot from a JSON file on disk.
type JSONFileSource struct {
	Path string
}

func NewJSONFileSource(path string) *JSONFileSource {
	return &JSONFileSource{Path: path}
}

func (s *JSONFileSource) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("opening snapshot file: %w", err)
	}
	defer f.Close()

	snap, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Path, err)
	}
	return snap, nil
}
