// Package sample embeds the demonstration snapshot the dashboard ships with.
package sample

import (
	"bytes"
	"context"
	_ "embed"

	"github.com/complyhub/complyhub/internal/domain"
	"github.com/complyhub/complyhub/internal/repository"
)

//go:embed snapshot.json
var raw []byte

// Source serves the embedded snapshot. Every Load decodes a fresh copy.
type Source struct{}

func (Source) Load(ctx context.Context) (*domain.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return repository.DecodeSnapshot(bytes.NewReader(raw))
}

// JSON returns the raw embedded document.
func JSON() []byte {
	return bytes.Clone(raw)
}

var _ repository.SnapshotSource = Source{}
