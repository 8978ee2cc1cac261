package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Source lists and reads question batch files.
type Source interface {
	List(ctx context.Context) ([]string, error)
	Read(ctx context.Context, name string) ([]byte, error)
}

// DirSource reads *.json files from a local directory in name order.
type DirSource struct {
	Dir string
}

func (s DirSource) List(_ context.Context) ([]string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("input directory %s: %w", s.Dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path %s is not a directory", s.Dir)
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.json"))
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	sort.Strings(names)
	return names, nil
}

func (s DirSource) Read(_ context.Context, name string) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.Dir, name))
}

// ObjectStore is the part of the paper archive the ingestion source needs.
type ObjectStore interface {
	List(ctx context.Context, prefix string) ([]string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// ArchiveSource reads *.json objects stored under Prefix in the paper archive.
type ArchiveSource struct {
	Store  ObjectStore
	Prefix string
}

func (s ArchiveSource) List(ctx context.Context) ([]string, error) {
	keys, err := s.Store.List(ctx, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("list archive prefix %q: %w", s.Prefix, err)
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		if strings.HasSuffix(k, ".json") {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s ArchiveSource) Read(ctx context.Context, name string) ([]byte, error) {
	return s.Store.Get(ctx, name)
}
