// Package readthrough caches rendered responses on disk, keyed by what was
// asked and which build answered it.
package readthrough

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

func New(dir, prefix string) (*ReadThrough, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating cache dir '%s': %w", dir, err)
	}
	return &ReadThrough{dir: dir, prefix: prefix}, nil
}

type ReadThrough struct {
	dir, prefix string
}

var ErrMiss = errors.New("cache miss")

// Key names one response. Parameters are encoded in sorted order, so the
// same query always maps to the same key, and a new build never reuses an
// old build's entries.
func Key(endpoint string, params url.Values, build string) string {
	return build + "\x00" + endpoint + "\x00" + params.Encode()
}

func (rt *ReadThrough) Get(key string) (io.ReadCloser, string, error) {
	hash, filename := rt.hashAndFilename(key)

	if _, err := os.Stat(filename); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, hash, fmt.Errorf("error checking for cache file '%s': %w", hash, err)
	} else if err != nil {
		return nil, hash, fmt.Errorf("cache miss for '%s': %w", hash, ErrMiss)
	}

	cache, err := os.Open(filename)
	if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for read: %w", hash, err)
	}

	return cache, hash, nil
}

// Set stores everything r yields under key and returns a reader over the
// same bytes. The entry is written to a temp file and renamed into place,
// so a concurrent Get sees all of it or none.
func (rt *ReadThrough) Set(key string, r io.Reader) (io.ReadCloser, string, error) {
	hash, filename := rt.hashAndFilename(key)

	cache, err := os.CreateTemp(rt.dir, rt.prefix+"tmp-")
	if err != nil {
		return nil, hash, fmt.Errorf("error opening cache file '%s' for write: %w", hash, err)
	}
	defer os.Remove(cache.Name())
	defer cache.Close()

	var buf bytes.Buffer
	tee := io.TeeReader(r, cache)
	if _, err := io.Copy(&buf, tee); err != nil {
		return nil, hash, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := cache.Close(); err != nil {
		return nil, hash, fmt.Errorf("error writing cache file '%s': %w", hash, err)
	}
	if err := os.Rename(cache.Name(), filename); err != nil {
		return nil, hash, fmt.Errorf("error storing cache file '%s': %w", hash, err)
	}

	return io.NopCloser(&buf), hash, nil
}

// Invalidate removes every entry.
func (rt *ReadThrough) Invalidate() error {
	entries, err := os.ReadDir(rt.dir)
	if err != nil {
		return fmt.Errorf("error listing cache dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), rt.prefix) {
			continue
		}
		if err := os.Remove(filepath.Join(rt.dir, e.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("error removing cache file '%s': %w", e.Name(), err)
		}
	}
	return nil
}

func (rt *ReadThrough) hashAndFilename(key string) (string, string) {
	var hasher = sha256.New()
	hasher.Write([]byte(key))
	hash := hex.EncodeToString(hasher.Sum(nil))
	return hash, filepath.Join(rt.dir, rt.prefix+hash)
}
