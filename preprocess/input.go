package preprocess

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// Input files, relative to the input directory.
const (
	PlaylistsFile = "playlists.jsonl"
	BPMFile       = "bpm.jsonl"
	LyricsFile    = "lyrics.jsonl"
)

type RawArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RawTrack struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Artists     []RawArtist `json:"artists"`
	ReleaseDate string      `json:"release_date"`
	AddedAt     string      `json:"added_at"`
	// Position is 1-based. Zero means the track's index in the list.
	Position int64 `json:"position"`
}

type RawOwner struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RawPlaylist is one line of playlists.jsonl, as scraped.
type RawPlaylist struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Owner    RawOwner   `json:"owner"`
	Tracks   []RawTrack `json:"tracks"`
}

type RawBPM struct {
	Name   string  `json:"name"`
	Artist string  `json:"artist"`
	BPM    float64 `json:"bpm"`
}

type RawLyrics struct {
	Song   string `json:"song"`
	Artist string `json:"artist"`
	Lyrics string `json:"lyrics"`
}

// readJSONL decodes one value per line of the file at path, calling fn for
// each. A missing file is an error only if required is set.
func readJSONL[T any](path string, required bool, fn func(T) error) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error opening '%s': %w", path, err)
	}
	defer f.Close()

	dec := json.NewDecoder(bufio.NewReaderSize(f, 1<<20))
	for line := 1; ; line++ {
		var v T
		if err := dec.Decode(&v); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error decoding '%s' record %d: %w", path, line, err)
		}
		if err := fn(v); err != nil {
			return err
		}
	}
}

// Allowlist is a case-insensitive set of names.
type Allowlist map[string]struct{}

func NewAllowlist(names ...string) Allowlist {
	l := Allowlist{}
	for _, n := range names {
		l.Add(n)
	}
	return l
}

func (l Allowlist) Add(name string) {
	if name = strings.TrimSpace(name); name != "" {
		l[strings.ToLower(name)] = struct{}{}
	}
}

func (l Allowlist) Has(name string) bool {
	_, ok := l[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

// HasAny reports whether any of names is in the list.
func (l Allowlist) HasAny(names []string) bool {
	for _, n := range names {
		if l.Has(n) {
			return true
		}
	}
	return false
}

// ReadAllowlist reads one name per line. Blank lines and lines starting
// with # are skipped. An empty path yields an empty list.
func ReadAllowlist(path string) (Allowlist, error) {
	l := Allowlist{}
	if path == "" {
		return l, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening allowlist '%s': %w", path, err)
	}
	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		line := s.Text()
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		l.Add(line)
	}
	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("error reading allowlist '%s': %w", path, err)
	}
	return l, nil
}
