package preprocess

import (
	"bufio"
	"container/heap"
	"context"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/goccy/go-json"
	"github.com/klauspost/compress/zstd"
)

// Batcher computes results for a list of keys a batch at a time. Each
// batch is sorted and spilled to a temp file; the files are then merged in
// order, so peak memory is bounded by the batch size. The merged output
// does not depend on the batch size as long as Compute's result for a key
// does not depend on the other keys in its batch.
type Batcher[K, R any] struct {
	Name    string
	Size    int
	Temp    *TempFiles
	Compute func(ctx context.Context, keys []K) ([]R, error)
	// Less orders results, and must be a total order over distinct
	// results.
	Less func(a, b R) bool
	// Combine merges two results that compare equal. When nil, equal
	// results are all kept.
	Combine func(a, b R) R
}

func (b *Batcher[K, R]) equal(x, y R) bool {
	return !b.Less(x, y) && !b.Less(y, x)
}

// Run computes every batch and hands the merged results to emit in order.
func (b *Batcher[K, R]) Run(ctx context.Context, keys []K, emit func(R) error) error {
	size := b.Size
	if size <= 0 {
		size = len(keys)
	}
	var spills []string
	for start := 0; start < len(keys); start += size {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("canceled: %w", err)
		}
		end := min(start+size, len(keys))
		rows, err := b.Compute(ctx, keys[start:end])
		if err != nil {
			return fmt.Errorf("error computing %s batch %d: %w", b.Name, len(spills), err)
		}
		sort.SliceStable(rows, func(i, j int) bool { return b.Less(rows[i], rows[j]) })
		rows = b.combineSorted(rows)

		name := fmt.Sprintf("%s-%06d.jsonl.zst", b.Name, len(spills))
		if err := b.spill(name, rows); err != nil {
			return err
		}
		spills = append(spills, name)
		b.Temp.log.Debug().Str("batch", name).Int("keys", end-start).Int("rows", len(rows)).Msg("spilled batch")
	}
	return b.merge(ctx, spills, emit)
}

func (b *Batcher[K, R]) combineSorted(rows []R) []R {
	if b.Combine == nil || len(rows) == 0 {
		return rows
	}
	out := rows[:1]
	for _, r := range rows[1:] {
		last := &out[len(out)-1]
		if b.equal(*last, r) {
			*last = b.Combine(*last, r)
			continue
		}
		out = append(out, r)
	}
	return out
}

func (b *Batcher[K, R]) spill(name string, rows []R) error {
	f, err := b.Temp.Create(name)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return fmt.Errorf("error creating compressor for '%s': %w", name, err)
	}
	w := bufio.NewWriter(zw)
	enc := json.NewEncoder(w)
	for _, r := range rows {
		if err := enc.Encode(r); err != nil {
			zw.Close()
			return fmt.Errorf("error writing '%s': %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		zw.Close()
		return fmt.Errorf("error writing '%s': %w", name, err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("error writing '%s': %w", name, err)
	}
	return f.Close()
}

// cursor reads one spill file in order.
type cursor[R any] struct {
	name string
	dec  *json.Decoder
	zr   *zstd.Decoder
	cur  R
	// seq breaks ties so equal results keep batch order.
	seq int
}

func (c *cursor[R]) next() (bool, error) {
	var r R
	if err := c.dec.Decode(&r); err != nil {
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		return false, fmt.Errorf("error reading '%s': %w", c.name, err)
	}
	c.cur = r
	return true, nil
}

type cursorHeap[R any] struct {
	cs   []*cursor[R]
	less func(a, b R) bool
}

func (h *cursorHeap[R]) Len() int { return len(h.cs) }
func (h *cursorHeap[R]) Less(i, j int) bool {
	a, b := h.cs[i], h.cs[j]
	if h.less(a.cur, b.cur) {
		return true
	}
	if h.less(b.cur, a.cur) {
		return false
	}
	return a.seq < b.seq
}
func (h *cursorHeap[R]) Swap(i, j int) { h.cs[i], h.cs[j] = h.cs[j], h.cs[i] }
func (h *cursorHeap[R]) Push(x any)    { h.cs = append(h.cs, x.(*cursor[R])) }
func (h *cursorHeap[R]) Pop() any {
	old := h.cs
	c := old[len(old)-1]
	h.cs = old[:len(old)-1]
	return c
}

func (b *Batcher[K, R]) merge(ctx context.Context, spills []string, emit func(R) error) error {
	h := &cursorHeap[R]{less: b.Less}
	defer func() {
		for _, c := range h.cs {
			c.zr.Close()
		}
	}()

	for i, name := range spills {
		f, err := b.Temp.Open(name)
		if err != nil {
			return err
		}
		defer f.Close()
		zr, err := zstd.NewReader(f)
		if err != nil {
			return fmt.Errorf("error opening '%s': %w", name, err)
		}
		c := &cursor[R]{name: name, dec: json.NewDecoder(bufio.NewReader(zr)), zr: zr, seq: i}
		ok, err := c.next()
		if err != nil {
			zr.Close()
			return err
		}
		if !ok {
			zr.Close()
			continue
		}
		h.cs = append(h.cs, c)
	}
	heap.Init(h)

	var (
		pending R
		has     bool
		n       int
	)
	for h.Len() > 0 {
		if n%10000 == 0 {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("canceled: %w", err)
			}
		}
		n++

		c := h.cs[0]
		r := c.cur
		ok, err := c.next()
		if err != nil {
			return err
		}
		if ok {
			heap.Fix(h, 0)
		} else {
			heap.Pop(h)
			c.zr.Close()
		}

		switch {
		case !has:
			pending, has = r, true
		case b.Combine != nil && b.equal(pending, r):
			pending = b.Combine(pending, r)
		default:
			if err := emit(pending); err != nil {
				return err
			}
			pending = r
		}
	}
	if has {
		return emit(pending)
	}
	return nil
}
