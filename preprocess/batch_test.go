package preprocess

import (
	"context"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Key string `json:"key"`
	N   int    `json:"n"`
}

func newTemp(t *testing.T) *TempFiles {
	t.Helper()
	temp, err := NewTempFiles(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { temp.Close() })
	return temp
}

// runPairs emits, for every key k, one pair per letter of k. The same
// letters recur across keys, so results have to be combined across
// batches.
func runPairs(t *testing.T, size int, keys []string) []pair {
	t.Helper()
	b := &Batcher[string, pair]{
		Name: "pairs",
		Size: size,
		Temp: newTemp(t),
		Compute: func(_ context.Context, batch []string) ([]pair, error) {
			var out []pair
			for _, k := range batch {
				for _, r := range k {
					out = append(out, pair{Key: string(r), N: 1})
				}
			}
			return out, nil
		},
		Less:    func(a, b pair) bool { return a.Key < b.Key },
		Combine: func(a, b pair) pair { a.N += b.N; return a },
	}
	var got []pair
	require.NoError(t, b.Run(context.Background(), keys, func(p pair) error {
		got = append(got, p)
		return nil
	}))
	return got
}

func TestBatcherSizeIndependent(t *testing.T) {
	keys := []string{"abc", "cab", "zz", "a", "", "bcz", "q"}
	want := []pair{{"a", 3}, {"b", 3}, {"c", 3}, {"q", 1}, {"z", 3}}
	for _, size := range []int{1, 2, 3, 7, 100, 0} {
		assert.Equal(t, want, runPairs(t, size, keys), "size %d", size)
	}
}

func TestBatcherWithoutCombineKeepsAll(t *testing.T) {
	b := &Batcher[int, int]{
		Name:    "ints",
		Size:    2,
		Temp:    newTemp(t),
		Compute: func(_ context.Context, batch []int) ([]int, error) { return batch, nil },
		Less:    func(a, b int) bool { return a < b },
	}
	var got []int
	require.NoError(t, b.Run(context.Background(), []int{5, 1, 5, 3, 1}, func(n int) error {
		got = append(got, n)
		return nil
	}))
	assert.Equal(t, []int{1, 1, 3, 5, 5}, got)
}

func TestBatcherNoKeys(t *testing.T) {
	assert.Empty(t, runPairs(t, 3, nil))
}

func TestBatcherCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := &Batcher[int, int]{
		Name:    "ints",
		Size:    1,
		Temp:    newTemp(t),
		Compute: func(_ context.Context, batch []int) ([]int, error) { return batch, nil },
		Less:    func(a, b int) bool { return a < b },
	}
	err := b.Run(ctx, []int{1, 2}, func(int) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTempFilesWarnOnMisuse(t *testing.T) {
	temp := newTemp(t)

	f, err := temp.Create("a")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, 0, temp.Warnings())

	f, err = temp.Create("a")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, 1, temp.Warnings(), "written twice")

	f, err = temp.Open("a")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, 1, temp.Warnings())

	f, err = temp.Open("a")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, 2, temp.Warnings(), "read after consumed")

	_, err = temp.Open("missing")
	assert.Error(t, err)
	assert.Equal(t, 3, temp.Warnings(), "read before written")
}

func TestTempFilesCloseRemovesEverything(t *testing.T) {
	temp, err := NewTempFiles(t.TempDir(), zerolog.Nop())
	require.NoError(t, err)
	f, err := temp.Create("x")
	require.NoError(t, err)
	f.Close()

	require.NoError(t, temp.Close())
	_, err = os.Stat(temp.Dir())
	assert.True(t, os.IsNotExist(err))
}
