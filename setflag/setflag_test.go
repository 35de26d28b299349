package setflag

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetFlag(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	order := New("stages", "playlist", "playlist_track", "track", "lyrics")
	fs.Var(order, "order", "stage order")

	require.NoError(t, fs.Parse([]string{"--order", "track, playlist", "--order", "lyrics"}))
	assert.Equal(t, []string{"track", "playlist", "lyrics"}, order.List())
	assert.Equal(t, "track,playlist,lyrics", order.String())

	assert.Error(t, order.Set("album"))
	assert.Error(t, order.Set("track"), "duplicate")
}

func TestChoice(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	dir := NewChoice("direction", "any", "next", "prev", "any")
	fs.Var(dir, "direction", "")

	assert.Equal(t, "any", dir.String())
	require.NoError(t, fs.Parse([]string{"--direction", "next"}))
	assert.Equal(t, "next", dir.String())
	assert.Error(t, fs.Parse([]string{"--direction", "sideways"}))
	assert.Equal(t, "next", dir.String())
}
