package conf

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags(t *testing.T) {
	t.Parallel()

	v := NewViper()
	fs := pflag.NewFlagSet("capture", pflag.ContinueOnError)
	fs.String("source", v.GetString("stream.source"), "audio source")
	fs.Int("channels", v.GetInt("stream.channels"), "channel count")
	fs.Bool("unbound", false, "not a settings flag")
	require.NoError(t, BindFlag(fs, "source", "stream.source"))
	require.NoError(t, BindFlag(fs, "channels", "stream.channels"))

	require.NoError(t, fs.Parse([]string{"--source", "mic"}))
	require.NoError(t, BindFlags(v, fs))

	assert.Equal(t, "mic", v.GetString("stream.source"), "changed flag wins")
	assert.Equal(t, 2, v.GetInt("stream.channels"), "unchanged flag keeps the default")
	assert.False(t, v.IsSet("unbound"))
}

func TestBindFlagUnknownName(t *testing.T) {
	t.Parallel()

	fs := pflag.NewFlagSet("x", pflag.ContinueOnError)
	require.Error(t, BindFlag(fs, "missing", "stream.source"))
}
