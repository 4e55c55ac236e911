package compress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_RoundTrip(t *testing.T) {
	payload := []byte(`["invoice","receipt","` + strings.Repeat("contract,", 64) + `"]`)

	for _, name := range []string{NameNop, NameGZip, NameBrotli, NameLZ4} {
		t.Run(name, func(t *testing.T) {
			codec, err := New(name)
			require.NoError(t, err)

			encoded, err := codec.Encode(payload)
			require.NoError(t, err)

			decoded, err := codec.Decode(encoded)
			require.NoError(t, err)
			assert.Equal(t, payload, decoded)
		})
	}
}

func TestNew_Unknown(t *testing.T) {
	_, err := New("zstd")
	assert.Error(t, err)
}

func TestNew_EmptyIsNop(t *testing.T) {
	codec, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, codec)
}
