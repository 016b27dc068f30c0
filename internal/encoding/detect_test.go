package encoding_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/MrJamesThe3rd/spendviz/internal/encoding"
)

const header = "Account Name,Product: Product Name,Total\n"

func TestDetect_UTF8Passthrough(t *testing.T) {
	input := header + "Concessionária Lda,Óleo,\"1,000.00\"\n"

	r, charset, err := encoding.Detect(bytes.NewReader([]byte(input)))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestDetect_Windows1252(t *testing.T) {
	input := header + "Concessionária Lda,Óleo,10\n"

	encoded, err := charmap.Windows1252.NewEncoder().Bytes([]byte(input))
	require.NoError(t, err)

	r, charset, err := encoding.Detect(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.NotEqual(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestDetect_UTF8BOM(t *testing.T) {
	input := append([]byte{0xEF, 0xBB, 0xBF}, []byte(header)...)

	r, charset, err := encoding.Detect(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8BOM, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, header, string(got))
}

func TestDetect_UTF16LE(t *testing.T) {
	encoded, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte(header))
	require.NoError(t, err)

	r, charset, err := encoding.Detect(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF16LE, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, header, string(got))
}

func TestDetect_RuneSplitAtSniffBoundary(t *testing.T) {
	// 4095 ASCII bytes followed by a two-byte rune straddles the peek window.
	input := strings.Repeat("a", 4095) + "é\n"

	r, charset, err := encoding.Detect(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, input, string(got))
}

func TestDetect_Empty(t *testing.T) {
	r, charset, err := encoding.Detect(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, encoding.CharsetUTF8, charset)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Empty(t, got)
}
