package pdfcodec_test

import (
	"testing"

	"github.com/Rrens/knowledge-drive/internal/pdfcodec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractEmptyInput(t *testing.T) {
	codec := pdfcodec.New()

	text, err := codec.Extract(nil)
	require.NoError(t, err)
	assert.Equal(t, "", text)

	text, err = codec.Extract([]byte{})
	require.NoError(t, err)
	assert.Equal(t, "", text)
}

func TestExtractGarbageInput(t *testing.T) {
	codec := pdfcodec.New()

	_, err := codec.Extract([]byte("this is not a pdf"))
	assert.Error(t, err)
}

func TestEncodeProducesPDF(t *testing.T) {
	codec := pdfcodec.New()

	data, err := codec.Encode("hello knowledge base")
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestEncodeDeterministic(t *testing.T) {
	codec := pdfcodec.New()

	first, err := codec.Encode("same input text")
	require.NoError(t, err)
	second, err := codec.Encode("same input text")
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestEncodeExtractRoundTrip(t *testing.T) {
	codec := pdfcodec.New()

	data, err := codec.Encode("the quarterly report mentions revenue growth")
	require.NoError(t, err)

	text, err := codec.Extract(data)
	require.NoError(t, err)
	assert.Contains(t, text, "quarterly report")
	assert.Contains(t, text, "revenue growth")
}
