package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextPlain(t *testing.T) {
	out, err := Text([]byte("plain resume text"), "txt")
	require.NoError(t, err)
	assert.Equal(t, "plain resume text", out)
}

func TestTextUnsupported(t *testing.T) {
	_, err := Text([]byte("x"), "exe")
	assert.Error(t, err)
}

func TestTextBadPDF(t *testing.T) {
	_, err := Text([]byte("definitely not a pdf"), "pdf")
	assert.Error(t, err)
}

func TestTextBadDOCX(t *testing.T) {
	_, err := Text([]byte("definitely not a zip archive"), "docx")
	assert.Error(t, err)
}
