package plaintext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdocs/internal/core/domain"
	"github.com/custodia-labs/procdocs/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	normaliser := New()
	require.NotNil(t, normaliser)
	assert.IsType(t, &Normaliser{}, normaliser)
}

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/plain")
	assert.Contains(t, mimeTypes, "text/csv")
	assert.Contains(t, mimeTypes, "text/markdown")
	assert.NotContains(t, mimeTypes, "text/html")
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 5, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	content := &domain.FetchedContent{
		Data:     []byte("# Leave Policy\n\nRequest leave two weeks ahead."),
		MIMEType: "text/markdown",
	}

	text, err := New().Normalise(context.Background(), content)

	require.NoError(t, err)
	assert.Equal(t, "# Leave Policy\n\nRequest leave two weeks ahead.", text)
}

func TestNormalise_NilContent(t *testing.T) {
	text, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, text)
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{name: "plain", input: []byte("a,b,c\n1,2,3"), expected: "a,b,c\n1,2,3"},
		{name: "bom stripped", input: []byte("\xEF\xBB\xBFhello"), expected: "hello"},
		{name: "invalid utf8 replaced", input: []byte("caf\xE9"), expected: "caf�"},
		{name: "empty", input: nil, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Decode(tt.input))
		})
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ driven.Normaliser = (*Normaliser)(nil)
}
