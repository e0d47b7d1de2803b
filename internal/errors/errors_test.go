package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := DecodeError("class", 3)
	wrapped := Wrap(base, "loading iris")

	assert.Equal(t, CodeDecodeError, GetCode(wrapped))
	assert.True(t, HasCode(wrapped, CodeDecodeError))
	assert.Contains(t, wrapped.Error(), "loading iris")
	assert.Contains(t, wrapped.Error(), `column "class" row 3`)
}

func TestWrapPlainError(t *testing.T) {
	wrapped := Wrap(fmt.Errorf("boom"), "context")

	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestHasCodeWalksChain(t *testing.T) {
	inner := UnsupportedType("flag", "bool")
	outer := WithCode(CodeExportError, fmt.Errorf("export: %w", inner))

	assert.True(t, HasCode(outer, CodeExportError))
	assert.True(t, HasCode(outer, CodeUnsupportedType))
	assert.False(t, HasCode(outer, CodeLoadError))
	assert.False(t, HasCode(fmt.Errorf("plain"), CodeLoadError))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", LoadError("x.arff", fmt.Errorf("bad header")))

	assert.Equal(t, CodeLoadError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
