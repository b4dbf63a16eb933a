package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := SourceReadFailure("Projects.csv", fs.ErrNotExist)
	wrapped := Wrap(base, "load failed")

	assert.Equal(t, CodeSourceReadFailure, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, fs.ErrNotExist))
	assert.Contains(t, wrapped.Error(), "load failed")
}

func TestWrapPlainErrorIsInternal(t *testing.T) {
	wrapped := Wrapf(fmt.Errorf("boom"), "step %d", 3)
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.Equal(t, "step 3: boom", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestGetCodeThroughFmtWrap(t *testing.T) {
	err := fmt.Errorf("outer: %w", PipelineFailure("derive", nil))
	assert.True(t, IsAppError(err))
	assert.Equal(t, CodePipelineFailure, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}
