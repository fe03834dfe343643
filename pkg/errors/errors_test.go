package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapAndCode(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap("storage_error", "failed to store photo", cause)

	require.True(t, IsCode(err, "storage_error"))
	require.False(t, IsCode(err, "invalid_input"))
	require.ErrorIs(t, err, cause)
	require.Equal(t, "failed to store photo: boom", err.Error())
	require.Equal(t, "failed to store photo", MessageOf(err))
}

func TestCodeOfWrappedChain(t *testing.T) {
	err := fmt.Errorf("load: %w", Wrap("not_found", "photo not found", nil))
	require.Equal(t, "not_found", CodeOf(err))
	require.Equal(t, "", CodeOf(errors.New("plain")))
	require.Equal(t, "plain", MessageOf(errors.New("plain")))
	require.Equal(t, "", MessageOf(nil))
}
