package serrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBaseError_WrappedSentinelMatches(t *testing.T) {
	t.Parallel()

	sentinel := NewError("MQ_TEST", "test failure", "")
	err := fmt.Errorf("%w: row %d", sentinel, 7)

	require.ErrorIs(t, err, sentinel)

	var be *BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "MQ_TEST", be.Code)
	require.Equal(t, "test failure: row 7", err.Error())
}

func TestBaseError_WithTemplateDataCopies(t *testing.T) {
	t.Parallel()

	sentinel := NewError("MQ_TEST", "test failure", "Errors.Test")
	withData := sentinel.WithTemplateData(map[string]string{"id": "25"})

	require.Nil(t, sentinel.TemplateData)
	require.Equal(t, "25", withData.TemplateData["id"])
	require.Equal(t, sentinel.Code, withData.Code)
	require.NotSame(t, sentinel, withData)
}
