package transport

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-mq/pkg/serrors"
)

func TestQueue_EqualityByName(t *testing.T) {
	t.Parallel()

	require.Equal(t, NewQueue("orders"), NewQueue("orders"))
	require.True(t, NewQueue("orders") == NewQueue("orders"))
	require.False(t, NewQueue("orders") == NewQueue("emails"))
	require.Equal(t, "orders", NewQueue("orders").Name())
}

func TestBasicMessage_MapsAreCopiedOnSet(t *testing.T) {
	t.Parallel()

	props := Values{"k": "v"}
	m := NewMessage("body", props, nil)
	props["k"] = "changed"

	v, ok := m.Property("k")
	require.True(t, ok)
	require.Equal(t, "v", v)

	_, ok = m.Header("missing")
	require.False(t, ok)

	m.SetHeader("h", int64(1))
	require.Equal(t, Values{"h": int64(1)}, m.Headers())
}

func TestBasicMessage_ZeroValueIsUsable(t *testing.T) {
	t.Parallel()

	var m BasicMessage
	require.NotNil(t, m.Headers())
	require.NotNil(t, m.Properties())
	require.False(t, m.IsRedelivered())

	m.SetPriority(4)
	m.SetRedelivered(true)
	m.SetBody("x")
	require.Equal(t, 4, m.Priority())
	require.True(t, m.IsRedelivered())
	require.Equal(t, "x", m.Body())
}

func TestInvalidMessage(t *testing.T) {
	t.Parallel()

	err := InvalidMessage("*dbal.Message", NewMessage("", nil, nil))
	require.ErrorIs(t, err, ErrInvalidMessage)
	require.Contains(t, err.Error(), `the transport message must be instance of "*dbal.Message"`)

	var be *serrors.BaseError
	require.True(t, errors.As(err, &be))
	require.Equal(t, "MQ_INVALID_MESSAGE", be.Code)
}
