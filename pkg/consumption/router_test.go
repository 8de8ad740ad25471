package consumption

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iota-uz/iota-mq/pkg/transport"
)

func TestRouter_DispatchesByProperty(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)
	r.Add("report", ProcessorFunc(ack))
	r.Add("mail", ProcessorFunc(func(context.Context, transport.Message, transport.Session) (Status, error) {
		return StatusRequeue, nil
	}))

	status, err := r.Process(context.Background(), transport.NewMessage("", transport.Values{RouterProperty: "mail"}, nil), nil)
	require.NoError(t, err)
	require.Equal(t, StatusRequeue, status)

	status, err = r.Process(context.Background(), transport.NewMessage("", transport.Values{RouterProperty: "report"}, nil), nil)
	require.NoError(t, err)
	require.Equal(t, StatusAck, status)

	require.Equal(t, []string{"mail", "report"}, r.Names())
}

func TestRouter_RejectsUnroutable(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)
	status, err := r.Process(context.Background(), transport.NewMessage("", nil, nil), nil)
	require.NoError(t, err)
	require.Equal(t, StatusReject, status)
}

func TestRouter_RecoversPanics(t *testing.T) {
	t.Parallel()

	r := NewRouter(nil)
	r.Add("explode", ProcessorFunc(func(context.Context, transport.Message, transport.Session) (Status, error) {
		panic("kaboom")
	}))

	status, err := r.Process(context.Background(), transport.NewMessage("", transport.Values{RouterProperty: "explode"}, nil), nil)
	require.ErrorIs(t, err, ErrProcessorPanic)
	require.Contains(t, err.Error(), "kaboom")
	require.Empty(t, status)
}
