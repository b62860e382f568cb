package middleware_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lendly/internal/app/commands"
	"lendly/internal/app/middleware"
	"lendly/internal/infra/storage/memory"
)

type countedCommand struct {
	KeyV   string
	IdemV  string
	Result *countedResult
	Err    error
}

type countedResult struct {
	Value string `json:"value"`
}

func (c countedCommand) Key() string            { return c.KeyV }
func (c countedCommand) IdempotencyKey() string { return c.IdemV }
func (c countedCommand) ResultPrototype() any   { return &countedResult{} }

type countedHandler struct {
	calls int
}

func (h *countedHandler) Handle(ctx context.Context, cmd countedCommand) (*countedResult, error) {
	h.calls++
	if cmd.Err != nil {
		return nil, cmd.Err
	}
	return cmd.Result, nil
}

func newBus(t *testing.T, handler *countedHandler) commands.Bus {
	t.Helper()
	bus := commands.NewInMemoryBus()
	commands.RegisterHandler(bus, "test.counted", handler)
	return middleware.ChainCommands(bus, middleware.Idempotency(memory.NewIdempotencyStore()))
}

func TestIdempotencyReplaysResult(t *testing.T) {
	handler := &countedHandler{}
	bus := newBus(t, handler)
	cmd := countedCommand{KeyV: "test.counted", IdemV: "retry-1", Result: &countedResult{Value: "first"}}

	first, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "first", first.Value)

	cmd.Result = &countedResult{Value: "second"}
	second, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus, cmd)
	require.NoError(t, err)
	assert.Equal(t, "first", second.Value, "retry replays the recorded result")
	assert.Equal(t, 1, handler.calls)
}

func TestIdempotencyReplaysError(t *testing.T) {
	handler := &countedHandler{}
	bus := newBus(t, handler)
	cmd := countedCommand{KeyV: "test.counted", IdemV: "retry-err", Err: errors.New("boom")}

	_, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus, cmd)
	require.Error(t, err)

	_, err = commands.Dispatch[countedCommand, *countedResult](context.Background(), bus, cmd)
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())
	assert.Equal(t, 1, handler.calls, "failed command is not re-executed either")
}

func TestIdempotencySkipsWithoutKey(t *testing.T) {
	handler := &countedHandler{}
	bus := newBus(t, handler)
	cmd := countedCommand{KeyV: "test.counted", Result: &countedResult{Value: "x"}}

	for range 3 {
		_, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus, cmd)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, handler.calls)
}

func TestIdempotencyKeysAreIndependent(t *testing.T) {
	handler := &countedHandler{}
	bus := newBus(t, handler)

	_, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus,
		countedCommand{KeyV: "test.counted", IdemV: "key-a", Result: &countedResult{Value: "a"}})
	require.NoError(t, err)
	res, err := commands.Dispatch[countedCommand, *countedResult](context.Background(), bus,
		countedCommand{KeyV: "test.counted", IdemV: "key-b", Result: &countedResult{Value: "b"}})
	require.NoError(t, err)
	assert.Equal(t, "b", res.Value)
	assert.Equal(t, 2, handler.calls)
}
