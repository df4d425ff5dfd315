package events

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixed = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func TestMarshalSSE_WireFormat(t *testing.T) {
	b, err := MarshalSSE(Event{
		Type:  NodeEnd,
		RunID: "run-1",
		Graph: "sentinel",
		Node:  "transaction",
		TS:    fixed,
		Data:  map[string]any{"score": 0.7},
	})
	require.NoError(t, err)
	want := "event: on_node_end\n" +
		`data: {"run_id":"run-1","graph":"sentinel","node":"transaction","ts":"2024-05-01T12:00:00Z","data":{"score":0.7}}` +
		"\n\n"
	assert.Equal(t, want, string(b))

	b, err = MarshalSSE(Event{Type: Error, RunID: "r", Graph: "g", TS: fixed})
	require.NoError(t, err)
	assert.Equal(t, "event: on_error\n"+`data: {"run_id":"r","graph":"g","ts":"2024-05-01T12:00:00Z"}`+"\n\n", string(b))
}

func TestMarshalUIPart(t *testing.T) {
	b, err := MarshalUIPart(PartStatus, map[string]string{"status": "started"})
	require.NoError(t, err)
	assert.Equal(t, `data: {"type":"data-status","data":{"status":"started"}}`+"\n\n", string(b))
	assert.Equal(t, "data: [DONE]\n\n", string(UIDone))
}

func TestChannel_OrderAndSwallowedFailures(t *testing.T) {
	var buf Buffer
	failing := SubscriberFunc(func(context.Context, Event) error { return errors.New("db down") })
	ch := New([]Subscriber{failing, &buf}, WithClock(func() time.Time { return fixed }))

	em := ch.Emitter("run-9", "sentinel")
	ctx := context.Background()
	em.NodeStart(ctx, "transaction", nil)
	em.ToolCall(ctx, "transaction", "llm", map[string]string{"model": "m"})
	em.Sub("regulatory").Artifact(ctx, "generate", "proposal", "p1")
	em.Error(ctx, "transaction", errors.New("boom"))
	em.NodeEnd(ctx, "transaction", map[string]any{"ok": true})

	evs := buf.Events()
	require.Len(t, evs, 5)
	types := []Type{NodeStart, ToolCall, Artifact, Error, NodeEnd}
	for i, ev := range evs {
		assert.Equal(t, types[i], ev.Type)
		assert.Equal(t, "run-9", ev.RunID)
		assert.Equal(t, fixed, ev.TS)
		assert.True(t, ev.Type.Valid())
	}
	assert.Equal(t, "regulatory", evs[2].Graph)
	assert.Equal(t, map[string]any{"message": "boom"}, evs[3].Data)
}

func TestEmitter_ZeroValueIsSafe(t *testing.T) {
	var em Emitter
	em.NodeStart(context.Background(), "x", nil)
	em.Error(context.Background(), "x", nil)
	assert.False(t, Type("on_nothing").Valid())
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("broken pipe")
}

func TestStreamWriter_StopsAfterFailure(t *testing.T) {
	fw := &failWriter{}
	sw := NewStreamWriter(fw)
	sub := sw.SSE()
	ctx := context.Background()

	require.NoError(t, sub.Publish(ctx, Event{Type: NodeStart, TS: fixed}))
	require.NoError(t, sub.Publish(ctx, Event{Type: NodeEnd, TS: fixed}))
	assert.True(t, sw.Closed())
	assert.Equal(t, 1, fw.n, "no writes after the first failure")
}

func TestStreamWriter_StopsOnCancelledContext(t *testing.T) {
	rec := httptest.NewRecorder()
	sw := NewStreamWriter(rec)
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, sw.SSE().Publish(ctx, Event{Type: NodeStart, RunID: "r", Graph: "g", TS: fixed}))
	cancel()
	require.NoError(t, sw.SSE().Publish(ctx, Event{Type: NodeEnd, RunID: "r", Graph: "g", TS: fixed}))

	assert.True(t, rec.Flushed)
	assert.Equal(t, 1, bytes.Count(rec.Body.Bytes(), []byte("event: ")))
	assert.True(t, sw.Closed())
}

func TestStreamWriter_UIFrames(t *testing.T) {
	var out bytes.Buffer
	sw := NewStreamWriter(&out)
	ctx := context.Background()
	require.NoError(t, sw.Part(ctx, PartStatus, "running"))
	require.NoError(t, sw.UI().Publish(ctx, Event{Type: NodeStart, RunID: "r", Graph: "g", TS: fixed}))
	require.NoError(t, sw.WriteFrame(ctx, UIDone))

	want := `data: {"type":"data-status","data":"running"}` + "\n\n" +
		`data: {"type":"data-event","data":{"event":"on_node_start","run_id":"r","graph":"g","ts":"2024-05-01T12:00:00Z"}}` + "\n\n" +
		"data: [DONE]\n\n"
	assert.Equal(t, want, out.String())
}
