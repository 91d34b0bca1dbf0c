package bus

import (
	"context"
	"testing"

	"github.com/yungbote/assignment-backend/internal/realtime"
)

func TestMemoryBusForwardsToEveryHandler(t *testing.T) {
	b := NewMemoryBus()
	var got []realtime.SSEEvent
	for i := 0; i < 2; i++ {
		if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) {
			got = append(got, m.Event)
		}); err != nil {
			t.Fatalf("StartForwarder: %v", err)
		}
	}
	if err := b.Publish(context.Background(), realtime.SSEMessage{Channel: "c", Event: realtime.SSEEventBatchDistributed}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("deliveries: want=2 got=%d", len(got))
	}
	_ = b.Close()
	_ = b.Publish(context.Background(), realtime.SSEMessage{Channel: "c"})
	if len(got) != 2 {
		t.Fatalf("publish after close delivered: %d", len(got))
	}
}
