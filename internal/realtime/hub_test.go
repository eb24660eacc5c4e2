package realtime

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testClient(id string, buffer int) *Client {
	return &Client{ID: id, send: make(chan WSMessage, buffer)}
}

func drain(c *Client) []WSMessage {
	var out []WSMessage
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestBroadcastReachesAllClients(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	c1 := testClient("c1", 8)
	c2 := testClient("c2", 8)
	h.Register(c1)
	h.Register(c2)

	h.Broadcast("pollResults", map[string]int{"totalVotes": 3})

	for _, c := range []*Client{c1, c2} {
		msgs := drain(c)
		require.Len(t, msgs, 1)
		assert.Equal(t, "pollResults", msgs[0].Event)
		var payload map[string]int
		require.NoError(t, json.Unmarshal(msgs[0].Data, &payload))
		assert.Equal(t, 3, payload["totalVotes"])
	}
}

func TestSlowClientDoesNotBlockOthers(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	slow := testClient("slow", 1)
	fast := testClient("fast", 8)
	h.Register(slow)
	h.Register(fast)

	// Fill the slow client's buffer; further sends to it are skipped.
	h.Broadcast("first", nil)
	h.Broadcast("second", nil)
	h.Broadcast("third", nil)

	assert.Len(t, drain(slow), 1)
	assert.Len(t, drain(fast), 3)
}

func TestSendTo(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	c1 := testClient("c1", 8)
	c2 := testClient("c2", 8)
	h.Register(c1)
	h.Register(c2)

	h.SendTo("c1", "error", map[string]string{"message": "Invalid option"})
	h.SendTo("nobody", "error", nil) // unknown client is a no-op

	msgs := drain(c1)
	require.Len(t, msgs, 1)
	assert.Equal(t, "error", msgs[0].Event)
	assert.Empty(t, drain(c2))
}

func TestUnregister(t *testing.T) {
	h := NewHub(zap.NewNop(), nil)
	c := testClient("c1", 8)
	h.Register(c)
	require.Equal(t, 1, h.Count())

	h.Unregister(c)
	assert.Equal(t, 0, h.Count())

	h.Broadcast("newPoll", nil)
	assert.Empty(t, drain(c))
}

type capturePublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturePublisher) PublishEvent(event string, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) snapshot() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func TestBroadcastMirroredToPublisher(t *testing.T) {
	pub := &capturePublisher{}
	h := NewHub(zap.NewNop(), pub)

	h.Broadcast("newPoll", map[string]string{"question": "Pick one"})
	h.Broadcast("pollEnded", nil)

	require.Eventually(t, func() bool {
		return len(pub.snapshot()) == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"newPoll", "pollEnded"}, pub.snapshot())
}
