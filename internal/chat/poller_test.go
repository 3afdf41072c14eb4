package chat

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/go_storefront/internal/domain"
)

type mockChatAPI struct {
	m        sync.Mutex
	messages []domain.Message
	calls    int
	inFlight int
	maxSeen  int
	block    chan struct{}
}

func (m *mockChatAPI) ListMessages(_ context.Context, _, afterID string) ([]domain.Message, error) {
	m.m.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	block := m.block
	m.m.Unlock()

	if block != nil {
		<-block
	}

	m.m.Lock()
	defer m.m.Unlock()
	m.inFlight--

	msgs := append([]domain.Message(nil), m.messages...)
	if afterID == "" {
		return msgs, nil
	}
	for i, msg := range msgs {
		if msg.ID == afterID {
			return msgs[i+1:], nil
		}
	}
	return msgs, nil
}

func (m *mockChatAPI) push(id, body string) {
	m.m.Lock()
	defer m.m.Unlock()
	m.messages = append(m.messages, domain.Message{ID: id, ConversationID: "c1", Body: body})
}

func TestPoller_DeliversNewMessages(t *testing.T) {
	mock := &mockChatAPI{}
	mock.push("m1", "hello")

	var mu sync.Mutex
	var got []domain.Message
	p := NewPoller(mock, 10*time.Millisecond, func(batch []domain.Message) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, batch...)
	})

	p.Start("c1")
	defer p.Stop()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 1
	}, time.Second, 5*time.Millisecond)

	// Later messages arrive on a later tick; earlier ones are not
	// redelivered.
	mock.push("m2", "anyone there?")
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "m1", got[0].ID)
	assert.Equal(t, "m2", got[1].ID)
}

func TestPoller_StopCancelsPolling(t *testing.T) {
	mock := &mockChatAPI{}
	p := NewPoller(mock, 10*time.Millisecond, nil)

	p.Start("c1")
	require.Eventually(t, func() bool {
		mock.m.Lock()
		defer mock.m.Unlock()
		return mock.calls > 0
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	mock.m.Lock()
	after := mock.calls
	mock.m.Unlock()

	time.Sleep(50 * time.Millisecond)
	mock.m.Lock()
	defer mock.m.Unlock()
	assert.Equal(t, after, mock.calls, "no polls after Stop")
}

func TestPoller_SingleFlight(t *testing.T) {
	block := make(chan struct{})
	mock := &mockChatAPI{block: block}
	p := NewPoller(mock, 5*time.Millisecond, nil)

	// Hammer PollNow while every fetch hangs; single-flight must keep
	// at most one request in flight.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.PollNow(context.Background(), "c1")
		}()
	}

	time.Sleep(50 * time.Millisecond)
	close(block)
	wg.Wait()

	mock.m.Lock()
	defer mock.m.Unlock()
	assert.Equal(t, 1, mock.maxSeen, "overlapping polls must share one flight")
	assert.LessOrEqual(t, mock.calls, 2)
}

func TestPoller_RestartResetsCursor(t *testing.T) {
	mock := &mockChatAPI{}
	mock.push("m1", "hello")

	var mu sync.Mutex
	count := 0
	p := NewPoller(mock, 10*time.Millisecond, func(batch []domain.Message) {
		mu.Lock()
		defer mu.Unlock()
		count += len(batch)
	})

	for i := 0; i < 2; i++ {
		p.Start("c1")
		require.Eventually(t, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return count >= i+1
		}, time.Second, 5*time.Millisecond, fmt.Sprintf("run %d", i))
		p.Stop()
	}

	// Dialog reopened: history is fetched fresh both times.
	mu.Lock()
	defer mu.Unlock()
	assert.GreaterOrEqual(t, count, 2)
}
