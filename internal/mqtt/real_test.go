package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/rad-monitor/internal/logic"
)

// doneToken is a completed paho token.
type doneToken struct {
	paho.Token
	err error
}

func (t doneToken) Wait() bool                     { return true }
func (t doneToken) WaitTimeout(time.Duration) bool { return true }
func (t doneToken) Error() error                   { return t.err }

func (t doneToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type sentMsg struct {
	topic    string
	retained bool
	payload  []byte
}

// fakeClient records publishes and subscriptions. Methods the publisher
// never calls are left to the embedded nil interface.
type fakeClient struct {
	paho.Client

	mu         sync.Mutex
	open       bool
	sent       []sentMsg
	subscribed map[string]paho.MessageHandler
	publishErr error

	// onPublish runs after a publish is recorded, outside the lock.
	onPublish func(n int)
}

func newFakeClient() *fakeClient {
	return &fakeClient{subscribed: map[string]paho.MessageHandler{}}
}

func (f *fakeClient) setOpen(open bool) {
	f.mu.Lock()
	f.open = open
	f.mu.Unlock()
}

func (f *fakeClient) IsConnectionOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	f.mu.Lock()
	f.sent = append(f.sent, sentMsg{topic: topic, retained: retained, payload: payload.([]byte)})
	n := len(f.sent)
	hook := f.onPublish
	err := f.publishErr
	f.mu.Unlock()
	if hook != nil {
		hook(n)
	}
	return doneToken{err: err}
}

func (f *fakeClient) Subscribe(topic string, qos byte, cb paho.MessageHandler) paho.Token {
	f.mu.Lock()
	f.subscribed[topic] = cb
	f.mu.Unlock()
	return doneToken{}
}

func (f *fakeClient) Disconnect(uint) {
	f.setOpen(false)
}

func (f *fakeClient) messages() []sentMsg {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]sentMsg(nil), f.sent...)
}

type fakeMessage struct {
	paho.Message
	topic   string
	payload []byte
}

func (m fakeMessage) Topic() string   { return m.topic }
func (m fakeMessage) Payload() []byte { return m.payload }

func newTestPublisher(opts Options) (*RealPublisher, *fakeClient) {
	p := newPublisher(opts)
	c := newFakeClient()
	p.client = c
	return p, c
}

func reading(n int) logic.Event {
	return logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventAlertStart,
		Mode:      logic.ModeNormal,
		Reading:   n,
	}
}

// readings decodes the reading of every event payload, in send order.
func readings(t *testing.T, msgs []sentMsg) []int {
	t.Helper()
	var out []int
	for _, m := range msgs {
		if m.topic != TopicEvents {
			continue
		}
		var p Payload
		if err := json.Unmarshal(m.payload, &p); err != nil {
			t.Fatalf("decode %s: %v", m.payload, err)
		}
		out = append(out, p.Radiation.Reading)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRealPublisherBuffersWhileDisconnected(t *testing.T) {
	p, c := newTestPublisher(Options{})

	if err := p.Publish(reading(1)); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := len(c.messages()); got != 0 {
		t.Errorf("sent while down: got %d, want 0", got)
	}
	if got := p.Buffered(); got != 1 {
		t.Errorf("Buffered: got %d, want 1", got)
	}
}

func TestRealPublisherReplaysInOrderOnConnect(t *testing.T) {
	var changes []bool
	p, c := newTestPublisher(Options{OnConnectionChange: func(up bool) { changes = append(changes, up) }})

	p.Publish(reading(1))
	p.PublishSystem(SystemEvent{Timestamp: time.Now(), Event: "STARTUP", Retained: true})
	p.Publish(reading(2))

	c.setOpen(true)
	p.onConnect(c)

	msgs := c.messages()
	if len(msgs) != 3 {
		t.Fatalf("replayed: got %d, want 3", len(msgs))
	}
	if msgs[1].topic != TopicSystem || !msgs[1].retained {
		t.Errorf("second message: got topic=%s retained=%v, want %s retained", msgs[1].topic, msgs[1].retained, TopicSystem)
	}
	if got := readings(t, msgs); !equalInts(got, []int{1, 2}) {
		t.Errorf("replay order: got %v, want [1 2]", got)
	}
	if p.Buffered() != 0 {
		t.Errorf("Buffered after replay: got %d, want 0", p.Buffered())
	}
	if _, ok := c.subscribed[TopicCommand]; !ok {
		t.Errorf("no subscription to %s", TopicCommand)
	}
	if len(changes) != 1 || !changes[0] {
		t.Errorf("connection changes: got %v, want [true]", changes)
	}

	p.Publish(reading(3))
	if got := readings(t, c.messages()); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("after live publish: got %v, want [1 2 3]", got)
	}
}

// paho marks the connection open before it runs the connect handler. A
// publish in that gap must wait for the replay rather than be stranded.
func TestRealPublisherBuffersUntilConnectHandlerRuns(t *testing.T) {
	p, c := newTestPublisher(Options{})
	c.setOpen(true)

	p.Publish(reading(7))
	if got := len(c.messages()); got != 0 {
		t.Errorf("sent before connect handler: got %d, want 0", got)
	}

	p.onConnect(c)
	if got := readings(t, c.messages()); !equalInts(got, []int{7}) {
		t.Errorf("sent after connect handler: got %v, want [7]", got)
	}
	if p.Buffered() != 0 {
		t.Errorf("Buffered: got %d, want 0", p.Buffered())
	}
}

func TestRealPublisherPublishDuringReplayKeepsOrder(t *testing.T) {
	p, c := newTestPublisher(Options{})
	p.Publish(reading(1))
	p.Publish(reading(2))

	c.onPublish = func(n int) {
		if n == 1 {
			p.Publish(reading(3))
		}
	}
	c.setOpen(true)
	p.onConnect(c)

	if got := readings(t, c.messages()); !equalInts(got, []int{1, 2, 3}) {
		t.Errorf("send order: got %v, want [1 2 3]", got)
	}
}

func TestRealPublisherBuffersAfterConnectionLost(t *testing.T) {
	var changes []bool
	p, c := newTestPublisher(Options{OnConnectionChange: func(up bool) { changes = append(changes, up) }})
	c.setOpen(true)
	p.onConnect(c)

	p.onConnectionLost(c, errors.New("eof"))
	p.Publish(reading(4))
	if got := len(c.messages()); got != 0 {
		t.Errorf("sent after connection lost: got %d, want 0", got)
	}
	if p.Buffered() != 1 {
		t.Errorf("Buffered: got %d, want 1", p.Buffered())
	}
	if len(changes) != 2 || changes[1] {
		t.Errorf("connection changes: got %v, want [true false]", changes)
	}

	p.onConnect(c)
	if got := readings(t, c.messages()); !equalInts(got, []int{4}) {
		t.Errorf("after reconnect: got %v, want [4]", got)
	}
}

func TestRealPublisherReturnsPublishError(t *testing.T) {
	p, c := newTestPublisher(Options{})
	c.setOpen(true)
	p.onConnect(c)
	c.publishErr = errors.New("broker said no")

	if err := p.Publish(reading(1)); err == nil {
		t.Error("expected error from failed publish")
	}
}

func TestRealPublisherCommandHandler(t *testing.T) {
	var got []Command
	p, c := newTestPublisher(Options{OnCommand: func(cmd Command) { got = append(got, cmd) }})
	c.setOpen(true)
	p.onConnect(c)

	handler := c.subscribed[TopicCommand]
	if handler == nil {
		t.Fatalf("no handler for %s", TopicCommand)
	}
	handler(c, fakeMessage{topic: TopicCommand, payload: []byte(" Toggle\n")})
	handler(c, fakeMessage{topic: TopicCommand, payload: []byte("reboot")})

	if len(got) != 1 || got[0] != CommandToggle {
		t.Errorf("commands: got %v, want [toggle]", got)
	}
}
