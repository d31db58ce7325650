package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sweeney/rad-monitor/internal/logic"
)

// Options configures a RealPublisher.
type Options struct {
	Broker     string
	ClientID   string
	BufferSize int // messages kept while disconnected; DefaultBufferSize if zero

	// OnCommand is called from the paho goroutine for each valid command.
	OnCommand func(Command)

	// OnConnectionChange is called on connect and on connection loss.
	OnConnectionChange func(connected bool)
}

// RealPublisher publishes to an actual MQTT broker.
//
// Messages published while the connection is down are kept in a ring
// buffer and replayed, oldest first, once the client reconnects. Live
// publishing resumes only after the replay has emptied the buffer, so
// messages leave in the order they were published.
type RealPublisher struct {
	client paho.Client
	opts   Options

	mu     sync.Mutex
	buf    *ringBuffer
	online bool // set by onConnect after replay, cleared on connection loss
}

// NewRealPublisher creates a publisher for the given broker and starts
// connecting in the background. Until the first connection succeeds,
// published messages are buffered.
func NewRealPublisher(opts Options) (*RealPublisher, error) {
	p := newPublisher(opts)

	will, err := FormatSystemPayload(SystemEvent{
		Timestamp: time.Now(),
		Event:     "OFFLINE",
		Reason:    "MQTT_DISCONNECT",
	})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	clientOpts := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetBinaryWill(TopicSystem, will, 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(clientOpts)
	token := p.client.Connect()
	go func() {
		if !token.WaitTimeout(10 * time.Second) {
			log.Printf("mqtt: broker %s not reachable yet, buffering", opts.Broker)
			token.Wait()
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: connect to broker: %v", err)
		}
	}()
	return p, nil
}

func newPublisher(opts Options) *RealPublisher {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	return &RealPublisher{
		opts: opts,
		buf:  newRingBuffer(opts.BufferSize),
	}
}

func (p *RealPublisher) onConnect(c paho.Client) {
	log.Printf("mqtt: connected to %s", p.opts.Broker)
	if p.opts.OnConnectionChange != nil {
		p.opts.OnConnectionChange(true)
	}

	token := c.Subscribe(TopicCommand, 1, p.onMessage)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		log.Printf("mqtt: subscribe %s: %v", TopicCommand, token.Error())
	}

	p.replay(c)
}

// replay drains the buffer until it stays empty, then marks the publisher
// online. Sends that arrive meanwhile are buffered behind the replay.
func (p *RealPublisher) replay(c paho.Client) {
	replayed := 0
	for {
		p.mu.Lock()
		pending := p.buf.drainAll()
		if len(pending) == 0 {
			p.online = true
			p.mu.Unlock()
			break
		}
		p.mu.Unlock()

		for _, m := range pending {
			c.Publish(m.topic, m.qos, m.retained, m.payload)
		}
		replayed += len(pending)
	}
	if replayed > 0 {
		log.Printf("mqtt: replayed %d buffered messages", replayed)
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	p.mu.Lock()
	p.online = false
	p.mu.Unlock()

	log.Printf("mqtt: connection lost: %v", err)
	if p.opts.OnConnectionChange != nil {
		p.opts.OnConnectionChange(false)
	}
}

func (p *RealPublisher) onMessage(_ paho.Client, m paho.Message) {
	cmd, err := ParseCommand(m.Payload())
	if err != nil {
		log.Printf("mqtt: ignoring command on %s: %v", m.Topic(), err)
		return
	}
	if p.opts.OnCommand != nil {
		p.opts.OnCommand(cmd)
	}
}

// Publish sends a coordinator event to the MQTT broker.
func (p *RealPublisher) Publish(event logic.Event) error {
	payload, err := FormatPayload(event)
	if err != nil {
		return fmt.Errorf("format payload: %w", err)
	}
	// QoS 1: alert transitions matter to whoever is listening.
	return p.send(bufferedMsg{topic: TopicEvents, payload: payload, qos: 1})
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.send(bufferedMsg{topic: TopicSystem, payload: payload, qos: 1, retained: event.Retained})
}

func (p *RealPublisher) send(m bufferedMsg) error {
	p.mu.Lock()
	if !p.online || !p.client.IsConnectionOpen() {
		p.buf.push(m)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish %s: timeout", m.topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", m.topic, err)
	}
	return nil
}

// IsConnected reports whether the client currently has an open connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Buffered returns the number of messages waiting for a connection.
func (p *RealPublisher) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.buf.len()
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000)
	return nil
}

var (
	_ Publisher        = (*RealPublisher)(nil)
	_ ConnectionStatus = (*RealPublisher)(nil)
)
