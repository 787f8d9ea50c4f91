package statuspub

import (
	"encoding/json"
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pub"

	// Register transports (tcp://, ipc://, ...).
	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// Broadcaster republishes every recorded Status over a nanomsg PUB socket
// as a JSON message, so any number of SUB-side subscribers (a dashboard, a
// log shipper) can observe ticks without polling the scheduler.
type Broadcaster struct {
	sock mangos.Socket
}

// NewBroadcaster binds a PUB socket at addr (e.g. "tcp://*:9095") and
// returns a Broadcaster publishing to it.
func NewBroadcaster(addr string) (*Broadcaster, error) {
	sock, err := pub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("create PUB socket: %w", err)
	}
	if err := sock.Listen(addr); err != nil {
		sock.Close()
		return nil, fmt.Errorf("bind PUB socket to %s: %w", addr, err)
	}
	return &Broadcaster{sock: sock}, nil
}

// Publish encodes s as JSON and sends it to every connected subscriber.
// A send failure is logged by the caller, not fatal to the tick: a status
// broadcast subscriber dropping offline must never interrupt routing.
func (b *Broadcaster) Publish(s Status) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal status: %w", err)
	}
	return b.sock.Send(data)
}

// Close shuts down the PUB socket.
func (b *Broadcaster) Close() error {
	return b.sock.Close()
}
