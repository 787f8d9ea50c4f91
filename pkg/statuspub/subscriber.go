package statuspub

import (
	"encoding/json"
	"fmt"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/sub"

	_ "go.nanomsg.org/mangos/v3/transport/all"
)

// Subscriber connects to a Broadcaster's PUB socket and decodes every
// published Status, for a dashboard process running separately from the
// server.
type Subscriber struct {
	sock mangos.Socket
}

// NewSubscriber dials addr and subscribes to every topic published there.
func NewSubscriber(addr string) (*Subscriber, error) {
	sock, err := sub.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("statuspub: new sub socket: %w", err)
	}
	if err := sock.Dial(addr); err != nil {
		return nil, fmt.Errorf("statuspub: dial %s: %w", addr, err)
	}
	if err := sock.SetOption(mangos.OptionSubscribe, []byte("")); err != nil {
		return nil, fmt.Errorf("statuspub: subscribe: %w", err)
	}
	return &Subscriber{sock: sock}, nil
}

// Recv blocks for the next published Status.
func (s *Subscriber) Recv() (Status, error) {
	data, err := s.sock.Recv()
	if err != nil {
		return Status{}, err
	}
	var st Status
	if err := json.Unmarshal(data, &st); err != nil {
		return Status{}, fmt.Errorf("statuspub: decode status: %w", err)
	}
	return st, nil
}

// Close releases the socket.
func (s *Subscriber) Close() error {
	return s.sock.Close()
}
