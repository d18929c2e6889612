// Package oscio provides the OSC transport collaborators of the bridge:
// an outbound sender with cached per-destination clients and inbound
// listeners that decode tempo messages.
package oscio

import (
	"fmt"
	"sync"

	"github.com/chabad360/go-osc/osc"
	"go.uber.org/zap"
)

// Sender delivers OSC messages to host:port destinations. Clients are
// created lazily and reused; the sender is safe for concurrent use.
type Sender struct {
	mu      sync.Mutex
	logger  *zap.Logger
	clients map[string]*osc.Client
}

// NewSender creates an OSC sender
func NewSender(logger *zap.Logger) *Sender {
	return &Sender{
		logger:  logger,
		clients: map[string]*osc.Client{},
	}
}

// SendTo delivers one OSC message to the given host and port
func (s *Sender) SendTo(host string, port int, msg *osc.Message) error {
	addr := fmt.Sprintf("%s:%d", host, port)

	s.mu.Lock()
	client, ok := s.clients[addr]
	if !ok {
		client = osc.NewClient(host, port)
		s.clients[addr] = client
	}
	s.mu.Unlock()

	s.logger.Debug("sending OSC message",
		zap.String("to", addr),
		zap.String("address", msg.Address))

	if err := client.Send(msg); err != nil {
		return fmt.Errorf("send OSC to %s: %w", addr, err)
	}
	return nil
}
