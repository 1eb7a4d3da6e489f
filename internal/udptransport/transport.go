// Package udptransport binds the single UDP endpoint each node uses for all
// protocol traffic (§4.4, §6): one message per datagram, no segmentation.
package udptransport

import (
	"fmt"
	"log/slog"
	"net"
	"time"
)

// Packet is one received datagram handed to the scheduler.
type Packet struct {
	Addr *net.UDPAddr
	Data []byte
}

// Transport owns the node's UDP socket. The receive loop runs on its own
// goroutine and only ever writes to the packets channel — it never touches
// engine state directly, which is what lets the engine's scheduler stay
// single-threaded (§5).
type Transport struct {
	conn    *net.UDPConn
	log     *slog.Logger
	packets chan Packet
	closing chan struct{}
}

// Listen binds 0.0.0.0:port (§6) and starts the receive loop.
func Listen(port int, log *slog.Logger) (*Transport, error) {
	addr := &net.UDPAddr{IP: net.IPv4zero, Port: port}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return nil, fmt.Errorf("listen udp :%d: %w", port, err)
	}

	t := &Transport{
		conn:    conn,
		log:     log,
		packets: make(chan Packet, 256),
		closing: make(chan struct{}),
	}
	go t.receiveLoop()
	return t, nil
}

// LocalAddr returns the bound address (useful when port 0 was requested).
func (t *Transport) LocalAddr() *net.UDPAddr {
	return t.conn.LocalAddr().(*net.UDPAddr)
}

// Packets is the channel of inbound datagrams; the scheduler selects on it.
func (t *Transport) Packets() <-chan Packet { return t.packets }

// Send writes one datagram to addr. UDP sends never block on the remote
// peer, so this is safe to call from the scheduler loop without a
// suspension point (§4.4 "outbound sends are permitted").
func (t *Transport) Send(addr *net.UDPAddr, data []byte) error {
	_, err := t.conn.WriteToUDP(data, addr)
	if err != nil {
		return fmt.Errorf("send to %s: %w", addr, err)
	}
	return nil
}

// Close shuts down the socket and stops the receive loop. Idempotent.
func (t *Transport) Close() error {
	select {
	case <-t.closing:
		return nil
	default:
		close(t.closing)
	}
	return t.conn.Close()
}

func (t *Transport) receiveLoop() {
	buf := make([]byte, 65536)
	for {
		select {
		case <-t.closing:
			return
		default:
		}

		t.conn.SetReadDeadline(time.Now().Add(time.Second))
		n, addr, err := t.conn.ReadFromUDP(buf)
		if err != nil {
			if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
				continue
			}
			select {
			case <-t.closing:
				return
			default:
				t.log.Warn("udp read error", "error", err)
				continue
			}
		}

		data := make([]byte, n)
		copy(data, buf[:n])

		select {
		case t.packets <- Packet{Addr: addr, Data: data}:
		case <-t.closing:
			return
		}
	}
}
