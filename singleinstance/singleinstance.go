// Package singleinstance guards resident mode with a loopback TCP port claim.
// The first instance binds the port and answers PING; later instances see the
// bind fail (or get a PONG) and exit instead of installing a second hotkey.
package singleinstance

import (
	"bufio"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	host        = "127.0.0.1"
	defaultPort = 49500
	envPort     = "NEOCR_INSTANCE_PORT"

	pingRequest  = "PING\n"
	pongResponse = "PONG\n"
)

// Port returns the guard port, overridable via NEOCR_INSTANCE_PORT and
// clamped to the unprivileged range.
func Port() int {
	port := defaultPort
	if v := os.Getenv(envPort); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	if port < 1024 {
		port = 1024
	}
	if port > 65535 {
		port = 65535
	}
	return port
}

// Lease holds the claimed port until Close.
type Lease struct {
	lis net.Listener
}

// Acquire claims the guard port. It fails when another resident instance
// already holds it.
func Acquire() (*Lease, error) {
	addr := fmt.Sprintf("%s:%d", host, Port())
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("another instance appears to be running (cannot bind %s): %w", addr, err)
	}
	log.Printf("singleinstance: claimed %s", addr)
	l := &Lease{lis: lis}
	go l.serve()
	return l, nil
}

// Close releases the port so a new instance can start.
func (l *Lease) Close() error {
	if l == nil || l.lis == nil {
		return nil
	}
	return l.lis.Close()
}

func (l *Lease) serve() {
	for {
		c, err := l.lis.Accept()
		if err != nil {
			return
		}
		go func(c net.Conn) {
			defer c.Close()
			_ = c.SetDeadline(time.Now().Add(3 * time.Second))
			line, _ := bufio.NewReader(c).ReadString('\n')
			if line == pingRequest {
				_, _ = c.Write([]byte(pongResponse))
			}
		}(c)
	}
}

// Active reports whether a resident instance currently holds the guard port.
func Active() bool {
	addr := fmt.Sprintf("%s:%d", host, Port())
	c, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
	if err != nil {
		return false
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(2 * time.Second))
	if _, err := c.Write([]byte(pingRequest)); err != nil {
		return false
	}
	line, _ := bufio.NewReader(c).ReadString('\n')
	return line == pongResponse
}
