// Package server exposes the arena over a line-delimited JSON TCP
// bridge: one command per line in, responses and game events out.
package server

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/charmbracelet/log"

	"arena-engine/models"
	"arena-engine/storage"
)

type TCPServer struct {
	address  string
	listener net.Listener
	handler  *CommandHandler
	sessions *Sessions
	log      *log.Logger

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTCPServer(address string, sessions *Sessions, store *storage.Store, logger *log.Logger) *TCPServer {
	if logger == nil {
		logger = log.Default()
	}
	return &TCPServer{
		address:  address,
		handler:  NewCommandHandler(sessions, store),
		sessions: sessions,
		log:      logger,
		conns:    make(map[net.Conn]struct{}),
		stopChan: make(chan struct{}),
	}
}

// Start listens and serves until Stop. Blocks.
func (s *TCPServer) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.listener = listener
	s.log.Info("tcp server listening", "address", s.address)

	go s.eventBroadcaster()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopChan:
				return nil
			default:
			}
			s.log.Warn("error accepting connection", "err", err)
			continue
		}

		s.log.Info("client connected", "remote", conn.RemoteAddr().String())
		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

func (s *TCPServer) handleConnection(conn net.Conn) {
	defer func() {
		conn.Close()
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		s.log.Info("client disconnected", "remote", conn.RemoteAddr().String())
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()

		var cmd models.Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			s.send(conn, models.Response{
				Success: false,
				Error:   fmt.Sprintf("invalid JSON: %v", err),
			})
			continue
		}

		s.send(conn, s.handler.Handle(cmd))
	}

	if err := scanner.Err(); err != nil {
		s.log.Warn("scanner error", "err", err)
	}
}

func (s *TCPServer) send(conn net.Conn, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.log.Warn("error marshaling payload", "err", err)
		return
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		s.log.Warn("error writing to client", "err", err)
	}
}

// eventBroadcaster fans the merged session event stream out to every
// connected client.
func (s *TCPServer) eventBroadcaster() {
	for {
		select {
		case <-s.stopChan:
			return
		case event := <-s.sessions.Events():
			s.mu.Lock()
			targets := make([]net.Conn, 0, len(s.conns))
			for conn := range s.conns {
				targets = append(targets, conn)
			}
			s.mu.Unlock()
			for _, conn := range targets {
				s.send(conn, event)
			}
		}
	}
}

// Stop shuts the listener, every live game and every connection.
func (s *TCPServer) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	if s.listener != nil {
		s.listener.Close()
	}
	s.sessions.Shutdown()
	s.mu.Lock()
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()
}
