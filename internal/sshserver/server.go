// Package sshserver serves the table viewer to SSH clients. It wraps
// gliderlabs/ssh (which itself wraps golang.org/x/crypto/ssh); every
// session gets its own copy of the grid and its own viewer sized to the
// session's pty.
package sshserver

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gliderlabs/ssh"
	"github.com/google/uuid"
	gossh "golang.org/x/crypto/ssh"

	"github.com/stlalpha/tabview/internal/ansi"
	"github.com/stlalpha/tabview/internal/grid"
	"github.com/stlalpha/tabview/internal/logging"
	"github.com/stlalpha/tabview/internal/render"
	"github.com/stlalpha/tabview/internal/terminalio"
	"github.com/stlalpha/tabview/internal/viewer"
)

// Config holds SSH server configuration.
type Config struct {
	Addr                string
	HostKeyPath         string
	PasswordHash        string // bcrypt hash; empty accepts every client
	MaxFailedLogins     int    // per address within LockoutDuration, 0 means unlimited
	LockoutDuration     time.Duration
	MaxSessions         int // 0 means unlimited
	OutputMode          ansi.OutputMode
	LegacySSHAlgorithms bool
	Version             string // SSH server banner version (default: "tabview")
}

// GridSource hands out the grid new sessions should show.
type GridSource interface {
	Grid() *grid.Grid
}

// Server wraps a gliderlabs/ssh server.
type Server struct {
	inner  *ssh.Server
	cfg    Config
	source GridSource

	mu     sync.Mutex
	active int
}

// NewServer creates and configures a new SSH server. The host key is
// generated on first use.
func NewServer(cfg Config, source GridSource) (*Server, error) {
	signer, err := LoadOrCreateHostKey(cfg.HostKeyPath)
	if err != nil {
		return nil, err
	}
	if cfg.Version == "" {
		cfg.Version = "tabview"
	}

	s := &Server{cfg: cfg, source: source}
	srv := &ssh.Server{
		Addr:        cfg.Addr,
		Handler:     s.handleSession,
		HostSigners: []ssh.Signer{signer},
		Version:     cfg.Version,
		ConnectionFailedCallback: func(conn net.Conn, err error) {
			log.Printf("WARN: SSH connection failed from %s: %v", conn.RemoteAddr(), err)
		},
	}
	if cfg.PasswordHash != "" {
		guard := newAuthGuard(cfg.PasswordHash, cfg.MaxFailedLogins, cfg.LockoutDuration)
		srv.PasswordHandler = guard.PasswordHandler()
	}

	// Retro terminal clients (SyncTERM, NetRunner) only speak older
	// algorithms.
	legacy := cfg.LegacySSHAlgorithms
	srv.ServerConfigCallback = func(ctx ssh.Context) *gossh.ServerConfig {
		sc := &gossh.ServerConfig{}
		if legacy {
			logging.Debug("SSH legacy algorithms enabled for %s", ctx.RemoteAddr())
			sc.Config.KeyExchanges = []string{
				"curve25519-sha256",
				"curve25519-sha256@libssh.org",
				"ecdh-sha2-nistp256",
				"ecdh-sha2-nistp384",
				"ecdh-sha2-nistp521",
				"diffie-hellman-group14-sha256",
				"diffie-hellman-group16-sha512",
				"diffie-hellman-group14-sha1",
				"diffie-hellman-group1-sha1",
			}
			sc.Config.Ciphers = []string{
				"chacha20-poly1305@openssh.com",
				"aes128-gcm@openssh.com",
				"aes256-gcm@openssh.com",
				"aes128-ctr",
				"aes192-ctr",
				"aes256-ctr",
				"aes128-cbc",
				"aes256-cbc",
				"3des-cbc",
			}
			sc.Config.MACs = []string{
				"hmac-sha2-256-etm@openssh.com",
				"hmac-sha2-512-etm@openssh.com",
				"hmac-sha2-256",
				"hmac-sha2-512",
				"hmac-sha1",
			}
		}
		return sc
	}

	s.inner = srv
	return s, nil
}

// ListenAndServe binds to the configured address and serves SSH connections.
// It blocks until the server is closed.
func (s *Server) ListenAndServe() error {
	return s.inner.ListenAndServe()
}

// Serve starts serving on an existing listener. Blocks until closed.
func (s *Server) Serve(l net.Listener) error {
	return s.inner.Serve(l)
}

// Close shuts down the server and all active connections.
func (s *Server) Close() error {
	return s.inner.Close()
}

// ActiveSessions returns the number of sessions currently viewing.
func (s *Server) ActiveSessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Server) acquire() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg.MaxSessions > 0 && s.active >= s.cfg.MaxSessions {
		return false
	}
	s.active++
	return true
}

func (s *Server) release() {
	s.mu.Lock()
	s.active--
	s.mu.Unlock()
}

func (s *Server) handleSession(sess ssh.Session) {
	id := uuid.New()
	if !s.acquire() {
		log.Printf("INFO: [%s] Rejecting SSH session from %s: %d sessions active", id, sess.RemoteAddr(), s.cfg.MaxSessions)
		fmt.Fprintf(sess, "Too many viewers, please try again later.\r\n")
		sess.Exit(1)
		return
	}
	defer s.release()

	ptyReq, winCh, isPty := sess.Pty()
	if !isPty {
		log.Printf("INFO: [%s] Rejecting SSH session from %s: no pty", id, sess.RemoteAddr())
		fmt.Fprintln(sess, "tabview needs a terminal, connect with ssh -t.")
		sess.Exit(1)
		return
	}

	ctx := sess.Context()
	go func() {
		for {
			select {
			case win, ok := <-winCh:
				if !ok {
					return
				}
				logging.Debug("[%s] window changed to %dx%d, keeping the initial layout", id, win.Width, win.Height)
			case <-ctx.Done():
				return
			}
		}
	}()

	mode := s.cfg.OutputMode.Resolve(ptyReq.Term)
	log.Printf("INFO: [%s] SSH session for %s from %s (%s %dx%d, %s)",
		id, sess.User(), sess.RemoteAddr(), ptyReq.Term, ptyReq.Window.Width, ptyReq.Window.Height, mode)

	if err := runViewer(ctx, sess, s.source.Grid().Clone(), ptyReq.Window, mode); err != nil {
		log.Printf("ERROR: [%s] viewer: %v", id, err)
		sess.Exit(1)
		return
	}
	log.Printf("INFO: [%s] SSH session ended", id)
	sess.Exit(0)
}

func runViewer(ctx context.Context, sess ssh.Session, g *grid.Grid, win ssh.Window, mode ansi.OutputMode) error {
	w := terminalio.NewWriter(sess, mode)
	r := render.NewTerminal(w,
		render.WithSize(render.FixedSize(win.Width, win.Height)),
		render.WithOutputMode(mode),
	)
	return viewer.New(g, r, w).Run(ctx, sess, tea.WithoutSignalHandler())
}

// LoadOrCreateHostKey reads the PEM host key at path, generating and saving
// an ed25519 key when the file does not exist.
func LoadOrCreateHostKey(path string) (ssh.Signer, error) {
	keyBytes, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		keyBytes, err = generateHostKey(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read host key %s: %w", path, err)
	}
	signer, err := gossh.ParsePrivateKey(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parse host key %s: %w", path, err)
	}
	return signer, nil
}

func generateHostKey(path string) ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate host key: %w", err)
	}
	block, err := gossh.MarshalPrivateKey(priv, "tabview host key")
	if err != nil {
		return nil, fmt.Errorf("marshal host key: %w", err)
	}
	keyBytes := pem.EncodeToMemory(block)
	if err := os.WriteFile(path, keyBytes, 0o600); err != nil {
		return nil, fmt.Errorf("write host key: %w", err)
	}
	log.Printf("INFO: Generated new SSH host key at %s", path)
	return keyBytes, nil
}
