package sshserver

import (
	"log"
	"net"
	"sync"
	"time"

	"github.com/gliderlabs/ssh"
	"golang.org/x/crypto/bcrypt"
)

// authGuard checks passwords with brute force protection: an address that
// fails MaxFailedLogins times within the lockout window is refused until
// its oldest failure ages out.
type authGuard struct {
	hash        []byte
	maxFailures int
	lockout     time.Duration
	now         func() time.Time

	mu       sync.Mutex
	failures map[string][]time.Time // IP -> failed attempt times
}

func newAuthGuard(hash string, maxFailures int, lockout time.Duration) *authGuard {
	return &authGuard{
		hash:        []byte(hash),
		maxFailures: maxFailures,
		lockout:     lockout,
		now:         time.Now,
		failures:    make(map[string][]time.Time),
	}
}

// extractIP extracts IP address from remote address string
func extractIP(addr net.Addr) string {
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// recent drops attempts outside the lockout window and returns the rest.
// Callers hold mu.
func (g *authGuard) recent(ip string) []time.Time {
	cutoff := g.now().Add(-g.lockout)
	attempts := g.failures[ip]
	kept := attempts[:0]
	for _, at := range attempts {
		if at.After(cutoff) {
			kept = append(kept, at)
		}
	}
	if len(kept) == 0 {
		delete(g.failures, ip)
		return nil
	}
	g.failures[ip] = kept
	return kept
}

func (g *authGuard) locked(ip string) bool {
	if g.maxFailures <= 0 {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.recent(ip)) >= g.maxFailures
}

func (g *authGuard) recordFailure(ip string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.failures[ip] = append(g.recent(ip), g.now())
}

func (g *authGuard) check(ip, password string) bool {
	if g.locked(ip) {
		log.Printf("WARN: Locked out IP %s attempting to authenticate", ip)
		return false
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(password)); err != nil {
		g.recordFailure(ip)
		return false
	}
	return true
}

// PasswordHandler returns an SSH password authentication handler.
func (g *authGuard) PasswordHandler() ssh.PasswordHandler {
	return func(ctx ssh.Context, password string) bool {
		ip := extractIP(ctx.RemoteAddr())
		if !g.check(ip, password) {
			log.Printf("WARN: SSH password auth failed for %s from %s", ctx.User(), ip)
			return false
		}
		log.Printf("INFO: SSH password auth verified for %s from %s", ctx.User(), ip)
		return true
	}
}
