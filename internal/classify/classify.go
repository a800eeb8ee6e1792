// Package classify decides whether a message is protected from
// deletion. The decision is a pure function of the message and the
// admin set resolved for the run: no I/O, deterministic, total over
// every message shape the history pager can produce.
package classify

import (
	"fmt"

	"github.com/wasilibs/go-re2"
	"golang.org/x/text/unicode/norm"

	"github.com/aatumaykin/sweepbot/internal/chat"
)

// Policy holds the configurable parts of the classification decision.
//
// Service messages (joins, pins, title changes) cannot be attributed to
// a user; whether they are protected is an operator choice, protected
// by default since deleting them often fails at the platform level.
type Policy struct {
	ProtectService bool
	keepPatterns   []*re2.Regexp
}

// NewPolicy compiles keepPatterns and returns the policy. Patterns come
// from configuration, i.e. outside the trust boundary, so they are
// compiled with re2 to bound matching time.
func NewPolicy(protectService bool, keepPatterns []string) (*Policy, error) {
	p := &Policy{ProtectService: protectService}

	for _, pattern := range keepPatterns {
		re, err := re2.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid keep pattern %q: %w", pattern, err)
		}
		p.keepPatterns = append(p.keepPatterns, re)
	}

	return p, nil
}

// IsProtected reports whether the cleanup must keep msg.
func (p *Policy) IsProtected(msg chat.Message, admins chat.AdminSet) bool {
	// Anonymous admin post ("send as chat"): indistinguishable from
	// admin action at the platform level, always protected.
	if msg.SenderChat != 0 && msg.SenderChat == msg.ChatID {
		return true
	}

	if msg.SenderUser != 0 && admins.Contains(msg.SenderUser) {
		return true
	}

	if msg.Service && p.ProtectService {
		return true
	}

	if msg.Text != "" && len(p.keepPatterns) > 0 {
		text := norm.NFKC.String(msg.Text)
		for _, re := range p.keepPatterns {
			if re.MatchString(text) {
				return true
			}
		}
	}

	return false
}
