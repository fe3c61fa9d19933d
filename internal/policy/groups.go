// Package policy decides which newsgroups articles may be posted to.
package policy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

var ErrGroupNotAllowed = errors.New("newsgroup not allowed")

type rule struct {
	negate  bool
	pattern glob.Glob
}

// GroupPolicy matches group names against wildmat-style patterns.
// A pattern prefixed with '!' excludes; the last matching pattern
// decides. An empty policy allows every group.
type GroupPolicy struct {
	rules []rule
}

func NewGroupPolicy(patterns []string) (*GroupPolicy, error) {
	p := &GroupPolicy{}
	for _, raw := range patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		negate := strings.HasPrefix(raw, "!")
		g, err := glob.Compile(strings.TrimPrefix(raw, "!"))
		if err != nil {
			return nil, fmt.Errorf("compile group pattern %q: %w", raw, err)
		}
		p.rules = append(p.rules, rule{negate: negate, pattern: g})
	}
	return p, nil
}

func (p *GroupPolicy) Allowed(group string) bool {
	if len(p.rules) == 0 {
		return true
	}
	allowed := false
	for _, r := range p.rules {
		if r.pattern.Match(group) {
			allowed = !r.negate
		}
	}
	return allowed
}

// Check fails on the first group the policy rejects.
func (p *GroupPolicy) Check(groups []string) error {
	for _, g := range groups {
		if !p.Allowed(g) {
			return fmt.Errorf("%w: %s", ErrGroupNotAllowed, g)
		}
	}
	return nil
}
