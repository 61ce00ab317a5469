package ratelimit

import "strings"

// BypassPolicy names request paths the limiter never counts.
type BypassPolicy struct {
	paths    map[string]struct{}
	prefixes []string
}

func NewBypassPolicy(paths, prefixes []string) *BypassPolicy {
	p := &BypassPolicy{paths: make(map[string]struct{}, len(paths))}
	for _, path := range paths {
		if path != "" {
			p.paths[path] = struct{}{}
		}
	}
	for _, prefix := range prefixes {
		if prefix != "" {
			p.prefixes = append(p.prefixes, prefix)
		}
	}
	return p
}

// Bypassed reports whether path is exempt, by exact match or prefix.
func (p *BypassPolicy) Bypassed(path string) bool {
	if _, ok := p.paths[path]; ok {
		return true
	}
	for _, prefix := range p.prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
