package application

import (
	"zungenrede/internal/domain"
	"zungenrede/internal/domain/entities"
)

// AccessGate admits principals from a fixed allowlist. An empty allowlist
// admits everyone.
type AccessGate struct {
	allowed map[entities.Principal]struct{}
	open    bool
}

// NewAccessGate builds a gate from the configured allowlist. The list is
// copied; later changes to the slice have no effect.
func NewAccessGate(allowlist []entities.Principal) *AccessGate {
	g := &AccessGate{
		allowed: make(map[entities.Principal]struct{}, len(allowlist)),
		open:    len(allowlist) == 0,
	}
	for _, p := range allowlist {
		g.allowed[p] = struct{}{}
	}
	return g
}

// Authorize returns domain.ErrAccessDenied unless p may mutate the store.
func (g *AccessGate) Authorize(p entities.Principal) error {
	if g.open {
		return nil
	}
	if _, ok := g.allowed[p]; ok {
		return nil
	}
	return domain.ErrAccessDenied
}

// Open reports whether the gate admits everyone.
func (g *AccessGate) Open() bool { return g.open }

// Size is the number of allowlisted principals.
func (g *AccessGate) Size() int { return len(g.allowed) }
