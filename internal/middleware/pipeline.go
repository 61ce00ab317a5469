package middleware

import "github.com/gin-gonic/gin"

// RoutePolicy says whether a route needs an authenticated caller.
type RoutePolicy int

const (
	Public RoutePolicy = iota
	Authenticated
)

// Pipeline composes the admission chain run ahead of every handler:
// identity resolution, then authentication for protected routes, then
// rate limiting.
type Pipeline struct {
	verifier TokenVerifier
	limiter  *RateLimiter
}

func NewPipeline(verifier TokenVerifier, limiter *RateLimiter) *Pipeline {
	return &Pipeline{verifier: verifier, limiter: limiter}
}

// Chain returns the ordered middleware for routes under policy.
func (p *Pipeline) Chain(policy RoutePolicy) []gin.HandlerFunc {
	chain := []gin.HandlerFunc{ResolveIdentity(p.verifier)}
	if policy == Authenticated {
		chain = append(chain, AuthRequired(p.verifier))
	}
	if p.limiter != nil {
		chain = append(chain, p.limiter.Middleware())
	}
	return chain
}
