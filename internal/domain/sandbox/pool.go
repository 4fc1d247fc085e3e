package sandbox

import "fmt"

// Pool is a fixed-size set of pre-initialized sandboxes. Claim blocks until
// one is available; Release returns it to the pool without resetting its
// tempdir, so repeated claims against the same slot reuse its working
// directory across calls.
type Pool struct {
	cfg  Config
	free chan *Sandbox
}

// NewPool builds a Pool of size sandboxes, all configured with cfg. Each
// sandbox's tempdir is allocated up front.
func NewPool(size int, cfg Config) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("sandbox: pool size must be positive, got %d", size)
	}

	p := &Pool{cfg: cfg, free: make(chan *Sandbox, size)}
	for i := 0; i < size; i++ {
		sb := New(cfg)
		if err := sb.Setup(); err != nil {
			p.Close()
			return nil, fmt.Errorf("sandbox: pool init slot %d: %w", i, err)
		}
		p.free <- sb
	}
	return p, nil
}

// Claim blocks until a sandbox is available.
func (p *Pool) Claim() *Sandbox {
	return <-p.free
}

// Release returns sb to the pool for reuse.
func (p *Pool) Release(sb *Sandbox) {
	p.free <- sb
}

// Close tears down every sandbox currently in the pool. Sandboxes checked
// out via Claim at close time are not reclaimed; callers should quiesce
// outstanding work before calling Close.
func (p *Pool) Close() {
	close(p.free)
	for sb := range p.free {
		sb.Teardown()
	}
}
