// Package router decides which transcription backend a recording goes to:
// the local sidecar when it is healthy, otherwise the configured remote
// service. The decision is cached for the session and re-made at most once
// when a cached endpoint fails at the connection level.
package router

import (
	"context"
	"sync"
	"time"

	"murmur/audio"
	"murmur/log"
	"murmur/transcriber"
)

type Kind int

const (
	KindLocal Kind = iota
	KindRemote
)

func (k Kind) String() string {
	if k == KindLocal {
		return "local"
	}
	return "remote"
}

type Endpoint struct {
	Kind                Kind
	BaseURL             string
	LastHealthCheckedAt time.Time
}

type Router struct {
	supervisor *Supervisor
	local      transcriber.Transcriber
	remote     transcriber.Transcriber

	mu     sync.Mutex
	cached *Endpoint
}

// New builds a router. local may be nil when no sidecar is configured;
// remote may be nil when no API key is available. At least one must be set.
func New(supervisor *Supervisor, local, remote transcriber.Transcriber) *Router {
	return &Router{supervisor: supervisor, local: local, remote: remote}
}

// Resolve returns the cached endpoint, probing the local sidecar first when
// nothing is cached yet.
func (r *Router) Resolve(ctx context.Context) (Endpoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.resolveLocked(ctx)
}

func (r *Router) resolveLocked(ctx context.Context) (Endpoint, error) {
	if r.cached != nil {
		return *r.cached, nil
	}
	if r.local != nil && r.supervisor != nil && r.supervisor.EnsureRunning(ctx) {
		ep := Endpoint{Kind: KindLocal, BaseURL: r.local.BaseURL(), LastHealthCheckedAt: time.Now()}
		r.cached = &ep
		log.Info("endpoint_resolved: local " + ep.BaseURL)
		return ep, nil
	}
	if r.remote == nil {
		return Endpoint{}, &transcriber.Error{Kind: transcriber.Unreachable, Backend: "router"}
	}
	ep := Endpoint{Kind: KindRemote, BaseURL: r.remote.BaseURL()}
	r.cached = &ep
	log.Info("endpoint_resolved: remote " + ep.BaseURL)
	return ep, nil
}

// Invalidate drops the cached endpoint so the next call re-resolves.
func (r *Router) Invalidate() {
	r.mu.Lock()
	r.cached = nil
	r.mu.Unlock()
}

// Transcribe sends the blob to the resolved endpoint. A connection-level
// failure (unreachable, timeout) invalidates the cache and triggers exactly
// one re-resolution and retry before the failure surfaces; content errors
// surface immediately.
func (r *Router) Transcribe(ctx context.Context, blob audio.Blob, opts transcriber.Options) (string, error) {
	text, err := r.attempt(ctx, blob, opts)
	if err == nil || !transcriber.IsConnection(err) {
		return text, err
	}

	log.Warnf("endpoint failed, re-resolving once: %v", err)
	r.Invalidate()
	text, err = r.attempt(ctx, blob, opts)
	if err != nil && transcriber.IsConnection(err) {
		// Leave no stale cache behind a dead endpoint.
		r.Invalidate()
	}
	return text, err
}

func (r *Router) attempt(ctx context.Context, blob audio.Blob, opts transcriber.Options) (string, error) {
	r.mu.Lock()
	ep, err := r.resolveLocked(ctx)
	r.mu.Unlock()
	if err != nil {
		return "", err
	}

	backend := r.remote
	if ep.Kind == KindLocal {
		backend = r.local
	}
	res, err := backend.Transcribe(ctx, blob, opts)
	if err != nil {
		return "", err
	}
	return res.Text, nil
}
