package router

import (
	"context"
	"encoding/json"
	"net/http"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"murmur/log"
)

// Supervisor owns the local sidecar process: it spawns the configured
// command on first need, waits for the health endpoint to come up, and
// kills the child on shutdown. With no command configured it only probes.
type Supervisor struct {
	baseURL      string
	command      string
	args         []string
	startupWait  time.Duration
	probeTimeout time.Duration
	client       *http.Client

	mu   sync.Mutex
	proc *exec.Cmd
}

type SupervisorConfig struct {
	BaseURL      string
	Command      string
	Args         []string
	StartupWait  time.Duration
	ProbeTimeout time.Duration
}

func NewSupervisor(cfg SupervisorConfig) *Supervisor {
	if cfg.StartupWait <= 0 {
		cfg.StartupWait = 20 * time.Second
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = 1500 * time.Millisecond
	}
	rc := retryablehttp.NewClient()
	rc.RetryMax = 0
	rc.Logger = nil
	rc.HTTPClient.Timeout = cfg.ProbeTimeout
	return &Supervisor{
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		command:      cfg.Command,
		args:         cfg.Args,
		startupWait:  cfg.StartupWait,
		probeTimeout: cfg.ProbeTimeout,
		client:       rc.StandardClient(),
	}
}

type healthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Healthy probes the sidecar health endpoint once.
func (s *Supervisor) Healthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/", nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return false
	}
	var h healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&h); err != nil {
		return false
	}
	return h.Status == "healthy" && h.ModelLoaded
}

// EnsureRunning reports whether the local service answers its health check,
// spawning the configured command first when one is set and the service is
// down. It polls until healthy or the startup deadline passes.
func (s *Supervisor) EnsureRunning(ctx context.Context) bool {
	if s.Healthy(ctx) {
		return true
	}
	if s.command == "" {
		return false
	}
	if err := s.spawn(); err != nil {
		log.Warnf("sidecar spawn failed: %v", err)
		return false
	}

	deadline := time.Now().Add(s.startupWait)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return false
		case <-ticker.C:
			if s.Healthy(ctx) {
				return true
			}
		}
	}
	log.Warn("sidecar did not become healthy before deadline")
	return false
}

func (s *Supervisor) spawn() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.proc != nil && s.proc.ProcessState == nil {
		return nil
	}
	cmd := exec.Command(s.command, s.args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	s.proc = cmd
	log.Info("sidecar_started: " + s.command)
	// Reap the child so a crashed sidecar can be respawned.
	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		if s.proc == cmd {
			s.proc = nil
		}
		s.mu.Unlock()
		if err != nil {
			log.Warnf("sidecar exited: %v", err)
		}
	}()
	return nil
}

// Shutdown kills the sidecar if this supervisor started one.
func (s *Supervisor) Shutdown() {
	s.mu.Lock()
	proc := s.proc
	s.proc = nil
	s.mu.Unlock()
	if proc != nil && proc.Process != nil {
		proc.Process.Kill()
		log.Info("sidecar_stopped")
	}
}
