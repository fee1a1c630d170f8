package backend

import (
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// PortAllocator hands out free loopback TCP ports. A port is never handed out
// twice by the same allocator.
type PortAllocator struct {
	host        string
	maxAttempts int
	logger      *slog.Logger

	mu     sync.Mutex
	issued map[int]struct{}
}

// NewPortAllocator creates an allocator binding on host. maxAttempts bounds
// the number of probes before ErrResourceExhausted.
func NewPortAllocator(host string, maxAttempts int, logger *slog.Logger) *PortAllocator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PortAllocator{
		host:        host,
		maxAttempts: maxAttempts,
		logger:      logger,
		issued:      make(map[int]struct{}),
	}
}

// Allocate returns a port that was free when it was picked and has not been
// returned before. The kernel chooses the port by binding to port 0; the
// listener is closed again before returning, so the backend can bind it.
func (a *PortAllocator) Allocate() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt < a.maxAttempts; attempt++ {
		port, err := a.probe()
		if err != nil {
			lastErr = err
			continue
		}
		if _, seen := a.issued[port]; seen {
			continue
		}
		a.issued[port] = struct{}{}
		a.logger.Debug("allocated backend port", "port", port, "attempts", attempt+1)
		return port, nil
	}

	if lastErr != nil {
		return 0, fmt.Errorf("%w: %v", ErrResourceExhausted, lastErr)
	}
	return 0, ErrResourceExhausted
}

func (a *PortAllocator) probe() (int, error) {
	ln, err := net.Listen("tcp", net.JoinHostPort(a.host, "0"))
	if err != nil {
		return 0, err
	}
	defer ln.Close()
	return ln.Addr().(*net.TCPAddr).Port, nil
}
