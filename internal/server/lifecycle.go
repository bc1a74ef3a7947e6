// Package server ties the game server's long-lived components (the HTTP
// listener serving websocket traffic, the database pool) into a single
// supervised process with ordered, signal-driven shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Service is a long-running component supervised by the Lifecycle. Start
// blocks for the component's whole life; Stop asks it to wind down.
type Service interface {
	Start() error
	Stop()
}

// FuncService wraps a start/stop closure pair as a Service, for components
// that do not warrant their own type.
type FuncService struct {
	StartFn func() error
	StopFn  func()
}

func (f *FuncService) Start() error { return f.StartFn() }

func (f *FuncService) Stop() { f.StopFn() }

type supervised struct {
	name string
	svc  Service
}

// Lifecycle supervises a set of named services: it launches each one,
// then blocks until a termination signal, a service failure, or context
// cancellation, and winds the services down in reverse registration order.
// Reverse order matters here: the websocket listener goes down before the
// database pool it writes through.
type Lifecycle struct {
	logger *zap.Logger

	mu       sync.Mutex
	children []supervised
}

func NewLifecycle(logger *zap.Logger) *Lifecycle {
	return &Lifecycle{logger: logger}
}

// Add registers a service under the given name. Registration order is
// startup order; teardown runs it backwards.
func (l *Lifecycle) Add(name string, svc Service) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.children = append(l.children, supervised{name: name, svc: svc})
}

// Run launches every registered service and blocks. It returns after all
// services have been wound down, which happens on SIGINT or SIGTERM, on the
// first service failure, or when ctx is cancelled.
func (l *Lifecycle) Run(ctx context.Context) error {
	bootedAt := time.Now()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	failures := make(chan error, len(l.children))
	for _, child := range l.children {
		child := child
		go func() {
			l.logger.Info("service starting", zap.String("service", child.name))
			if err := child.svc.Start(); err != nil {
				l.logger.Error("service exited",
					zap.String("service", child.name),
					zap.Error(err),
				)
				failures <- fmt.Errorf("%s: %w", child.name, err)
				cancel()
			}
		}()
	}
	l.logger.Info("server up",
		zap.Int("services", len(l.children)),
	)

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(interrupts)

	select {
	case sig := <-interrupts:
		l.logger.Info("shutdown requested", zap.String("signal", sig.String()))
	case err := <-failures:
		l.logger.Error("shutting down after service failure", zap.Error(err))
	case <-ctx.Done():
		l.logger.Info("shutting down, context cancelled")
	}

	l.windDown()
	l.logger.Info("server down", zap.Duration("uptime", time.Since(bootedAt)))
	return nil
}

func (l *Lifecycle) windDown() {
	for i := len(l.children) - 1; i >= 0; i-- {
		child := l.children[i]
		began := time.Now()
		child.svc.Stop()
		l.logger.Info("service stopped",
			zap.String("service", child.name),
			zap.Duration("took", time.Since(began)),
		)
	}
}
