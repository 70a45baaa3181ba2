package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// OccupancyReconciler пересчитывает занятость комнат из массивов кроватей
type OccupancyReconciler interface {
	ReconcileOccupancy(ctx context.Context) (int, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reconciler OccupancyReconciler
	interval   time.Duration
	logger     *zap.Logger
	stopChan   chan struct{}
	stopOnce   sync.Once
	done       chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// NewScheduler создаёт новый планировщик. interval <= 0 отключает сверку.
func NewScheduler(reconciler OccupancyReconciler, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновые задачи. Повторный запуск и запуск после Stop игнорируются.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	if s.interval <= 0 {
		s.logger.Info("Occupancy reconciliation disabled")
		close(s.done)
		return
	}

	s.logger.Info("Starting background scheduler", zap.Duration("interval", s.interval))
	go s.runReconcileTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущего прохода.
// Если Start не вызывался, ждать нечего.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	started := s.started
	s.stopped = true
	s.mu.Unlock()

	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})

	if started {
		<-s.done
	}
}

func (s *Scheduler) runReconcileTask(ctx context.Context) {
	defer close(s.done)

	// Первый проход сразу при старте
	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.stopChan:
			s.logger.Info("Occupancy reconciliation stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Occupancy reconciliation cancelled")
			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	fixed, err := s.reconciler.ReconcileOccupancy(ctx)
	if err != nil {
		s.logger.Error("Failed to reconcile room occupancy", zap.Error(err))
		return
	}

	if fixed > 0 {
		s.logger.Warn("Room occupancy reconciled", zap.Int("rooms_fixed", fixed))
		return
	}
	s.logger.Debug("Room occupancy consistent")
}
