package services

import (
	"context"
	"log"
	"time"

	"liblend/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CronService runs the scheduled lending housekeeping jobs:
// releasing expired penalties and reporting overdue loans.
type CronService struct {
	store repositories.Store
	cron  *cron.Cron
}

// NewCronService creates a new cron service
func NewCronService(store repositories.Store) *CronService {
	return &CronService{
		store: store,
		cron:  cron.New(),
	}
}

// Start schedules the jobs and starts the scheduler
func (s *CronService) Start() {
	// Daily housekeeping at 08:30
	s.cron.AddFunc("30 8 * * *", s.runHousekeeping)

	s.cron.Start()
	log.Println("🚀 CronService started (daily housekeeping at 08:30)")
}

// Stop stops the scheduler and waits for running jobs
func (s *CronService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 CronService stopped")
}

// runHousekeeping releases expired penalties and logs the overdue backlog
func (s *CronService) runHousekeeping() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	now := time.Now()

	released, err := s.store.Members().ReleaseExpiredPenalties(ctx, now)
	if err != nil {
		log.Printf("❌ Penalty release error: %v", err)
	} else if released > 0 {
		log.Printf("✅ Released %d expired penalties", released)
	}

	overdue, err := s.store.Loans().CountOverdue(ctx, now)
	if err != nil {
		log.Printf("❌ Overdue count error: %v", err)
	} else if overdue > 0 {
		log.Printf("⚠️ %d loans are overdue", overdue)
	}
}
