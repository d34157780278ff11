package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ticketdesk/backend/pkg/constants"
	"github.com/ticketdesk/backend/pkg/models"
	"github.com/ticketdesk/backend/pkg/rules"
)

const sweepCheckInterval = 60 * time.Second

// SchedulerService runs the periodic auto-close sweep over open
// tickets according to the active auto_close rules.
type SchedulerService struct {
	ruleRepo   RuleStore
	ticketRepo TicketStore
	engine     *RuleEngine
	schedule   cron.Schedule
	nextRun    time.Time
	stopChan   chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	running    bool
	stopped    bool // Prevents double-close of stopChan
}

// NewSchedulerService creates the sweep scheduler. The sweep cadence
// comes from the AUTOCLOSE_SCHEDULE cron expression, defaulting to
// every five minutes.
func NewSchedulerService(ruleRepo RuleStore, ticketRepo TicketStore, engine *RuleEngine) (*SchedulerService, error) {
	expr := os.Getenv("AUTOCLOSE_SCHEDULE")
	if expr == "" {
		expr = "*/5 * * * *"
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid AUTOCLOSE_SCHEDULE expression '%s': %w", expr, err)
	}

	return &SchedulerService{
		ruleRepo:   ruleRepo,
		ticketRepo: ticketRepo,
		engine:     engine,
		schedule:   schedule,
		stopChan:   make(chan struct{}),
	}, nil
}

// Start begins the scheduler background loop
func (s *SchedulerService) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Println("⏰ Auto-close scheduler starting...")
	s.nextRun = s.schedule.Next(time.Now().UTC())

	ticker := time.NewTicker(sweepCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now().UTC()
			if now.Before(s.nextRun) {
				continue
			}
			s.nextRun = s.schedule.Next(now)
			s.wg.Add(1)
			go func() {
				defer s.wg.Done()
				s.runSweep()
			}()
		case <-s.stopChan:
			log.Println("⏰ Auto-close scheduler stopping...")
			s.wg.Wait() // Wait for a running sweep to complete
			log.Println("⏰ Auto-close scheduler stopped")
			return
		}
	}
}

// Stop gracefully stops the scheduler
func (s *SchedulerService) Stop() {
	s.mu.Lock()
	if !s.running || s.stopped {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
}

func (s *SchedulerService) runSweep() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("🔥 Panic in auto-close sweep: %v", r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	closed, err := s.Sweep(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("❌ Auto-close sweep failed: %v", err)
		return
	}
	if closed > 0 {
		log.Printf("✅ Auto-close sweep closed %d ticket(s)", closed)
	}
}

// Sweep evaluates every active auto_close rule against the open
// tickets and closes the ones whose inactivity window has elapsed.
// Returns the number of tickets closed.
func (s *SchedulerService) Sweep(ctx context.Context, now time.Time) (int, error) {
	active, err := s.ruleRepo.FindActiveByType(ctx, constants.RuleTypeAutoClose)
	if err != nil {
		return 0, err
	}
	if len(active) == 0 {
		return 0, nil
	}

	tickets, err := s.ticketRepo.FindOpenForSweep(ctx)
	if err != nil {
		return 0, err
	}

	closed := 0
	for _, ticket := range tickets {
		for _, rule := range active {
			if !s.engine.Matches(rule, ticket, now) {
				continue
			}
			if !dueForClose(rule, ticket, now) {
				continue
			}
			if err := s.ticketRepo.Close(ctx, ticket.ID); err != nil {
				log.Printf("⚠️ Failed to auto-close ticket %d: %v", ticket.ID, err)
				break
			}
			log.Printf("🔒 Ticket %d auto-closed by rule '%s'", ticket.ID, rule.Name)
			closed++
			break
		}
	}
	return closed, nil
}

// dueForClose reports whether the rule's close_after_hours window has
// elapsed for the ticket. With only_if_resolved set the window counts
// from the resolution timestamp and unresolved tickets never qualify.
func dueForClose(rule *rules.Rule, ticket *models.Ticket, now time.Time) bool {
	hours, ok := rules.AsInt(rule.Actions[constants.ActionCloseAfterHours])
	if !ok || hours <= 0 {
		return false
	}

	base := ticket.LastModifiedDate
	if onlyResolved, _ := rules.AsBool(rule.Actions[constants.ActionOnlyIfResolved]); onlyResolved {
		if ticket.Status != constants.TicketStatusResolved || ticket.ResolvedDate == nil {
			return false
		}
		base = *ticket.ResolvedDate
	}

	return now.Sub(base) >= time.Duration(hours)*time.Hour
}
