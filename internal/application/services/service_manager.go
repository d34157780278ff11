package services

import (
	"database/sql"

	"github.com/ticketdesk/backend/internal/infrastructure/persistence"
)

// ServiceManager wires the repositories and services together and is
// the single composition point handed to the REST layer.
type ServiceManager struct {
	FieldDefs *FieldDefService
	FieldSets *FieldSetService
	Rules     *RuleService
	Engine    *RuleEngine
	Scheduler *SchedulerService
	Auth      *AuthService
	Tickets   TicketStore
}

// NewServiceManager builds the full service graph on one database pool
func NewServiceManager(db *sql.DB) (*ServiceManager, error) {
	fieldDefRepo := persistence.NewFieldDefRepository(db)
	fieldValueRepo := persistence.NewFieldValueRepository(db)
	ruleRepo := persistence.NewRuleRepository(db)
	ticketRepo := persistence.NewTicketRepository(db)
	userRepo := persistence.NewUserRepository(db)

	engine := NewRuleEngine(ruleRepo, ticketRepo)
	scheduler, err := NewSchedulerService(ruleRepo, ticketRepo, engine)
	if err != nil {
		return nil, err
	}

	return &ServiceManager{
		FieldDefs: NewFieldDefService(fieldDefRepo),
		FieldSets: NewFieldSetService(fieldDefRepo, fieldValueRepo),
		Rules:     NewRuleService(ruleRepo),
		Engine:    engine,
		Scheduler: scheduler,
		Auth:      NewAuthService(userRepo),
		Tickets:   ticketRepo,
	}, nil
}
