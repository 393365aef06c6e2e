package services

import (
	"context"
	"log"

	"libris-backend/internal/adapters/persistence/repositories"
	"libris-backend/internal/config"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// ReminderService runs the scheduled overdue sweep. On each tick it lists the
// open loans past their due date, writes one reminder line per borrower and
// clears expired refresh tokens.
type ReminderService struct {
	loanService      *LoanService
	refreshTokenRepo repositories.RefreshTokenRepository
	cfg              *config.Config
	cron             *cron.Cron
}

// NewReminderService creates a new reminder service with its own wiring,
// so it can be started before the HTTP layer exists.
func NewReminderService(db *gorm.DB, cfg *config.Config) *ReminderService {
	loanRepo := repositories.NewLoanRepository(db)
	copyRepo := repositories.NewCopyRepository(db)
	userRepo := repositories.NewUserRepository(db)
	tx := repositories.NewGormTxManager(db)
	policy := NewLoanPolicy(cfg.Loan.MaxActiveLoans)

	return &ReminderService{
		loanService:      NewLoanService(loanRepo, copyRepo, userRepo, tx, policy),
		refreshTokenRepo: repositories.NewRefreshTokenRepository(db),
		cfg:              cfg,
		cron:             cron.New(),
	}
}

// Start schedules the overdue sweep
func (s *ReminderService) Start() error {
	_, err := s.cron.AddFunc(s.cfg.Loan.ReminderCron, s.RunOverdueSweep)
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Printf("🚀 ReminderService started (schedule: %s)", s.cfg.Loan.ReminderCron)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish
func (s *ReminderService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("🛑 ReminderService stopped")
}

// RunOverdueSweep lists overdue loans and emits reminders
func (s *ReminderService) RunOverdueSweep() {
	loans, err := s.loanService.ListOverdue(context.Background())
	if err != nil {
		log.Printf("❌ Overdue sweep query error: %v", err)
		return
	}

	for _, loan := range loans {
		log.Printf("📅 Overdue reminder: loan %d (%s) held by %s <%s>, due %s",
			loan.ID,
			loan.BookTitle,
			loan.BorrowerName,
			loan.BorrowerEmail,
			loan.DueDate.Format("2006-01-02"),
		)
	}

	if len(loans) > 0 {
		log.Printf("📅 Sent %d overdue reminders", len(loans))
	}

	// Piggyback session housekeeping on the daily tick
	if err := s.refreshTokenRepo.DeleteExpired(context.Background()); err != nil {
		log.Printf("❌ Expired token cleanup error: %v", err)
	}
}
