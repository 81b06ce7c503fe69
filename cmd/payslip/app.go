package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/paie/payslip-engine/internal/calculation"
	"github.com/paie/payslip-engine/internal/config"
	"github.com/paie/payslip-engine/internal/generation"
	"github.com/paie/payslip-engine/internal/logging"
	"github.com/paie/payslip-engine/internal/storage"
)

// app bundles what a command needs once the configuration is loaded.
type app struct {
	cfg   *config.Configuration
	log   *zap.Logger
	rules *calculation.RuleBook

	db        *gorm.DB
	payslips  *storage.PayslipStore
	employees *storage.EmployeeStore
}

// loadApp reads the configuration (defaults when path is empty), applies the
// environment and builds the logger. The database is opened only when
// withDB is set.
func loadApp(path string, withDB bool) (*app, error) {
	cfg := config.DefaultConfiguration()
	if path != "" {
		loaded, err := config.NewInputParser().LoadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv(os.Getenv)
	if err := config.NewInputParser().ValidateConfiguration(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	rules, err := cfg.RuleBook()
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log, rules: rules}

	if withDB {
		db, err := storage.Open(cfg.Database, log)
		if err != nil {
			_ = log.Sync()
			return nil, err
		}
		a.db = db
		a.payslips = storage.NewPayslipStore(db)
		a.employees = storage.NewEmployeeStore(db)
	}
	return a, nil
}

func (a *app) engine() *calculation.CalculationEngine {
	eng := calculation.NewCalculationEngine()
	eng.SetLogger(a.log.Sugar())
	return eng
}

func (a *app) generator() *generation.PeriodGenerator {
	g := generation.NewPeriodGenerator(a.payslips, a.employees, a.rules, a.cfg.GenerationSettings())
	g.SetLogger(a.log.Sugar())
	return g
}

func (a *app) Close() {
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.log.Sync()
}
