package generation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/paie/payslip-engine/internal/calculation"
	"github.com/paie/payslip-engine/internal/domain"
	"github.com/paie/payslip-engine/pkg/dateutil"
	pd "github.com/paie/payslip-engine/pkg/decimal"
	"github.com/shopspring/decimal"
)

// MonthCalculator computes one month without side effects.
// *calculation.CalculationEngine is the production implementation.
type MonthCalculator interface {
	Compute(pc domain.PayrollContext, ruleSet domain.ContributionRuleSet) (domain.PayslipResult, domain.ContributionBreakdown, error)
}

// PeriodGenerator materializes monthly payslips for one employee over a date
// range. Months are processed strictly in ascending order: the paid-leave
// balance and year-to-date totals of a month depend on every earlier month.
type PeriodGenerator struct {
	Payslips  PayslipStore
	Employees EmployeeDirectory
	Rules     *calculation.RuleBook
	Engine    MonthCalculator
	YTD       *calculation.YTDAggregator
	Settings  Settings
	Logger    calculation.Logger

	now   func() time.Time
	newID func() string
}

// NewPeriodGenerator wires a generator with the default engine and a no-op
// logger.
func NewPeriodGenerator(payslips PayslipStore, employees EmployeeDirectory, rules *calculation.RuleBook, settings Settings) *PeriodGenerator {
	return &PeriodGenerator{
		Payslips:  payslips,
		Employees: employees,
		Rules:     rules,
		Engine:    calculation.NewCalculationEngine(),
		YTD:       calculation.NewYTDAggregator(),
		Settings:  settings,
		Logger:    calculation.NopLogger{},
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// SetLogger sets the logger of the generator and its engine.
func (g *PeriodGenerator) SetLogger(l calculation.Logger) {
	g.Logger = calculation.OrNop(l)
	if e, ok := g.Engine.(interface{ SetLogger(calculation.Logger) }); ok {
		e.SetLogger(g.Logger)
	}
}

// plan is everything resolved before the first month is touched.
type plan struct {
	employee *domain.Employee
	gross    decimal.Decimal
	months   []time.Time
	rules    map[string]domain.ContributionRuleSet
	accrual  calculation.LeaveAccrual
	// opening is the leave balance carried into the first month.
	opening  decimal.Decimal
}

// Generate runs the month loop over [req.PeriodStart, req.PeriodEnd].
//
// Invalid requests are rejected with a nil report before any computation.
// A month already on file, or lost to a concurrent insert, is Skipped. A
// month whose store call fails is Failed and the run goes on. An internal
// consistency fault stops the run and is returned together with the report
// so far. Cancellation is honoured between months.
func (g *PeriodGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (*domain.GenerationReport, error) {
	p, err := g.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	state := domain.EmployeeLeaveState{CurrentBalance: p.opening}
	report := &domain.GenerationReport{
		EmployeeID:          req.EmployeeID,
		PeriodStart:         p.months[0],
		PeriodEnd:           dateutil.MonthEnd(p.months[len(p.months)-1]),
		OpeningLeaveBalance: state.CurrentBalance,
	}
	g.Logger.Infof("generating payslips for %s from %s to %s (%d months)",
		req.EmployeeID, dateutil.MonthKey(report.PeriodStart), dateutil.MonthKey(report.PeriodEnd), len(p.months))

	var fatal error
	for _, month := range p.months {
		if err := ctx.Err(); err != nil {
			report.Aborted = true
			fatal = fmt.Errorf("generation aborted before %s: %w", dateutil.MonthKey(month), err)
			g.Logger.Warnf("%v", fatal)
			break
		}

		outcome, next, err := g.processMonth(ctx, p, req, month, state)
		if err != nil {
			fatal = err
			report.Aborted = true
			g.Logger.Errorf("generation stopped at %s: %v", dateutil.MonthKey(month), err)
			break
		}
		state = next
		report.Record(outcome)
		g.logOutcome(req.EmployeeID, outcome)
	}

	report.ClosingLeaveBalance = state.CurrentBalance
	if !state.CurrentBalance.Equal(p.employee.PaidLeaveBalance) {
		// persisted months must be reflected even when the run was cancelled,
		// and a record left stale by an earlier run is repaired here
		if err := g.Employees.UpdateLeaveBalance(context.WithoutCancel(ctx), req.EmployeeID, state.CurrentBalance); err != nil {
			g.Logger.Errorf("saving leave balance of %s: %v", req.EmployeeID, err)
			fatal = errors.Join(fatal, fmt.Errorf("%w: saving leave balance: %v", domain.ErrPersistenceFailure, err))
		}
	}

	g.Logger.Infof("generation for %s done: %d generated, %d skipped, %d failed",
		req.EmployeeID, len(report.Generated), len(report.Skipped), len(report.Failed))
	return report, fatal
}

// processMonth drives one month from Pending to a final state. It returns
// the leave state to carry, which only moves when the month is persisted.
// A non-nil error is fatal to the run.
func (g *PeriodGenerator) processMonth(ctx context.Context, p *plan, req domain.GenerationRequest, month time.Time, state domain.EmployeeLeaveState) (domain.MonthOutcome, domain.EmployeeLeaveState, error) {
	outcome := domain.MonthOutcome{Month: month, State: domain.MonthPending}

	exists, err := g.Payslips.Exists(ctx, req.EmployeeID, month)
	if err != nil {
		return failed(outcome, err), state, nil
	}
	if exists {
		outcome.State = domain.MonthSkipped
		return outcome, g.storedBalance(ctx, req.EmployeeID, month, state), nil
	}

	ruleSet := p.rules[dateutil.MonthKey(month)]
	payslip, movement, err := g.computeMonth(p.employee, p.gross, month, ruleSet, p.accrual, state, req.LeaveTaken[dateutil.MonthKey(month)])
	if err != nil {
		return outcome, state, err
	}

	prior, err := g.Payslips.FindByEmployeeAndYear(ctx, req.EmployeeID, dateutil.FiscalYear(month))
	if err != nil {
		return failed(outcome, err), state, nil
	}
	g.applyYTD(payslip, prior)
	outcome.State = domain.MonthComputed

	payslip.ID = g.newID()
	id, err := g.Payslips.Create(ctx, payslip)
	if err != nil {
		if errors.Is(err, domain.ErrDuplicatePeriod) {
			outcome.State = domain.MonthSkipped
			return outcome, g.storedBalance(ctx, req.EmployeeID, month, state), nil
		}
		return failed(outcome, err), state, nil
	}

	outcome.State = domain.MonthPersisted
	outcome.PayslipID = id
	outcome.Payslip = payslip
	return outcome, domain.EmployeeLeaveState{CurrentBalance: movement.Closing}, nil
}

// storedBalance returns the leave balance recorded on the stored payslip of
// month. A skipped month carries that balance forward, not the one computed
// by this run.
func (g *PeriodGenerator) storedBalance(ctx context.Context, employeeID string, month time.Time, state domain.EmployeeLeaveState) domain.EmployeeLeaveState {
	stored, err := g.Payslips.FindByEmployeeAndMonth(ctx, employeeID, month)
	if err != nil {
		if !errors.Is(err, domain.ErrPayslipNotFound) {
			g.Logger.Warnf("reading leave balance of %s %s: %v", employeeID, dateutil.MonthKey(month), err)
		}
		return state
	}
	return domain.EmployeeLeaveState{CurrentBalance: stored.Result.PaidLeaveRemaining}
}

func failed(o domain.MonthOutcome, err error) domain.MonthOutcome {
	if !errors.Is(err, domain.ErrPersistenceFailure) {
		err = fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	o.State = domain.MonthFailed
	o.Err = err
	return o
}

// computeMonth runs the pure part of a month: contributions, net and leave.
func (g *PeriodGenerator) computeMonth(emp *domain.Employee, gross decimal.Decimal, month time.Time, ruleSet domain.ContributionRuleSet,
	accrual calculation.LeaveAccrual, state domain.EmployeeLeaveState, taken decimal.Decimal) (*domain.Payslip, calculation.LeaveMovement, error) {

	pc := domain.PayrollContext{
		GrossSalary:               gross,
		PeriodStart:               dateutil.MonthStart(month),
		PeriodEnd:                 dateutil.MonthEnd(month),
		SocialSecurityCeiling:     g.ceiling(ruleSet),
		TaxWithholdingRatePercent: g.Settings.TaxWithholdingRatePercent,
	}
	result, breakdown, err := g.Engine.Compute(pc, ruleSet)
	if err != nil {
		return nil, calculation.LeaveMovement{}, err
	}

	movement, err := accrual.Apply(state, taken)
	if err != nil {
		return nil, calculation.LeaveMovement{}, err
	}
	result.PaidLeaveAcquired = movement.Acquired
	result.PaidLeaveTaken = movement.Taken
	result.PaidLeaveRemaining = movement.Closing

	now := g.now()
	return &domain.Payslip{
		EmployeeID:                emp.ID,
		CompanyID:                 emp.CompanyID,
		PeriodStart:               pc.PeriodStart,
		PeriodEnd:                 pc.PeriodEnd,
		RuleSetVersion:            ruleSet.Version,
		SocialSecurityCeiling:     pc.SocialSecurityCeiling,
		TaxWithholdingRatePercent: pc.TaxWithholdingRatePercent,
		Result:                    result,
		Lines:                     breakdown.Lines,
		CreatedAt:                 now,
		UpdatedAt:                 now,
	}, movement, nil
}

func (g *PeriodGenerator) applyYTD(p *domain.Payslip, prior []domain.Payslip) {
	ytd := g.YTD.CumulativeTotals(p.FiscalYear(), p.PeriodStart, prior, p.Result)
	p.Result.CumulativeGrossYTD = ytd.Gross
	p.Result.CumulativeNetYTD = ytd.Net
}

func (g *PeriodGenerator) ceiling(rs domain.ContributionRuleSet) decimal.Decimal {
	if g.Settings.SocialSecurityCeiling != nil {
		return *g.Settings.SocialSecurityCeiling
	}
	return rs.SocialSecurityCeiling
}

// Regenerate recomputes the payslip already on file for month and overwrites
// it. The leave movement restarts from the stored opening balance and the
// employee balance is shifted by the difference. Later payslips of the year
// are not touched.
func (g *PeriodGenerator) Regenerate(ctx context.Context, req domain.GenerationRequest, month time.Time) (*domain.Payslip, error) {
	if err := g.Settings.Validate(); err != nil {
		return nil, err
	}
	if req.EmployeeID == "" {
		return nil, fmt.Errorf("%w: employee id is required", domain.ErrInvalidInput)
	}
	if month.IsZero() {
		return nil, fmt.Errorf("%w: month is required", domain.ErrInvalidInput)
	}
	month = dateutil.MonthStart(month)
	key := dateutil.MonthKey(month)

	emp, err := g.Employees.Find(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	gross, err := resolveGross(req, emp)
	if err != nil {
		return nil, err
	}
	ruleSet, err := g.Rules.For(month)
	if err != nil {
		return nil, err
	}

	existing, err := g.Payslips.FindByEmployeeAndMonth(ctx, req.EmployeeID, month)
	if err != nil {
		return nil, err
	}

	taken, ok := req.LeaveTaken[key]
	if !ok {
		taken = existing.Result.PaidLeaveTaken
	}
	opening := domain.EmployeeLeaveState{CurrentBalance: existing.Result.OpeningLeaveBalance()}
	accrual := calculation.LeaveAccrual{DaysPerMonth: g.Settings.PaidLeaveDaysPerMonth, Enabled: req.IncludePaidLeave}

	payslip, _, err := g.computeMonth(emp, gross, month, ruleSet, accrual, opening, taken)
	if err != nil {
		return nil, err
	}
	prior, err := g.Payslips.FindByEmployeeAndYear(ctx, req.EmployeeID, dateutil.FiscalYear(month))
	if err != nil {
		return nil, fmt.Errorf("%w: loading %d payslips: %v", domain.ErrPersistenceFailure, dateutil.FiscalYear(month), err)
	}
	g.applyYTD(payslip, prior)
	payslip.ID = existing.ID
	payslip.CreatedAt = existing.CreatedAt

	if err := g.Payslips.Replace(ctx, payslip); err != nil {
		if errors.Is(err, domain.ErrPersistenceFailure) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: replacing payslip %s: %v", domain.ErrPersistenceFailure, existing.ID, err)
	}

	delta := payslip.Result.PaidLeaveRemaining.Sub(existing.Result.PaidLeaveRemaining)
	if !delta.IsZero() {
		if err := g.Employees.UpdateLeaveBalance(ctx, req.EmployeeID, emp.PaidLeaveBalance.Add(delta)); err != nil {
			return payslip, fmt.Errorf("%w: saving leave balance: %v", domain.ErrPersistenceFailure, err)
		}
	}
	g.Logger.Infof("regenerated payslip %s for %s %s (rules %s)", payslip.ID, req.EmployeeID, key, ruleSet.Version)
	if hasLater(prior, month) {
		g.Logger.Warnf("payslips after %s for %s still carry the previous year-to-date totals", key, req.EmployeeID)
	}
	return payslip, nil
}

func hasLater(prior []domain.Payslip, month time.Time) bool {
	for _, p := range prior {
		if p.PeriodStart.After(month) {
			return true
		}
	}
	return false
}

// prepare validates the request and resolves the employee, the gross salary
// and the rule set of every month.
func (g *PeriodGenerator) prepare(ctx context.Context, req domain.GenerationRequest) (*plan, error) {
	if err := g.Settings.Validate(); err != nil {
		return nil, err
	}
	if err := validateRequest(req, g.Settings.monthLimit()); err != nil {
		return nil, err
	}

	emp, err := g.Employees.Find(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	gross, err := resolveGross(req, emp)
	if err != nil {
		return nil, err
	}

	p := &plan{
		employee: emp,
		gross:    gross,
		months:   dateutil.Months(req.PeriodStart, req.PeriodEnd),
		rules:    make(map[string]domain.ContributionRuleSet),
		accrual:  calculation.LeaveAccrual{DaysPerMonth: g.Settings.PaidLeaveDaysPerMonth, Enabled: req.IncludePaidLeave},
		opening:  emp.PaidLeaveBalance,
	}

	// the stored payslip chain wins over the employee record, which a failed
	// balance save can leave behind
	latest, err := g.Payslips.FindLatestBefore(ctx, req.EmployeeID, p.months[0])
	switch {
	case err == nil:
		if !latest.Result.PaidLeaveRemaining.Equal(p.opening) {
			g.Logger.Warnf("leave balance of %s on file is %s, last payslip (%s) says %s",
				req.EmployeeID, p.opening, dateutil.MonthKey(latest.PeriodStart), latest.Result.PaidLeaveRemaining)
		}
		p.opening = latest.Result.PaidLeaveRemaining
	case !errors.Is(err, domain.ErrPayslipNotFound):
		return nil, err
	}

	for _, m := range p.months {
		rs, err := g.Rules.For(m)
		if err != nil {
			return nil, err
		}
		p.rules[dateutil.MonthKey(m)] = rs
	}
	return p, nil
}

func validateRequest(req domain.GenerationRequest, limit int) error {
	if req.EmployeeID == "" {
		return fmt.Errorf("%w: employee id is required", domain.ErrInvalidInput)
	}
	if req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return fmt.Errorf("%w: period start and end are required", domain.ErrInvalidInput)
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return fmt.Errorf("%w: period end %s before period start %s", domain.ErrInvalidInput,
			req.PeriodEnd.Format("2006-01-02"), req.PeriodStart.Format("2006-01-02"))
	}
	if n := dateutil.MonthsBetween(req.PeriodStart, req.PeriodEnd); n > limit {
		return fmt.Errorf("%w: range spans %d months, limit is %d", domain.ErrInvalidInput, n, limit)
	}
	for key, days := range req.LeaveTaken {
		if _, err := dateutil.ParseMonth(key); err != nil {
			return fmt.Errorf("%w: leave taken: %v", domain.ErrInvalidInput, err)
		}
		if days.IsNegative() {
			return fmt.Errorf("%w: leave taken in %s is negative", domain.ErrInvalidInput, key)
		}
	}
	return nil
}

// resolveGross derives the monthly gross salary. Request values win; missing
// ones fall back to the employee record.
func resolveGross(req domain.GenerationRequest, emp *domain.Employee) (decimal.Decimal, error) {
	var gross decimal.Decimal
	switch req.SalaryMode {
	case domain.SalaryModeHourly:
		rate := emp.HourlyRate
		if req.HourlyRate != nil {
			rate = *req.HourlyRate
		}
		hours := emp.MonthlyHours
		if req.Hours != nil {
			hours = *req.Hours
		}
		if rate.IsNegative() || hours.IsNegative() {
			return decimal.Zero, fmt.Errorf("%w: hourly rate %s and hours %s must not be negative", domain.ErrInvalidInput, rate, hours)
		}
		gross = rate.Mul(hours)
	case domain.SalaryModeFixed, "":
		gross = emp.BaseSalary
		if req.FixedAmount != nil {
			gross = *req.FixedAmount
		}
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown salary mode %q", domain.ErrInvalidInput, req.SalaryMode)
	}
	if gross.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: gross salary %s is negative", domain.ErrInvalidInput, gross)
	}
	return pd.RoundCents(gross), nil
}

func (g *PeriodGenerator) logOutcome(employeeID string, o domain.MonthOutcome) {
	key := dateutil.MonthKey(o.Month)
	switch o.State {
	case domain.MonthPersisted:
		g.Logger.Infof("%s %s persisted as %s", employeeID, key, o.PayslipID)
	case domain.MonthSkipped:
		g.Logger.Infof("%s %s skipped: payslip already exists", employeeID, key)
	default:
		g.Logger.Warnf("%s %s failed: %v", employeeID, key, o.Err)
	}
}
