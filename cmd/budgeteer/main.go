// Command budgeteer maintains a monthly envelope budget reconciled
// against a beancount ledger queried through bean-query.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"budgeteer/internal/beanquery"
	"budgeteer/internal/config"
	"budgeteer/internal/database"
	apperrors "budgeteer/internal/errors"
	"budgeteer/internal/logger"
	"budgeteer/internal/models"
	"budgeteer/internal/money"
	"budgeteer/internal/services"
	"budgeteer/internal/validator"
)

const usage = `usage: budgeteer <command> [args]

commands:
  open          YEAR MONTH                    open (or re-sync) the period's budget
  sync          YEAR MONTH                    re-import accounts, spending and income
  activate      YEAR MONTH                    activate a balanced draft budget
  close         YEAR MONTH                    close the period, carry balances forward
  redistribute  YEAR MONTH FROM TO AMOUNT     move allocation between envelopes
  adjust        YEAR MONTH FROM TO AMOUNT     record a paired adjustment transfer
  correct       YEAR MONTH ACCOUNT AMOUNT     record a single manual correction
  set-target    YEAR MONTH ACCOUNT AMOUNT     set an envelope's planned ceiling
  set-base      YEAR MONTH ACCOUNT AMOUNT     set an envelope's allocation (draft only)
  copy          YEAR MONTH [-mode base|spending] [-targets]
                                              copy prior period's figures into this one
  balances      YEAR MONTH                    per-envelope balance report
  summary       YEAR MONTH                    income vs. allocation summary
  close-account NAME                          exclude an account from future budgets
`

// periodArgs carries a parsed (year, month) CLI argument pair.
type periodArgs struct {
	Year  int `validate:"gte=1900,lte=9999"`
	Month int `validate:"gte=1,lte=12"`
}

func main() {
	logger.Init(os.Getenv("ENV"))

	if err := run(); err != nil {
		logger.Get().Errorf("Error: %v", err)
		logger.Sync()
		os.Exit(exitCode(err))
	}
	logger.Sync()
}

// exitCode maps an error onto the engine's stable exit-code contract.
func exitCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return 1
}

// app bundles the wired services for command dispatch.
type app struct {
	cfg       *config.Config
	runner    *beanquery.Runner
	accounts  services.AccountServicer
	budgets   services.BudgetServicer
	envelopes services.EnvelopeServicer
	reconcile services.ReconcileServicer
	balances  services.BalanceServicer
}

func run() error {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "no command given")
	}
	command := os.Args[1]
	args := os.Args[2:]

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbConfig, err := database.NewConfig()
	if err != nil {
		return fmt.Errorf("failed to load database configuration: %w", err)
	}
	dbManager, err := database.NewManager(dbConfig)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStoreFailure, err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			logger.Get().Warnf("failed to close database: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return apperrors.Wrap(apperrors.ErrStoreFailure, err)
	}

	db := dbManager.DB()
	accounts := services.NewAccountService(db)
	reconcile := services.NewReconcileService(db)
	balances := services.NewBalanceService(db)

	a := &app{
		cfg:       cfg,
		runner:    beanquery.NewRunner(cfg.BeanQueryBin, cfg.LedgerFile, cfg.ReportFile),
		accounts:  accounts,
		budgets:   services.NewBudgetService(db, reconcile, balances),
		envelopes: services.NewEnvelopeService(db, accounts),
		reconcile: reconcile,
		balances:  balances,
	}

	switch command {
	case "open":
		return a.open(args)
	case "sync":
		return a.sync(args)
	case "activate":
		return a.activate(args)
	case "close":
		return a.close(args)
	case "redistribute":
		return a.redistribute(args)
	case "adjust":
		return a.adjust(args)
	case "correct":
		return a.correct(args)
	case "set-target":
		return a.setTarget(args)
	case "set-base":
		return a.setBase(args)
	case "copy":
		return a.copy(args)
	case "balances":
		return a.printBalances(args)
	case "summary":
		return a.printSummary(args)
	case "close-account":
		return a.closeAccount(args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "unknown command: "+command)
	}
}

// parsePeriod validates a YEAR MONTH argument pair.
func parsePeriod(args []string) (models.Period, error) {
	if len(args) < 2 {
		return models.Period{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "expected YEAR and MONTH arguments")
	}
	year, err := strconv.Atoi(args[0])
	if err != nil {
		return models.Period{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid year: "+args[0])
	}
	month, err := strconv.Atoi(args[1])
	if err != nil {
		return models.Period{}, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid month: "+args[1])
	}

	if err := validator.Struct(periodArgs{Year: year, Month: month}); err != nil {
		return models.Period{}, apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}
	return models.Period{Year: year, Month: month}, nil
}

// fetchBudget resolves the budget for a YEAR MONTH argument pair.
func (a *app) fetchBudget(args []string) (*models.Budget, error) {
	p, err := parsePeriod(args)
	if err != nil {
		return nil, err
	}
	return a.budgets.GetByPeriod(p)
}

// importIncome runs the income query for the period and stores the
// result on the budget.
func (a *app) importIncome(budgetID uint, p models.Period) error {
	positions, err := a.runner.FetchPositions(beanquery.IncomeQuery(p))
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		logger.Get().Warnw("ledger reported no income for period", "period", p.String())
		return nil
	}
	return a.reconcile.ApplyIncome(budgetID, positions[0].Amount)
}

func (a *app) open(args []string) error {
	p, err := parsePeriod(args)
	if err != nil {
		return err
	}

	positions, err := a.runner.FetchPositions(beanquery.ExpensesQuery(p))
	if err != nil {
		return err
	}
	budget, err := a.budgets.Open(p, positions)
	if err != nil {
		return err
	}
	if err := a.importIncome(budget.ID, p); err != nil {
		return err
	}

	fmt.Printf("Budget %s open (id %d)\n", p, budget.ID)
	return nil
}

func (a *app) sync(args []string) error {
	p, err := parsePeriod(args)
	if err != nil {
		return err
	}
	budget, err := a.budgets.GetByPeriod(p)
	if err != nil {
		return err
	}

	positions, err := a.runner.FetchPositions(beanquery.ExpensesQuery(p))
	if err != nil {
		return err
	}
	if err := a.reconcile.Reconcile(budget.ID, positions); err != nil {
		return err
	}
	if err := a.importIncome(budget.ID, p); err != nil {
		return err
	}

	fmt.Printf("Budget %s synced\n", p)
	return nil
}

func (a *app) activate(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	if err := a.budgets.Activate(budget.ID); err != nil {
		return err
	}
	fmt.Printf("Budget %s active\n", budget.Period())
	return nil
}

func (a *app) close(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	successor, err := a.budgets.Close(budget.ID)
	if err != nil {
		return err
	}
	fmt.Printf("Budget %s closed, balances carried into %s\n", budget.Period(), successor.Period())
	return nil
}

// parseTransfer validates the FROM TO AMOUNT tail of a transfer command.
func parseTransfer(args []string) (from, to string, amount money.Amount, err error) {
	if len(args) != 3 {
		return "", "", 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "expected FROM, TO and AMOUNT arguments")
	}
	amount, err = money.Decode(args[2])
	if err != nil {
		return "", "", 0, err
	}
	return args[0], args[1], amount, nil
}

func (a *app) redistribute(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	from, to, amount, err := parseTransfer(args[2:])
	if err != nil {
		return err
	}
	if err := a.envelopes.Redistribute(budget.ID, from, to, amount); err != nil {
		return err
	}
	fmt.Printf("Moved %s from %s to %s\n", amount, from, to)
	return nil
}

func (a *app) adjust(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	from, to, amount, err := parseTransfer(args[2:])
	if err != nil {
		return err
	}
	if err := a.envelopes.AdjustmentTransfer(budget.ID, from, to, amount); err != nil {
		return err
	}
	fmt.Printf("Adjusted %s from %s to %s\n", amount, from, to)
	return nil
}

// parseAccountAmount validates the ACCOUNT AMOUNT tail of an edit command.
func parseAccountAmount(args []string) (string, money.Amount, error) {
	if len(args) != 2 {
		return "", 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "expected ACCOUNT and AMOUNT arguments")
	}
	amount, err := money.Decode(args[1])
	if err != nil {
		return "", 0, err
	}
	return args[0], amount, nil
}

func (a *app) correct(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	account, amount, err := parseAccountAmount(args[2:])
	if err != nil {
		return err
	}
	if err := a.envelopes.Correct(budget.ID, account, amount); err != nil {
		return err
	}
	fmt.Printf("Corrected %s by %s\n", account, amount)
	return nil
}

func (a *app) setTarget(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	account, amount, err := parseAccountAmount(args[2:])
	if err != nil {
		return err
	}
	if err := a.envelopes.SetTarget(budget.ID, account, amount); err != nil {
		return err
	}
	fmt.Printf("Target of %s set to %s\n", account, amount)
	return nil
}

func (a *app) setBase(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	account, amount, err := parseAccountAmount(args[2:])
	if err != nil {
		return err
	}
	if err := a.envelopes.SetBase(budget.ID, account, amount); err != nil {
		return err
	}
	fmt.Printf("Allocation of %s set to %s\n", account, amount)
	return nil
}

func (a *app) copy(args []string) error {
	p, err := parsePeriod(args)
	if err != nil {
		return err
	}

	flags := flag.NewFlagSet("copy", flag.ContinueOnError)
	mode := flags.String("mode", string(services.CopyBase), "figure to copy: base or spending")
	targets := flags.Bool("targets", false, "also copy targets")
	if err := flags.Parse(args[2:]); err != nil {
		return apperrors.Wrap(apperrors.ErrInvalidInput, err)
	}

	if err := a.envelopes.CopyAllocations(p.Prev(), p, services.CopyMode(*mode), *targets); err != nil {
		return err
	}
	fmt.Printf("Copied %s figures from %s into %s\n", *mode, p.Prev(), p)
	return nil
}

func (a *app) printBalances(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	rows, err := a.balances.Balances(budget.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ACCOUNT\tTARGET\tBASE\tCORRECTIONS\tSPENDING\tBALANCE")
	for _, row := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.AccountName, row.Target, row.BaseValue, row.Corrections, row.Spending, row.Balance)
	}
	return w.Flush()
}

func (a *app) printSummary(args []string) error {
	budget, err := a.fetchBudget(args)
	if err != nil {
		return err
	}
	summary, err := a.balances.AllocationSummary(budget.ID)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Income\t%s\n", summary.Income)
	fmt.Fprintf(w, "Allocated\t%s\n", summary.Allocated)
	fmt.Fprintf(w, "Balance\t%s\n", summary.Balance)
	return w.Flush()
}

func (a *app) closeAccount(args []string) error {
	if len(args) != 1 {
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "expected account NAME argument")
	}
	if err := a.accounts.CloseAccount(args[0]); err != nil {
		return err
	}
	fmt.Printf("Account %s closed\n", args[0])
	return nil
}
