// Package policy is the limit and fee table consulted by the transaction engine.
//
// A Policy is an immutable lookup built once from configuration: per account type it
// yields the interest rate and the daily withdrawal and transfer ceilings applied at
// account creation, and per operation type it yields the flat fee charged to the
// source account.
package policy

import (
	"errors"
	"fmt"
	"sort"

	"banking-ledger/internal/models"
	"banking-ledger/internal/money"

	"github.com/shopspring/decimal"
)

var (
	ErrUnknownAccountType   = errors.New("unknown account type")
	ErrUnknownOperationType = errors.New("unknown operation type")
)

// TypeLimits holds the defaults stamped onto a new account of one type.
type TypeLimits struct {
	InterestRate         decimal.Decimal
	DailyWithdrawalLimit decimal.Decimal
	DailyTransferLimit   decimal.Decimal
}

// Config is the raw policy data, usually produced by config.Load.
type Config struct {
	Limits map[string]TypeLimits
	Fees   map[string]decimal.Decimal
}

// Policy answers limit and fee lookups. It is safe for concurrent use because it is
// never mutated after New returns.
type Policy struct {
	limits map[string]TypeLimits
	fees   map[string]decimal.Decimal
}

// DefaultConfig returns the reference table. Fees are whole XAF amounts: 250 per
// withdrawal and 100 per transfer; deposits are free.
func DefaultConfig() Config {
	return Config{
		Limits: map[string]TypeLimits{
			models.AccountTypeSavings: {
				InterestRate:         money.MustParse("2.5"),
				DailyWithdrawalLimit: money.MustParse("500000"),
				DailyTransferLimit:   money.MustParse("1000000"),
			},
			models.AccountTypeChecking: {
				InterestRate:         money.MustParse("0.5"),
				DailyWithdrawalLimit: money.MustParse("1000000"),
				DailyTransferLimit:   money.MustParse("2000000"),
			},
			models.AccountTypeBusiness: {
				InterestRate:         money.MustParse("1.2"),
				DailyWithdrawalLimit: money.MustParse("3000000"),
				DailyTransferLimit:   money.MustParse("5000000"),
			},
			models.AccountTypeFixedDeposit: {
				InterestRate:         money.MustParse("6.0"),
				DailyWithdrawalLimit: decimal.Zero,
				DailyTransferLimit:   decimal.Zero,
			},
			models.AccountTypeCurrent: {
				InterestRate:         decimal.Zero,
				DailyWithdrawalLimit: money.MustParse("1500000"),
				DailyTransferLimit:   money.MustParse("3000000"),
			},
		},
		Fees: map[string]decimal.Decimal{
			models.OperationTypeDeposit:    decimal.Zero,
			models.OperationTypeWithdrawal: money.MustParse("250"),
			models.OperationTypeTransfer:   money.MustParse("100"),
		},
	}
}

// Default builds a Policy from DefaultConfig.
func Default() *Policy {
	p, err := New(DefaultConfig())
	if err != nil {
		panic(fmt.Sprintf("policy: default table is invalid: %v", err))
	}
	return p
}

// New validates cfg and copies it into a Policy. Every account type and every
// operation type must be present and every amount must be a non-negative scale-2
// value.
func New(cfg Config) (*Policy, error) {
	p := &Policy{
		limits: make(map[string]TypeLimits, len(cfg.Limits)),
		fees:   make(map[string]decimal.Decimal, len(cfg.Fees)),
	}

	for _, accountType := range models.AccountTypes() {
		limits, ok := cfg.Limits[accountType]
		if !ok {
			return nil, fmt.Errorf("%w: missing limits for %q", ErrUnknownAccountType, accountType)
		}
		if limits.InterestRate.IsNegative() || limits.InterestRate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, fmt.Errorf("interest rate for %q must be between 0 and 100", accountType)
		}
		if err := money.ValidateNonNegative(limits.DailyWithdrawalLimit); err != nil {
			return nil, fmt.Errorf("daily withdrawal limit for %q: %w", accountType, err)
		}
		if err := money.ValidateNonNegative(limits.DailyTransferLimit); err != nil {
			return nil, fmt.Errorf("daily transfer limit for %q: %w", accountType, err)
		}
		p.limits[accountType] = TypeLimits{
			InterestRate:         limits.InterestRate,
			DailyWithdrawalLimit: money.Normalize(limits.DailyWithdrawalLimit),
			DailyTransferLimit:   money.Normalize(limits.DailyTransferLimit),
		}
	}

	for accountType := range cfg.Limits {
		if !models.IsValidAccountType(accountType) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAccountType, accountType)
		}
	}

	for _, op := range models.OperationTypes() {
		fee, ok := cfg.Fees[op]
		if !ok {
			return nil, fmt.Errorf("%w: missing fee for %q", ErrUnknownOperationType, op)
		}
		if err := money.ValidateNonNegative(fee); err != nil {
			return nil, fmt.Errorf("fee for %q: %w", op, err)
		}
		p.fees[op] = money.Normalize(fee)
	}

	return p, nil
}

// ForAccountType returns the creation defaults for an account type.
func (p *Policy) ForAccountType(accountType string) (TypeLimits, error) {
	limits, ok := p.limits[accountType]
	if !ok {
		return TypeLimits{}, fmt.Errorf("%w: %q", ErrUnknownAccountType, accountType)
	}
	return limits, nil
}

// Fee returns the flat fee for an operation type. Unknown types cost nothing.
func (p *Policy) Fee(operationType string) decimal.Decimal {
	return p.fees[operationType]
}

// AccountTypes lists the configured account types in a stable order.
func (p *Policy) AccountTypes() []string {
	types := make([]string, 0, len(p.limits))
	for t := range p.limits {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
