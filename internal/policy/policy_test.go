package policy

import (
	"testing"

	"banking-ledger/internal/models"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PolicyTestSuite struct {
	suite.Suite
	policy *Policy
}

func TestPolicyTestSuite(t *testing.T) {
	suite.Run(t, new(PolicyTestSuite))
}

func (s *PolicyTestSuite) SetupTest() {
	s.policy = Default()
}

func (s *PolicyTestSuite) TestForAccountType_DefaultTable() {
	testCases := []struct {
		accountType string
		rate        string
		withdrawal  string
		transfer    string
	}{
		{models.AccountTypeSavings, "2.5", "500000", "1000000"},
		{models.AccountTypeChecking, "0.5", "1000000", "2000000"},
		{models.AccountTypeBusiness, "1.2", "3000000", "5000000"},
		{models.AccountTypeFixedDeposit, "6.0", "0", "0"},
		{models.AccountTypeCurrent, "0", "1500000", "3000000"},
	}

	for _, tc := range testCases {
		s.Run(tc.accountType, func() {
			limits, err := s.policy.ForAccountType(tc.accountType)
			s.Require().NoError(err)
			s.True(decimal.RequireFromString(tc.rate).Equal(limits.InterestRate))
			s.True(decimal.RequireFromString(tc.withdrawal).Equal(limits.DailyWithdrawalLimit))
			s.True(decimal.RequireFromString(tc.transfer).Equal(limits.DailyTransferLimit))
		})
	}
}

func (s *PolicyTestSuite) TestForAccountType_Unknown() {
	_, err := s.policy.ForAccountType("Crypto")
	s.ErrorIs(err, ErrUnknownAccountType)
}

func (s *PolicyTestSuite) TestFee_DefaultSchedule() {
	s.True(decimal.NewFromInt(250).Equal(s.policy.Fee(models.OperationTypeWithdrawal)))
	s.True(decimal.NewFromInt(100).Equal(s.policy.Fee(models.OperationTypeTransfer)))
	s.True(s.policy.Fee(models.OperationTypeDeposit).IsZero())
	s.True(s.policy.Fee("unknown").IsZero())
}

func (s *PolicyTestSuite) TestNew_OverridesApply() {
	cfg := DefaultConfig()
	cfg.Fees[models.OperationTypeWithdrawal] = decimal.RequireFromString("2.50")
	savings := cfg.Limits[models.AccountTypeSavings]
	savings.DailyWithdrawalLimit = decimal.NewFromInt(1000)
	cfg.Limits[models.AccountTypeSavings] = savings

	p, err := New(cfg)
	s.Require().NoError(err)

	s.True(decimal.RequireFromString("2.50").Equal(p.Fee(models.OperationTypeWithdrawal)))
	limits, err := p.ForAccountType(models.AccountTypeSavings)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Equal(limits.DailyWithdrawalLimit))

	// the default table is untouched
	defaults, err := Default().ForAccountType(models.AccountTypeSavings)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(500000).Equal(defaults.DailyWithdrawalLimit))
}

func (s *PolicyTestSuite) TestNew_RejectsInvalidConfig() {
	testCases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{
			name: "missing account type",
			mutate: func(cfg *Config) {
				delete(cfg.Limits, models.AccountTypeCurrent)
			},
		},
		{
			name: "unknown account type",
			mutate: func(cfg *Config) {
				cfg.Limits["Crypto"] = TypeLimits{}
			},
		},
		{
			name: "negative fee",
			mutate: func(cfg *Config) {
				cfg.Fees[models.OperationTypeTransfer] = decimal.NewFromInt(-1)
			},
		},
		{
			name: "missing fee",
			mutate: func(cfg *Config) {
				delete(cfg.Fees, models.OperationTypeDeposit)
			},
		},
		{
			name: "fractional cents in limit",
			mutate: func(cfg *Config) {
				l := cfg.Limits[models.AccountTypeBusiness]
				l.DailyTransferLimit = decimal.RequireFromString("10.001")
				cfg.Limits[models.AccountTypeBusiness] = l
			},
		},
		{
			name: "interest rate above 100",
			mutate: func(cfg *Config) {
				l := cfg.Limits[models.AccountTypeChecking]
				l.InterestRate = decimal.NewFromInt(101)
				cfg.Limits[models.AccountTypeChecking] = l
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			_, err := New(cfg)
			s.Error(err)
		})
	}
}

func (s *PolicyTestSuite) TestAccountTypes_Sorted() {
	s.Equal([]string{
		models.AccountTypeBusiness,
		models.AccountTypeChecking,
		models.AccountTypeCurrent,
		models.AccountTypeFixedDeposit,
		models.AccountTypeSavings,
	}, s.policy.AccountTypes())
}
