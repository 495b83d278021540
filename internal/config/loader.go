// Package config loads and validates a household Plan from a YAML file.
// Grounded on the teacher's internal/config/input.go InputParser
// (LoadFromFile's read-unmarshal-validate-normalize pipeline), generalized
// from the teacher's FERS-participant/FEHB-holder checks to the generic
// household Plan's account/asset/transaction cross-references.
package config

import (
	"fmt"
	"os"

	"github.com/finplan/simcore/internal/domain"
	"gopkg.in/yaml.v3"
)

// Loader reads and validates Plan configuration files.
type Loader struct{}

// NewLoader returns a ready-to-use Loader.
func NewLoader() *Loader { return &Loader{} }

// LoadFromFile reads, parses, and validates a Plan from a YAML file.
func (l *Loader) LoadFromFile(filename string) (*domain.Plan, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var plan domain.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := l.Validate(&plan); err != nil {
		return nil, fmt.Errorf("plan validation failed: %w", err)
	}

	return &plan, nil
}

// Validate cross-checks a Plan's internal references: owners, account
// names, and sold-asset names must resolve, and the filing status and
// Roth-conversion kinds must be recognized values; other enum fields are not
// checked.
func (l *Loader) Validate(plan *domain.Plan) error {
	if len(plan.People) == 0 {
		return fmt.Errorf("people: at least one person is required")
	}
	if _, ok := domain.FilingStatusFromString(string(plan.Settings.FilingStatus)); !ok {
		return fmt.Errorf("plan_settings.filing_status: %q is not a recognized filing status", plan.Settings.FilingStatus)
	}

	owners := map[domain.Owner]bool{}
	for _, p := range plan.People {
		owners[p.Owner] = true
	}

	accountNames := map[string]domain.Account{}
	for _, a := range plan.Accounts {
		if accountNames[a.Name].Name != "" {
			return fmt.Errorf("accounts: duplicate account name %q", a.Name)
		}
		accountNames[a.Name] = a
		if a.Owner != domain.OwnerJoint && !owners[a.Owner] {
			return fmt.Errorf("accounts[%s].owner: %q does not match any person", a.Name, a.Owner)
		}
		if a.Kind == domain.AccountTaxableBrokerage {
			if _, ok := plan.CostBasis[a.Name]; !ok {
				return fmt.Errorf("accounts[%s]: taxable brokerage accounts require an entry in cost_basis", a.Name)
			}
		}
	}

	assetNames := map[string]bool{}
	for _, ra := range plan.RealAssets {
		assetNames[ra.Name] = true
	}

	for i, cf := range plan.CashFlows {
		if cf.Owner != domain.OwnerJoint && !owners[cf.Owner] {
			return fmt.Errorf("cash_flows[%d] (%s): owner %q does not match any person", i, cf.Name, cf.Owner)
		}
		if cf.TaxHandling == domain.TaxHandlingWithhold && cf.WithholdPercent.IsZero() {
			return fmt.Errorf("cash_flows[%d] (%s): tax_handling=withhold requires a nonzero withhold_percent", i, cf.Name)
		}
		if cf.Kind == domain.CashFlowContribution || cf.Kind == domain.CashFlowTransfer {
			if cf.DestinationAccount != "" {
				if _, ok := accountNames[cf.DestinationAccount]; !ok {
					return fmt.Errorf("cash_flows[%d] (%s): destination_account %q not found", i, cf.Name, cf.DestinationAccount)
				}
			}
			if cf.SourceAccount != "" && cf.SourceAccount != "income" {
				if _, ok := accountNames[cf.SourceAccount]; !ok {
					return fmt.Errorf("cash_flows[%d] (%s): source_account %q not found", i, cf.Name, cf.SourceAccount)
				}
			}
		}
		if !cf.EndDate.Equal(domain.YearMonth{}) && cf.EndDate.Before(cf.StartDate) {
			return fmt.Errorf("cash_flows[%d] (%s): end_date precedes start_date", i, cf.Name)
		}
	}

	for i, r := range plan.RMDs {
		found := false
		for _, p := range plan.People {
			if p.Name == r.OwnerName {
				found = true
			}
		}
		if !found {
			return fmt.Errorf("rmds[%d]: owner_name %q does not match any person", i, r.OwnerName)
		}
		for _, acct := range r.Accounts {
			a, ok := accountNames[acct]
			if !ok {
				return fmt.Errorf("rmds[%d]: account %q not found", i, acct)
			}
			if !isTaxDeferred(a.Kind) {
				return fmt.Errorf("rmds[%d]: account %q (%s) is not tax-deferred", i, acct, a.Kind)
			}
		}
	}

	for i, rc := range plan.RothSchedules {
		src, ok := accountNames[rc.SourceAccount]
		if !ok {
			return fmt.Errorf("roth_conversions[%d]: source_account %q not found", i, rc.SourceAccount)
		}
		if !isTaxDeferred(src.Kind) {
			return fmt.Errorf("roth_conversions[%d]: source_account %q must be tax-deferred", i, rc.SourceAccount)
		}
		dest, ok := accountNames[rc.DestinationAccount]
		if !ok {
			return fmt.Errorf("roth_conversions[%d]: destination_account %q not found", i, rc.DestinationAccount)
		}
		if dest.Kind != domain.AccountRothIRA {
			return fmt.Errorf("roth_conversions[%d]: destination_account %q must be a Roth IRA", i, rc.DestinationAccount)
		}
		if rc.Kind != "fixed" && rc.Kind != "bracket_fill" {
			return fmt.Errorf("roth_conversions[%d]: kind %q must be \"fixed\" or \"bracket_fill\"", i, rc.Kind)
		}
	}

	for i, txn := range plan.Transactions {
		if txn.Account != "" {
			if _, ok := accountNames[txn.Account]; !ok {
				return fmt.Errorf("transactions[%d] (%s): account %q not found", i, txn.Name, txn.Account)
			}
		}
		if txn.Kind == domain.TransactionSellAsset {
			if !assetNames[txn.AssetName] {
				return fmt.Errorf("transactions[%d] (%s): asset_name %q not found", i, txn.Name, txn.AssetName)
			}
		}
	}

	return nil
}

func isTaxDeferred(kind domain.AccountKind) bool {
	switch kind {
	case domain.Account401k, domain.AccountTraditionalIRA:
		return true
	default:
		return false
	}
}
