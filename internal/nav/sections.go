package nav

import (
	"strings"

	"github.com/odyssey-erp/ledgerdesk/internal/authz"
	"github.com/odyssey-erp/ledgerdesk/internal/rbac"
)

// Section groups the tabs of one product area under a URL prefix.
type Section struct {
	Slug  string
	Title string
	Tabs  []Tab
}

// Href is the section's root path.
func (s Section) Href() string { return "/" + s.Slug }

// Landing returns the first tab the checker may open.
func (s Section) Landing(c rbac.Checker) (Tab, bool) {
	visible := Visible(c, s.Tabs)
	if len(visible) == 0 {
		return Tab{}, false
	}
	return visible[0], true
}

func tab(label, href string, key authz.Key) Tab {
	return Tab{Label: label, Href: href, Permission: authz.ByKey(key)}
}

var sections = []Section{
	{
		Slug:  "accounts",
		Title: "Accounts",
		Tabs: []Tab{
			tab("Chart of Accounts", "/accounts/chart-of-accounts", authz.AccountsChartView),
			tab("Journals", "/accounts/journals", authz.AccountsJournalsView),
			tab("Periods", "/accounts/periods", authz.AccountsPeriodsView),
			tab("Budget", "/accounts/budget", authz.AccountsBudgetView),
		},
	},
	{
		Slug:  "sales",
		Title: "Sales",
		Tabs: []Tab{
			tab("Customers", "/sales/customers", authz.SalesCustomersView),
			tab("Quotations", "/sales/quotations", authz.SalesQuotationsView),
			tab("Invoices", "/sales/invoices", authz.SalesInvoicesView),
			tab("Receipts", "/sales/receipts", authz.SalesReceiptsView),
		},
	},
	{
		Slug:  "purchases",
		Title: "Purchases",
		Tabs: []Tab{
			tab("Suppliers", "/purchases/suppliers", authz.PurchasesSuppliersView),
			tab("Purchase Orders", "/purchases/orders", authz.PurchasesOrdersView),
			tab("Bills", "/purchases/bills", authz.PurchasesBillsView),
			tab("Payments", "/purchases/payments", authz.PurchasesPaymentsView),
		},
	},
	{
		Slug:  "hr",
		Title: "HR & Payroll",
		Tabs: []Tab{
			tab("Employees", "/hr/employees", authz.HREmployeesView),
			tab("Payroll", "/hr/payroll", authz.HRPayrollView),
			tab("Payslips", "/hr/payslips", authz.HRPayslipsView),
		},
	},
	{
		Slug:  "banking",
		Title: "Banking",
		Tabs: []Tab{
			tab("Bank Accounts", "/banking/accounts", authz.BankingAccountsView),
			tab("Reconciliation", "/banking/reconciliation", authz.BankingReconciliationView),
			tab("Transfers", "/banking/transfers", authz.BankingTransfersView),
		},
	},
	{
		Slug:  "consolidation",
		Title: "Consolidation",
		Tabs: []Tab{
			tab("Runs", "/consolidation/runs", authz.ConsolidationRunsView),
			tab("Eliminations", "/consolidation/eliminations", authz.ConsolidationEliminationsView),
			tab("FX Rates", "/consolidation/fx", authz.ConsolidationFXView),
		},
	},
	{
		Slug:  "budgeting",
		Title: "Budgeting",
		Tabs: []Tab{
			tab("Budgets", "/budgeting/budgets", authz.BudgetingBudgetsView),
			tab("Variance", "/budgeting/variance", authz.BudgetingVarianceView),
		},
	},
	{
		Slug:  "reports",
		Title: "Reports",
		Tabs: []Tab{
			tab("Trial Balance", "/reports/trial-balance", authz.ReportsTrialBalanceView),
			tab("Profit & Loss", "/reports/profit-loss", authz.ReportsProfitLossView),
			tab("Balance Sheet", "/reports/balance-sheet", authz.ReportsBalanceSheetView),
			tab("Cash Flow", "/reports/cash-flow", authz.ReportsCashFlowView),
		},
	},
}

// Sections lists the product areas in menu order.
func Sections() []Section {
	out := make([]Section, len(sections))
	copy(out, sections)
	return out
}

// Lookup returns the section registered under slug.
func Lookup(slug string) (Section, bool) {
	for _, s := range sections {
		if s.Slug == slug {
			return s, true
		}
	}
	return Section{}, false
}

// SectionFor returns the section owning path.
func SectionFor(path string) (Section, bool) {
	slug := strings.TrimPrefix(trimPath(path), "/")
	slug, _, _ = strings.Cut(slug, "/")
	if slug == "" {
		return Section{}, false
	}
	return Lookup(slug)
}

// Menu returns the sections with at least one visible tab, each pointing at
// its first visible tab.
func Menu(c rbac.Checker, path string) []Item {
	items := make([]Item, 0, len(sections))
	for _, s := range sections {
		landing, ok := s.Landing(c)
		if !ok {
			continue
		}
		items = append(items, Item{
			Tab:    Tab{Label: s.Title, Href: landing.Href, Permission: landing.Permission},
			Active: IsActive(path, s.Href()),
		})
	}
	return items
}
