package authz

// Finance permissions: ledger, banking, consolidation, budgeting and reporting.
const (
	// General ledger
	AccountsChartView      Key = "ACCOUNTS_CHART_VIEW"
	AccountsChartEdit      Key = "ACCOUNTS_CHART_EDIT"
	AccountsJournalsView   Key = "ACCOUNTS_JOURNALS_VIEW"
	AccountsJournalsCreate Key = "ACCOUNTS_JOURNALS_CREATE"
	AccountsJournalsPost   Key = "ACCOUNTS_JOURNALS_POST"
	AccountsPeriodsView    Key = "ACCOUNTS_PERIODS_VIEW"
	AccountsPeriodsClose   Key = "ACCOUNTS_PERIODS_CLOSE"
	AccountsBudgetView     Key = "ACCOUNTS_BUDGET_VIEW"

	// Banking
	BankingAccountsView       Key = "BANKING_ACCOUNTS_VIEW"
	BankingAccountsEdit       Key = "BANKING_ACCOUNTS_EDIT"
	BankingReconciliationView Key = "BANKING_RECONCILIATION_VIEW"
	BankingReconciliationRun  Key = "BANKING_RECONCILIATION_RUN"
	BankingTransfersView      Key = "BANKING_TRANSFERS_VIEW"
	BankingTransfersCreate    Key = "BANKING_TRANSFERS_CREATE"

	// Group consolidation
	ConsolidationRunsView         Key = "CONSOLIDATION_RUNS_VIEW"
	ConsolidationRunsExecute      Key = "CONSOLIDATION_RUNS_EXECUTE"
	ConsolidationEliminationsView Key = "CONSOLIDATION_ELIMINATIONS_VIEW"
	ConsolidationEliminationsEdit Key = "CONSOLIDATION_ELIMINATIONS_EDIT"
	ConsolidationFXView           Key = "CONSOLIDATION_FX_VIEW"
	ConsolidationFXEdit           Key = "CONSOLIDATION_FX_EDIT"

	// Budgeting
	BudgetingBudgetsView    Key = "BUDGETING_BUDGETS_VIEW"
	BudgetingBudgetsEdit    Key = "BUDGETING_BUDGETS_EDIT"
	BudgetingBudgetsApprove Key = "BUDGETING_BUDGETS_APPROVE"
	BudgetingVarianceView   Key = "BUDGETING_VARIANCE_VIEW"

	// Reporting
	ReportsTrialBalanceView Key = "REPORTS_TRIAL_BALANCE_VIEW"
	ReportsProfitLossView   Key = "REPORTS_PROFIT_LOSS_VIEW"
	ReportsBalanceSheetView Key = "REPORTS_BALANCE_SHEET_VIEW"
	ReportsCashFlowView     Key = "REPORTS_CASH_FLOW_VIEW"
	ReportsExport           Key = "REPORTS_EXPORT"
)

func accountsTable() map[Key]Permission {
	return map[Key]Permission{
		AccountsChartView:      "accounts:chart:view",
		AccountsChartEdit:      "accounts:chart:edit",
		AccountsJournalsView:   "accounts:journals:view",
		AccountsJournalsCreate: "accounts:journals:create",
		AccountsJournalsPost:   "accounts:journals:post",
		AccountsPeriodsView:    "accounts:periods:view",
		AccountsPeriodsClose:   "accounts:periods:close",
		AccountsBudgetView:     "accounts:budget:view",
	}
}

func bankingTable() map[Key]Permission {
	return map[Key]Permission{
		BankingAccountsView:       "banking:accounts:view",
		BankingAccountsEdit:       "banking:accounts:edit",
		BankingReconciliationView: "banking:reconciliation:view",
		BankingReconciliationRun:  "banking:reconciliation:run",
		BankingTransfersView:      "banking:transfers:view",
		BankingTransfersCreate:    "banking:transfers:create",
	}
}

func consolidationTable() map[Key]Permission {
	return map[Key]Permission{
		ConsolidationRunsView:         "consolidation:runs:view",
		ConsolidationRunsExecute:      "consolidation:runs:execute",
		ConsolidationEliminationsView: "consolidation:eliminations:view",
		ConsolidationEliminationsEdit: "consolidation:eliminations:edit",
		ConsolidationFXView:           "consolidation:fx:view",
		ConsolidationFXEdit:           "consolidation:fx:edit",
	}
}

func budgetingTable() map[Key]Permission {
	return map[Key]Permission{
		BudgetingBudgetsView:    "budgeting:budgets:view",
		BudgetingBudgetsEdit:    "budgeting:budgets:edit",
		BudgetingBudgetsApprove: "budgeting:budgets:approve",
		BudgetingVarianceView:   "budgeting:variance:view",
	}
}

func reportingTable() map[Key]Permission {
	return map[Key]Permission{
		ReportsTrialBalanceView: "reports:trial-balance:view",
		ReportsProfitLossView:   "reports:profit-loss:view",
		ReportsBalanceSheetView: "reports:balance-sheet:view",
		ReportsCashFlowView:     "reports:cash-flow:view",
		ReportsExport:           "reports::export",
	}
}
