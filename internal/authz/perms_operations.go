package authz

// Operational permissions: sales, purchases and payroll.
const (
	// Sales
	SalesCustomersView     Key = "SALES_CUSTOMERS_VIEW"
	SalesCustomersCreate   Key = "SALES_CUSTOMERS_CREATE"
	SalesCustomersEdit     Key = "SALES_CUSTOMERS_EDIT"
	SalesCustomersDelete   Key = "SALES_CUSTOMERS_DELETE"
	SalesQuotationsView    Key = "SALES_QUOTATIONS_VIEW"
	SalesQuotationsCreate  Key = "SALES_QUOTATIONS_CREATE"
	SalesQuotationsApprove Key = "SALES_QUOTATIONS_APPROVE"
	SalesInvoicesView      Key = "SALES_INVOICES_VIEW"
	SalesInvoicesCreate    Key = "SALES_INVOICES_CREATE"
	SalesInvoicesVoid      Key = "SALES_INVOICES_VOID"
	SalesReceiptsView      Key = "SALES_RECEIPTS_VIEW"
	SalesReceiptsCreate    Key = "SALES_RECEIPTS_CREATE"

	// Purchases
	PurchasesSuppliersView  Key = "PURCHASES_SUPPLIERS_VIEW"
	PurchasesSuppliersEdit  Key = "PURCHASES_SUPPLIERS_EDIT"
	PurchasesOrdersView     Key = "PURCHASES_ORDERS_VIEW"
	PurchasesOrdersCreate   Key = "PURCHASES_ORDERS_CREATE"
	PurchasesOrdersApprove  Key = "PURCHASES_ORDERS_APPROVE"
	PurchasesBillsView      Key = "PURCHASES_BILLS_VIEW"
	PurchasesBillsCreate    Key = "PURCHASES_BILLS_CREATE"
	PurchasesPaymentsView   Key = "PURCHASES_PAYMENTS_VIEW"
	PurchasesPaymentsCreate Key = "PURCHASES_PAYMENTS_CREATE"

	// HR and payroll
	HREmployeesView  Key = "HR_EMPLOYEES_VIEW"
	HREmployeesEdit  Key = "HR_EMPLOYEES_EDIT"
	HRPayrollView    Key = "HR_PAYROLL_VIEW"
	HRPayrollRun     Key = "HR_PAYROLL_RUN"
	HRPayrollApprove Key = "HR_PAYROLL_APPROVE"
	HRPayslipsView   Key = "HR_PAYSLIPS_VIEW"
)

func salesTable() map[Key]Permission {
	return map[Key]Permission{
		SalesCustomersView:     "sales:customers:view",
		SalesCustomersCreate:   "sales:customers:create",
		SalesCustomersEdit:     "sales:customers:edit",
		SalesCustomersDelete:   "sales:customers:delete",
		SalesQuotationsView:    "sales:quotations:view",
		SalesQuotationsCreate:  "sales:quotations:create",
		SalesQuotationsApprove: "sales:quotations:approve",
		SalesInvoicesView:      "sales:invoices:view",
		SalesInvoicesCreate:    "sales:invoices:create",
		SalesInvoicesVoid:      "sales:invoices:void",
		SalesReceiptsView:      "sales:receipts:view",
		SalesReceiptsCreate:    "sales:receipts:create",
	}
}

func purchasesTable() map[Key]Permission {
	return map[Key]Permission{
		PurchasesSuppliersView:  "purchases:suppliers:view",
		PurchasesSuppliersEdit:  "purchases:suppliers:edit",
		PurchasesOrdersView:     "purchases:orders:view",
		PurchasesOrdersCreate:   "purchases:orders:create",
		PurchasesOrdersApprove:  "purchases:orders:approve",
		PurchasesBillsView:      "purchases:bills:view",
		PurchasesBillsCreate:    "purchases:bills:create",
		PurchasesPaymentsView:   "purchases:payments:view",
		PurchasesPaymentsCreate: "purchases:payments:create",
	}
}

func payrollTable() map[Key]Permission {
	return map[Key]Permission{
		HREmployeesView:  "hr:employees:view",
		HREmployeesEdit:  "hr:employees:edit",
		HRPayrollView:    "hr:payroll:view",
		HRPayrollRun:     "hr:payroll:run",
		HRPayrollApprove: "hr:payroll:approve",
		HRPayslipsView:   "hr:payslips:view",
	}
}
