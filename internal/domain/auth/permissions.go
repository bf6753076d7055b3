package auth

const (
	RoleAdmin      = "admin"
	RoleFinance    = "finance"
	RoleOperations = "operations"
	RoleViewer     = "viewer"
)

const (
	PermOperationsRead  = "operations.read"
	PermOperationsWrite = "operations.write"
	PermFinanceRead     = "finance.read"
	PermFinanceWrite    = "finance.write"
	PermHRRead          = "hr.read"
	PermHRWrite         = "hr.write"
	PermPayrollApprove  = "payroll.approve"
	PermReportsRead     = "reports.read"
	PermChatUse         = "chat.use"
	PermAuditRead       = "audit.read"
)

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermOperationsRead,
		PermOperationsWrite,
		PermFinanceRead,
		PermFinanceWrite,
		PermHRRead,
		PermHRWrite,
		PermPayrollApprove,
		PermReportsRead,
		PermChatUse,
		PermAuditRead,
	},
	RoleFinance: {
		PermOperationsRead,
		PermFinanceRead,
		PermFinanceWrite,
		PermHRRead,
		PermPayrollApprove,
		PermReportsRead,
		PermChatUse,
	},
	RoleOperations: {
		PermOperationsRead,
		PermOperationsWrite,
		PermHRRead,
		PermChatUse,
	},
	RoleViewer: {
		PermOperationsRead,
		PermReportsRead,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// Permissions resolves grants from the static role table.
type Permissions struct{}

func (Permissions) HasPermission(role, permission string) bool {
	for _, p := range RolePermissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
