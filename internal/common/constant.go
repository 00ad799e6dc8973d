package common

// Audit actions recorded by the document service.
const (
	AuditActionRegister = "REGISTER"
	AuditActionLogin    = "LOGIN"
	AuditActionUpload   = "UPLOAD"
	AuditActionView     = "VIEW"
	AuditActionShare    = "SHARE"
	AuditActionDelete   = "DELETE"
)

// Audit statuses.
const (
	AuditStatusSuccess = "SUCCESS"
	AuditStatusFailure = "FAILURE"
)
