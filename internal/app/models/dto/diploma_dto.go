package dto

// BatchResultResponse summarizes one generation batch. Failures are per
// student; the batch always runs to the end.
type BatchResultResponse struct {
	Pending   int `json:"pending"`
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// StatusChangeResponse reports a void/restore transition. Updated is false
// when the diploma already had the requested status.
type StatusChangeResponse struct {
	Folio   string `json:"folio"`
	Status  string `json:"status"`
	Updated bool   `json:"updated"`
}

// SyncResultResponse summarizes a storage sync pass.
type SyncResultResponse struct {
	Total   int `json:"total"`
	Synced  int `json:"synced"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

// AuditFindingResponse is one integrity finding from the audit pass.
type AuditFindingResponse struct {
	DiplomaID    int64  `json:"diplomaId"`
	Folio        string `json:"folio"`
	Issue        string `json:"issue" enums:"missing_document,digest_mismatch"`
	StoredDigest string `json:"storedDigest,omitempty"`
	ActualDigest string `json:"actualDigest,omitempty"`
	Repaired     bool   `json:"repaired"`
}

// AuditReportResponse summarizes an audit pass over the whole ledger.
type AuditReportResponse struct {
	Checked  int                    `json:"checked"`
	Missing  int                    `json:"missing"`
	Drifted  int                    `json:"drifted"`
	Repaired int                    `json:"repaired"`
	Findings []AuditFindingResponse `json:"findings"`
}
