package dto

// VerificationResponse is the public verification artifact for one diploma.
// DocumentURL is omitted when the diploma is voided: metadata stays visible
// for transparency, the download link does not.
type VerificationResponse struct {
	Folio       string  `json:"folio"`
	Status      string  `json:"status" enums:"VALID,VOID"`
	StudentName string  `json:"studentName"`
	CourseName  string  `json:"courseName"`
	SchoolName  string  `json:"schoolName"`
	GradeName   string  `json:"gradeName"`
	Cycle       string  `json:"cycle"`
	IssuedOn    string  `json:"issuedOn"`
	Digest      string  `json:"digest"`
	StorageKind string  `json:"storageKind" enums:"local,remote"`
	DocumentURL *string `json:"documentUrl,omitempty"`
}

// EstadoResponse is the machine-readable status of a folio
type EstadoResponse struct {
	Folio  string `json:"folio"`
	Status string `json:"status" enums:"VALID,VOID"`
	Valid  bool   `json:"valid"`
	Digest string `json:"digest"`
}

// PortalResponse lists a student's diplomas for the student portal lookup
type PortalResponse struct {
	NationalID string                 `json:"nationalId"`
	Diplomas   []VerificationResponse `json:"diplomas"`
}
