package models

import (
	"time"

	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// Diploma is the ledger row for one issued diploma. Rows are written only
// after the full generation pipeline (render, merge, hash, publish) has
// succeeded. The document bytes behind Locator are immutable once published;
// Status is the only field that changes afterwards.
type Diploma struct {
	ID        int64         `json:"id" db:"id"`
	StudentID int64         `json:"studentId" db:"student_id"`
	CourseID  *int64        `json:"courseId,omitempty" db:"course_id"` // Nullable
	Folio     string        `json:"folio" db:"folio"`                  // Globally unique, unguessable token
	Status    DiplomaStatus `json:"status" db:"status"`
	Cycle     string        `json:"cycle" db:"cycle"` // School cycle, e.g. "2024-2025"
	IssuedOn  time.Time     `json:"issuedOn" db:"issued_on"`
	Locator   string        `json:"locator" db:"locator"` // Path (local) or public URL (remote)
	Kind      storage.Kind  `json:"storageKind" db:"storage_kind"`
	Digest    string        `json:"digest" db:"digest"` // SHA-256 of the published bytes, hex
	CreatedAt time.Time     `json:"createdAt" db:"created_at"`

	// Relations (populated when needed)
	Student *Student `json:"student,omitempty"`
	Course  *Course  `json:"course,omitempty"`
}
