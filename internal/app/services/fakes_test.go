package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/portalescolar/diplomas/internal/app/models"
	"github.com/portalescolar/diplomas/internal/app/repositories"
	"github.com/portalescolar/diplomas/internal/pkg/apperrors"
	"github.com/portalescolar/diplomas/internal/pkg/hashutil"
	"github.com/portalescolar/diplomas/internal/pkg/pdf"
	"github.com/portalescolar/diplomas/internal/pkg/storage"
)

// fakeLedger is an in-memory diploma repository used across the service tests.
type fakeLedger struct {
	pending   []repositories.PendingDiploma
	diplomas  []models.Diploma
	details   map[string]*repositories.DiplomaDetails
	insertErr error
	nextID    int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{details: make(map[string]*repositories.DiplomaDetails)}
}

func (f *fakeLedger) ListPending(context.Context) ([]repositories.PendingDiploma, error) {
	return f.pending, nil
}

func (f *fakeLedger) ListPendingForStudent(_ context.Context, studentID int64) ([]repositories.PendingDiploma, error) {
	var out []repositories.PendingDiploma
	for _, p := range f.pending {
		if p.StudentID == studentID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeLedger) HasValidDiploma(_ context.Context, studentID int64, courseID *int64) (bool, error) {
	for _, d := range f.diplomas {
		if d.StudentID != studentID || d.Status != models.DiplomaStatusValid {
			continue
		}
		if (d.CourseID == nil) != (courseID == nil) {
			continue
		}
		if courseID == nil || *d.CourseID == *courseID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLedger) Insert(_ context.Context, d *models.Diploma) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	d.ID = f.nextID
	f.diplomas = append(f.diplomas, *d)
	return nil
}

func (f *fakeLedger) GetByFolio(_ context.Context, folio string) (*repositories.DiplomaDetails, error) {
	dd, ok := f.details[folio]
	if !ok {
		return nil, apperrors.ErrDiplomaNotFound
	}
	return dd, nil
}

func (f *fakeLedger) ListByNationalID(_ context.Context, nationalID string) ([]repositories.DiplomaDetails, error) {
	var out []repositories.DiplomaDetails
	for _, dd := range f.details {
		if dd.NationalID == nationalID {
			out = append(out, *dd)
		}
	}
	return out, nil
}

func (f *fakeLedger) SetStatus(_ context.Context, folio string, status models.DiplomaStatus) (int64, error) {
	for i := range f.diplomas {
		if f.diplomas[i].Folio != folio {
			continue
		}
		if f.diplomas[i].Status == status {
			return 0, nil
		}
		f.diplomas[i].Status = status
		return 1, nil
	}
	return 0, apperrors.ErrDiplomaNotFound
}

func (f *fakeLedger) List(context.Context) ([]models.Diploma, error) {
	out := make([]models.Diploma, len(f.diplomas))
	copy(out, f.diplomas)
	return out, nil
}

func (f *fakeLedger) UpdateLocator(_ context.Context, id int64, locator string, kind storage.Kind) error {
	for i := range f.diplomas {
		if f.diplomas[i].ID == id {
			f.diplomas[i].Locator = locator
			f.diplomas[i].Kind = kind
			return nil
		}
	}
	return apperrors.ErrDiplomaNotFound
}

func (f *fakeLedger) UpdateDigest(_ context.Context, id int64, digest string) error {
	for i := range f.diplomas {
		if f.diplomas[i].ID == id {
			f.diplomas[i].Digest = digest
			return nil
		}
	}
	return apperrors.ErrDiplomaNotFound
}

// fakeDirectory resolves students by ID and national ID.
type fakeDirectory struct {
	students map[int64]*models.Student
}

func (f *fakeDirectory) GetByID(_ context.Context, id int64) (*models.Student, error) {
	s, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return s, nil
}

func (f *fakeDirectory) GetByNationalID(_ context.Context, nationalID string) (*models.Student, error) {
	for _, s := range f.students {
		if s.NationalID == nationalID {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

// fakeTemplates serves a fixed template path and page size.
type fakeTemplates struct{}

func (fakeTemplates) Resolve(path string) (string, error) { return path, nil }

func (fakeTemplates) Dims(string) (float64, float64, error) { return 850, 550, nil }

// fakeRenderer returns deterministic overlay bytes keyed by the student name.
type fakeRenderer struct{}

func (fakeRenderer) Render(spec pdf.OverlaySpec) ([]byte, error) {
	return []byte("overlay:" + spec.StudentName + ":" + spec.VerificationURL), nil
}

// fakeMerger concatenates template path and overlay bytes.
type fakeMerger struct{}

func (fakeMerger) Merge(templatePath string, overlay []byte) ([]byte, error) {
	return append([]byte("merged:"+templatePath+":"), overlay...), nil
}

// publishedDoc records one Publish call.
type publishedDoc struct {
	Name string
	Data []byte
}

// fakePublisher stores published documents in memory. When failOn is n > 0,
// the n-th Publish call fails.
type fakePublisher struct {
	kind      storage.Kind
	published []publishedDoc
	deleted   []string
	calls     int
	failOn    int
}

func newFakePublisher(kind storage.Kind) *fakePublisher {
	return &fakePublisher{kind: kind}
}

func (f *fakePublisher) Publish(_ context.Context, data []byte, name string) (string, storage.Kind, error) {
	f.calls++
	if f.failOn > 0 && f.calls == f.failOn {
		return "", f.kind, fmt.Errorf("%w: status 500", apperrors.ErrPublishFailed)
	}
	f.published = append(f.published, publishedDoc{Name: name, Data: data})
	return f.PublicLocator(name), f.kind, nil
}

func (f *fakePublisher) Delete(_ context.Context, name string) (bool, error) {
	f.deleted = append(f.deleted, name)
	return true, nil
}

func (f *fakePublisher) PublicLocator(name string) string {
	if f.kind == storage.KindRemote {
		return "https://cdn.example.com/diplomas/" + name
	}
	return "http://localhost:8080/pdfs/" + name
}

// fakeFetcher serves document bytes by locator.
type fakeFetcher struct {
	docs map[string][]byte
}

func (f *fakeFetcher) Fetch(_ context.Context, locator string, _ storage.Kind) ([]byte, error) {
	data, ok := f.docs[locator]
	if !ok {
		return nil, fmt.Errorf("document %s not found", locator)
	}
	return data, nil
}

func (f *fakeFetcher) Digest(ctx context.Context, locator string, kind storage.Kind) (string, error) {
	data, err := f.Fetch(ctx, locator, kind)
	if err != nil {
		return "", err
	}
	return hashutil.SHA256Hex(bytes.NewReader(data))
}
