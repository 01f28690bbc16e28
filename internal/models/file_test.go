package models

import (
	"errors"
	"testing"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
)

func newTestReservation(t *testing.T) *File {
	t.Helper()
	f, err := NewReservedFile(7, "report.pdf", "application/pdf", 1024, "bucket", "2026/08/31/key-report.pdf", time.Now().Add(15*time.Minute))
	if err != nil {
		t.Fatalf("NewReservedFile: %v", err)
	}
	return f
}

func TestNewReservedFile_RequiresName(t *testing.T) {
	_, err := NewReservedFile(7, "   ", "", 1024, "bucket", "key", time.Now())
	if !errors.Is(err, xerr.ErrFileNameRequired) {
		t.Fatalf("err = %v, want ErrFileNameRequired", err)
	}
}

func TestActivate_FromReserved(t *testing.T) {
	f := newTestReservation(t)

	if err := f.Activate("report-final.pdf", "application/pdf", 2048, 7); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if f.Status != FileStatusActive {
		t.Errorf("Status = %d, want Active", f.Status)
	}
	if f.Name != "report-final.pdf" || f.Size != 2048 {
		t.Errorf("metadata not applied: name=%q size=%d", f.Name, f.Size)
	}
	if f.UploadedAt == nil {
		t.Error("UploadedAt not set")
	}
	if f.ReservedUntil != nil {
		t.Error("ReservedUntil not cleared")
	}
}

func TestActivate_Idempotent(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Activate("a.pdf", "application/pdf", 2048, 7); err != nil {
		t.Fatalf("first Activate: %v", err)
	}

	// A repeated finalize must not change anything.
	if err := f.Activate("other.pdf", "text/plain", 9999, 7); err != nil {
		t.Fatalf("second Activate: %v", err)
	}
	if f.Name != "a.pdf" || f.Size != 2048 {
		t.Errorf("second Activate mutated the file: name=%q size=%d", f.Name, f.Size)
	}
}

func TestTrashRoundTrip(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Activate("a.pdf", "", 1024, 7); err != nil {
		t.Fatalf("Activate: %v", err)
	}

	if err := f.MarkPendingDeletion(7); err != nil {
		t.Fatalf("MarkPendingDeletion: %v", err)
	}
	if f.Status != FileStatusPendingDeletion {
		t.Fatalf("Status = %d, want PendingDeletion", f.Status)
	}
	if !f.IsVisible() {
		t.Error("trashed file should stay visible")
	}

	// Only name, size, content type survive untouched through the trash.
	name, size := f.Name, f.Size
	if err := f.RestorePendingDeletion(7); err != nil {
		t.Fatalf("RestorePendingDeletion: %v", err)
	}
	if f.Status != FileStatusActive {
		t.Fatalf("Status = %d, want Active", f.Status)
	}
	if f.Name != name || f.Size != size {
		t.Error("round trip changed file metadata")
	}
}

func TestMarkPendingDeletion_RejectsNonActive(t *testing.T) {
	f := newTestReservation(t)
	if err := f.MarkPendingDeletion(7); !errors.Is(err, xerr.ErrFileStatusInvalid) {
		t.Fatalf("err = %v, want ErrFileStatusInvalid", err)
	}
}

func TestRestore_RejectsActive(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Activate("a.pdf", "", 1024, 7); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := f.RestorePendingDeletion(7); !errors.Is(err, xerr.ErrFileNotInTrash) {
		t.Fatalf("err = %v, want ErrFileNotInTrash", err)
	}
}

func TestSoftDelete_IsTerminal(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Activate("a.pdf", "", 1024, 7); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := f.SoftDelete(7); err != nil {
		t.Fatalf("SoftDelete: %v", err)
	}
	if f.Status != FileStatusDeleted || f.DeletedAt == nil || f.DeletedBy == nil {
		t.Error("tombstone fields not set")
	}
	if f.IsVisible() {
		t.Error("deleted file must not be visible")
	}

	if err := f.SoftDelete(7); err != nil {
		t.Errorf("repeated SoftDelete should be a no-op, got %v", err)
	}
	if err := f.RestorePendingDeletion(7); err == nil {
		t.Error("restore after delete should fail")
	}
	if err := f.Activate("a.pdf", "", 1024, 7); err == nil {
		t.Error("activate after delete should fail")
	}
}

func TestExpire_OnlyReservations(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Expire(); err != nil {
		t.Fatalf("Expire: %v", err)
	}
	if f.Status != FileStatusDeleted {
		t.Errorf("Status = %d, want Deleted", f.Status)
	}

	g := newTestReservation(t)
	if err := g.Activate("a.pdf", "", 1024, 7); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := g.Expire(); !errors.Is(err, xerr.ErrFileStatusInvalid) {
		t.Fatalf("Expire on active file: err = %v, want ErrFileStatusInvalid", err)
	}
}

func TestRename_Validates(t *testing.T) {
	f := newTestReservation(t)
	if err := f.Rename("", 7); !errors.Is(err, xerr.ErrFileNameRequired) {
		t.Fatalf("err = %v, want ErrFileNameRequired", err)
	}
	if err := f.Rename("new.pdf", 7); err != nil {
		t.Fatalf("Rename: %v", err)
	}
	if f.Name != "new.pdf" {
		t.Errorf("Name = %q", f.Name)
	}
}
