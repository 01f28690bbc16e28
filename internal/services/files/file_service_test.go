package files

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/cloudyhq/cloudy-server/internal/config"
	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/search"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
)

const mb = 1024 * 1024

// --- in-memory FileRepository ---

type fakeFileRepo struct {
	files  map[uint64]*models.File
	nextID uint64
}

var _ repositories.FileRepository = (*fakeFileRepo)(nil)

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[uint64]*models.File), nextID: 1}
}

func (r *fakeFileRepo) Create(_ context.Context, file *models.File) error {
	file.ID = r.nextID
	r.nextID++
	clone := *file
	r.files[file.ID] = &clone
	return nil
}

func (r *fakeFileRepo) FindByIDForOwner(_ context.Context, ownerID, id uint64) (*models.File, error) {
	f, ok := r.files[id]
	if !ok || f.OwnerID != ownerID || !f.IsVisible() {
		return nil, xerr.ErrFileNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *fakeFileRepo) FindByObjectKey(_ context.Context, ownerID uint64, bucket, objectKey string) (*models.File, error) {
	for _, f := range r.files {
		if f.OwnerID == ownerID && f.Bucket == bucket && f.ObjectKey == objectKey && f.Status != models.FileStatusDeleted {
			clone := *f
			return &clone, nil
		}
	}
	return nil, xerr.ErrFileNotFound
}

func (r *fakeFileRepo) FindByOwnerID(_ context.Context, ownerID uint64) ([]models.File, error) {
	var out []models.File
	for _, f := range r.files {
		if f.OwnerID == ownerID && f.IsVisible() {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) FindTrashedByOwnerID(_ context.Context, ownerID uint64) ([]models.File, error) {
	var out []models.File
	for _, f := range r.files {
		if f.OwnerID == ownerID && f.Status == models.FileStatusPendingDeletion {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) FindVisibleByIDs(_ context.Context, ownerID uint64, ids []uint64) ([]models.File, error) {
	var out []models.File
	for _, id := range ids {
		if f, ok := r.files[id]; ok && f.OwnerID == ownerID && f.IsVisible() {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) FindExpiredReservations(_ context.Context, before time.Time, limit int) ([]models.File, error) {
	var out []models.File
	for _, f := range r.files {
		if f.Status == models.FileStatusReserved && f.ReservedUntil != nil && f.ReservedUntil.Before(before) {
			out = append(out, *f)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeFileRepo) FindByID(_ context.Context, id uint64) (*models.File, error) {
	f, ok := r.files[id]
	if !ok {
		return nil, xerr.ErrFileNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *fakeFileRepo) SumUsedSizeByOwner(_ context.Context, ownerID uint64) (uint64, error) {
	var total uint64
	for _, f := range r.files {
		if f.OwnerID == ownerID && f.Status != models.FileStatusDeleted {
			total += f.Size
		}
	}
	return total, nil
}

func (r *fakeFileRepo) Update(_ context.Context, file *models.File) error {
	if _, ok := r.files[file.ID]; !ok {
		return xerr.ErrFileNotFound
	}
	clone := *file
	r.files[file.ID] = &clone
	return nil
}

func (r *fakeFileRepo) Delete(_ context.Context, file *models.File) error {
	delete(r.files, file.ID)
	return nil
}

// --- quota policy fake ---

type fakeQuotaRepo struct {
	policies map[uint64]uint64
}

func (r *fakeQuotaRepo) FindByOwnerID(_ context.Context, ownerID uint64) (*models.QuotaPolicy, error) {
	if max, ok := r.policies[ownerID]; ok {
		return &models.QuotaPolicy{OwnerID: ownerID, MaxBytes: max}, nil
	}
	return nil, repositories.ErrNoQuotaPolicy
}

func (r *fakeQuotaRepo) Upsert(_ context.Context, policy *models.QuotaPolicy) error {
	r.policies[policy.OwnerID] = policy.MaxBytes
	return nil
}

// --- storage fake ---

type fakeStorage struct {
	presignPutErr error
	removeErr     error
	removedKeys   []string
}

func (s *fakeStorage) PresignedPutURL(_ context.Context, bucket, object string, _ time.Duration) (string, error) {
	if s.presignPutErr != nil {
		return "", s.presignPutErr
	}
	return "https://blobs.test/" + bucket + "/" + object + "?sig=put", nil
}

func (s *fakeStorage) PresignedGetURL(_ context.Context, bucket, object string, _ time.Duration) (string, error) {
	return "https://blobs.test/" + bucket + "/" + object + "?sig=get", nil
}

func (s *fakeStorage) RemoveObject(_ context.Context, _, object string) error {
	if s.removeErr != nil {
		return s.removeErr
	}
	s.removedKeys = append(s.removedKeys, object)
	return nil
}

func (s *fakeStorage) IsBucketExist(_ context.Context, _ string) (bool, error) { return true, nil }
func (s *fakeStorage) MakeBucket(_ context.Context, _ string) error            { return nil }

// --- indexer fake ---

type fakeIndexer struct {
	search.NoopFileIndex
	hits []uint64
}

func (f *fakeIndexer) Search(_ context.Context, _ uint64, _ string, _ int) ([]uint64, error) {
	return f.hits, nil
}

// --- harness ---

type serviceFixture struct {
	svc     *fileService
	repo    *fakeFileRepo
	quota   *fakeQuotaRepo
	storage *fakeStorage
	indexer *fakeIndexer
}

func newFixture() *serviceFixture {
	cfg := &config.Config{
		MinIO: config.MinIOConfig{BucketName: "bucket"},
		Storage: config.StorageConfig{
			Type:               "minio",
			PresignedURLExpiry: 10 * time.Minute,
			DefaultQuotaBytes:  10 * mb,
			ReservationGrace:   5 * time.Minute,
		},
	}
	f := &serviceFixture{
		repo:    newFakeFileRepo(),
		quota:   &fakeQuotaRepo{policies: make(map[uint64]uint64)},
		storage: &fakeStorage{},
		indexer: &fakeIndexer{},
	}
	f.svc = &fileService{
		fileRepo:  f.repo,
		quotaRepo: f.quota,
		storage:   f.storage,
		indexer:   f.indexer,
		cfg:       cfg,
		now:       time.Now,
	}
	return f
}

// seedActiveFile creates and finalizes a file of the given size.
func (f *serviceFixture) seedActiveFile(t *testing.T, ownerID uint64, name string, size uint64) *models.File {
	t.Helper()
	ctx := context.Background()
	intent, err := f.svc.CreateUploadIntent(ctx, ownerID, UploadIntentRequest{
		FileName:    name,
		SizeInBytes: size,
	})
	if err != nil {
		t.Fatalf("CreateUploadIntent(%s): %v", name, err)
	}
	file, err := f.svc.FinalizeUpload(ctx, ownerID, intent.ObjectKey, FinalizeRequest{})
	if err != nil {
		t.Fatalf("FinalizeUpload(%s): %v", name, err)
	}
	return file
}

// --- tests ---

func TestCreateUploadIntent_ReservesAndPresigns(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	intent, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{
		FileName:    "photo.jpg",
		SizeInBytes: 2 * mb,
		ContentType: "image/jpeg",
	})
	if err != nil {
		t.Fatalf("CreateUploadIntent: %v", err)
	}

	if !strings.HasSuffix(intent.ObjectKey, "-photo.jpg") {
		t.Errorf("ObjectKey = %q, want date-partitioned key ending in -photo.jpg", intent.ObjectKey)
	}
	if !strings.Contains(intent.UploadURL, intent.ObjectKey) {
		t.Errorf("UploadURL %q does not reference the object key", intent.UploadURL)
	}
	if intent.ExpiresInSeconds != 600 {
		t.Errorf("ExpiresInSeconds = %d, want 600", intent.ExpiresInSeconds)
	}

	// The reservation already counts against quota.
	used, _ := f.repo.SumUsedSizeByOwner(ctx, 1)
	if used != 2*mb {
		t.Errorf("used = %d, want %d", used, 2*mb)
	}

	// But it is not visible in listings.
	list, _ := f.svc.ListFiles(ctx, 1)
	if len(list) != 0 {
		t.Errorf("reservation leaked into listing: %d files", len(list))
	}
}

func TestCreateUploadIntent_QuotaExceededMessage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedActiveFile(t, 1, "existing.bin", 5*mb)

	_, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{
		FileName:    "big.bin",
		SizeInBytes: 6 * mb,
	})
	if !errors.Is(err, xerr.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}

	want := "Storage quota exceeded. Available space: 5MB, Requested: 6MB, Total quota: 10MB"
	if err.Error() != want {
		t.Errorf("message = %q\nwant      %q", err.Error(), want)
	}
}

func TestCreateUploadIntent_PolicyRaisesCeiling(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.quota.policies[1] = 20 * mb
	f.seedActiveFile(t, 1, "existing.bin", 5*mb)

	if _, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{
		FileName:    "big.bin",
		SizeInBytes: 6 * mb,
	}); err != nil {
		t.Fatalf("intent within policy ceiling rejected: %v", err)
	}
}

func TestCreateUploadIntent_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "  ", SizeInBytes: mb}); !errors.Is(err, xerr.ErrFileNameRequired) {
		t.Errorf("blank name: err = %v, want ErrFileNameRequired", err)
	}
	if _, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.txt"}); !errors.Is(err, xerr.ErrInvalidParams) {
		t.Errorf("zero size: err = %v, want ErrInvalidParams", err)
	}

	// Validation wins over quota: a blank name with an over-quota size is a
	// name error, not a quota error.
	if _, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "   ", SizeInBytes: 100 * mb}); !errors.Is(err, xerr.ErrFileNameRequired) {
		t.Errorf("blank name over quota: err = %v, want ErrFileNameRequired", err)
	}
}

func TestCreateUploadIntent_PresignFailureRollsBack(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.storage.presignPutErr = errors.New("minio down")

	_, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.txt", SizeInBytes: mb})
	if !errors.Is(err, xerr.ErrStorageError) {
		t.Fatalf("err = %v, want ErrStorageError", err)
	}

	used, _ := f.repo.SumUsedSizeByOwner(ctx, 1)
	if used != 0 {
		t.Errorf("reservation not rolled back, used = %d", used)
	}
}

func TestFinalizeUpload_PromotesAndIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	intent, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.txt", SizeInBytes: mb})
	if err != nil {
		t.Fatalf("CreateUploadIntent: %v", err)
	}

	file, err := f.svc.FinalizeUpload(ctx, 1, intent.ObjectKey, FinalizeRequest{ContentType: "text/plain"})
	if err != nil {
		t.Fatalf("FinalizeUpload: %v", err)
	}
	if file.Status != models.FileStatusActive {
		t.Fatalf("Status = %d, want Active", file.Status)
	}
	// An omitted finalize name falls back to the name given at intent time.
	if file.Name != "a.txt" {
		t.Errorf("Name = %q, want the reservation name", file.Name)
	}

	again, err := f.svc.FinalizeUpload(ctx, 1, intent.ObjectKey, FinalizeRequest{SizeInBytes: 99 * mb})
	if err != nil {
		t.Fatalf("repeated FinalizeUpload: %v", err)
	}
	if again.Size != mb {
		t.Errorf("repeated finalize changed size to %d", again.Size)
	}

	list, _ := f.svc.ListFiles(ctx, 1)
	if len(list) != 1 {
		t.Errorf("listing has %d files, want 1", len(list))
	}
}

func TestFinalizeUpload_RejectsExpiredReservation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	intent, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.txt", SizeInBytes: mb})
	if err != nil {
		t.Fatalf("CreateUploadIntent: %v", err)
	}

	// Jump past the presign TTL plus the grace period; the reservation now
	// belongs to the sweep.
	f.svc.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	if _, err := f.svc.FinalizeUpload(ctx, 1, intent.ObjectKey, FinalizeRequest{}); !errors.Is(err, xerr.ErrReservationExpired) {
		t.Fatalf("err = %v, want ErrReservationExpired", err)
	}
}

func TestFinalizeUpload_UnknownKey(t *testing.T) {
	f := newFixture()
	_, err := f.svc.FinalizeUpload(context.Background(), 1, "2026/08/31/nope", FinalizeRequest{})
	if !errors.Is(err, xerr.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}
}

func TestFinalizeUpload_SizeGrowthRechecksQuota(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedActiveFile(t, 1, "existing.bin", 5*mb)

	intent, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.bin", SizeInBytes: 2 * mb})
	if err != nil {
		t.Fatalf("CreateUploadIntent: %v", err)
	}

	// Actual upload turned out bigger than declared: 5 + 8 > 10.
	_, err = f.svc.FinalizeUpload(ctx, 1, intent.ObjectKey, FinalizeRequest{SizeInBytes: 8 * mb})
	if !errors.Is(err, xerr.ErrQuotaExceeded) {
		t.Fatalf("err = %v, want ErrQuotaExceeded", err)
	}
}

// staleSumRepo reports a usage aggregate that lags behind the rows, the way
// a cross-instance cache can.
type staleSumRepo struct {
	*fakeFileRepo
	sum uint64
}

func (r *staleSumRepo) SumUsedSizeByOwner(context.Context, uint64) (uint64, error) {
	return r.sum, nil
}

func TestFinalizeUpload_StaleUsageSumDoesNotUnderflow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	intent, err := f.svc.CreateUploadIntent(ctx, 1, UploadIntentRequest{FileName: "a.bin", SizeInBytes: 2 * mb})
	if err != nil {
		t.Fatalf("CreateUploadIntent: %v", err)
	}

	// The reported sum is smaller than the reservation it already contains;
	// the growth re-check must clamp at zero rather than underflow into a
	// spurious quota rejection.
	f.svc.fileRepo = &staleSumRepo{fakeFileRepo: f.repo, sum: mb}

	file, err := f.svc.FinalizeUpload(ctx, 1, intent.ObjectKey, FinalizeRequest{SizeInBytes: 3 * mb})
	if err != nil {
		t.Fatalf("FinalizeUpload: %v", err)
	}
	if file.Size != 3*mb {
		t.Errorf("Size = %d, want %d", file.Size, 3*mb)
	}
}

func TestOwnershipScoping(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedActiveFile(t, 1, "mine.txt", mb)

	if _, err := f.svc.GetFile(ctx, 2, file.ID); !errors.Is(err, xerr.ErrFileNotFound) {
		t.Errorf("foreign read: err = %v, want ErrFileNotFound", err)
	}
	if err := f.svc.DeleteFile(ctx, 2, file.ID); !errors.Is(err, xerr.ErrFileNotFound) {
		t.Errorf("foreign delete: err = %v, want ErrFileNotFound", err)
	}
}

func TestTrashFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedActiveFile(t, 1, "doc.txt", mb)

	if err := f.svc.MarkPendingDeletion(ctx, 1, file.ID); err != nil {
		t.Fatalf("MarkPendingDeletion: %v", err)
	}

	trash, _ := f.svc.ListTrash(ctx, 1)
	if len(trash) != 1 || trash[0].ID != file.ID {
		t.Fatalf("trash = %v, want the marked file", trash)
	}

	// Trashed bytes still count against quota.
	usage, err := f.svc.GetStorageUsage(ctx, 1)
	if err != nil {
		t.Fatalf("GetStorageUsage: %v", err)
	}
	if usage.UsedBytes != mb {
		t.Errorf("UsedBytes = %d, want %d", usage.UsedBytes, mb)
	}

	// No download URL while in the trash.
	if _, err := f.svc.GetDownloadURL(ctx, 1, file.ID); !errors.Is(err, xerr.ErrFileStatusInvalid) {
		t.Errorf("download of trashed file: err = %v, want ErrFileStatusInvalid", err)
	}

	if err := f.svc.RestorePendingDeletion(ctx, 1, file.ID); err != nil {
		t.Fatalf("RestorePendingDeletion: %v", err)
	}
	trash, _ = f.svc.ListTrash(ctx, 1)
	if len(trash) != 0 {
		t.Errorf("trash not empty after restore")
	}
	if _, err := f.svc.GetDownloadURL(ctx, 1, file.ID); err != nil {
		t.Errorf("download after restore: %v", err)
	}
}

func TestDeleteFile_BlobFirstThenTombstone(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedActiveFile(t, 1, "doc.txt", mb)

	if err := f.svc.DeleteFile(ctx, 1, file.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	if len(f.storage.removedKeys) != 1 || f.storage.removedKeys[0] != file.ObjectKey {
		t.Errorf("removed keys = %v, want [%s]", f.storage.removedKeys, file.ObjectKey)
	}
	if _, err := f.svc.GetFile(ctx, 1, file.ID); !errors.Is(err, xerr.ErrFileNotFound) {
		t.Errorf("deleted file still readable: err = %v", err)
	}
	usage, _ := f.svc.GetStorageUsage(ctx, 1)
	if usage.UsedBytes != 0 {
		t.Errorf("UsedBytes = %d after delete, want 0", usage.UsedBytes)
	}
}

func TestDeleteFile_BlobFailureKeepsMetadata(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	file := f.seedActiveFile(t, 1, "doc.txt", mb)

	f.storage.removeErr = errors.New("network partition")
	err := f.svc.DeleteFile(ctx, 1, file.ID)
	if !errors.Is(err, xerr.ErrStorageError) {
		t.Fatalf("err = %v, want ErrStorageError", err)
	}

	// The file must remain fully visible and re-deletable.
	got, err := f.svc.GetFile(ctx, 1, file.ID)
	if err != nil {
		t.Fatalf("file lost after failed delete: %v", err)
	}
	if got.Status != models.FileStatusActive {
		t.Errorf("Status = %d, want Active", got.Status)
	}

	f.storage.removeErr = nil
	if err := f.svc.DeleteFile(ctx, 1, file.ID); err != nil {
		t.Errorf("retry delete: %v", err)
	}
}

func TestGetStorageUsage_Percentage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedActiveFile(t, 1, "half.bin", 5*mb)

	usage, err := f.svc.GetStorageUsage(ctx, 1)
	if err != nil {
		t.Fatalf("GetStorageUsage: %v", err)
	}
	if usage.MaxBytes != 10*mb {
		t.Errorf("MaxBytes = %d, want default quota", usage.MaxBytes)
	}
	if usage.UsagePercentage != 50 {
		t.Errorf("UsagePercentage = %v, want 50", usage.UsagePercentage)
	}
}

func TestSearchFiles_ResolvesVisibleHits(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	keep := f.seedActiveFile(t, 1, "report.pdf", mb)
	gone := f.seedActiveFile(t, 1, "report-old.pdf", mb)
	if err := f.svc.DeleteFile(ctx, 1, gone.ID); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}

	// Stale index still returns the deleted id; resolution must drop it.
	f.indexer.hits = []uint64{keep.ID, gone.ID}

	got, err := f.svc.SearchFiles(ctx, 1, "report")
	if err != nil {
		t.Fatalf("SearchFiles: %v", err)
	}
	if len(got) != 1 || got[0].ID != keep.ID {
		t.Errorf("search resolved %v, want only file %d", got, keep.ID)
	}
}
