package folders

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudyhq/cloudy-server/internal/models"
	"github.com/cloudyhq/cloudy-server/internal/pkg/xerr"
	"github.com/cloudyhq/cloudy-server/internal/repositories"
	"gorm.io/gorm"
)

// --- in-memory FolderRepository ---

type fakeFolderRepo struct {
	folders map[uint64]*models.Folder
	nextID  uint64
}

var _ repositories.FolderRepository = (*fakeFolderRepo)(nil)

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[uint64]*models.Folder), nextID: 1}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	folder.ID = r.nextID
	r.nextID++
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *fakeFolderRepo) FindByIDForOwner(_ context.Context, ownerID, id uint64) (*models.Folder, error) {
	f, ok := r.folders[id]
	if !ok || f.OwnerID != ownerID || f.Status != models.FileStatusActive {
		return nil, xerr.ErrFolderNotFound
	}
	clone := *f
	return &clone, nil
}

func (r *fakeFolderRepo) FindByOwnerAndParent(_ context.Context, ownerID uint64, parentID *uint64) ([]models.Folder, error) {
	var out []models.Folder
	for _, f := range r.folders {
		if f.OwnerID != ownerID || f.Status != models.FileStatusActive {
			continue
		}
		switch {
		case parentID == nil && f.ParentFolderID == nil:
			out = append(out, *f)
		case parentID != nil && f.ParentFolderID != nil && *f.ParentFolderID == *parentID:
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) CountChildren(_ context.Context, ownerID, folderID uint64) (int64, error) {
	var n int64
	for _, f := range r.folders {
		if f.OwnerID == ownerID && f.Status == models.FileStatusActive &&
			f.ParentFolderID != nil && *f.ParentFolderID == folderID {
			n++
		}
	}
	return n, nil
}

func (r *fakeFolderRepo) Update(_ context.Context, folder *models.Folder) error {
	if _, ok := r.folders[folder.ID]; !ok {
		return xerr.ErrFolderNotFound
	}
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

// fakeTM runs the callback without a real transaction.
type fakeTM struct{}

func (fakeTM) WithTransaction(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(repo *fakeFolderRepo) *folderService {
	return &folderService{
		folderRepo: repo,
		tm:         fakeTM{},
		txRepo:     func(*gorm.DB) repositories.FolderRepository { return repo },
	}
}

// --- tests ---

func TestCreateFolder_ValidatesParent(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	root, err := svc.CreateFolder(ctx, 1, "docs", nil)
	if err != nil {
		t.Fatalf("CreateFolder root: %v", err)
	}

	if _, err := svc.CreateFolder(ctx, 1, "sub", &root.ID); err != nil {
		t.Fatalf("CreateFolder child: %v", err)
	}

	missing := uint64(999)
	if _, err := svc.CreateFolder(ctx, 1, "orphan", &missing); !errors.Is(err, xerr.ErrFolderNotFound) {
		t.Errorf("missing parent: err = %v, want ErrFolderNotFound", err)
	}

	// A parent owned by someone else is invisible to the caller.
	if _, err := svc.CreateFolder(ctx, 2, "stolen", &root.ID); !errors.Is(err, xerr.ErrFolderNotFound) {
		t.Errorf("foreign parent: err = %v, want ErrFolderNotFound", err)
	}
}

func TestCreateFolder_NameRules(t *testing.T) {
	svc := newTestService(newFakeFolderRepo())
	ctx := context.Background()

	if _, err := svc.CreateFolder(ctx, 1, "  ", nil); !errors.Is(err, xerr.ErrFolderNameRequired) {
		t.Errorf("blank name: err = %v", err)
	}

	long := make([]byte, models.MaxFolderNameLen+1)
	for i := range long {
		long[i] = 'x'
	}
	if _, err := svc.CreateFolder(ctx, 1, string(long), nil); !errors.Is(err, xerr.ErrFolderNameTooLong) {
		t.Errorf("long name: err = %v", err)
	}
}

func TestListFolders_ByParent(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	root, _ := svc.CreateFolder(ctx, 1, "docs", nil)
	svc.CreateFolder(ctx, 1, "sub-a", &root.ID)
	svc.CreateFolder(ctx, 1, "sub-b", &root.ID)

	topLevel, err := svc.ListFolders(ctx, 1, nil)
	if err != nil {
		t.Fatalf("ListFolders root: %v", err)
	}
	if len(topLevel) != 1 {
		t.Errorf("root level has %d folders, want 1", len(topLevel))
	}

	children, err := svc.ListFolders(ctx, 1, &root.ID)
	if err != nil {
		t.Fatalf("ListFolders children: %v", err)
	}
	if len(children) != 2 {
		t.Errorf("children = %d, want 2", len(children))
	}
}

func TestDeleteFolder_RestrictsNonEmpty(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	root, _ := svc.CreateFolder(ctx, 1, "docs", nil)
	child, _ := svc.CreateFolder(ctx, 1, "sub", &root.ID)

	if err := svc.DeleteFolder(ctx, 1, root.ID); !errors.Is(err, xerr.ErrFolderNotEmpty) {
		t.Fatalf("delete non-empty: err = %v, want ErrFolderNotEmpty", err)
	}

	if err := svc.DeleteFolder(ctx, 1, child.ID); err != nil {
		t.Fatalf("delete leaf: %v", err)
	}
	if err := svc.DeleteFolder(ctx, 1, root.ID); err != nil {
		t.Fatalf("delete emptied root: %v", err)
	}

	if _, err := svc.GetFolder(ctx, 1, root.ID); !errors.Is(err, xerr.ErrFolderNotFound) {
		t.Errorf("deleted folder still readable: err = %v", err)
	}
}

func TestRenameFolder(t *testing.T) {
	repo := newFakeFolderRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	folder, _ := svc.CreateFolder(ctx, 1, "docs", nil)
	renamed, err := svc.RenameFolder(ctx, 1, folder.ID, "documents")
	if err != nil {
		t.Fatalf("RenameFolder: %v", err)
	}
	if renamed.Name != "documents" {
		t.Errorf("Name = %q", renamed.Name)
	}

	if _, err := svc.RenameFolder(ctx, 2, folder.ID, "hijack"); !errors.Is(err, xerr.ErrFolderNotFound) {
		t.Errorf("foreign rename: err = %v, want ErrFolderNotFound", err)
	}
}
