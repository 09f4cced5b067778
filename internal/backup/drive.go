package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/Latacz1/notatnik-treningowy/internal/docstore"
	"github.com/Latacz1/notatnik-treningowy/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	DefaultFolderName = "trainings-backup"
	folderMimeType    = "application/vnd.google-apps.folder"
	backupFilePrefix  = "trainings-"
)

//go:generate mockgen -source=$GOFILE -destination=drive_mocks_test.go -package=backup_test

type documentsLister interface {
	ListAll(ctx context.Context) ([]docstore.UserDocument, error)
}

// Export is the content of one backup file.
type Export struct {
	ExportedAt time.Time               `json:"exportedAt"`
	Documents  []docstore.UserDocument `json:"documents"`
}

type DriveService struct {
	service        *drive.Service
	folderID       string
	metricsManager *metrics.Manager
	now            func() time.Time
}

type DriveServiceParams struct {
	FolderName     string
	MetricsManager *metrics.Manager
	Now            func() time.Time
	// ClientOptions carry the credentials, and the endpoint in tests
	ClientOptions []option.ClientOption
}

// NewDriveService connects to Google Drive and finds the backups folder, creating it when missing.
func NewDriveService(ctx context.Context, params DriveServiceParams) (*DriveService, error) {
	// https://github.com/googleapis/google-api-go-client/blob/master/drive/v3/drive-gen.go
	driveService, err := drive.NewService(ctx, params.ClientOptions...)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve drive client: %w", err)
	}

	if params.FolderName == "" {
		params.FolderName = DefaultFolderName
	}
	if params.Now == nil {
		params.Now = time.Now
	}

	s := &DriveService{
		service:        driveService,
		metricsManager: params.MetricsManager,
		now:            params.Now,
	}

	folderID, err := s.findFolder(ctx, params.FolderName)
	if err != nil {
		return nil, err
	}
	if folderID == "" {
		log.Printf("backups folder [%s] not found, creating ...", params.FolderName)
		folderID, err = s.createFolder(ctx, params.FolderName)
		if err != nil {
			return nil, fmt.Errorf("create backups folder: %w", err)
		}
		log.Printf("backups folder created: %s", folderID)
	} else {
		log.Debugf("found backups folder: %s", folderID)
	}
	s.folderID = folderID

	return s, nil
}

func (s *DriveService) FolderID() string {
	return s.folderID
}

func (s *DriveService) findFolder(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf("mimeType = '%s' and trashed = false and name = '%s'", folderMimeType, name)
	folders, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name)").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("list folders: %w", err)
	}

	switch len(folders.Files) {
	case 0:
		return "", nil
	case 1:
		return folders.Files[0].Id, nil
	default:
		log.Warnf("found %d backups folders named [%s], taking the first one", len(folders.Files), name)
		return folders.Files[0].Id, nil
	}
}

func (s *DriveService) createFolder(ctx context.Context, name string) (string, error) {
	folder, err := s.service.Files.Create(&drive.File{
		Name:     name,
		MimeType: folderMimeType,
	}).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}
	return folder.Id, nil
}

// Backup uploads every stored document as one JSON file named by the backup time.
func (s *DriveService) Backup(ctx context.Context, documents documentsLister) (*drive.File, error) {
	begin := time.Now()
	defer func() {
		if s.metricsManager != nil {
			s.metricsManager.HistBackupDuration.Observe(time.Since(begin).Seconds())
		}
	}()

	userDocuments, err := documents.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	exportedAt := s.now().UTC()
	exportJson, err := json.Marshal(Export{
		ExportedAt: exportedAt,
		Documents:  userDocuments,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}

	fileName := FileName(exportedAt)
	log.Printf("%s: uploading %d documents (%d bytes) ...", fileName, len(userDocuments), len(exportJson))

	file, err := s.service.Files.Create(&drive.File{
		Name:     fileName,
		MimeType: "application/json",
		Parents:  []string{s.folderID},
	}).
		Fields("id, name, createdTime").
		Media(bytes.NewReader(exportJson)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%s: upload: %w", fileName, err)
	}

	if s.metricsManager != nil {
		s.metricsManager.CounterDocumentsBackedUp.Add(float64(len(userDocuments)))
	}
	log.Printf("%s: backup saved: %s", fileName, file.Id)

	return file, nil
}

// List returns the backup files, newest first.
func (s *DriveService) List(ctx context.Context) ([]*drive.File, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s' and trashed = false", s.folderID, folderMimeType)
	backups, err := s.service.Files.List().
		Q(query).
		Fields("files(id, name, createdTime)").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	files := backups.Files
	sort.SliceStable(files, func(i, j int) bool {
		return files[i].CreatedTime > files[j].CreatedTime
	})
	return files, nil
}

// Prune deletes all but the newest keep backups and returns how many were deleted.
func (s *DriveService) Prune(ctx context.Context, keep int) (int, error) {
	if keep < 1 {
		return 0, fmt.Errorf("keep at least one backup, got %d", keep)
	}

	files, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	if len(files) <= keep {
		return 0, nil
	}

	deleted := 0
	for _, f := range files[keep:] {
		if err := s.service.Files.Delete(f.Id).Context(ctx).Do(); err != nil {
			return deleted, fmt.Errorf("delete backup %s [%s]: %w", f.Name, f.Id, err)
		}
		log.Debugf("old backup deleted: %s", f.Name)
		deleted++
	}
	return deleted, nil
}

// FileName names the backup taken at t. Names sort in backup order.
func FileName(t time.Time) string {
	return backupFilePrefix + t.UTC().Format("20060102-150405") + ".json"
}
