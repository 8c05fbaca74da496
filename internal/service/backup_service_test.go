package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hospital-equipment-tracker/internal/repository"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeObjectStore struct {
	objects map[string][]byte
	putErr  error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}}
}

func (f *fakeObjectStore) PutObject(_ context.Context, bucket, name string, r io.Reader, _ int64, _ minio.PutObjectOptions) (minio.UploadInfo, error) {
	if f.putErr != nil {
		return minio.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.objects[bucket+"/"+name] = data
	return minio.UploadInfo{Bucket: bucket, Key: name, Size: int64(len(data))}, nil
}

func (f *fakeObjectStore) RemoveObject(_ context.Context, bucket, name string, _ minio.RemoveObjectOptions) error {
	delete(f.objects, bucket+"/"+name)
	return nil
}

func newBackupService(t *testing.T, env *testEnv, store ObjectStore) *BackupService {
	t.Helper()
	return NewBackupService(
		repository.NewPPMRepo(env.db),
		repository.NewOCMRepo(env.db),
		repository.NewTrainingRepo(env.db),
		env.settings,
		env.auditRepo,
		store,
		"backups",
		t.TempDir(),
		zap.NewNop(),
	)
}

func TestBackupCreateFull(t *testing.T) {
	env := newTestEnv(t)
	seedEquipment(t, env)
	_, err := env.training.Create(trainingInput("E-1", "Nadia", "Ventilator"), 0)
	require.NoError(t, err)

	store := newFakeObjectStore()
	svc := newBackupService(t, env, store)

	info, err := svc.Create(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Equal(t, BackupFull, info.Kind)
	assert.True(t, info.Uploaded)
	assert.Regexp(t, `^full_backup_\d{8}_\d{6}_[0-9a-f]{8}\.json$`, info.Name)

	data, err := os.ReadFile(filepath.Join(svc.dir, info.Name))
	require.NoError(t, err)
	assert.Equal(t, data, store.objects["backups/"+info.Name])

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Len(t, snap.PPM, 2)
	assert.Len(t, snap.OCM, 1)
	require.Len(t, snap.Trainings, 1)
	assert.Len(t, snap.Trainings[0].Assignments, 1)
	require.NotNil(t, snap.Settings)
	assert.Equal(t, 60, snap.Settings.ReminderDays)

	assert.Contains(t, env.auditActions(t), "backup_create")
}

func TestBackupCreateSettingsOnly(t *testing.T) {
	env := newTestEnv(t)
	seedEquipment(t, env)
	svc := newBackupService(t, env, nil)

	info, err := svc.Create(context.Background(), BackupSettings, 0)
	require.NoError(t, err)
	assert.False(t, info.Uploaded)

	data, err := os.ReadFile(filepath.Join(svc.dir, info.Name))
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.Empty(t, snap.PPM)
	assert.NotNil(t, snap.Settings)

	_, err = svc.Create(context.Background(), "partial", 0)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBackupUploadFailureKeepsLocalCopy(t *testing.T) {
	env := newTestEnv(t)
	store := newFakeObjectStore()
	store.putErr = errors.New("bucket unavailable")
	svc := newBackupService(t, env, store)

	info, err := svc.Create(context.Background(), BackupFull, 0)
	require.NoError(t, err)
	assert.False(t, info.Uploaded)
	assert.FileExists(t, filepath.Join(svc.dir, info.Name))
}

func TestBackupListAndDelete(t *testing.T) {
	env := newTestEnv(t)
	store := newFakeObjectStore()
	svc := newBackupService(t, env, store)
	ctx := context.Background()

	list, err := svc.List()
	require.NoError(t, err)
	assert.Empty(t, list)

	older, err := svc.Create(ctx, BackupFull, 0)
	require.NoError(t, err)
	newer, err := svc.Create(ctx, BackupSettings, 0)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(svc.dir, older.Name), past, past))
	require.NoError(t, os.WriteFile(filepath.Join(svc.dir, "notes.txt"), []byte("x"), 0o644))

	list, err = svc.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, newer.Name, list[0].Name)
	assert.Equal(t, BackupSettings, list[0].Kind)
	assert.Equal(t, older.Name, list[1].Name)

	require.NoError(t, svc.Delete(ctx, older.Name, 0))
	assert.NotContains(t, store.objects, "backups/"+older.Name)
	assert.ErrorIs(t, svc.Delete(ctx, older.Name, 0), ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, "../"+newer.Name, 0), ErrInvalidInput)
	assert.ErrorIs(t, svc.Delete(ctx, "notes.txt", 0), ErrInvalidInput)
}

func TestBackupPrune(t *testing.T) {
	env := newTestEnv(t)
	svc := newBackupService(t, env, nil)
	ctx := context.Background()

	old, err := svc.Create(ctx, BackupFull, 0)
	require.NoError(t, err)
	recent, err := svc.Create(ctx, BackupFull, 0)
	require.NoError(t, err)
	past := time.Now().AddDate(0, 0, -40)
	require.NoError(t, os.Chtimes(filepath.Join(svc.dir, old.Name), past, past))

	removed, err := svc.Prune(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	removed, err = svc.Prune(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)
	assert.NoFileExists(t, filepath.Join(svc.dir, old.Name))
	assert.FileExists(t, filepath.Join(svc.dir, recent.Name))
}
