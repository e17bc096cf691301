package resume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "shacheck/internal/errors"
	"shacheck/internal/hash"
	"shacheck/internal/sha256"
)

func writeInput(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "big input.bin")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func testData(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i * 31)
	}
	return data
}

func TestResolvePaths(t *testing.T) {
	dir := t.TempDir()
	a, err := ResolvePaths(dir, "/data/x: y.bin")
	require.NoError(t, err)
	b, err := ResolvePaths(dir, "/other/x: y.bin")
	require.NoError(t, err)

	assert.Equal(t, dir, filepath.Dir(a.Checkpoint))
	assert.True(t, strings.HasPrefix(filepath.Base(a.Checkpoint), "x__y.bin-"), a.Checkpoint)
	assert.True(t, strings.HasSuffix(a.Checkpoint, ".ckpt"))
	assert.Equal(t, a.Checkpoint+".lock", a.Lock)
	assert.NotEqual(t, a.Checkpoint, b.Checkpoint)
}

func TestHashFileWithoutCheckpoint(t *testing.T) {
	dir := t.TempDir()
	data := testData(200_000)
	path := writeInput(t, dir, data)
	ckptDir := filepath.Join(dir, "ckpt")

	res, err := HashFile(context.Background(), path, Options{Dir: ckptDir, Interval: 50_000}, nil)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), res.Sum)
	assert.EqualValues(t, len(data), res.Bytes)

	paths, err := ResolvePaths(ckptDir, path)
	require.NoError(t, err)
	_, err = os.Stat(paths.Checkpoint)
	assert.True(t, os.IsNotExist(err), "checkpoint should be removed after success")
	_, err = os.Stat(paths.Lock)
	assert.True(t, os.IsNotExist(err), "lock should be released")
}

func TestHashFileResumesFromCheckpoint(t *testing.T) {
	dir := t.TempDir()
	data := testData(100_000)
	path := writeInput(t, dir, data)
	ckptDir := filepath.Join(dir, "ckpt")
	paths, err := ResolvePaths(ckptDir, path)
	require.NoError(t, err)
	info, err := os.Stat(path)
	require.NoError(t, err)

	// Checkpoint part way through, mid-block.
	const offset = 40_003
	h := hash.New()
	_, _ = h.Write(data[:offset])
	state, err := h.Checkpoint()
	require.NoError(t, err)
	require.NoError(t, SaveMetaAtomic(paths.Checkpoint, Meta{
		Input: paths.Input, Size: info.Size(), ModTime: info.ModTime(), Offset: offset, State: state,
	}))

	var first uint64
	res, err := HashFile(context.Background(), path, Options{Dir: ckptDir}, func(total uint64) {
		if first == 0 {
			first = total
		}
	})
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), res.Sum)
	assert.Greater(t, first, uint64(offset), "hashing should continue after the checkpoint")
}

func TestHashFileDiscardsStaleCheckpoint(t *testing.T) {
	dir := t.TempDir()
	data := testData(10_000)
	path := writeInput(t, dir, data)
	ckptDir := filepath.Join(dir, "ckpt")
	paths, err := ResolvePaths(ckptDir, path)
	require.NoError(t, err)

	h := hash.New()
	_, _ = h.Write([]byte("something else entirely"))
	state, err := h.Checkpoint()
	require.NoError(t, err)
	require.NoError(t, SaveMetaAtomic(paths.Checkpoint, Meta{
		Input: paths.Input, Size: 1, Offset: h.Len(), State: state,
	}))

	res, err := HashFile(context.Background(), path, Options{Dir: ckptDir}, nil)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), res.Sum)
}

func TestHashFileCancelledSavesCheckpoint(t *testing.T) {
	dir := t.TempDir()
	data := testData(10_000)
	path := writeInput(t, dir, data)
	ckptDir := filepath.Join(dir, "ckpt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := HashFile(ctx, path, Options{Dir: ckptDir}, nil)
	require.ErrorIs(t, err, context.Canceled)

	paths, err := ResolvePaths(ckptDir, path)
	require.NoError(t, err)
	meta, err := LoadMeta(paths.Checkpoint)
	require.NoError(t, err)
	assert.EqualValues(t, 0, meta.Offset)

	res, err := HashFile(context.Background(), path, Options{Dir: ckptDir}, nil)
	require.NoError(t, err)
	assert.Equal(t, sha256.Sum256(data), res.Sum)
}

func TestHashFileLockBusy(t *testing.T) {
	dir := t.TempDir()
	path := writeInput(t, dir, []byte("abc"))
	ckptDir := filepath.Join(dir, "ckpt")
	require.NoError(t, os.MkdirAll(ckptDir, 0o755))
	paths, err := ResolvePaths(ckptDir, path)
	require.NoError(t, err)

	lock, err := AcquireLock(paths.Lock, false)
	require.NoError(t, err)
	defer lock.Release()

	_, err = HashFile(context.Background(), path, Options{Dir: ckptDir}, nil)
	assert.ErrorIs(t, err, apperrors.ErrLockBusy)

	_, err = HashFile(context.Background(), path, Options{Dir: ckptDir, BreakLock: true}, nil)
	assert.NoError(t, err)
}

func TestAcquireLockRecordsOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.ckpt.lock")
	lock, err := AcquireLock(path, false)
	require.NoError(t, err)
	defer lock.Release()

	body, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(body), "pid="+strconv.Itoa(os.Getpid())+"\n")
	assert.Contains(t, string(body), "time=")
}

func TestAcquireLockMissingDir(t *testing.T) {
	_, err := AcquireLock(filepath.Join(t.TempDir(), "absent", "x.ckpt.lock"), false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperrors.ErrLockBusy)
}

type failingLockWriter struct {
	writeErr, syncErr error
	synced            bool
}

func (w *failingLockWriter) WriteString(s string) (int, error) {
	if w.writeErr != nil {
		return 0, w.writeErr
	}
	return len(s), nil
}

func (w *failingLockWriter) Sync() error {
	w.synced = true
	return w.syncErr
}

func TestWriteLockBodyReportsErrors(t *testing.T) {
	diskFull := errors.New("no space left on device")

	w := &failingLockWriter{writeErr: diskFull}
	assert.ErrorIs(t, writeLockBody(w), diskFull)
	assert.False(t, w.synced, "sync after failed write")

	w = &failingLockWriter{syncErr: diskFull}
	assert.ErrorIs(t, writeLockBody(w), diskFull)

	w = &failingLockWriter{}
	assert.NoError(t, writeLockBody(w))
	assert.True(t, w.synced)
}

func TestLoadMetaRejectsUnknownVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.ckpt")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":9}`), 0o600))
	_, err := LoadMeta(path)
	assert.Error(t, err)
}
