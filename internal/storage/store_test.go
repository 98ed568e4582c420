package storage_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	s3aws "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cristianadrielbraun/qrstore/internal/storage"
)

func TestCleanPath(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"general/qr_1.png":  "general/qr_1.png",
		"/general/qr_1.png": "general/qr_1.png",
		"general//./x.png":  "general/x.png",
		"activation_code/A": "activation_code/A",
	} {
		got, err := storage.CleanPath(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	for _, bad := range []string{"", "/", "../x", "general/../../x", `general\x.png`, "."} {
		_, err := storage.CleanPath(bad)
		require.ErrorIs(t, err, storage.ErrInvalidPath, bad)
	}
}

func TestIsImagePath(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"general/qr_1.png", "/activation_code/ABC.png", "activation_code/A B.PNG"} {
		assert.True(t, storage.IsImagePath(ok), ok)
	}
	for _, bad := range []string{
		"general/.write-123", "general/.x.png", "general/.png", "general/a.txt",
		"other/a.png", "a.png", "general/sub/a.png", "../general/a.png", "",
	} {
		assert.False(t, storage.IsImagePath(bad), bad)
	}
}

func TestLocalStore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()

	store, err := storage.NewLocalStore(root)
	require.NoError(t, err)
	for _, dir := range []string{storage.DirActivationCode, storage.DirGeneral} {
		fi, err := os.Stat(filepath.Join(root, dir))
		require.NoError(t, err)
		assert.True(t, fi.IsDir())
	}

	data := []byte{0x89, 'P', 'N', 'G', 0, 1, 2}
	require.NoError(t, store.Write(ctx, "nested/deeper/x.png", data))

	ok, err := store.Exists(ctx, "nested/deeper/x.png")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(ctx, "nested")
	require.NoError(t, err)
	assert.False(t, ok, "directories are not objects")

	rc, err := store.Open(ctx, "nested/deeper/x.png")
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, data, got)

	_, err = store.Open(ctx, "general/missing.png")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.ErrorIs(t, store.Write(ctx, "../escape.png", data), storage.ErrInvalidPath)

	// No temp files are left beside the object.
	entries, err := os.ReadDir(filepath.Join(root, "nested", "deeper"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestNewLocalStoreRequiresRoot(t *testing.T) {
	t.Parallel()
	_, err := storage.NewLocalStore("")
	require.ErrorIs(t, err, storage.ErrInvalidConfig)
}

type apiError struct{ code string }

func (e apiError) Error() string                 { return e.code }
func (e apiError) ErrorCode() string             { return e.code }
func (e apiError) ErrorMessage() string          { return e.code }
func (e apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultServer }

type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	failPut error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(_ context.Context, in *s3aws.PutObjectInput, _ ...func(*s3aws.Options)) (*s3aws.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = b
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3aws.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(_ context.Context, in *s3aws.GetObjectInput, _ ...func(*s3aws.Options)) (*s3aws.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{}
	}
	return &s3aws.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(b))}, nil
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3aws.HeadObjectInput, _ ...func(*s3aws.Options)) (*s3aws.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3aws.HeadObjectOutput{}, nil
}

func TestS3Store(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := newFakeS3()

	store, err := storage.NewS3Store(ctx, storage.S3Config{Bucket: "qr", Region: "us-east-1", Prefix: "/codes/"}, storage.WithS3Client(fake))
	require.NoError(t, err)

	ok, err := store.Exists(ctx, "activation_code/A.png")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Write(ctx, "activation_code/A.png", []byte("img")))
	assert.Contains(t, fake.objects, "codes/activation_code/A.png")
	assert.Equal(t, "image/png", fake.types["codes/activation_code/A.png"])

	ok, err = store.Exists(ctx, "activation_code/A.png")
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := store.Open(ctx, "activation_code/A.png")
	require.NoError(t, err)
	b, _ := io.ReadAll(rc)
	assert.Equal(t, "img", string(b))

	_, err = store.Open(ctx, "activation_code/B.png")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.Exists(ctx, "../x")
	require.ErrorIs(t, err, storage.ErrInvalidPath)
}

func TestS3StoreClassifiesErrors(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	fake := newFakeS3()
	fake.failPut = apiError{code: "AccessDenied"}

	store, err := storage.NewS3Store(ctx, storage.S3Config{Bucket: "qr", Region: "eu-west-1"}, storage.WithS3Client(fake))
	require.NoError(t, err)

	err = store.Write(ctx, "general/qr_1.png", []byte("x"))
	require.ErrorIs(t, err, storage.ErrStorage)
	assert.Contains(t, err.Error(), "AccessDenied")

	_, err = storage.NewS3Store(ctx, storage.S3Config{})
	require.ErrorIs(t, err, storage.ErrInvalidConfig)
}
