package catalogstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/korssa/gong34/internal/common"
	"github.com/korssa/gong34/internal/models"
	"github.com/korssa/gong34/internal/s3x"
)

type fakeObjects struct {
	s3x.ObjectAPI

	body   string
	getErr error
	putErr error

	putKey  string
	putBody string
}

func (f *fakeObjects) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func (f *fakeObjects) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putKey = aws.ToString(in.Key)
	b, _ := io.ReadAll(in.Body)
	f.putBody = string(b)
	return &s3.PutObjectOutput{}, nil
}

func TestS3Store_Load(t *testing.T) {
	f := &fakeObjects{body: `[{"id":"a","name":"Alpha"}]`}
	s := NewS3Store(f, "gallery", "apps.json")

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Alpha", got[0].Name)
}

func TestS3Store_Load_MissingObjectIsEmpty(t *testing.T) {
	s := NewS3Store(&fakeObjects{getErr: &types.NoSuchKey{}}, "gallery", "apps.json")

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestS3Store_Load_Errors(t *testing.T) {
	_, err := NewS3Store(&fakeObjects{getErr: errors.New("dial tcp")}, "b", "k").Load(context.Background())
	assert.ErrorIs(t, err, common.ErrSync)

	_, err = NewS3Store(&fakeObjects{body: `{"not":"a list"}`}, "b", "k").Load(context.Background())
	assert.ErrorIs(t, err, common.ErrSync)
}

func TestS3Store_Save(t *testing.T) {
	f := &fakeObjects{}
	s := NewS3Store(f, "gallery", "apps.json")

	require.NoError(t, s.Save(context.Background(), []models.CatalogEntry{{ID: "a"}}))
	assert.Equal(t, "apps.json", f.putKey)
	assert.Contains(t, f.putBody, `"id":"a"`)

	require.NoError(t, s.Save(context.Background(), nil))
	assert.Equal(t, "[]", f.putBody)

	f.putErr = errors.New("denied")
	assert.ErrorIs(t, s.Save(context.Background(), nil), common.ErrSync)
}

func TestNopStore(t *testing.T) {
	var s Store = NopStore{}
	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, s.Save(context.Background(), []models.CatalogEntry{{ID: "x"}}))
}
