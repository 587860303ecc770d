package backup

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"

	"github.com/example/workoutbot/internal/store"
	"github.com/example/workoutbot/pkg/models"
)

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func TestUploaderUpload(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "workouts.json"), true)
	require.NoError(t, err)
	_, err = st.Create(ctx, "42", "Al")
	require.NoError(t, err)

	putter := &fakePutter{}
	u := NewUploader(putter, "backups", "workoutbot")
	u.now = func() time.Time { return time.Date(2024, time.March, 5, 6, 7, 8, 0, time.UTC) }

	key, err := u.Upload(ctx, st)
	require.NoError(t, err)
	require.Equal(t, "workoutbot/2024/03/05/workouts-20240305T060708Z.json", key)

	require.Len(t, putter.inputs, 1)
	require.Equal(t, "backups", aws.ToString(putter.inputs[0].Bucket))
	require.Equal(t, key, aws.ToString(putter.inputs[0].Key))

	var doc models.Document
	require.NoError(t, json.Unmarshal(putter.bodies[0], &doc))
	require.Equal(t, "Al", doc.Users["42"].Username)
}

func TestUploaderUploadError(t *testing.T) {
	ctx := context.Background()
	st, err := store.OpenFile(filepath.Join(t.TempDir(), "workouts.json"), true)
	require.NoError(t, err)

	u := NewUploader(&fakePutter{err: errors.New("access denied")}, "backups", "")
	_, err = u.Upload(ctx, st)
	require.ErrorContains(t, err, "access denied")
}
