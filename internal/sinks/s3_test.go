package sinks

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUploader struct {
	uploads []mockUpload
	err     error
}

type mockUpload struct {
	bucket      string
	key         string
	body        []byte
	contentType string
}

func (m *mockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	if m.err != nil {
		return nil, m.err
	}
	body, _ := io.ReadAll(input.Body)
	upload := mockUpload{
		bucket: *input.Bucket,
		key:    *input.Key,
		body:   body,
	}
	if input.ContentType != nil {
		upload.contentType = *input.ContentType
	}
	m.uploads = append(m.uploads, upload)
	return &manager.UploadOutput{}, nil
}

func TestS3Sink_Name(t *testing.T) {
	tests := []struct {
		name     string
		bucket   string
		prefix   string
		expected string
	}{
		{
			name:     "bucket only",
			bucket:   "archives",
			prefix:   "",
			expected: "s3(archives)",
		},
		{
			name:     "bucket with prefix",
			bucket:   "archives",
			prefix:   "nightly/bundles",
			expected: "s3(archives/nightly/bundles)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := NewS3SinkWithUploader(tt.bucket, tt.prefix, &mockUploader{})
			assert.Equal(t, tt.expected, sink.Name())
		})
	}
}

func TestS3Sink_Write(t *testing.T) {
	tests := []struct {
		name        string
		prefix      string
		path        string
		expectedKey string
	}{
		{
			name:        "without prefix",
			prefix:      "",
			path:        "bundle.zip",
			expectedKey: "bundle.zip",
		},
		{
			name:        "with prefix",
			prefix:      "exports/2026",
			path:        "bundle.zip",
			expectedKey: "exports/2026/bundle.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uploader := &mockUploader{}
			sink := NewS3SinkWithUploader("archives", tt.prefix, uploader)

			err := sink.Write(t.Context(), tt.path, strings.NewReader("zip bytes"))
			require.NoError(t, err)

			require.Len(t, uploader.uploads, 1)
			upload := uploader.uploads[0]
			assert.Equal(t, "archives", upload.bucket)
			assert.Equal(t, tt.expectedKey, upload.key)
			assert.Equal(t, "zip bytes", string(upload.body))
			assert.Equal(t, zipContentType, upload.contentType)
		})
	}
}

func TestS3Sink_WriteError(t *testing.T) {
	boom := errors.New("access denied")
	sink := NewS3SinkWithUploader("archives", "", &mockUploader{err: boom})

	err := sink.Write(t.Context(), "bundle.zip", strings.NewReader("zip bytes"))
	assert.ErrorIs(t, err, boom)
}
