package storage

import (
	"chatline/errors"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

// Smallest valid PNG signature plus IHDR chunk header, enough for sniffing.
var pngBytes = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
}

type fakePutter struct {
	inputs []*s3.PutObjectInput
	bodies [][]byte
	err    error
}

func (f *fakePutter) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, _ := io.ReadAll(in.Body)
	f.inputs = append(f.inputs, in)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func dataURI(mime string, payload []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(payload)
}

func newTestUploader(putter *fakePutter) *S3Uploader {
	u := newS3Uploader(slog.Default(), putter, S3Config{
		Bucket:        "chat",
		PublicBaseURL: "https://cdn.example.com/chat/",
		MaxImageBytes: 1024,
	})
	u.now = func() time.Time { return time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC) }
	return u
}

func TestDecodeDataURI(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		wantErr bool
	}{
		{"valid", dataURI("image/png", pngBytes), false},
		{"no scheme", "image/png;base64,AAAA", true},
		{"not base64", "data:image/png,AAAA", true},
		{"broken base64", "data:image/png;base64,@@@", true},
		{"empty payload", "data:image/png;base64,", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			payload, err := DecodeDataURI(tt.uri)
			if tt.wantErr {
				req.ErrorIs(err, errors.ErrInvalidImage)
				return
			}
			req.NoError(err)
			req.Equal(pngBytes, payload)
		})
	}
}

func TestS3Uploader_Upload(t *testing.T) {
	req := require.New(t)
	putter := &fakePutter{}
	uploader := newTestUploader(putter)

	// When a png is uploaded, even declared with another type
	url, err := uploader.Upload(context.Background(), dataURI("image/gif", pngBytes))

	// Then the sniffed type wins
	req.NoError(err)
	req.Len(putter.inputs, 1)
	in := putter.inputs[0]
	req.Equal("chat", *in.Bucket)
	req.Equal("image/png", *in.ContentType)
	req.True(strings.HasPrefix(*in.Key, "images/2026/03/07/"))
	req.True(strings.HasSuffix(*in.Key, ".png"))
	req.Equal(pngBytes, putter.bodies[0])
	req.Equal("https://cdn.example.com/chat/"+*in.Key, url)
}

func TestS3Uploader_Rejects_Non_Images(t *testing.T) {
	req := require.New(t)
	putter := &fakePutter{}
	uploader := newTestUploader(putter)

	_, err := uploader.Upload(context.Background(), dataURI("image/png", []byte("just some text, not a picture")))

	req.ErrorIs(err, errors.ErrInvalidImage)
	req.Empty(putter.inputs)
}

func TestS3Uploader_Rejects_Oversized_Images(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(&fakePutter{})
	big := append(append([]byte{}, pngBytes...), make([]byte, 2048)...)

	_, err := uploader.Upload(context.Background(), dataURI("image/png", big))

	req.ErrorIs(err, errors.ErrInvalidImage)
}

func TestS3Uploader_Store_Failure(t *testing.T) {
	req := require.New(t)
	uploader := newTestUploader(&fakePutter{err: fmt.Errorf("connection refused")})

	_, err := uploader.Upload(context.Background(), dataURI("image/png", pngBytes))

	req.ErrorIs(err, errors.ErrUpload)
}
