package storage

import (
	"bytes"
	"chatline/domain/mimetypes"
	"chatline/errors"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

type S3Config struct {
	Region        string
	BaseEndpoint  string
	AccessKey     string
	SecretKey     string
	Bucket        string
	PublicBaseURL string
	MaxImageBytes int
}

type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores data URI images in an S3 compatible bucket.
type S3Uploader struct {
	log    *slog.Logger
	client objectPutter
	cfg    S3Config
	now    func() time.Time
}

func NewS3Uploader(ctx context.Context, log *slog.Logger, cfg S3Config) (*S3Uploader, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Uploader(log, client, cfg), nil
}

func newS3Uploader(log *slog.Logger, client objectPutter, cfg S3Config) *S3Uploader {
	return &S3Uploader{log: log, client: client, cfg: cfg, now: time.Now}
}

// Upload decodes dataURI, checks the payload really is an accepted image
// and stores it under a random key. It returns the public URL of the object.
func (u *S3Uploader) Upload(ctx context.Context, dataURI string) (string, error) {
	payload, err := DecodeDataURI(dataURI)
	if err != nil {
		return "", err
	}
	if u.cfg.MaxImageBytes > 0 && len(payload) > u.cfg.MaxImageBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", errors.ErrInvalidImage, len(payload), u.cfg.MaxImageBytes)
	}

	// The declared type of the data URI is not trusted
	detected := mimetype.Detect(payload)
	mt, ok := mimetypes.ToImage(detected.String())
	if !ok {
		return "", fmt.Errorf("%w: detected %s", errors.ErrInvalidImage, detected.String())
	}

	key := u.objectKey(mt)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(payload),
		ContentType:   aws.String(string(mt)),
		ContentLength: aws.Int64(int64(len(payload))),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", errors.ErrUpload, err)
	}

	u.log.Debug("Image uploaded", "key", key, "mime", mt, "size", len(payload))
	return strings.TrimRight(u.cfg.PublicBaseURL, "/") + "/" + key, nil
}

func (u *S3Uploader) objectKey(mt mimetypes.MIME) string {
	d := u.now().UTC()
	return fmt.Sprintf("images/%04d/%02d/%02d/%s%s", d.Year(), d.Month(), d.Day(), uuid.NewString(), mt.Extension())
}

// DecodeDataURI returns the bytes of a base64 data URI such as
// data:image/png;base64,iVBORw0...
func DecodeDataURI(dataURI string) ([]byte, error) {
	rest, ok := strings.CutPrefix(dataURI, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: missing data scheme", errors.ErrInvalidImage)
	}
	header, encoded, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(header, ";base64") {
		return nil, fmt.Errorf("%w: payload is not base64", errors.ErrInvalidImage)
	}
	payload, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidImage, err)
	}
	if len(payload) == 0 {
		return nil, fmt.Errorf("%w: empty payload", errors.ErrInvalidImage)
	}
	return payload, nil
}
