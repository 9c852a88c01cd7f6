package utils

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// DecodedImage is the payload of a "data:<mime>;base64,<data>" URI.
type DecodedImage struct {
	ContentType string
	Ext         string
	Data        []byte
}

// MaxImageBytes caps a decoded upload.
const MaxImageBytes = 10 << 20

var ErrImageTooLarge = errors.New("image too large")

// DecodeDataURI accepts a data URI or bare base64 (assumed JPEG).
func DecodeDataURI(s string) (*DecodedImage, error) {
	contentType := "image/jpeg"
	data := s
	if strings.HasPrefix(s, "data:") {
		parts := strings.SplitN(s, ",", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid base64 image")
		}
		mediaType := strings.TrimPrefix(parts[0], "data:")
		contentType = strings.SplitN(mediaType, ";", 2)[0]
		data = parts[1]
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("unsupported content type %q", contentType)
	}
	data = strings.TrimSpace(data)
	if base64.StdEncoding.DecodedLen(len(data)) > MaxImageBytes {
		return nil, fmt.Errorf("%w: limit is %d MB", ErrImageTooLarge, MaxImageBytes>>20)
	}
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	var ext string
	switch contentType {
	case "image/jpeg", "image/jpg":
		ext = ".jpg"
	default:
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			ext = exts[0]
		} else if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 {
			ext = "." + parts[1]
		}
	}
	return &DecodedImage{ContentType: contentType, Ext: ext, Data: raw}, nil
}

// S3Uploader stores images in a bucket served through CloudFront.
type S3Uploader struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

func NewS3Uploader(cfg aws.Config, bucket, cloudfrontURL string) *S3Uploader {
	return &S3Uploader{
		client:  s3.NewFromConfig(cfg),
		bucket:  bucket,
		baseURL: strings.TrimRight(cloudfrontURL, "/"),
	}
}

// UploadImage puts img under prefix/ and returns its public URL.
func (u *S3Uploader) UploadImage(ctx context.Context, img *DecodedImage, prefix string) (string, error) {
	key := fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), img.Ext)
	_, err := u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType),
		ACL:         s3types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}
	return fmt.Sprintf("%s/%s", u.baseURL, key), nil
}
