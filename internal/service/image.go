package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/platemate/backend/config"
)

// ImageStore persists decoded recipe images and returns their public URL.
type ImageStore interface {
	Save(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// DecodedImage is the result of parsing a data-URI image payload.
type DecodedImage struct {
	Key         string
	Data        []byte
	ContentType string
}

// DecodeImage parses a `data:image/<ext>;base64,<payload>` URI into bytes
// named after the recipe. Anything else is a validation error.
func DecodeImage(imageData, name string) (*DecodedImage, error) {
	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, validationErr("image", "must be a data:image/...;base64 URI")
	}

	meta, payload, ok := strings.Cut(imageData, ";base64,")
	if !ok {
		return nil, validationErr("image", "missing base64 payload")
	}
	ext := strings.TrimPrefix(meta, "data:image/")
	if ext == "" || strings.ContainsAny(ext, "/\\") {
		return nil, validationErr("image", "unrecognized image format %q", ext)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, validationErr("image", "invalid base64 payload")
	}

	return &DecodedImage{
		Key:         fmt.Sprintf("recipes/%s.%s", sanitizeImageName(name), ext),
		Data:        data,
		ContentType: "image/" + ext,
	}, nil
}

func sanitizeImageName(name string) string {
	name = strings.TrimSpace(strings.ToLower(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return -1
	}, name)
	if name == "" {
		name = "recipe"
	}
	return name
}

// S3ImageStore stores images in the configured S3 bucket.
type S3ImageStore struct {
	s3Config *config.S3Config
}

func NewS3ImageStore(s3Config *config.S3Config) *S3ImageStore {
	return &S3ImageStore{s3Config: s3Config}
}

// Save uploads the image and returns its public URL.
func (s *S3ImageStore) Save(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("Uploaded recipe image to %s", publicURL)
	return publicURL, nil
}
