package storage

import (
	"fmt"
	"mime/multipart"
	"path/filepath"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/google/uuid"
)

// Uploader stores an uploaded file under the given key prefix and returns its
// public URL. Handlers depend on this interface so tests can inject a fake.
type Uploader interface {
	Upload(file *multipart.FileHeader, keyPrefix string) (string, error)
}

type S3Uploader struct {
	sess      *session.Session
	bucket    string
	region    string
	publicURL string
}

func NewS3Uploader(bucket, region, publicURL string) (*S3Uploader, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(region),
	})
	if err != nil {
		return nil, err
	}

	return &S3Uploader{
		sess:      sess,
		bucket:    bucket,
		region:    region,
		publicURL: publicURL,
	}, nil
}

func (u *S3Uploader) Upload(file *multipart.FileHeader, keyPrefix string) (string, error) {
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	key := fmt.Sprintf("%s/%s%s", keyPrefix, uuid.NewString(), filepath.Ext(file.Filename))

	svc := s3.New(u.sess)
	_, err = svc.PutObject(&s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        src,
		ContentType: aws.String(file.Header.Get("Content-Type")),
		ACL:         aws.String("public-read"),
	})
	if err != nil {
		return "", err
	}

	if u.publicURL != "" {
		return u.publicURL + "/" + key, nil
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", u.bucket, u.region, key), nil
}
