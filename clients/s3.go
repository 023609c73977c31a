// Package clients holds thin wrappers over external storage SDKs. S3 is
// the only one wired so far: an optional mirror of finished clips to
// S3-compatible storage, enabled by setting config.Cli.S3BucketURL.
package clients

import (
	"net/url"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3 is the seam worker.uploadClips mirrors finished clips through.
// Kept to exactly what that caller uses, so a test fake only needs one
// method.
type S3 interface {
	UploadFile(bucket, key, path string) error
}

type S3Client struct {
	S3 *s3.S3
}

// NewS3Client builds an S3Client using the SDK's default credential and
// region resolution chain (env vars, shared config, instance profile).
func NewS3Client() (*S3Client, error) {
	sess, err := session.NewSession(&aws.Config{})
	if err != nil {
		return nil, err
	}
	return &S3Client{S3: s3.New(sess)}, nil
}

// UploadFile puts the file at path to bucket under key, used to mirror
// a finished clip to S3-compatible storage after a job completes.
func (c *S3Client) UploadFile(bucket, key, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return err
	}

	_, err = c.S3.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          f,
		ContentLength: aws.Int64(stat.Size()),
	})
	return err
}

// BucketNameFromURL extracts the bucket name from a "s3://bucket-name"
// style URL, falling back to the raw value if it doesn't parse as one.
func BucketNameFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
