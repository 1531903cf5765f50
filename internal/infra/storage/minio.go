package storage

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	domain "github.com/bryanwahyu/aidetect/internal/domain/analysis"
)

// Archive menyimpan full text yang dianalisa ke MinIO / S3
type Archive struct {
	client     *minio.Client
	bucketName string
	region     string
	prefix     string
}

var _ domain.TextArchive = (*Archive)(nil)

type Options struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Prefix    string
}

// New buat koneksi MinIO
func New(ctx context.Context, o Options) (*Archive, error) {
	cli, err := minio.New(o.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(o.AccessKey, o.SecretKey, ""),
		Secure: o.UseSSL,
		Region: o.Region,
	})
	if err != nil {
		return nil, err
	}

	// pastikan bucket ada
	exists, err := cli.BucketExists(ctx, o.Bucket)
	if err != nil {
		return nil, err
	}
	if !exists {
		if err := cli.MakeBucket(ctx, o.Bucket, minio.MakeBucketOptions{Region: o.Region}); err != nil {
			return nil, err
		}
	}

	return &Archive{client: cli, bucketName: o.Bucket, region: o.Region, prefix: o.Prefix}, nil
}

// Put upload text ke <prefix>/<fp[0:2]>/<fp>.txt. Same fingerprint, same key, so a
// retry just overwrites identical bytes.
func (a *Archive) Put(ctx context.Context, fp domain.Fingerprint, text string) (string, error) {
	key := ObjectKey(a.prefix, fp)
	_, err := a.client.PutObject(ctx, a.bucketName, key, strings.NewReader(text), int64(len(text)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	// URL publik (jika bucket public), kalau private harus generate presigned URL
	return fmt.Sprintf("%s/%s/%s", a.client.EndpointURL().String(), a.bucketName, key), nil
}

func ObjectKey(prefix string, fp domain.Fingerprint) string {
	s := string(fp)
	shard := s
	if len(s) >= 2 {
		shard = s[:2]
	}
	return path.Join(prefix, shard, s+".txt")
}
