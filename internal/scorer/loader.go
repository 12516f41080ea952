package scorer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const s3Scheme = "s3://"

// maxArtifactSize bounds how much of an artifact is read.
const maxArtifactSize = 8 << 20

// ObjectStoreConfig holds credentials for s3:// artifact URIs.
type ObjectStoreConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// objectGetter is the subset of the MinIO client used to fetch artifacts.
type objectGetter interface {
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error)
}

type minioGetter struct{ c *minio.Client }

func (g minioGetter) GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	obj, err := g.c.GetObject(ctx, bucket, object, opts)
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// Load reads and validates the artifact at uri, a filesystem path or an
// s3://bucket/key URI.
func Load(ctx context.Context, uri string, store ObjectStoreConfig) (*Pipeline, error) {
	if !strings.HasPrefix(uri, s3Scheme) {
		return LoadFile(uri)
	}

	client, err := minio.New(store.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(store.AccessKey, store.SecretKey, ""),
		Secure: store.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage client: %w", err)
	}
	return loadObject(ctx, minioGetter{c: client}, uri)
}

// LoadFile reads an artifact from the local filesystem.
func LoadFile(path string) (*Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model artifact: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

func loadObject(ctx context.Context, getter objectGetter, uri string) (*Pipeline, error) {
	bucket, key, err := parseS3URI(uri)
	if err != nil {
		return nil, err
	}

	obj, err := getter.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get model artifact %s: %w", uri, err)
	}
	defer obj.Close()

	return Decode(obj)
}

// Decode parses a JSON artifact and builds the pipeline.
func Decode(r io.Reader) (*Pipeline, error) {
	var a Artifact
	dec := json.NewDecoder(io.LimitReader(r, maxArtifactSize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("failed to decode model artifact: %w", err)
	}

	p, err := New(a)
	if err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}
	return p, nil
}

func parseS3URI(uri string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid object URI %q, want s3://bucket/key", uri)
	}
	return bucket, key, nil
}
