package minio_storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"path/filepath"

	"github.com/minio/minio-go/v7"
)

// Key prefixes of the paper archive.
const (
	RawPrefix       = "past_papers_raw/"
	TextPrefix      = "past_papers_text/"
	QuestionsPrefix = "processed_questions/"
)

// PaperArchive stores exam papers, their extracted text and generated question batches.
type PaperArchive struct {
	storage *MinioStorage
	bucket  string
}

func NewPaperArchive(ctx context.Context, storage *MinioStorage, bucketName string) (*PaperArchive, error) {
	if err := storage.ensureBucket(ctx, bucketName); err != nil {
		return nil, err
	}
	return &PaperArchive{storage: storage, bucket: bucketName}, nil
}

func (a *PaperArchive) Put(ctx context.Context, key string, data []byte) error {
	contentType := mime.TypeByExtension(path.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := a.storage.client.PutObject(
		ctx,
		a.bucket,
		key,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// PutFile uploads a local file as prefix + its base name and returns the object key.
func (a *PaperArchive) PutFile(ctx context.Context, prefix, localPath string) (string, error) {
	key := prefix + filepath.Base(localPath)
	contentType := mime.TypeByExtension(filepath.Ext(localPath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if _, err := a.storage.client.FPutObject(ctx, a.bucket, key, localPath, minio.PutObjectOptions{ContentType: contentType}); err != nil {
		return "", fmt.Errorf("upload %s: %w", localPath, err)
	}
	return key, nil
}

// List returns the keys stored under prefix.
func (a *PaperArchive) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	for obj := range a.storage.client.ListObjects(ctx, a.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

func (a *PaperArchive) Get(ctx context.Context, key string) ([]byte, error) {
	obj, err := a.storage.client.GetObject(ctx, a.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, fmt.Errorf("get %s: %w", key, os.ErrNotExist)
		}
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}
