package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSStorage хранит файлы в MongoDB GridFS, имя файла = путь
type GridFSStorage struct {
	client  *mongo.Client
	bucket  *gridfs.Bucket
	baseURL string
}

type gridFSFile struct {
	ID     primitive.ObjectID `bson:"_id"`
	Length int64              `bson:"length"`
}

func NewGridFSStorage(cfg Config) (*GridFSStorage, error) {
	if cfg.MongoURI == "" {
		return nil, fmt.Errorf("mongo uri is required for GridFS storage")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	dbName := cfg.MongoDB
	if dbName == "" {
		dbName = "estate"
	}
	bucketName := cfg.Bucket
	if bucketName == "" {
		bucketName = "media"
	}

	bucket, err := gridfs.NewBucket(client.Database(dbName), options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "/storage"
	}

	return &GridFSStorage{client: client, bucket: bucket, baseURL: baseURL}, nil
}

// revisions возвращает все ревизии файла, новые первыми
func (s *GridFSStorage) revisions(ctx context.Context, path string) ([]gridFSFile, error) {
	cursor, err := s.bucket.FindContext(ctx, bson.M{"filename": path},
		options.GridFSFind().SetSort(bson.D{{Key: "uploadDate", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query gridfs: %w", err)
	}
	var files []gridFSFile
	if err := cursor.All(ctx, &files); err != nil {
		return nil, fmt.Errorf("failed to decode gridfs files: %w", err)
	}
	return files, nil
}

func (s *GridFSStorage) latest(ctx context.Context, path string) (*gridFSFile, error) {
	files, err := s.revisions(ctx, path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNotFound
	}
	return &files[0], nil
}

func (s *GridFSStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	old, err := s.revisions(ctx, path)
	if err != nil {
		return err
	}

	opts := options.GridFSUpload().SetMetadata(bson.M{"contentType": contentType})
	if _, err := s.bucket.UploadFromStream(path, reader, opts); err != nil {
		return fmt.Errorf("failed to upload to gridfs: %w", err)
	}

	for _, file := range old {
		if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to remove old gridfs revision: %w", err)
		}
	}
	return nil
}

func (s *GridFSStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	stream, err := s.bucket.OpenDownloadStreamByName(path)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to open gridfs stream: %w", err)
	}
	return stream, nil
}

func (s *GridFSStorage) Delete(ctx context.Context, path string) error {
	files, err := s.revisions(ctx, path)
	if err != nil {
		return err
	}
	for _, file := range files {
		if err := s.bucket.DeleteContext(ctx, file.ID); err != nil && !errors.Is(err, gridfs.ErrFileNotFound) {
			return fmt.Errorf("failed to delete gridfs file: %w", err)
		}
	}
	return nil
}

func (s *GridFSStorage) Exists(ctx context.Context, path string) (bool, error) {
	files, err := s.revisions(ctx, path)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// GetURL - GridFS не раздаёт файлы сам, их отдаёт /storage/*path
func (s *GridFSStorage) GetURL(ctx context.Context, path string) (string, error) {
	return joinURL(s.baseURL, path), nil
}

func (s *GridFSStorage) GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return s.GetURL(ctx, path)
}

func (s *GridFSStorage) GetSize(ctx context.Context, path string) (int64, error) {
	file, err := s.latest(ctx, path)
	if err != nil {
		return 0, err
	}
	return file.Length, nil
}

// Close закрывает соединение с MongoDB
func (s *GridFSStorage) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
