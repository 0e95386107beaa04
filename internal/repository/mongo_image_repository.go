package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"

	"estate/internal/model"
)

// ImagesBucket is the GridFS bucket holding uploaded images.
const ImagesBucket = "images"

type imageMetadata struct {
	ContentType string `bson:"contentType"`
	OwnerRef    string `bson:"ownerRef"`
}

type gridFSImageRepository struct {
	db *mongo.Database
}

// NewGridFSImageRepository stores images in a GridFS bucket.
func NewGridFSImageRepository(db *mongo.Database) ImageRepository {
	return &gridFSImageRepository{db: db}
}

// bucket opens a fresh bucket per call; deadlines are per-bucket state.
func (r *gridFSImageRepository) bucket(ctx context.Context) (*gridfs.Bucket, error) {
	bucket, err := gridfs.NewBucket(r.db, options.GridFSBucket().SetName(ImagesBucket))
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := bucket.SetReadDeadline(deadline); err != nil {
			return nil, err
		}
		if err := bucket.SetWriteDeadline(deadline); err != nil {
			return nil, err
		}
	}
	return bucket, nil
}

func (r *gridFSImageRepository) Create(ctx context.Context, image *model.Image) error {
	bucket, err := r.bucket(ctx)
	if err != nil {
		return err
	}

	fileID := primitive.NewObjectID()
	meta := imageMetadata{ContentType: image.ContentType, OwnerRef: image.OwnerRef}
	opts := options.GridFSUpload().SetMetadata(meta)

	if err := bucket.UploadFromStreamWithID(fileID, image.Filename, bytes.NewReader(image.Data), opts); err != nil {
		return fmt.Errorf("upload image: %w", err)
	}

	image.ID = fileID.Hex()
	image.Size = int64(len(image.Data))
	image.CreatedAt = mongoNow()
	return nil
}

func (r *gridFSImageRepository) FindByID(ctx context.Context, id string) (*model.Image, error) {
	fileID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	bucket, err := r.bucket(ctx)
	if err != nil {
		return nil, err
	}

	stream, err := bucket.OpenDownloadStream(fileID)
	if err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open image %s: %w", id, err)
	}
	defer stream.Close()

	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("read image %s: %w", id, err)
	}

	file := stream.GetFile()
	var meta imageMetadata
	if len(file.Metadata) > 0 {
		if err := bson.Unmarshal(file.Metadata, &meta); err != nil {
			return nil, fmt.Errorf("decode image metadata %s: %w", id, err)
		}
	}

	return &model.Image{
		ID:          id,
		Filename:    file.Name,
		ContentType: meta.ContentType,
		Size:        file.Length,
		OwnerRef:    meta.OwnerRef,
		Data:        data,
		CreatedAt:   file.UploadDate,
	}, nil
}
