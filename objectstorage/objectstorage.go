// Package objectstorage stores and serves binary objects (donor avatars)
// behind an LRU cache, with a MongoDB backend by default and an optional S3
// backend.
package objectstorage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/bloodline/backend/db"
)

var (
	// ErrorObjectNotFound is returned when the requested object is not found in storage.
	ErrorObjectNotFound = fmt.Errorf("object not found")
	// ErrorInvalidObjectID is returned when the provided object ID is invalid or empty.
	ErrorInvalidObjectID = fmt.Errorf("invalid object ID")
	// ErrorFileTypeNotSupported is returned when the file type is not in the supported types list.
	ErrorFileTypeNotSupported = fmt.Errorf("file type not supported")
)

// ObjectFileType represents the MIME type of a stored object file.
type ObjectFileType string

const (
	// FileTypeJPEG represents the JPEG image MIME type.
	FileTypeJPEG ObjectFileType = "image/jpeg"
	// FileTypePNG represents the PNG image MIME type.
	FileTypePNG ObjectFileType = "image/png"
	// FileTypeJPG represents the JPG image MIME type.
	FileTypeJPG ObjectFileType = "image/jpg"
)

// DefaultSupportedFileTypes is a map of file types that are supported by default.
var DefaultSupportedFileTypes = map[ObjectFileType]bool{
	FileTypeJPEG: true,
	FileTypePNG:  true,
	FileTypeJPG:  true,
}

// Backend stores and retrieves raw objects by ID.
type Backend interface {
	GetObject(ctx context.Context, objectID string) (*db.Object, error)
	PutObject(ctx context.Context, object *db.Object) error
}

// Config holds the configuration for the object storage client. When S3 is
// nil, objects are stored in the MongoDB objects collection.
type Config struct {
	DB             *db.MongoStorage
	S3             *S3Config
	SupportedTypes []ObjectFileType
	ServerURL      string
}

// Client provides functionality for storing and retrieving objects through
// the configured backend, with an LRU cache in front.
type Client struct {
	db             *db.MongoStorage
	backend        Backend
	supportedTypes map[ObjectFileType]bool
	cache          *lru.Cache[string, db.Object]
	ServerURL      string
}

// New initializes a new object storage client with the provided
// configuration, selecting the S3 backend when configured and the MongoDB
// backend otherwise.
func New(conf *Config) (*Client, error) {
	if conf == nil || conf.DB == nil {
		return nil, fmt.Errorf("invalid object storage configuration")
	}
	supportedTypes := DefaultSupportedFileTypes
	for _, t := range conf.SupportedTypes {
		supportedTypes[t] = true
	}
	cache, err := lru.New[string, db.Object](256)
	if err != nil {
		return nil, fmt.Errorf("cannot create cache: %w", err)
	}
	var backend Backend = &mongoBackend{db: conf.DB}
	if conf.S3 != nil {
		if backend, err = newS3Backend(conf.S3); err != nil {
			return nil, fmt.Errorf("cannot create s3 backend: %w", err)
		}
	}
	return &Client{
		db:             conf.DB,
		backend:        backend,
		supportedTypes: supportedTypes,
		cache:          cache,
		ServerURL:      conf.ServerURL,
	}, nil
}

// Get retrieves an object from storage by its ID. It first checks the cache,
// and if not found, retrieves it from the backend. Returns the object or an
// error if not found or invalid.
func (osc *Client) Get(objectID string) (*db.Object, error) {
	if objectID == "" {
		return nil, ErrorInvalidObjectID
	}

	// check if the object is in the cache
	if object, ok := osc.cache.Get(objectID); ok {
		return &object, nil
	}

	object, err := osc.backend.GetObject(context.Background(), objectID)
	if err != nil {
		if err == db.ErrNotFound {
			return nil, ErrorObjectNotFound
		}
		return nil, fmt.Errorf("error retrieving object: %w", err)
	}

	// store the object in the cache
	osc.cache.Add(objectID, *object)

	return object, nil
}

// Put uploads an image associated to a user (free-form string). It
// calculates the objectID from the data and uses that as filename, so the
// same bytes always map to the same object. It returns the stored file name
// (objectID plus extension). If an error occurs, it returns an empty string
// and the error.
func (osc *Client) Put(data io.Reader, size int64, user string) (string, error) {
	buff := make([]byte, size)
	if _, err := io.ReadFull(data, buff); err != nil {
		return "", fmt.Errorf("cannot read file: %w", err)
	}
	// checking the content type so we don't allow files other than images
	filetype := http.DetectContentType(buff)
	if !osc.supportedTypes[ObjectFileType(filetype)] {
		return "", ErrorFileTypeNotSupported
	}
	// extract the extension from the filetype
	fileExtension := strings.Split(filetype, "/")[1]

	objectID := calculateObjectID(buff)
	object := &db.Object{
		ID:          objectID,
		Data:        buff,
		UserID:      user,
		ContentType: filetype,
	}
	if err := osc.backend.PutObject(context.Background(), object); err != nil {
		return "", fmt.Errorf("cannot set object: %w", err)
	}
	return fmt.Sprintf("%s.%s", objectID, fileExtension), nil
}

// calculateObjectID calculates the objectID from the given data. The
// objectID is the hex of the first 12 bytes of the md5 hash of the data.
func calculateObjectID(data []byte) string {
	hash := md5.Sum(data)
	return hex.EncodeToString(hash[:12])
}

// mongoBackend stores objects in the MongoDB objects collection.
type mongoBackend struct {
	db *db.MongoStorage
}

func (b *mongoBackend) GetObject(_ context.Context, objectID string) (*db.Object, error) {
	return b.db.Object(objectID)
}

func (b *mongoBackend) PutObject(_ context.Context, object *db.Object) error {
	return b.db.SetObject(object.ID, object.UserID, object.ContentType, object.Data)
}
