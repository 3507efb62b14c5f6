package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/stationhop/backend-go/internal/models"
)

// S3Client defines the S3 operations the loader needs.
type S3Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// catalogDocument is the persisted registry shape.
type catalogDocument struct {
	Stations []models.Station `json:"stations"`
}

// LoadFromJSON reads a station catalog document and builds a registry.
func LoadFromJSON(r io.Reader) (*Registry, error) {
	var doc catalogDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding station catalog: %w", err)
	}
	if len(doc.Stations) == 0 {
		return nil, fmt.Errorf("station catalog is empty")
	}
	return New(doc.Stations)
}

// S3Loader fetches the station catalog from an S3 bucket at startup.
type S3Loader struct {
	client     S3Client
	bucketName string
	key        string
}

func NewS3Loader(client S3Client, bucketName, key string) *S3Loader {
	if key == "" {
		key = "stations.json"
	}
	return &S3Loader{
		client:     client,
		bucketName: bucketName,
		key:        key,
	}
}

// Load fetches and indexes the catalog.
func (l *S3Loader) Load(ctx context.Context) (*Registry, error) {
	if l.bucketName == "" {
		return nil, fmt.Errorf("empty bucket name")
	}

	result, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(l.bucketName),
		Key:    aws.String(l.key),
	})
	if err != nil {
		return nil, fmt.Errorf("fetching station catalog from S3: %w", err)
	}
	defer func(body io.ReadCloser) {
		if closeErr := body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("Error closing S3 object body")
		}
	}(result.Body)

	registry, err := LoadFromJSON(result.Body)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("bucket", l.bucketName).
		Str("key", l.key).
		Int("station_count", registry.Len()).
		Msg("Loaded station catalog from S3")

	return registry, nil
}
