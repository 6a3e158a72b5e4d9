package assets

import (
	"bytes"
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"regexp"

	"git.nextdev.network/nextdev/nextdev/src/config"
	"git.nextdev.network/nextdev/nextdev/src/db"
	"git.nextdev.network/nextdev/nextdev/src/models"
	"git.nextdev.network/nextdev/nextdev/src/oops"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"
)

var client *s3.Client

func init() {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				config.Config.Spaces.Key,
				config.Config.Spaces.Secret,
				"",
			),
		),
		awsconfig.WithRegion(config.Config.Spaces.Region),
		awsconfig.WithEndpointResolver(aws.EndpointResolverFunc(func(service, region string) (aws.Endpoint, error) {
			return aws.Endpoint{
				URL: config.Config.Spaces.Endpoint,
			}, nil
		})),
	)
	if err != nil {
		panic(err)
	}
	client = s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})
}

type CreateInput struct {
	Content     []byte
	Filename    string
	ContentType string

	UploaderID *int
}

var REIllegalFilenameChars = regexp.MustCompile(`[^\w\-.]`)

func SanitizeFilename(filename string) string {
	if filename == "" {
		return "unnamed"
	}
	return REIllegalFilenameChars.ReplaceAllString(filename, "_")
}

func AssetKey(id, filename string) string {
	return fmt.Sprintf("%s/%s", id, filename)
}

// The public URL an asset can be fetched from.
func AssetURL(s3key string) string {
	return fmt.Sprintf("%s/%s/%s", config.Config.Spaces.Endpoint, config.Config.Spaces.Bucket, s3key)
}

type InvalidAssetError error

// Uploads a file to bucket storage and records it in the asset table.
func Create(ctx context.Context, dbConn db.ConnOrTx, in CreateInput) (*models.Asset, error) {
	filename := SanitizeFilename(in.Filename)

	if len(in.Content) == 0 {
		return nil, InvalidAssetError(fmt.Errorf("could not upload asset '%s': no bytes of data were provided", filename))
	}
	if in.ContentType == "" {
		return nil, InvalidAssetError(fmt.Errorf("could not upload asset '%s': no content type provided", filename))
	}

	id := uuid.New()
	key := AssetKey(id.String(), filename)
	checksum := fmt.Sprintf("%x", sha1.Sum(in.Content))

	upload := func() error {
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      &config.Config.Spaces.Bucket,
			Key:         &key,
			Body:        bytes.NewReader(in.Content),
			ACL:         types.ObjectCannedACLPublicRead,
			ContentType: &in.ContentType,
		})
		return err
	}

	err := upload()
	if err != nil {
		var apiError smithy.APIError
		if errors.As(err, &apiError) && apiError.ErrorCode() == "NoSuchBucket" {
			_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: &config.Config.Spaces.Bucket,
			})
			if err != nil {
				return nil, oops.New(err, "failed to create assets bucket")
			}

			err = upload()
			if err != nil {
				return nil, oops.New(err, "failed to upload asset")
			}
		} else {
			return nil, oops.New(err, "failed to upload asset")
		}
	}

	asset, err := db.QueryOne[models.Asset](ctx, dbConn,
		`
		INSERT INTO asset (id, s3_key, filename, size, mime_type, sha1sum, uploader_id)
		VALUES            ($1, $2,     $3,       $4,   $5,        $6,      $7)
		RETURNING $columns
		`,
		id,
		key,
		filename,
		len(in.Content),
		in.ContentType,
		checksum,
		in.UploaderID,
	)
	if err != nil {
		return nil, oops.New(err, "failed to save asset record")
	}

	return asset, nil
}

// Removes an asset from both bucket storage and the database. The S3 delete
// goes first; if it fails, the record stays and the operation can be
// retried.
func Delete(ctx context.Context, dbConn db.ConnOrTx, asset *models.Asset) error {
	_, err := client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: &config.Config.Spaces.Bucket,
		Key:    &asset.S3Key,
	})
	if err != nil {
		return oops.New(err, "failed to delete asset from storage")
	}

	_, err = dbConn.Exec(ctx, `DELETE FROM asset WHERE id = $1`, asset.ID)
	if err != nil {
		return oops.New(err, "failed to delete asset record")
	}

	return nil
}

// Returns db.NotFound if no result is found.
func Fetch(ctx context.Context, dbConn db.ConnOrTx, assetID uuid.UUID) (*models.Asset, error) {
	asset, err := db.QueryOne[models.Asset](ctx, dbConn,
		`SELECT $columns FROM asset WHERE id = $1`,
		assetID,
	)
	if err != nil {
		if errors.Is(err, db.NotFound) {
			return nil, err
		}
		return nil, oops.New(err, "failed to fetch asset")
	}
	return asset, nil
}
