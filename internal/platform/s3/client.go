package s3

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/go-logr/logr"
)

// defaultRegion is the region where CreateBucket rejects a location constraint.
const defaultRegion = "us-east-1"

// Client wraps the S3 client for the log-storage bucket.
type Client struct {
	s3     *s3.Client
	region string
	log    logr.Logger
}

// Option customizes the S3 client.
type Option func(*s3.Options)

// WithEndpoint points the client at an S3-compatible endpoint using path-style
// addressing.
func WithEndpoint(endpoint string) Option {
	return func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	}
}

// NewClient creates a client authenticated with static credentials.
func NewClient(ctx context.Context, region, accessKey, secretKey string, log logr.Logger, opts ...Option) (*Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKey, secretKey, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		for _, opt := range opts {
			opt(o)
		}
	})
	return &Client{s3: client, region: region, log: log}, nil
}

// EnsureBucket creates the bucket with default encryption when it does not
// exist yet.
func (c *Client) EnsureBucket(ctx context.Context, bucketName string) error {
	exists, err := c.BucketExists(ctx, bucketName)
	if err != nil {
		return err
	}
	if exists {
		c.log.V(1).Info("bucket already exists", "bucket", bucketName)
		return nil
	}

	if err := c.CreateBucket(ctx, bucketName); err != nil {
		return err
	}
	if err := c.EnableEncryption(ctx, bucketName); err != nil {
		return err
	}
	c.log.Info("bucket created", "bucket", bucketName, "region", c.region)
	return nil
}

// CreateBucket creates a bucket in the client region. A bucket already owned
// by the caller is not an error.
func (c *Client) CreateBucket(ctx context.Context, bucketName string) error {
	input := &s3.CreateBucketInput{Bucket: aws.String(bucketName)}
	if c.region != "" && c.region != defaultRegion {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(c.region),
		}
	}

	if _, err := c.s3.CreateBucket(ctx, input); err != nil {
		if isBucketAlreadyOwnedByYou(err) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
	}
	return nil
}

// EnableEncryption turns on SSE-S3 default encryption.
func (c *Client) EnableEncryption(ctx context.Context, bucketName string) error {
	_, err := c.s3.PutBucketEncryption(ctx, &s3.PutBucketEncryptionInput{
		Bucket: aws.String(bucketName),
		ServerSideEncryptionConfiguration: &types.ServerSideEncryptionConfiguration{
			Rules: []types.ServerSideEncryptionRule{{
				ApplyServerSideEncryptionByDefault: &types.ServerSideEncryptionByDefault{
					SSEAlgorithm: types.ServerSideEncryptionAes256,
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to enable encryption on bucket %s: %w", bucketName, err)
	}
	return nil
}

// BucketExists checks if a bucket exists and is accessible.
func (c *Client) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	_, err := c.s3.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucketName)})
	if err != nil {
		if isNotFoundError(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check bucket %s: %w", bucketName, err)
	}
	return true, nil
}

func isBucketAlreadyOwnedByYou(err error) bool {
	var owned *types.BucketAlreadyOwnedByYou
	if errors.As(err, &owned) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode() == "BucketAlreadyOwnedByYou"
	}
	return false
}

func isNotFoundError(err error) bool {
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket"
	}
	return false
}
