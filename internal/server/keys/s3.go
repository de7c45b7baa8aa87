package keys

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/osavchuk/authsvc/internal/common"
)

// S3Config locates key material in an S3-compatible bucket: one private key
// object plus zero or more retired public key objects under a prefix. Keeping
// keys in a shared bucket lets every instance pick up a rotation without a
// redeploy.
type S3Config struct {
	Bucket           string
	Region           string
	RootUser         string
	RootPassword     string
	BaseEndpoint     string
	PrivateKeyObject string
	PublicKeyPrefix  string
}

// s3API is the subset of the S3 client used here.
type s3API interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// seams for testing
var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3Client = func(cfg aws.Config, baseEndpoint string) s3API {
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			if baseEndpoint != "" {
				o.BaseEndpoint = aws.String(baseEndpoint)
			}
		})
	}
)

// NewSetFromS3 fetches PEM material from the configured bucket and assembles
// a key Set from it.
func NewSetFromS3(ctx context.Context, cfg S3Config) (*Set, error) {
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.RootUser,
			cfg.RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("%w: aws config: %v", common.ErrKeyMaterial, err)
	}

	client := newS3Client(awsCfg, cfg.BaseEndpoint)

	privatePEM, err := fetchObject(ctx, client, cfg.Bucket, cfg.PrivateKeyObject)
	if err != nil {
		return nil, err
	}

	retired, err := fetchRetiredKeys(ctx, client, cfg)
	if err != nil {
		return nil, err
	}

	return NewSet(privatePEM, retired...)
}

func fetchRetiredKeys(ctx context.Context, client s3API, cfg S3Config) ([][]byte, error) {
	if cfg.PublicKeyPrefix == "" {
		return nil, nil
	}

	listed, err := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(cfg.Bucket),
		Prefix: aws.String(cfg.PublicKeyPrefix),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", common.ErrKeyMaterial, cfg.PublicKeyPrefix, err)
	}

	var retired [][]byte
	for _, obj := range listed.Contents {
		key := aws.ToString(obj.Key)
		if !strings.HasSuffix(key, ".pem") {
			continue
		}
		raw, err := fetchObject(ctx, client, cfg.Bucket, key)
		if err != nil {
			return nil, err
		}
		retired = append(retired, raw)
	}
	return retired, nil
}

func fetchObject(ctx context.Context, client s3API, bucket, key string) ([]byte, error) {
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", common.ErrKeyMaterial, key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", common.ErrKeyMaterial, key, err)
	}
	return raw, nil
}
