package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/hupe1980/tinydb/blobstore"
)

const (
	attrName      = "name"
	attrData      = "data"
	attrUpdatedAt = "updated_at"

	// MaxBlobSize is the largest blob Put accepts. It leaves headroom below
	// the 400KB DynamoDB item limit for the key and bookkeeping attributes.
	MaxBlobSize = 400*1024 - 1024
)

// ErrBlobTooLarge is returned by Put when the blob exceeds MaxBlobSize.
var ErrBlobTooLarge = errors.New("dynamodb: blob exceeds item size limit")

// Client is the subset of the DynamoDB API the store uses. *dynamodb.Client satisfies it.
type Client interface {
	dynamodb.ScanAPIClient
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Store implements blobstore.BlobStore on a DynamoDB table.
type Store struct {
	client Client
	table  string
	prefix string
}

// NewStore creates a new DynamoDB blob store.
// rootPrefix is prepended to every item name.
func NewStore(client Client, table, rootPrefix string) *Store {
	return &Store{
		client: client,
		table:  table,
		prefix: rootPrefix,
	}
}

// Options configures New.
type Options struct {
	Prefix   string
	Region   string
	Endpoint string
}

// Option configures New.
type Option func(*Options)

// WithPrefix sets the item name prefix.
func WithPrefix(prefix string) Option {
	return func(o *Options) { o.Prefix = prefix }
}

// WithRegion overrides the AWS region.
func WithRegion(region string) Option {
	return func(o *Options) { o.Region = region }
}

// WithEndpoint points the client at a custom endpoint (DynamoDB Local, LocalStack).
func WithEndpoint(endpoint string) Option {
	return func(o *Options) { o.Endpoint = endpoint }
}

// New creates a store using the default AWS configuration chain.
func New(ctx context.Context, table string, optFns ...Option) (*Store, error) {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("dynamodb: load aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return NewStore(client, table, opts.Prefix), nil
}

func (s *Store) key(name string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		attrName: &types.AttributeValueMemberS{Value: s.prefix + name},
	}
}

// Open fetches the item with a strongly consistent read.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(name),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, blobstore.ErrNotFound
	}

	data, ok := out.Item[attrData].(*types.AttributeValueMemberB)
	if !ok {
		return nil, fmt.Errorf("dynamodb: item %q has no binary %q attribute", name, attrData)
	}

	return blobstore.NewBytesBlob(data.Value), nil
}

// Put replaces the item holding name.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	if len(data) > MaxBlobSize {
		return fmt.Errorf("%w: %d bytes", ErrBlobTooLarge, len(data))
	}

	item := s.key(name)
	item[attrData] = &types.AttributeValueMemberB{Value: data}
	item[attrUpdatedAt] = &types.AttributeValueMemberN{Value: strconv.FormatInt(time.Now().UnixMilli(), 10)}

	_, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return err
}

// Delete removes the item. DeleteItem on a missing key succeeds.
func (s *Store) Delete(ctx context.Context, name string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(name),
	})
	return err
}

// List scans the table for item names starting with prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	input := &dynamodb.ScanInput{
		TableName:                aws.String(s.table),
		ProjectionExpression:     aws.String("#n"),
		ExpressionAttributeNames: map[string]string{"#n": attrName},
	}

	fullPrefix := s.prefix + prefix
	if fullPrefix != "" {
		input.FilterExpression = aws.String("begins_with(#n, :p)")
		input.ExpressionAttributeValues = map[string]types.AttributeValue{
			":p": &types.AttributeValueMemberS{Value: fullPrefix},
		}
	}

	var names []string
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, item := range page.Items {
			if v, ok := item[attrName].(*types.AttributeValueMemberS); ok {
				names = append(names, strings.TrimPrefix(v.Value, s.prefix))
			}
		}
	}

	sort.Strings(names)
	return names, nil
}
