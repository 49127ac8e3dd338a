package pageviews

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/sdkexamples/sdkexamples/pkg/common"
)

const (
	// BatchWriteItem accepts at most 25 put or delete requests.
	maxBatchWriteItems = 25
	unprocessedRetries = 5
)

var (
	ErrUnprocessedItems = errors.New("items were left unprocessed")
	errNoTable          = errors.New("table name is not configured")
)

type DynamoAPI interface {
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
}

var _ DynamoAPI = (*dynamodb.Client)(nil)

type DynamoStore struct {
	Client     DynamoAPI
	Table      string
	Attempts   int
	MinBackoff time.Duration
	MaxBackoff time.Duration
}

var _ common.PageViewStore = (*DynamoStore)(nil)

func NewDynamoStore(client DynamoAPI, table string) *DynamoStore {
	return &DynamoStore{
		Client:     client,
		Table:      table,
		Attempts:   unprocessedRetries,
		MinBackoff: 50 * time.Millisecond,
		MaxBackoff: 2 * time.Second,
	}
}

// WriteRequests marshals records into put requests.
func WriteRequests(records []*common.PageViewRecord) ([]types.WriteRequest, error) {
	requests := make([]types.WriteRequest, 0, len(records))

	for _, r := range records {
		item, err := attributevalue.MarshalMap(r)
		if err != nil {
			return nil, err
		}

		requests = append(requests, types.WriteRequest{PutRequest: &types.PutRequest{Item: item}})
	}

	return requests, nil
}

func (s *DynamoStore) writeChunk(ctx context.Context, chunk []types.WriteRequest) error {
	b := common.NewBackoff(s.MinBackoff, s.MaxBackoff)
	pending := chunk

	return common.Retry(ctx, s.Attempts, b, func(ctx context.Context, attempt int) error {
		out, err := s.Client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{
			RequestItems: map[string][]types.WriteRequest{s.Table: pending},
		})
		if err != nil {
			return err
		}

		unprocessed := out.UnprocessedItems[s.Table]
		if len(unprocessed) == 0 {
			return nil
		}

		slog.WarnContext(ctx, "Batch write left unprocessed items", "attempt", attempt, "unprocessed", len(unprocessed),
			"requested", len(pending))
		pending = unprocessed

		return common.NewRetriableError(fmt.Errorf("%w: %d", ErrUnprocessedItems, len(unprocessed)))
	})
}

func (s *DynamoStore) StoreViews(ctx context.Context, records []*common.PageViewRecord) error {
	if len(records) == 0 {
		slog.WarnContext(ctx, "Attempt to store empty page views batch")
		return nil
	}

	if len(s.Table) == 0 {
		return errNoTable
	}

	requests, err := WriteRequests(records)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal page views", common.ErrAttr(err))
		return err
	}

	for start := 0; start < len(requests); start += maxBatchWriteItems {
		end := min(start+maxBatchWriteItems, len(requests))
		if err := s.writeChunk(ctx, requests[start:end]); err != nil {
			slog.ErrorContext(ctx, "Error storing data in DynamoDB", "table", s.Table, "offset", start, common.ErrAttr(err))
			return err
		}
	}

	slog.InfoContext(ctx, "Data stored successfully in DynamoDB", "table", s.Table, "size", len(records))

	return nil
}

func NewDynamoStoreFromConfig(cfg aws.Config, table string) *DynamoStore {
	return NewDynamoStore(dynamodb.NewFromConfig(cfg), table)
}
