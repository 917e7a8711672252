package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"wiki-api/pkg/models"
)

// DynamoAPI is the subset of *dynamodb.Client the dynamodb store uses.
type DynamoAPI interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	BatchWriteItem(ctx context.Context, params *dynamodb.BatchWriteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.BatchWriteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

const (
	dynamoBatchSize   = 25
	dynamoBatchTries  = 5
	dynamoTableWait   = 2 * time.Minute
	dynamoDefaultArea = "us-east-1"
)

type dynamoItem struct {
	ID      string `dynamodbav:"id"`
	Title   string `dynamodbav:"title,omitempty"`
	Content string `dynamodbav:"content,omitempty"`
}

// DynamoStore keeps one item per article in a DynamoDB table keyed by id.
// Scan order is the natural order.
type DynamoStore struct {
	client DynamoAPI
	table  string
}

func NewDynamoStore(ctx context.Context, table, region, endpoint string) (*DynamoStore, error) {
	if region == "" {
		region = dynamoDefaultArea
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewDynamoStoreFromClient(ctx, client, table)
}

// NewDynamoStoreFromClient creates the table if it does not exist yet.
func NewDynamoStoreFromClient(ctx context.Context, client DynamoAPI, table string) (*DynamoStore, error) {
	s := &DynamoStore{client: client, table: table}
	if err := s.ensureTable(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *DynamoStore) ensureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("describe table %s: %w", s.table, err)
	}

	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		return fmt.Errorf("create table %s: %w", s.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, dynamoTableWait); err != nil {
		return fmt.Errorf("wait for table %s: %w", s.table, err)
	}
	return nil
}

func (s *DynamoStore) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func (s *DynamoStore) scan(ctx context.Context, input *dynamodb.ScanInput, each func([]dynamoItem) bool) error {
	paginator := dynamodb.NewScanPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		var items []dynamoItem
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &items); err != nil {
			return fmt.Errorf("unmarshal items: %w", err)
		}
		if !each(items) {
			return nil
		}
	}
	return nil
}

func (s *DynamoStore) first(ctx context.Context, title string) (*dynamoItem, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("title").Equal(expression.Value(title))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(s.table),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var found *dynamoItem
	err = s.scan(ctx, input, func(items []dynamoItem) bool {
		if len(items) > 0 {
			found = &items[0]
			return false
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("find article: %w", err)
	}
	return found, nil
}

func (s *DynamoStore) Find(ctx context.Context) ([]models.Article, error) {
	articles := []models.Article{}
	err := s.scan(ctx, &dynamodb.ScanInput{TableName: aws.String(s.table)}, func(items []dynamoItem) bool {
		for _, it := range items {
			articles = append(articles, models.Article{ID: it.ID, Title: it.Title, Content: it.Content})
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("find articles: %w", err)
	}
	return articles, nil
}

func (s *DynamoStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	it, err := s.first(ctx, title)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, ErrNotFound
	}
	return &models.Article{ID: it.ID, Title: it.Title, Content: it.Content}, nil
}

func (s *DynamoStore) put(ctx context.Context, id string, a models.Article) error {
	item, err := attributevalue.MarshalMap(dynamoItem{ID: id, Title: a.Title, Content: a.Content})
	if err != nil {
		return fmt.Errorf("marshal article: %w", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	})
	return err
}

func (s *DynamoStore) Insert(ctx context.Context, article models.Article) error {
	if err := s.put(ctx, uuid.NewString(), article); err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

func (s *DynamoStore) Replace(ctx context.Context, title string, article models.Article) error {
	it, err := s.first(ctx, title)
	if err != nil || it == nil {
		return err
	}
	if err := s.put(ctx, it.ID, article); err != nil {
		return fmt.Errorf("replace article: %w", err)
	}
	return nil
}

func (s *DynamoStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	if patch.IsEmpty() {
		return nil
	}
	it, err := s.first(ctx, title)
	if err != nil || it == nil {
		return err
	}

	var update expression.UpdateBuilder
	for k, v := range patch.Fields() {
		update = update.Set(expression.Name(k), expression.Value(v))
	}
	expr, err := expression.NewBuilder().WithUpdate(update).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(it.ID),
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}
	return nil
}

func (s *DynamoStore) DeleteOne(ctx context.Context, title string) error {
	it, err := s.first(ctx, title)
	if err != nil || it == nil {
		return err
	}
	_, err = s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(it.ID),
	})
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

func (s *DynamoStore) DeleteAll(ctx context.Context) error {
	var ids []string
	input := &dynamodb.ScanInput{
		TableName:            aws.String(s.table),
		ProjectionExpression: aws.String("id"),
	}
	err := s.scan(ctx, input, func(items []dynamoItem) bool {
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		return true
	})
	if err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}

	for start := 0; start < len(ids); start += dynamoBatchSize {
		end := min(start+dynamoBatchSize, len(ids))
		requests := make([]types.WriteRequest, 0, end-start)
		for _, id := range ids[start:end] {
			requests = append(requests, types.WriteRequest{
				DeleteRequest: &types.DeleteRequest{Key: s.key(id)},
			})
		}
		if err := s.batchWrite(ctx, requests); err != nil {
			return fmt.Errorf("delete articles: %w", err)
		}
	}
	return nil
}

func (s *DynamoStore) batchWrite(ctx context.Context, requests []types.WriteRequest) error {
	pending := map[string][]types.WriteRequest{s.table: requests}
	for try := 0; try < dynamoBatchTries && len(pending[s.table]) > 0; try++ {
		out, err := s.client.BatchWriteItem(ctx, &dynamodb.BatchWriteItemInput{RequestItems: pending})
		if err != nil {
			return err
		}
		pending = out.UnprocessedItems
	}
	if n := len(pending[s.table]); n > 0 {
		return fmt.Errorf("%d delete requests left unprocessed", n)
	}
	return nil
}

func (s *DynamoStore) Ping(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	return err
}

func (s *DynamoStore) Close(ctx context.Context) error { return nil }
