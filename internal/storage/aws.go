package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/inboxpilot/mailmetrics/internal/metrics"
)

// DynamoStore reads and writes daily metric records in DynamoDB and exports
// summary snapshots to S3. Records live under a per-tenant partition with a
// "<date>#<domain>#<mailbox>" sort key so a date range is a single Query.
type DynamoStore struct {
	dynamoDB  *dynamodb.Client
	s3Client  *s3.Client
	tableName string
	bucket    string
}

// recordItem is the DynamoDB row shape. The record itself travels as JSON in
// the Data attribute; the key attributes exist only for querying.
type recordItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	Data      string `dynamodbav:"Data"`
	Timestamp string `dynamodbav:"Timestamp"`
	TTL       int64  `dynamodbav:"TTL,omitempty"`
}

// RetentionDays is how long daily records stay queryable in DynamoDB before
// their TTL expires. Older ranges come from the warehouse.
const RetentionDays = 90

// NewDynamoStore creates the AWS-backed store.
func NewDynamoStore(ctx context.Context, tableName, bucket, region, profile string) (*DynamoStore, error) {
	var cfg aws.Config
	var err error

	if profile != "" {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
			awsconfig.WithSharedConfigProfile(profile),
		)
	} else {
		cfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &DynamoStore{
		dynamoDB:  dynamodb.NewFromConfig(cfg),
		s3Client:  s3.NewFromConfig(cfg),
		tableName: tableName,
		bucket:    bucket,
	}, nil
}

func tenantPK(companyID string) string {
	return fmt.Sprintf("METRICS#%s", companyID)
}

func recordSK(r metrics.MetricRecord) string {
	mailbox := r.MailboxID
	if mailbox == "" {
		mailbox = "DOMAIN"
	}
	return fmt.Sprintf("%s#%s#%s", r.Date, r.Domain, mailbox)
}

// SaveRecords writes daily records for ingest tooling. Each row gets the
// standard retention TTL.
func (s *DynamoStore) SaveRecords(ctx context.Context, records []metrics.MetricRecord) error {
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("marshaling record: %w", err)
		}

		item := recordItem{
			PK:        tenantPK(r.CompanyID),
			SK:        recordSK(r),
			Data:      string(data),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			TTL:       time.Now().Add(RetentionDays * 24 * time.Hour).Unix(),
		}

		av, err := attributevalue.MarshalMap(item)
		if err != nil {
			return fmt.Errorf("marshaling item: %w", err)
		}

		_, err = s.dynamoDB.PutItem(ctx, &dynamodb.PutItemInput{
			TableName: aws.String(s.tableName),
			Item:      av,
		})
		if err != nil {
			return fmt.Errorf("putting record to DynamoDB: %w", err)
		}
	}
	return nil
}

// FetchRecords queries the tenant partition for the date range and applies
// the domain/mailbox filters client side.
func (s *DynamoStore) FetchRecords(ctx context.Context, q metrics.Query) ([]metrics.MetricRecord, error) {
	start := q.StartDate
	if start == "" {
		start = "0000-00-00"
	}
	end := q.EndDate
	if end == "" {
		end = "9999-99-99"
	}
	// "#~" sorts after every "<end>#..." sort key, keeping the end date
	// inclusive.
	endBound := end + "#~"

	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND SK BETWEEN :from AND :to"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":   &types.AttributeValueMemberS{Value: tenantPK(q.CompanyID)},
			":from": &types.AttributeValueMemberS{Value: start},
			":to":   &types.AttributeValueMemberS{Value: endBound},
		},
	}

	var out []metrics.MetricRecord
	paginator := dynamodb.NewQueryPaginator(s.dynamoDB, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("querying DynamoDB: %w", err)
		}
		for _, item := range page.Items {
			var row recordItem
			if err := attributevalue.UnmarshalMap(item, &row); err != nil {
				continue
			}
			var r metrics.MetricRecord
			if err := json.Unmarshal([]byte(row.Data), &r); err != nil {
				continue
			}
			if q.Matches(r) {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// SaveSummarySnapshot exports a day's aggregated summary to S3 for offline
// reporting. No-op when no bucket is configured.
func (s *DynamoStore) SaveSummarySnapshot(ctx context.Context, companyID, date string, summary interface{}) error {
	if s.bucket == "" {
		return nil
	}

	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling summary: %w", err)
	}

	key := fmt.Sprintf("summaries/%s/%s.json", companyID, date)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(jsonData),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("putting summary to S3: %w", err)
	}
	return nil
}
