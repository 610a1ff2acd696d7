package documents

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoClient is the slice of the DynamoDB API the store needs.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Document mirrors the document table item. Pages and Filesize are stored as
// strings, matching the wire format the frontend consumes.
type Document struct {
	UserID     string `dynamodbav:"userid" json:"userid"`
	DocumentID string `dynamodbav:"documentid" json:"documentid"`
	Filename   string `dynamodbav:"filename" json:"filename"`
	Created    string `dynamodbav:"created" json:"created"`
	Pages      string `dynamodbav:"pages" json:"pages"`
	Filesize   string `dynamodbav:"filesize" json:"filesize"`
}

type Store struct {
	client DynamoClient
	table  string
}

func NewStore(client DynamoClient, table string) *Store {
	return &Store{client: client, table: table}
}

// Put writes the document record. Records are write-once; there is no
// update path.
func (s *Store) Put(ctx context.Context, doc Document) error {
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("marshal document: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// Get looks up one document by its composite key.
func (s *Store) Get(ctx context.Context, userID, documentID string) (*Document, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"userid":     &types.AttributeValueMemberS{Value: userID},
			"documentid": &types.AttributeValueMemberS{Value: documentID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("document not found: %s", documentID)
	}
	var doc Document
	if err := attributevalue.UnmarshalMap(out.Item, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return &doc, nil
}

// ListAll scans the whole table and returns every user's documents, newest
// first. There is no ownership filter on this path.
func (s *Store) ListAll(ctx context.Context) ([]Document, error) {
	out, err := s.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(s.table),
	})
	if err != nil {
		return nil, fmt.Errorf("scan documents: %w", err)
	}

	items := make([]Document, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal documents: %w", err)
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
	return items, nil
}
