package conversations

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/lithammer/shortuuid/v4"
)

// CreatedFormat is the timestamp layout stored on every record. Fixed width,
// so lexicographic order on the stored string is chronological order.
const CreatedFormat = "2006-01-02T15:04:05.000000Z"

const (
	RoleHuman = "human"
	RoleAI    = "ai"
)

// DynamoClient is the slice of the DynamoDB API the store needs.
type DynamoClient interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Conversation mirrors the conversation table item.
type Conversation struct {
	UserID         string `dynamodbav:"userid" json:"userid"`
	ConversationID string `dynamodbav:"conversationid" json:"conversationid"`
	Created        string `dynamodbav:"created" json:"created"`
}

// Message is one turn of a transcript.
type Message struct {
	Role    string `dynamodbav:"role" json:"role"`
	Content string `dynamodbav:"content" json:"content"`
}

// historyItem mirrors the conversation history table item.
type historyItem struct {
	UserID         string    `dynamodbav:"UserId"`
	ConversationID string    `dynamodbav:"ConversationId"`
	History        []Message `dynamodbav:"History"`
}

// View is a conversation joined with its transcript.
type View struct {
	UserID         string    `json:"userid"`
	ConversationID string    `json:"conversationid"`
	Created        string    `json:"created"`
	Messages       []Message `json:"messages"`
}

type Store struct {
	client       DynamoClient
	table        string
	historyTable string
	now          func() time.Time
}

func NewStore(client DynamoClient, table, historyTable string) *Store {
	return &Store{
		client:       client,
		table:        table,
		historyTable: historyTable,
		now:          time.Now,
	}
}

// Create allocates a fresh conversation id and writes the conversation record
// plus an empty history record. Two independent puts; if the second fails the
// first is not rolled back.
func (s *Store) Create(ctx context.Context, userID string) (string, error) {
	conversationID := shortuuid.New()
	created := s.now().UTC().Format(CreatedFormat)

	conv, err := attributevalue.MarshalMap(Conversation{
		UserID:         userID,
		ConversationID: conversationID,
		Created:        created,
	})
	if err != nil {
		return "", fmt.Errorf("marshal conversation: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      conv,
	}); err != nil {
		return "", fmt.Errorf("put conversation: %w", err)
	}

	hist, err := attributevalue.MarshalMap(historyItem{
		UserID:         userID,
		ConversationID: conversationID,
		History:        []Message{},
	})
	if err != nil {
		return "", fmt.Errorf("marshal history: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.historyTable),
		Item:      hist,
	}); err != nil {
		return "", fmt.Errorf("put history: %w", err)
	}

	return conversationID, nil
}

// Get returns the conversation joined with its transcript. Both backing
// records must exist.
func (s *Store) Get(ctx context.Context, userID, conversationID string) (*View, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"userid":         &types.AttributeValueMemberS{Value: userID},
			"conversationid": &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("conversation not found: %s", conversationID)
	}
	var conv Conversation
	if err := attributevalue.UnmarshalMap(out.Item, &conv); err != nil {
		return nil, fmt.Errorf("unmarshal conversation: %w", err)
	}

	hist, found, err := s.history(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("conversation history not found: %s", conversationID)
	}

	return &View{
		UserID:         conv.UserID,
		ConversationID: conv.ConversationID,
		Created:        conv.Created,
		Messages:       hist.History,
	}, nil
}

// List returns the caller's conversations, newest first.
func (s *Store) List(ctx context.Context, userID string) ([]Conversation, error) {
	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("userid = :u"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}

	items := make([]Conversation, 0, len(out.Items))
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("unmarshal conversations: %w", err)
	}

	// Range key order is conversationid; the API contract is newest first.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Created > items[j].Created
	})
	return items, nil
}

// Messages returns the stored transcript. A missing history record reads as
// an empty transcript.
func (s *Store) Messages(ctx context.Context, userID, conversationID string) ([]Message, error) {
	hist, found, err := s.history(ctx, userID, conversationID)
	if err != nil {
		return nil, err
	}
	if !found {
		return []Message{}, nil
	}
	return hist.History, nil
}

// AppendTurns appends one human turn and one ai turn to the transcript,
// creating the history record if it does not exist yet. Read-modify-write
// with no conditional check; concurrent appends to the same conversation can
// race, matching the backing store's last-write-wins behavior.
func (s *Store) AppendTurns(ctx context.Context, userID, conversationID, humanText, aiText string) error {
	hist, _, err := s.history(ctx, userID, conversationID)
	if err != nil {
		return err
	}
	if hist == nil {
		hist = &historyItem{
			UserID:         userID,
			ConversationID: conversationID,
			History:        []Message{},
		}
	}

	hist.History = append(hist.History,
		Message{Role: RoleHuman, Content: humanText},
		Message{Role: RoleAI, Content: aiText},
	)

	item, err := attributevalue.MarshalMap(hist)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.historyTable),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put history: %w", err)
	}
	return nil
}

func (s *Store) history(ctx context.Context, userID, conversationID string) (*historyItem, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.historyTable),
		Key: map[string]types.AttributeValue{
			"UserId":         &types.AttributeValueMemberS{Value: userID},
			"ConversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("get history: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, false, nil
	}
	var hist historyItem
	if err := attributevalue.UnmarshalMap(out.Item, &hist); err != nil {
		return nil, false, fmt.Errorf("unmarshal history: %w", err)
	}
	if hist.History == nil {
		hist.History = []Message{}
	}
	return &hist, true, nil
}
