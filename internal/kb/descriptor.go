package kb

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// SSMClient is the slice of the SSM API descriptor fetching needs.
type SSMClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Descriptor identifies the managed knowledge base and its data source.
// Stored as a JSON string in an SSM parameter, maintained outside this
// system.
type Descriptor struct {
	KnowledgeBaseID string `json:"knowledgeBaseId"`
	DataSourceID    string `json:"dataSourceId"`
}

// FetchDescriptor reads and parses the descriptor parameter. Strict: a
// malformed value is an error.
func FetchDescriptor(ctx context.Context, client SSMClient, path string) (*Descriptor, error) {
	raw, err := fetchRaw(ctx, client, path)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return nil, fmt.Errorf("parse knowledge base descriptor: %w", err)
	}
	return &d, nil
}

// FetchDescriptorLenient reads the descriptor parameter and, if it is not
// valid JSON, retries after swapping single quotes for double quotes. The
// parameter is sometimes hand-edited into Python-literal form.
func FetchDescriptorLenient(ctx context.Context, client SSMClient, path string) (*Descriptor, error) {
	raw, err := fetchRaw(ctx, client, path)
	if err != nil {
		return nil, err
	}
	repaired, err := RepairJSON(raw)
	if err != nil {
		return nil, err
	}
	var d Descriptor
	if err := json.Unmarshal([]byte(repaired), &d); err != nil {
		return nil, fmt.Errorf("parse knowledge base descriptor: %w", err)
	}
	return &d, nil
}

// RepairJSON returns s unchanged when it already parses as JSON; otherwise it
// substitutes double quotes for single quotes and re-checks. Best effort
// only.
func RepairJSON(s string) (string, error) {
	if json.Valid([]byte(s)) {
		return s, nil
	}
	repaired := strings.ReplaceAll(s, "'", `"`)
	if json.Valid([]byte(repaired)) {
		return repaired, nil
	}
	return "", fmt.Errorf("descriptor is not valid JSON after quote repair")
}

func fetchRaw(ctx context.Context, client SSMClient, path string) (string, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name: aws.String(path),
	})
	if err != nil {
		return "", fmt.Errorf("ssm GetParameter %s: %w", path, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", path)
	}
	return aws.ToString(out.Parameter.Value), nil
}
