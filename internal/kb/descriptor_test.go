package kb

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSSM struct {
	value string
	err   error
	name  string
}

func (f *fakeSSM) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	f.name = aws.ToString(params.Name)
	if f.err != nil {
		return nil, f.err
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{Value: aws.String(f.value)},
	}, nil
}

func TestRepairJSON(t *testing.T) {
	t.Run("valid passes through unchanged", func(t *testing.T) {
		in := `{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`
		out, err := RepairJSON(in)
		require.NoError(t, err)
		assert.Equal(t, in, out)
	})

	t.Run("single quotes repaired", func(t *testing.T) {
		out, err := RepairJSON(`{'knowledgeBaseId': 'kb1', 'dataSourceId': 'ds1'}`)
		require.NoError(t, err)
		assert.JSONEq(t, `{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`, out)
	})

	t.Run("still invalid after repair", func(t *testing.T) {
		_, err := RepairJSON(`not a descriptor at all`)
		assert.Error(t, err)
	})
}

func TestFetchDescriptorStrict(t *testing.T) {
	client := &fakeSSM{value: `{"knowledgeBaseId":"kb1","dataSourceId":"ds1"}`}
	d, err := FetchDescriptor(context.Background(), client, "/docchat/kb-details")
	require.NoError(t, err)
	assert.Equal(t, "kb1", d.KnowledgeBaseID)
	assert.Equal(t, "ds1", d.DataSourceID)
	assert.Equal(t, "/docchat/kb-details", client.name)
}

func TestFetchDescriptorStrictRejectsSingleQuotes(t *testing.T) {
	client := &fakeSSM{value: `{'knowledgeBaseId': 'kb1', 'dataSourceId': 'ds1'}`}
	_, err := FetchDescriptor(context.Background(), client, "/docchat/kb-details")
	assert.Error(t, err)
}

func TestFetchDescriptorLenient(t *testing.T) {
	t.Run("repairs single-quoted value", func(t *testing.T) {
		client := &fakeSSM{value: `{'knowledgeBaseId': 'kb1', 'dataSourceId': 'ds1'}`}
		d, err := FetchDescriptorLenient(context.Background(), client, "/docchat/kb-details")
		require.NoError(t, err)
		assert.Equal(t, "kb1", d.KnowledgeBaseID)
		assert.Equal(t, "ds1", d.DataSourceID)
	})

	t.Run("unrepairable value errors", func(t *testing.T) {
		client := &fakeSSM{value: `{{{`}
		_, err := FetchDescriptorLenient(context.Background(), client, "/docchat/kb-details")
		assert.Error(t, err)
	})
}
