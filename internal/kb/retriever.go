package kb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime"
	agenttypes "github.com/aws/aws-sdk-go-v2/service/bedrockagentruntime/types"
)

// RetrieveClient is the slice of the agent runtime API retrieval needs.
type RetrieveClient interface {
	Retrieve(ctx context.Context, params *bedrockagentruntime.RetrieveInput, optFns ...func(*bedrockagentruntime.Options)) (*bedrockagentruntime.RetrieveOutput, error)
}

// Passage is one retrieved chunk plus where it came from.
type Passage struct {
	Text   string
	Source string
	Score  float64
}

type Retriever struct {
	client RetrieveClient
	topK   int
}

func NewRetriever(client RetrieveClient, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{client: client, topK: topK}
}

// Retrieve runs a vector search against the knowledge base and returns the
// top-K passages for the query.
func (r *Retriever) Retrieve(ctx context.Context, knowledgeBaseID, query string) ([]Passage, error) {
	out, err := r.client.Retrieve(ctx, &bedrockagentruntime.RetrieveInput{
		KnowledgeBaseId: aws.String(knowledgeBaseID),
		RetrievalQuery: &agenttypes.KnowledgeBaseQuery{
			Text: aws.String(query),
		},
		RetrievalConfiguration: &agenttypes.KnowledgeBaseRetrievalConfiguration{
			VectorSearchConfiguration: &agenttypes.KnowledgeBaseVectorSearchConfiguration{
				NumberOfResults: aws.Int32(int32(r.topK)),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("knowledge base retrieve: %w", err)
	}

	passages := make([]Passage, 0, len(out.RetrievalResults))
	for _, res := range out.RetrievalResults {
		p := Passage{}
		if res.Content != nil {
			p.Text = aws.ToString(res.Content.Text)
		}
		if res.Location != nil && res.Location.S3Location != nil {
			p.Source = aws.ToString(res.Location.S3Location.Uri)
		}
		if res.Score != nil {
			p.Score = *res.Score
		}
		if p.Text == "" {
			continue
		}
		passages = append(passages, p)
	}
	return passages, nil
}
