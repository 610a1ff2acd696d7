// Package chat composes retrieval, conversation memory and generation into
// the question-answering flow behind the generate-response function.
package chat

import (
	"context"
	"fmt"

	"docchat/internal/conversations"
	"docchat/internal/kb"
	"docchat/internal/llm"
)

type Retriever interface {
	Retrieve(ctx context.Context, knowledgeBaseID, query string) ([]kb.Passage, error)
}

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Memory is the conversation transcript the chain reads and appends to.
type Memory interface {
	Messages(ctx context.Context, userID, conversationID string) ([]conversations.Message, error)
	AppendTurns(ctx context.Context, userID, conversationID, humanText, aiText string) error
}

// Result is one complete answer plus the documents it was grounded on.
type Result struct {
	Answer  string
	Sources []string
}

type Chain struct {
	retriever Retriever
	generator Generator
	memory    Memory
}

func NewChain(retriever Retriever, generator Generator, memory Memory) *Chain {
	return &Chain{retriever: retriever, generator: generator, memory: memory}
}

// Ask answers one utterance for a conversation: retrieve passages, load the
// prior transcript, generate, then append the new human and ai turns. Any
// failure propagates; nothing is appended unless generation succeeded.
func (c *Chain) Ask(ctx context.Context, knowledgeBaseID, userID, conversationID, question string) (*Result, error) {
	passages, err := c.retriever.Retrieve(ctx, knowledgeBaseID, question)
	if err != nil {
		return nil, fmt.Errorf("retrieve passages: %w", err)
	}

	history, err := c.memory.Messages(ctx, userID, conversationID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	in := llm.PromptInput{Question: question}
	sources := make([]string, 0, len(passages))
	seen := map[string]bool{}
	for _, p := range passages {
		in.Passages = append(in.Passages, p.Text)
		if p.Source != "" && !seen[p.Source] {
			seen[p.Source] = true
			sources = append(sources, p.Source)
		}
	}
	for _, m := range history {
		in.History = append(in.History, llm.Turn{Role: m.Role, Content: m.Content})
	}

	answer, err := c.generator.Generate(ctx, llm.BuildPrompt(in))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	if err := c.memory.AppendTurns(ctx, userID, conversationID, question, answer); err != nil {
		return nil, fmt.Errorf("append turns: %w", err)
	}

	return &Result{Answer: answer, Sources: sources}, nil
}
