// Package advisor asks a Gemini model to comment on a portfolio.
package advisor

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// ErrNoResponse is returned when the model answers with no content.
var ErrNoResponse = errors.New("no response from the model")

// maxCalls bounds the function call round trips of a single question.
const maxCalls = 8

// Generator generates content, as [genai.Models] does.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Advisor answers questions about a portfolio, calling back into its
// reports when the model needs figures.
type Advisor struct {
	gen     Generator
	model   string
	config  *genai.GenerateContentConfig
	library Library
	log     zerolog.Logger
}

// New creates an Advisor using model, with functions as tools.
func New(gen Generator, model string, log zerolog.Logger, functions ...Function) *Advisor {
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: instruction}}},
	}
	if len(functions) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: NewDeclaration(functions)}}
	}
	return &Advisor{
		gen:     gen,
		model:   model,
		config:  config,
		library: NewLibrary(functions),
		log:     log.With().Str("component", "advisor").Logger(),
	}
}

const instruction = `
You are a financial advisor reviewing the user's investment portfolio.
Use the tools to read the allocation by category, the assets and their value evolution.
Compare each category's share with its goal, point out the main gains and losses,
and suggest rebalancing moves. Answer in concise markdown. Amounts are in the
portfolio's display currency unless stated otherwise.
`

// Ask sends question to the model and returns its markdown answer.
func (a *Advisor) Ask(ctx context.Context, question string) (string, error) {
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: question}}}}
	for range maxCalls {
		resp, err := a.gen.GenerateContent(ctx, a.model, contents, a.config)
		if err != nil {
			return "", fmt.Errorf("generating content: %w", err)
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
			return "", ErrNoResponse
		}
		content := resp.Candidates[0].Content

		var calls []*genai.Part
		for _, part := range content.Parts {
			if part.FunctionCall == nil {
				continue
			}
			a.log.Debug().Str("function", part.FunctionCall.Name).Interface("args", part.FunctionCall.Args).Msg("function call")
			calls = append(calls, &genai.Part{FunctionResponse: a.library(ctx, part.FunctionCall)})
		}
		if len(calls) == 0 {
			return resp.Text(), nil
		}
		contents = append(contents, content, &genai.Content{Role: "user", Parts: calls})
	}
	return "", fmt.Errorf("model did not answer after %d function calls", maxCalls)
}
