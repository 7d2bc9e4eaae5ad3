package provider

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// OpenAILLMProvider implements LLMProvider over the OpenAI responses API with
// strict JSON-schema output.
type OpenAILLMProvider struct {
	client *openai.Client
	model  string
}

// OpenAIConfig carries the credentials and model selection for the OpenAI
// providers.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// NewOpenAILLMProvider builds the provider. An empty model falls back to
// gpt-4o-mini.
func NewOpenAILLMProvider(cfg OpenAIConfig) *OpenAILLMProvider {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAILLMProvider{client: &client, model: model}
}

func (p *OpenAILLMProvider) Name() string { return "openai" }

// Complete runs one completion. When req.Schema is set the response text is
// strict JSON conforming to it.
func (p *OpenAILLMProvider) Complete(ctx context.Context, req *CompletionRequest) (string, error) {
	params := responses.ResponseNewParams{
		Model: p.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(req.Input, responses.EasyInputMessageRoleUser),
			},
		},
	}
	if req.Instructions != "" {
		params.Instructions = openai.String(req.Instructions)
	}
	if req.MaxOutputTokens > 0 {
		params.MaxOutputTokens = openai.Int(req.MaxOutputTokens)
	}
	if req.Schema != nil {
		params.Text = responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:   req.SchemaName,
					Schema: req.Schema,
					Strict: openai.Bool(true),
					Type:   "json_schema",
				},
			},
		}
	}

	resp, err := p.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai completion: %w", err)
	}
	out := resp.OutputText()
	if out == "" {
		return "", fmt.Errorf("openai completion: empty output")
	}
	return out, nil
}
