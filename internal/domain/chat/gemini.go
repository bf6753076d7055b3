package chat

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// Gemini is the Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, system string, turns []Turn, tools []ToolSpec) (Output, error) {
	cfg := &genai.GenerateContentConfig{}
	if system != "" {
		cfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if len(tools) > 0 {
		cfg.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools)}}
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents(turns), cfg)
	if err != nil {
		return Output{}, err
	}
	out := Output{Text: resp.Text()}
	for _, fc := range resp.FunctionCalls() {
		out.Calls = append(out.Calls, ToolCall{ID: fc.ID, Name: fc.Name, Args: fc.Args})
	}
	return out, nil
}

func contents(turns []Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		var parts []*genai.Part
		if t.Text != "" {
			parts = append(parts, genai.NewPartFromText(t.Text))
		}
		for _, c := range t.Calls {
			p := genai.NewPartFromFunctionCall(c.Name, c.Args)
			p.FunctionCall.ID = c.ID
			parts = append(parts, p)
		}
		for _, r := range t.Results {
			p := genai.NewPartFromFunctionResponse(r.Name, r.Response)
			p.FunctionResponse.ID = r.ID
			parts = append(parts, p)
		}
		if len(parts) == 0 {
			continue
		}
		role := genai.RoleUser
		if t.Role == RoleModel {
			role = genai.RoleModel
		}
		out = append(out, genai.NewContentFromParts(parts, genai.Role(role)))
	}
	return out
}

func declarations(tools []ToolSpec) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		schema := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
		for _, p := range t.Params {
			schema.Properties[p.Name] = &genai.Schema{
				Type:        schemaType(p.Type),
				Description: p.Description,
				Enum:        p.Enum,
			}
			if p.Required {
				schema.Required = append(schema.Required, p.Name)
			}
		}
		out = append(out, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  schema,
		})
	}
	return out
}

func schemaType(name string) genai.Type {
	switch name {
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
