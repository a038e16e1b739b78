// Package extract turns raw transcripts into structured business profile
// data via the Anthropic API, with a regex fallback when the API is
// unreachable.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/bizvoice/intake/internal/profile"
)

// Client handles Anthropic API requests for structured extraction.
type Client struct {
	apiKey string
	model  anthropic.Model
}

// NewClient creates a new extraction client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
	}
}

// businessToolInput defines the tool input schema for business extraction.
// Field names match the wire format the browser and store use.
type businessToolInput struct {
	PersonName      string   `json:"personName"`
	Name            string   `json:"name"`
	Address         string   `json:"address"`
	City            string   `json:"city"`
	State           string   `json:"state"`
	Pincode         string   `json:"pincode"`
	GSTNumber       string   `json:"gstNumber"`
	Category        string   `json:"category"`
	Subcategory     string   `json:"subcategory"`
	Email           string   `json:"email"`
	Phone           string   `json:"phone"`
	Website         string   `json:"website"`
	EstablishedYear string   `json:"establishedYear"`
	Products        []string `json:"products"`
}

func stringProp(desc string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": desc,
	}
}

// getBusinessTool returns the tool definition for business structured output.
func getBusinessTool() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name: "save_business_profile",
		Description: anthropic.String(
			"Save the business profile fields extracted from the transcription",
		),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type: "object",
			Properties: map[string]interface{}{
				"personName":      stringProp("Name of the business owner or speaker"),
				"name":            stringProp("Business name"),
				"address":         stringProp("Street address"),
				"city":            stringProp("City"),
				"state":           stringProp("State"),
				"pincode":         stringProp("6-digit postal code"),
				"gstNumber":       stringProp("15-character GST registration number"),
				"category":        stringProp("Business category"),
				"subcategory":     stringProp("Business subcategory"),
				"email":           stringProp("Email address"),
				"phone":           stringProp("10-digit phone number"),
				"website":         stringProp("Website URL"),
				"establishedYear": stringProp("4-digit establishment year"),
				"products": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "string",
					},
					"description": "Product names mentioned in passing",
				},
			},
			Required: []string{
				"personName", "name", "address", "city", "state", "pincode",
				"gstNumber", "category", "subcategory", "email", "phone",
				"website", "establishedYear", "products",
			},
		},
	}
}

// getProductsTool returns the tool definition for product list structured output.
func getProductsTool() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name: "save_product_list",
		Description: anthropic.String(
			"Save the list of products extracted from the transcription",
		),
		InputSchema: anthropic.ToolInputSchemaParam{
			Type: "object",
			Properties: map[string]interface{}{
				"products": map[string]interface{}{
					"type": "array",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":        stringProp("Product name as spoken"),
							"price":       map[string]interface{}{"type": "number", "description": "Numeric price, 0 if not mentioned"},
							"category":    stringProp("Product category"),
							"description": stringProp("Quality, features, or brand details"),
							"unit":        stringProp("Unit of sale, pcs if not mentioned"),
							"quantity":    map[string]interface{}{"type": "integer", "description": "Quantity, 1 if not mentioned"},
						},
						"required": []string{"name", "price", "category", "description", "unit", "quantity"},
					},
					"description": "Every product mentioned in the speech",
				},
			},
			Required: []string{"products"},
		},
	}
}

// BusinessInfo extracts business profile fields from a transcript. API
// failures fall back to regex extraction so the caller always gets a draft.
func (c *Client) BusinessInfo(ctx context.Context, transcript string) (*profile.Draft, error) {
	input, err := c.callBusinessTool(ctx, transcript)
	if err != nil {
		slog.Warn("business extraction via API failed, using fallback", "error", err)

		return businessFallback(transcript), nil
	}

	draft := &profile.Draft{
		PersonName:      input.PersonName,
		Name:            input.Name,
		Address:         input.Address,
		City:            input.City,
		State:           input.State,
		Pincode:         input.Pincode,
		GSTNumber:       input.GSTNumber,
		Category:        input.Category,
		Subcategory:     input.Subcategory,
		Email:           input.Email,
		Phone:           input.Phone,
		Website:         input.Website,
		EstablishedYear: input.EstablishedYear,
		Products:        []profile.Product{},
	}
	for _, name := range input.Products {
		if name == "" {
			continue
		}

		draft.Products = append(draft.Products, profile.Product{
			Name: name, Unit: "pcs", Quantity: 1,
		})
	}

	return draft, nil
}

func (c *Client) callBusinessTool(ctx context.Context, transcript string) (*businessToolInput, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key required: set ANTHROPIC_API_KEY or store one in the keyring")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	toolDef := getBusinessTool()

	tool := anthropic.ToolUnionParamOfTool(toolDef.InputSchema, toolDef.Name)
	tool.OfTool.Description = toolDef.Description

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: BusinessSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript)),
		},
		Tools:      []anthropic.ToolUnionParam{tool},
		ToolChoice: anthropic.ToolChoiceParamOfTool("save_business_profile"),
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to extract business info via Anthropic API: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, errors.New("empty response from Anthropic API")
	}

	var input businessToolInput
	if err := parseToolUse(resp.Content, &input); err != nil {
		return nil, err
	}

	return &input, nil
}

// productsToolInput defines the tool input schema for product extraction.
type productsToolInput struct {
	Products []profile.Product `json:"products"`
}

// Products extracts the product list from a transcript. API failures fall
// back to regex extraction.
func (c *Client) Products(ctx context.Context, transcript string) ([]profile.Product, error) {
	products, err := c.callProductsTool(ctx, transcript)
	if err != nil {
		slog.Warn("product extraction via API failed, using fallback", "error", err)

		return productsFallback(transcript), nil
	}

	return products, nil
}

func (c *Client) callProductsTool(ctx context.Context, transcript string) ([]profile.Product, error) {
	if c.apiKey == "" {
		return nil, errors.New("API key required: set ANTHROPIC_API_KEY or store one in the keyring")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	toolDef := getProductsTool()

	tool := anthropic.ToolUnionParamOfTool(toolDef.InputSchema, toolDef.Name)
	tool.OfTool.Description = toolDef.Description

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 4096,
		System: []anthropic.TextBlockParam{
			{Text: ProductsSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(transcript)),
		},
		Tools:      []anthropic.ToolUnionParam{tool},
		ToolChoice: anthropic.ToolChoiceParamOfTool("save_product_list"),
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("failed to extract products via Anthropic API: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, errors.New("empty response from Anthropic API")
	}

	var input productsToolInput
	if err := parseToolUse(resp.Content, &input); err != nil {
		return nil, err
	}

	if input.Products == nil {
		input.Products = []profile.Product{}
	}

	return input.Products, nil
}

// parseToolUse extracts the first tool use block into out.
func parseToolUse(content []anthropic.ContentBlockUnion, out interface{}) error {
	for _, block := range content {
		if toolUse, ok := block.AsAny().(anthropic.ToolUseBlock); ok {
			inputBytes, err := json.Marshal(toolUse.Input)
			if err != nil {
				return fmt.Errorf("failed to marshal tool input: %w", err)
			}
			if err := json.Unmarshal(inputBytes, out); err != nil {
				return fmt.Errorf("failed to parse tool input: %w", err)
			}

			return nil
		}
	}

	return errors.New("no tool use found in Anthropic API response")
}
