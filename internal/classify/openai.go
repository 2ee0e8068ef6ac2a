package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/responses"
)

// verdict is the structured output requested from the model.
type verdict struct {
	Emotion    string  `json:"emotion" jsonschema:"enum=joy,enum=love,enum=surprise,enum=neutral,enum=fear,enum=sadness,enum=anger,description=Dominant emotion of the journal entry"`
	Confidence float64 `json:"confidence" jsonschema:"minimum=0,maximum=100,description=Confidence in the label from 0 to 100"`
}

var verdictSchema = GenerateSchema[verdict]()

const classifyInstructions = `You label personal journal entries with exactly one dominant emotion.
Choose from: joy, love, surprise, neutral, fear, sadness, anger.
Report your confidence in that label as a number from 0 to 100.`

// reflectionPrompts steer the reflection for each emotion.
var reflectionPrompts = map[string]string{
	"joy":      "Celebrate what is going well and help the writer notice what created this good feeling.",
	"love":     "Honor the connection the writer describes and invite them to savor it.",
	"surprise": "Help the writer make sense of the unexpected and find what it might open up.",
	"neutral":  "Gently invite the writer to look a little deeper at what is beneath the surface today.",
	"fear":     "Acknowledge the worry, offer grounding techniques and separate what is in their control.",
	"sadness":  "Validate the sadness, offer comfort and one small act of self-care.",
	"anger":    "Acknowledge the frustration without judgment and suggest a healthy way to release it.",
}

const reflectionTemplate = `%s

Please provide a compassionate, personalized response that:
1. Acknowledges the user's emotional state
2. Offers practical coping strategies or positive reinforcement
3. Encourages self-reflection and growth
4. Keeps the tone warm and supportive

Respond in 2-3 short paragraphs, being empathetic and helpful.`

// OpenAI classifies and reflects through the Responses API of any
// OpenAI-compatible endpoint.
type OpenAI struct {
	client       *openai.Client
	model        string
	reflectModel string
}

// NewOpenAI builds a client. baseURL may point at a compatible gateway
// such as OpenRouter; empty uses the default endpoint.
func NewOpenAI(apiKey, baseURL, model, reflectModel string) *OpenAI {
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(2),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	if reflectModel == "" {
		reflectModel = model
	}
	return &OpenAI{client: &client, model: model, reflectModel: reflectModel}
}

// Classify asks the model for a single emotion label with confidence.
func (o *OpenAI) Classify(ctx context.Context, text string) (Result, error) {
	if o.model == "" {
		return Result{}, errors.New("openai classifier: model is empty")
	}

	params := responses.ResponseNewParams{
		Model:           o.model,
		MaxOutputTokens: openai.Int(100),
		Instructions:    openai.String(classifyInstructions),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
		Text: responses.ResponseTextConfigParam{
			Format: responses.ResponseFormatTextConfigUnionParam{
				OfJSONSchema: &responses.ResponseFormatTextJSONSchemaConfigParam{
					Name:        "EmotionVerdict",
					Schema:      verdictSchema,
					Strict:      openai.Bool(true),
					Description: openai.String("Emotion label with confidence"),
					Type:        "json_schema",
				},
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return Result{}, fmt.Errorf("openai classify: %w", err)
	}

	var v verdict
	if err := decodeModelJSON(resp.OutputText(), &v); err != nil {
		return Result{}, fmt.Errorf("decoding verdict: %w", err)
	}
	return normalize(Result{Label: v.Emotion, Confidence: v.Confidence})
}

// Reflect asks the model for a short supportive reflection.
func (o *OpenAI) Reflect(ctx context.Context, emotion, text string) (string, error) {
	params := responses.ResponseNewParams{
		Model:           o.reflectModel,
		MaxOutputTokens: openai.Int(600),
		Temperature:     openai.Float(0.7),
		Instructions:    openai.String(reflectionInstructions(emotion)),
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: []responses.ResponseInputItemUnionParam{
				responses.ResponseInputItemParamOfMessage(text, responses.EasyInputMessageRoleUser),
			},
		},
	}

	resp, err := o.client.Responses.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai reflect: %w", err)
	}
	out := strings.TrimSpace(resp.OutputText())
	if out == "" {
		return "", errors.New("openai reflect: empty response")
	}
	return out, nil
}

func reflectionInstructions(emotion string) string {
	base, ok := reflectionPrompts[strings.ToLower(emotion)]
	if !ok {
		base = "Provide a thoughtful response."
	}
	return fmt.Sprintf(reflectionTemplate, base)
}
