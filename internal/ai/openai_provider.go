package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/fitfuel/fitfuel-server/internal/config"
)

type OpenAIProvider struct {
	apiKey      string
	model       string
	maxTokens   int
	temperature float64
	baseURL     string
	httpClient  *http.Client
}

func NewOpenAIProvider(cfg *config.Config) *OpenAIProvider {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}

	return &OpenAIProvider{
		apiKey:      cfg.OpenAIAPIKey,
		model:       cfg.OpenAIModel,
		maxTokens:   cfg.AIMaxOutputTokens,
		temperature: cfg.AITemperature,
		baseURL:     "https://api.openai.com",
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (p *OpenAIProvider) SuggestDiet(ctx context.Context, req DietSuggestionRequest) ([]DietSuggestion, error) {
	content, err := p.complete(ctx, dietSystemPrompt, p.dietUserPrompt(req))
	if err != nil {
		return nil, err
	}

	var suggestions []DietSuggestion
	if err := decodeStrict(content, &suggestions); err != nil {
		return nil, err
	}
	for _, s := range suggestions {
		if s.FoodName == "" || s.MealSlot == "" || s.QuantityGm <= 0 {
			return nil, fmt.Errorf("%w: incomplete diet suggestion", ErrBadResponse)
		}
	}
	return suggestions, nil
}

func (p *OpenAIProvider) SuggestWorkout(ctx context.Context, req WorkoutSuggestionRequest) ([]WorkoutSuggestion, error) {
	content, err := p.complete(ctx, workoutSystemPrompt, p.workoutUserPrompt(req))
	if err != nil {
		return nil, err
	}

	var suggestions []WorkoutSuggestion
	if err := decodeStrict(content, &suggestions); err != nil {
		return nil, err
	}
	for _, s := range suggestions {
		if s.ActivityName == "" || s.TimeSlot == "" || s.DurationMin <= 0 {
			return nil, fmt.Errorf("%w: incomplete workout suggestion", ErrBadResponse)
		}
	}
	return suggestions, nil
}

const dietSystemPrompt = "You are a nutrition planner. Reply with a JSON array only, no prose. " +
	"Each element must be exactly {\"food_name\":\"...\",\"meal_slot\":\"...\",\"quantity_gm\":123}. " +
	"food_name must be one of the offered foods, meal_slot one of the missing slots, " +
	"quantity_gm a positive number of grams. Suggest at most one item per missing slot. " +
	"Never invent foods, never add other keys, never wrap the array in markdown."

const workoutSystemPrompt = "You are a workout planner. Reply with a JSON array only, no prose. " +
	"Each element must be exactly {\"activity_name\":\"...\",\"time_slot\":\"...\",\"duration_min\":30}. " +
	"activity_name must be one of the offered activities and must not repeat an already planned one; " +
	"time_slot is morning, afternoon or evening; duration_min a positive number of minutes. " +
	"Never invent activities, never add other keys, never wrap the array in markdown."

func (p *OpenAIProvider) dietUserPrompt(req DietSuggestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s. Goal: %s. Daily calorie target: %.0f kcal.\n", req.Date, req.Goal, req.TargetCalories)
	fmt.Fprintf(&b, "Missing meal slots: %s.\n", strings.Join(req.MissingSlots, ", "))
	b.WriteString("Offered foods (name, kcal, protein g, per serving g):\n")
	for _, f := range req.Foods {
		fmt.Fprintf(&b, "- %s, %.0f kcal, %.1f g protein, per %.0f g\n", f.Name, f.Calories, f.Protein, f.ServingSizeGm)
	}
	return b.String()
}

func (p *OpenAIProvider) workoutUserPrompt(req WorkoutSuggestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Date: %s. Goal: %s. Activity level: %s. Body weight: %.0f kg. Target burn: %.0f kcal.\n",
		req.Date, req.Goal, req.ActivityLevel, req.WeightKg, req.TargetBurn)
	if len(req.ExistingActivities) > 0 {
		fmt.Fprintf(&b, "Already planned today: %s.\n", strings.Join(req.ExistingActivities, ", "))
	}
	b.WriteString("Offered activities (name, kcal per kg, reference minutes):\n")
	for _, a := range req.Activities {
		fmt.Fprintf(&b, "- %s, %.1f kcal/kg, per %.0f min\n", a.Name, a.CaloriesPerKg, a.DurationMin)
	}
	return b.String()
}

func (p *OpenAIProvider) complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	requestPayload := chatCompletionsRequest{
		Model:       p.model,
		Temperature: p.temperature,
		MaxTokens:   p.maxTokens,
		Messages: []chatMessageRequest{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(requestPayload)
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("openai request failed with status %d", resp.StatusCode)
	}

	var parsed chatCompletionsResponse
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("openai response does not contain choices")
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

// decodeStrict parses the model reply into out. Markdown code fences are
// stripped first; unknown JSON keys fail the decode.
func decodeStrict(content string, out any) error {
	content = stripCodeFences(content)

	dec := json.NewDecoder(strings.NewReader(content))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	// Trailing garbage after the array is a violation too.
	if dec.More() {
		return fmt.Errorf("%w: trailing content", ErrBadResponse)
	}
	return nil
}

// stripCodeFences removes a ```json ... ``` (or bare ```) wrapper that chat
// models like to add despite instructions.
func stripCodeFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```")
	if idx := strings.Index(content, "\n"); idx != -1 {
		// Drop the language tag line ("json", "JSON", or empty).
		firstLine := strings.TrimSpace(content[:idx])
		if firstLine == "" || strings.EqualFold(firstLine, "json") {
			content = content[idx+1:]
		}
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

type chatCompletionsRequest struct {
	Model       string               `json:"model"`
	Messages    []chatMessageRequest `json:"messages"`
	Temperature float64              `json:"temperature"`
	MaxTokens   int                  `json:"max_tokens"`
}

type chatMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}
