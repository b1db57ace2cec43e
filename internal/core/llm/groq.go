package llm

// Groq uses OpenAI-compatible API with custom base URL. Its Llama 4 models
// accept images; it has no image generation endpoint.
func NewGroqProvider(apiKey string, model string, temperature float32, maxTokens int) *OpenAIProvider {
	if model == "" {
		model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	return NewOpenAIProvider(apiKey, model, temperature, maxTokens,
		WithBaseURL("https://api.groq.com/openai/v1"),
		withName("Groq"),
		withCapabilities(true, false),
	)
}
