// Package provider selects and constructs the LLM chat backend at runtime.
// Supported backends: Ollama, OpenAI, Azure OpenAI, AWS Bedrock, Google Gemini.
package provider

import "fmt"

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
	// BackendOpenAI selects the OpenAI API.
	BackendOpenAI Backend = "openai"
	// BackendAzure selects Azure OpenAI Service.
	BackendAzure Backend = "azure"
	// BackendBedrock selects AWS Bedrock.
	BackendBedrock Backend = "bedrock"
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
)

// ProviderOllama holds Ollama-specific settings.
type ProviderOllama struct {
	// Host is the Ollama server base URL (e.g. "http://localhost:11434").
	Host string
	// Model is the Ollama model name (e.g. "llama3").
	Model string
}

// ProviderOpenAI holds OpenAI-specific settings.
type ProviderOpenAI struct {
	// APIKey is the OpenAI API key.
	APIKey string
	// Model is the model name (e.g. "gpt-4o").
	Model string
}

// ProviderAzureOpenAI holds Azure OpenAI Service settings.
type ProviderAzureOpenAI struct {
	// APIKey is the Azure OpenAI API key.
	APIKey string
	// Endpoint is the resource endpoint (e.g. "https://my.openai.azure.com").
	Endpoint string
	// Deployment is the deployment name (used in place of the model name).
	Deployment string
	// APIVersion is the Azure OpenAI REST API version (e.g. "2024-02-01").
	APIVersion string
}

// ProviderBedrock holds AWS Bedrock settings. AWS credentials are resolved
// via the standard SDK credential chain and are not part of this struct.
type ProviderBedrock struct {
	// AWSRegion is the AWS region hosting the Bedrock runtime.
	AWSRegion string
	// ModelID is the Bedrock model identifier (e.g. "anthropic.claude-3").
	ModelID string
	// Endpoint optionally overrides the Bedrock-compatible runtime endpoint.
	Endpoint string
	// APIKey optionally carries a bearer credential for gateway deployments.
	APIKey string
}

// ProviderGemini holds Google Gemini settings.
type ProviderGemini struct {
	// APIKey is the Google AI Studio API key.
	APIKey string
	// Model is the Gemini model name (e.g. "gemini-1.5-pro").
	Model string
}

// SharedTuning holds generation parameters applied regardless of backend.
type SharedTuning struct {
	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int
	// Temperature controls response randomness (0.0 to 1.0).
	Temperature float32
}

// Config holds all provider-level configuration resolved from environment
// variables or explicit caller-supplied values. Only the section matching
// Backend is consulted when constructing the chat model.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	Ollama      ProviderOllama
	OpenAI      ProviderOpenAI
	AzureOpenAI ProviderAzureOpenAI
	Bedrock     ProviderBedrock
	Gemini      ProviderGemini

	// Tuning holds generation parameters shared across backends.
	Tuning SharedTuning
}

// Validate checks that the section selected by Backend carries everything the
// backend needs. Error messages name the environment variable that resolves
// the missing field so startup failures are actionable.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendOllama:
		if c.Ollama.Model == "" {
			return fmt.Errorf("provider: OLLAMA_MODEL is required for ollama backend")
		}
	case BackendOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("provider: OPENAI_API_KEY is required for openai backend")
		}
		if c.OpenAI.Model == "" {
			return fmt.Errorf("provider: OPENAI_MODEL is required for openai backend")
		}
	case BackendAzure:
		if c.AzureOpenAI.APIKey == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_API_KEY is required for azure backend")
		}
		if c.AzureOpenAI.Endpoint == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_ENDPOINT is required for azure backend")
		}
		if c.AzureOpenAI.Deployment == "" {
			return fmt.Errorf("provider: AZURE_OPENAI_DEPLOYMENT is required for azure backend")
		}
	case BackendBedrock:
		if c.Bedrock.ModelID == "" {
			return fmt.Errorf("provider: BEDROCK_MODEL_ID is required for bedrock backend")
		}
		if c.Bedrock.AWSRegion == "" {
			return fmt.Errorf("provider: AWS_REGION is required for bedrock backend")
		}
	case BackendGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("provider: GOOGLE_API_KEY is required for gemini backend")
		}
		if c.Gemini.Model == "" {
			return fmt.Errorf("provider: GEMINI_MODEL is required for gemini backend")
		}
	default:
		return fmt.Errorf("provider: unknown backend %q — valid values: ollama, openai, azure, bedrock, gemini", c.Backend)
	}
	return nil
}
