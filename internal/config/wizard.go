package config

import (
	"fmt"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to the given path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to studycard! Let's configure the app.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Backend selection.
	backendPrompt := promptui.Select{
		Label: "Select summarization backend",
		Items: []string{
			"local  - offline rule-based summarizer, no credentials needed",
			"remote - DeepSeek-compatible endpoint with format negotiation",
			"openai - OpenAI Chat Completions",
		},
	}
	backendIdx, _, err := backendPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend selection: %w", err)
	}
	backends := []BackendType{BackendLocal, BackendRemote, BackendOpenAI}
	cfg.Backend = backends[backendIdx]

	switch cfg.Backend {
	case BackendRemote:
		urlPrompt := promptui.Prompt{Label: "Endpoint URL"}
		if cfg.EndpointURL, err = urlPrompt.Run(); err != nil {
			return nil, fmt.Errorf("endpoint url: %w", err)
		}
		keyPrompt := promptui.Prompt{Label: "API key", Mask: '*'}
		if cfg.APIKey, err = keyPrompt.Run(); err != nil {
			return nil, fmt.Errorf("api key: %w", err)
		}
		modelPrompt := promptui.Prompt{Label: "Model identifier (optional, tried last)", Default: ""}
		if cfg.ModelID, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("model id: %w", err)
		}
	case BackendOpenAI:
		keyPrompt := promptui.Prompt{Label: "OpenAI API key", Mask: '*'}
		if cfg.APIKey, err = keyPrompt.Run(); err != nil {
			return nil, fmt.Errorf("api key: %w", err)
		}
		modelPrompt := promptui.Prompt{Label: "OpenAI model", Default: cfg.OpenAIModel}
		if cfg.OpenAIModel, err = modelPrompt.Run(); err != nil {
			return nil, fmt.Errorf("openai model: %w", err)
		}
	}

	// 2. Directories.
	uploadPrompt := promptui.Prompt{Label: "Upload directory", Default: cfg.UploadDir}
	if cfg.UploadDir, err = uploadPrompt.Run(); err != nil {
		return nil, fmt.Errorf("upload dir: %w", err)
	}
	outputPrompt := promptui.Prompt{Label: "Output directory (PDFs, success examples)", Default: cfg.OutputDir}
	if cfg.OutputDir, err = outputPrompt.Run(); err != nil {
		return nil, fmt.Errorf("output dir: %w", err)
	}

	// 3. OCR.
	langPrompt := promptui.Prompt{Label: "Tesseract language(s)", Default: cfg.OCRLang}
	if cfg.OCRLang, err = langPrompt.Run(); err != nil {
		return nil, fmt.Errorf("ocr language: %w", err)
	}

	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}
