package config

// BackendType selects which summarization backend answers a request.
type BackendType string

const (
	// BackendLocal uses the deterministic offline summarizer.
	BackendLocal BackendType = "local"
	// BackendRemote uses the DeepSeek-compatible endpoint with payload
	// format negotiation.
	BackendRemote BackendType = "remote"
	// BackendOpenAI uses the OpenAI Chat Completions API.
	BackendOpenAI BackendType = "openai"
)

// Config is the top-level studycard configuration, corresponding to .studycard.yml.
type Config struct {
	Backend     BackendType `yaml:"backend" koanf:"backend"`
	EndpointURL string      `yaml:"endpoint_url" koanf:"endpoint_url"`
	APIKey      string      `yaml:"api_key" koanf:"api_key"`
	ModelID     string      `yaml:"model_id" koanf:"model_id"`
	OpenAIModel string      `yaml:"openai_model" koanf:"openai_model"`

	Port      int    `yaml:"port" koanf:"port"`
	UploadDir string `yaml:"upload_dir" koanf:"upload_dir"`
	OutputDir string `yaml:"output_dir" koanf:"output_dir"`
	FontPath  string `yaml:"font_path" koanf:"font_path"`

	OCRCommand      string `yaml:"ocr_command" koanf:"ocr_command"`
	OCRLang         string `yaml:"ocr_lang" koanf:"ocr_lang"`
	UseAlternateOCR bool   `yaml:"use_alternate_ocr" koanf:"use_alternate_ocr"`
	AltOCRCommand   string `yaml:"alt_ocr_command" koanf:"alt_ocr_command"`
}

// DefaultConfig returns a Config with sensible defaults. The local backend
// is the default so a fresh checkout works without any credentials.
func DefaultConfig() *Config {
	return &Config{
		Backend:     BackendLocal,
		OpenAIModel: "gpt-4o-mini",
		Port:        8080,
		UploadDir:   "uploads",
		OutputDir:   "outputs",
		OCRCommand:  "tesseract",
		OCRLang:     "chi_sim+eng",
	}
}
