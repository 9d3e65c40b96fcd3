package config

const DefaultMaxUploadBytes = 10 << 20 // 10 MiB

// GmailConfig holds the OAuth application credentials shared by all users.
// Per-user refresh tokens live in their (encrypted) settings record.
type GmailConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url"`
}

// WhatsAppConfig holds the WhatsApp Business webhook settings.
type WhatsAppConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	VerifyToken string `mapstructure:"verify_token"`
	AppSecret   string `mapstructure:"app_secret"`
	AccessToken string `mapstructure:"access_token"`
	GraphAPIURL string `mapstructure:"graph_api_url" default:"https://graph.facebook.com/v19.0"`
}

// OCRConfig holds the text-detection provider settings.
type OCRConfig struct {
	Provider string `mapstructure:"provider" default:"GOOGLE_VISION"`
	// APIKey authenticates against the Vision images:annotate endpoint
	APIKey      string `mapstructure:"api_key"`
	EndpointURL string `mapstructure:"endpoint_url" default:"https://vision.googleapis.com/v1/images:annotate"`
}

// UploadConfig bounds direct file uploads.
type UploadConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
}
