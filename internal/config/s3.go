package config

// S3Config holds the blob storage settings for ingested documents and
// generated exports.
type S3Config struct {
	Enabled               bool   `mapstructure:"enabled"`
	Region                string `mapstructure:"region"`
	Bucket                string `mapstructure:"bucket"`
	KeyPrefix             string `mapstructure:"key_prefix"`
	PresignExpiryDuration string `mapstructure:"presign_expiry_duration" default:"30m"`
}
