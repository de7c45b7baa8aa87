package config

import (
	"encoding/json"
	"os"

	"github.com/osavchuk/authsvc/internal/flagx"
	"github.com/osavchuk/authsvc/internal/timex"
)

// JsonConfig is an intermediate DTO for reading JSON configuration files.
// Duration fields accept both strings such as "1h" and integer nanoseconds.
// After unmarshalling, set fields are copied into the runtime Config.
type JsonConfig struct {
	EndpointAddr                 string          `json:"endpoint_addr"`
	DatabaseDSN                  string          `json:"database_dsn"`
	TokenIssuer                  string          `json:"token_issuer"`
	CookieDomain                 string          `json:"cookie_domain"`
	RefreshTokenSecret           string          `json:"refresh_token_secret"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	RefreshTokenCleanupInterval  *timex.Duration `json:"refresh_token_cleanup_interval"`
	KeySource                    string          `json:"key_source"`
	PrivateKeyPath               string          `json:"private_key_path"`
	RetiredPublicKeyPaths        []string        `json:"retired_public_key_paths"`
	S3Bucket                     string          `json:"s3_bucket"`
	S3Region                     string          `json:"s3_region"`
	S3RootUser                   string          `json:"s3_root_user"`
	S3RootPassword               string          `json:"s3_root_password"`
	S3BaseEndpoint               string          `json:"s3_base_endpoint"`
	S3PrivateKeyObject           string          `json:"s3_private_key_object"`
	S3PublicKeyPrefix            string          `json:"s3_public_key_prefix"`
}

// parseJson loads configuration values from the JSON file named by the
// -c/-config flags into the provided Config. Absent file path means nothing
// is loaded; an unreadable or invalid file panics, since starting with half a
// config is worse than not starting.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	if c.EndpointAddr != "" {
		config.EndpointAddr = c.EndpointAddr
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.TokenIssuer != "" {
		config.TokenIssuer = c.TokenIssuer
	}
	if c.CookieDomain != "" {
		config.CookieDomain = c.CookieDomain
	}
	if c.RefreshTokenSecret != "" {
		config.RefreshTokenSecret = c.RefreshTokenSecret
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.RefreshTokenCleanupInterval != nil {
		config.RefreshTokenCleanupInterval = c.RefreshTokenCleanupInterval.Duration
	}
	if c.KeySource != "" {
		config.KeySource = c.KeySource
	}
	if c.PrivateKeyPath != "" {
		config.PrivateKeyPath = c.PrivateKeyPath
	}
	if len(c.RetiredPublicKeyPaths) > 0 {
		config.RetiredPublicKeyPaths = c.RetiredPublicKeyPaths
	}
	if c.S3Bucket != "" {
		config.S3Bucket = c.S3Bucket
	}
	if c.S3Region != "" {
		config.S3Region = c.S3Region
	}
	if c.S3RootUser != "" {
		config.S3RootUser = c.S3RootUser
	}
	if c.S3RootPassword != "" {
		config.S3RootPassword = c.S3RootPassword
	}
	if c.S3BaseEndpoint != "" {
		config.S3BaseEndpoint = c.S3BaseEndpoint
	}
	if c.S3PrivateKeyObject != "" {
		config.S3PrivateKeyObject = c.S3PrivateKeyObject
	}
	if c.S3PublicKeyPrefix != "" {
		config.S3PublicKeyPrefix = c.S3PublicKeyPrefix
	}
}
