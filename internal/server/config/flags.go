package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/osavchuk/authsvc/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5501")
//	-d string   PostgreSQL DSN
//	-i string   token issuer name
//	-m string   cookie domain
//	-s string   refresh token HMAC secret
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-k string   key source ("file" or "s3")
//	-p string   private key PEM path (file source)
//	-q string   comma-separated retired public key PEM paths (file source)
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components. Duration flags
// are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-i", "-m", "-s", "-t", "-r", "-k", "-p", "-q"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.TokenIssuer, "i", config.TokenIssuer, "token issuer name")
	fs.StringVar(&config.CookieDomain, "m", config.CookieDomain, "cookie domain")
	fs.StringVar(&config.RefreshTokenSecret, "s", config.RefreshTokenSecret, "refresh token secret")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	fs.StringVar(&config.KeySource, "k", config.KeySource, "key source (file or s3)")
	fs.StringVar(&config.PrivateKeyPath, "p", config.PrivateKeyPath, "private key PEM path")
	retired := fs.String("q", strings.Join(config.RetiredPublicKeyPaths, ","), "retired public key PEM paths, comma-separated")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute

	config.RetiredPublicKeyPaths = nil
	for _, path := range strings.Split(*retired, ",") {
		if path = strings.TrimSpace(path); path != "" {
			config.RetiredPublicKeyPaths = append(config.RetiredPublicKeyPaths, path)
		}
	}
}
