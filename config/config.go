package config

import (
	"errors"
	"flag"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	Debug       bool

	OpenAI OpenAI
	OAuth  OAuth
}

// OpenAI configures the chat-completion collaborator. BaseURL may point at
// any OpenAI-compatible endpoint.
type OpenAI struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// OAuth configures the external identity provider used by the
// authorization-code callback. Empty ClientID disables the flow.
type OAuth struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	RedirectURL  string
}

func ParseFlags() (cfg Config, err error) {
	var host string
	flag.StringVar(&host, "host", "0.0.0.0", "listen host name (default 0.0.0.0)")
	var port uint
	flag.UintVar(&port, "port", 80, "listen port number (default 80)")
	flag.StringVar(&cfg.DBUrl, "db-url", "lexiform.sqlite", "path to SQLite3 DB file (default lexiform.sqlite)")
	flag.StringVar(&cfg.TokenSecret, "token-secret", "", "secret key for token encryption and decryption")
	var ttl uint
	flag.UintVar(&ttl, "token-ttl", 3600, "token TTL in seconds (default 3600)")
	flag.BoolVar(&cfg.Debug, "debug", false, "log at DEBUG level")

	flag.StringVar(&cfg.OpenAI.BaseURL, "openai-base-url", "https://api.openai.com/v1", "chat completion API base URL")
	flag.StringVar(&cfg.OpenAI.Model, "openai-model", "gpt-4o-mini", "chat completion model name")
	flag.Float64Var(&cfg.OpenAI.Temperature, "openai-temperature", 0.7, "chat completion sampling temperature")
	flag.IntVar(&cfg.OpenAI.MaxTokens, "openai-max-tokens", 1000, "chat completion token budget")

	flag.StringVar(&cfg.OAuth.ClientID, "oauth-client-id", "", "OAuth client id (leave empty to disable code-exchange login)")
	flag.StringVar(&cfg.OAuth.AuthURL, "oauth-auth-url", "", "OAuth provider authorization URL")
	flag.StringVar(&cfg.OAuth.TokenURL, "oauth-token-url", "", "OAuth provider token URL")
	flag.StringVar(&cfg.OAuth.UserInfoURL, "oauth-userinfo-url", "", "OAuth provider userinfo URL")
	flag.StringVar(&cfg.OAuth.RedirectURL, "oauth-redirect-url", "", "OAuth redirect URL back to this server")
	flag.Parse()

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second

	// secrets come from the environment, never from the command line
	cfg.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OAuth.ClientSecret = os.Getenv("OAUTH_CLIENT_SECRET")

	if cfg.TokenSecret == "" {
		cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	}
	if cfg.TokenSecret == "" {
		err = errors.New("missing parameter -token-secret")
	}

	return
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
