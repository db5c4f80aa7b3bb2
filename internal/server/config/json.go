package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/flagx"
	"github.com/dmitrijs2005/tabliya/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Durations use
// timex.Duration, so both "15m"/"30d" strings and integer nanoseconds work.
// Zero values mean "not set" and leave the current value alone.
type JsonConfig struct {
	Env                      string         `json:"env"`
	EndpointAddrHTTP         string         `json:"endpoint_addr_http"`
	DatabaseDSN              string         `json:"database_dsn"`
	SecretKey                string         `json:"secret_key"`
	AccessTokenCookieMaxAge  timex.Duration `json:"access_token_cookie_max_age"`
	RefreshTokenCookieMaxAge timex.Duration `json:"refresh_token_cookie_max_age"`
	PasswordResetTokenTTL    timex.Duration `json:"password_reset_token_ttl"`
	FrontendOrigin           string         `json:"frontend_origin"`

	EmailProvider string `json:"email_provider"`
	EmailFrom     string `json:"email_from"`
	SMTPHost      string `json:"smtp_host"`
	SMTPPort      string `json:"smtp_port"`
	SMTPUser      string `json:"smtp_user"`
	SMTPPassword  string `json:"smtp_password"`
	MailgunDomain string `json:"mailgun_domain"`
	MailgunKey    string `json:"mailgun_key"`
	SendGridKey   string `json:"sendgrid_key"`

	RedisAddr       string         `json:"redis_addr"`
	RateLimitMax    int            `json:"rate_limit_max"`
	RateLimitWindow timex.Duration `json:"rate_limit_window"`

	S3RootUser     string `json:"s3_root_user"`
	S3RootPassword string `json:"s3_root_password"`
	S3Bucket       string `json:"s3_bucket"`
	S3Region       string `json:"s3_region"`
	S3BaseEndpoint string `json:"s3_base_endpoint"`
}

// parseJson overlays values from the JSON file named by -c/-config (or
// $TABLIYA_CONFIG) onto config. Keys missing from the file keep their
// current value. An unreadable or malformed file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigPath()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.Env, c.Env)
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenCookieMaxAge, c.AccessTokenCookieMaxAge)
	setDuration(&config.RefreshTokenCookieMaxAge, c.RefreshTokenCookieMaxAge)
	setDuration(&config.PasswordResetTokenTTL, c.PasswordResetTokenTTL)
	setString(&config.FrontendOrigin, c.FrontendOrigin)

	setString(&config.EmailProvider, c.EmailProvider)
	setString(&config.EmailFrom, c.EmailFrom)
	setString(&config.SMTPHost, c.SMTPHost)
	setString(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setString(&config.MailgunDomain, c.MailgunDomain)
	setString(&config.MailgunKey, c.MailgunKey)
	setString(&config.SendGridKey, c.SendGridKey)

	setString(&config.RedisAddr, c.RedisAddr)
	if c.RateLimitMax > 0 {
		config.RateLimitMax = c.RateLimitMax
	}
	setDuration(&config.RateLimitWindow, c.RateLimitWindow)

	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration != 0 {
		*dst = v.Duration
	}
}
