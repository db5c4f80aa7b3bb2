package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/tabliya/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-m string   environment ("development", "production")
//	-a string   HTTP bind address (e.g., ":5000")
//	-d string   PostgreSQL DSN
//	-s string   JWT and cookie HMAC secret key
//	-t int      access token cookie max-age, minutes
//	-r int      refresh token cookie max-age, minutes
//	-x int      password reset token validity, minutes
//	-o string   frontend origin used in email links and CORS
//	-k string   email provider (log, smtp, mailgun, sendgrid)
//	-l string   Redis address for the rate limiter
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// Duration flags are accepted as integers in minutes.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-m", "-a", "-d", "-s", "-t", "-r", "-x", "-o", "-k", "-l", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.Env, "m", config.Env, "environment")
	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessMaxAge := fs.Int("t", int(config.AccessTokenCookieMaxAge.Minutes()), "access token cookie max-age (in minutes)")
	refreshMaxAge := fs.Int("r", int(config.RefreshTokenCookieMaxAge.Minutes()), "refresh token cookie max-age (in minutes)")
	resetTTL := fs.Int("x", int(config.PasswordResetTokenTTL.Minutes()), "password reset token validity (in minutes)")

	fs.StringVar(&config.FrontendOrigin, "o", config.FrontendOrigin, "frontend origin")
	fs.StringVar(&config.EmailProvider, "k", config.EmailProvider, "email provider")
	fs.StringVar(&config.RedisAddr, "l", config.RedisAddr, "redis address")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AccessTokenCookieMaxAge = time.Duration(*accessMaxAge) * time.Minute
	config.RefreshTokenCookieMaxAge = time.Duration(*refreshMaxAge) * time.Minute
	config.PasswordResetTokenTTL = time.Duration(*resetTTL) * time.Minute
}
