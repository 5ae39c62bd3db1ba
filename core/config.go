package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Config struct {
		AppName         string
		Build           string
		Env             string // DEV (local; default), TEST, QA, PROD
		Debug           bool
		TestMode        bool
		SecretKey       string
		WorkDir         string
		FrontendBaseURL string
		SendgridApiKey  string
		RollbarToken    string

		defaultFromEmail string

		Server serverConfig
		Store  storeConfig
		Redis  redisConfig
		Media  mediaConfig
		Invite inviteConfig
	}

	serverConfig struct {
		Host               string
		Address            string
		DebugHost          string
		ShutdownTimeout    time.Duration
		JWTExpirationDelta time.Duration
		RateLimit          float64 // requests per second, per client IP
		RateBurst          int
	}

	storeConfig struct {
		Driver          string // memory | mongo | firestore | postgres
		URL             string
		Name            string
		ProjectID       string
		CredentialsFile string
	}

	redisConfig struct {
		URL string // empty: in-process queue, receipts & sessions
	}

	mediaConfig struct {
		Driver          string // local | cloudinary
		Dir             string
		BaseURL         string
		CloudName       string
		CloudAPIKey     string
		CloudAPISecret  string
		CloudFolder     string
		MaxVideoSize    int64
		MaxDocumentSize int64
	}

	inviteConfig struct {
		SenderName          string
		SenderEmail         string
		TemplateID          string
		RegistrationBaseURL string
		LockTTL             time.Duration
	}
)

// NewConfig reads the configuration from the environment (and `config/.env.<env>` if it exists).
func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("appName", "Campus Attendance")
	conf.SetDefault("build", "develop")
	conf.SetDefault("debug", true)
	conf.SetDefault("secretKey", "q8n2-ke0)zr$+4v=gx&wpd3h(k!y)#*u1(#tb6f^$mad9s2")
	conf.SetDefault("defaultFromEmail", "Campus Attendance <noreply@localhost>")
	conf.SetDefault("frontendBaseURL", "http://localhost:5173")

	conf.SetDefault("serverHost", "localhost")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDebugHost", ":4000")
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("jwtExpirationDelta", 12*time.Hour)
	conf.SetDefault("serverRateLimit", 5.0)
	conf.SetDefault("serverRateBurst", 10)

	conf.SetDefault("storeDriver", "memory")
	conf.SetDefault("storeURL", "mongodb://localhost:27017")
	conf.SetDefault("storeName", "campus")

	conf.SetDefault("mediaDriver", "local")
	conf.SetDefault("mediaDir", "media")
	conf.SetDefault("mediaBaseURL", "/media")
	conf.SetDefault("mediaCloudFolder", "campus")
	conf.SetDefault("mediaMaxVideoSize", int64(50<<20))
	conf.SetDefault("mediaMaxDocumentSize", int64(10<<20))

	conf.SetDefault("inviteSenderName", "MVJCE Attendance")
	conf.SetDefault("inviteSenderEmail", "YOUR_VERIFIED_SENDER@mvjce.edu.in")
	conf.SetDefault("inviteTemplateID", "d-0830e1f6d430414c8b3488a572e5e8fc")
	conf.SetDefault("inviteRegistrationBaseURL", "http://localhost:5173/register")
	conf.SetDefault("inviteLockTTL", 2*time.Minute)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	workDir := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(workDir, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	return &Config{
		AppName:          conf.GetString("appName"),
		Build:            conf.GetString("build"),
		Env:              env,
		Debug:            conf.GetBool("debug"),
		TestMode:         conf.GetBool("testMode"),
		SecretKey:        conf.GetString("secretKey"),
		WorkDir:          workDir,
		FrontendBaseURL:  conf.GetString("frontendBaseURL"),
		SendgridApiKey:   conf.GetString("sendgridApiKey"),
		RollbarToken:     conf.GetString("rollbarToken"),
		defaultFromEmail: conf.GetString("defaultFromEmail"),
		Server: serverConfig{
			Host:               conf.GetString("serverHost"),
			Address:            conf.GetString("serverAddress"),
			DebugHost:          conf.GetString("serverDebugHost"),
			ShutdownTimeout:    conf.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
			RateLimit:          conf.GetFloat64("serverRateLimit"),
			RateBurst:          conf.GetInt("serverRateBurst"),
		},
		Store: storeConfig{
			Driver:          strings.ToLower(conf.GetString("storeDriver")),
			URL:             conf.GetString("storeURL"),
			Name:            conf.GetString("storeName"),
			ProjectID:       conf.GetString("storeProjectID"),
			CredentialsFile: conf.GetString("storeCredentialsFile"),
		},
		Redis: redisConfig{
			URL: conf.GetString("redisURL"),
		},
		Media: mediaConfig{
			Driver:          strings.ToLower(conf.GetString("mediaDriver")),
			Dir:             conf.GetString("mediaDir"),
			BaseURL:         conf.GetString("mediaBaseURL"),
			CloudName:       conf.GetString("mediaCloudName"),
			CloudAPIKey:     conf.GetString("mediaCloudAPIKey"),
			CloudAPISecret:  conf.GetString("mediaCloudAPISecret"),
			CloudFolder:     conf.GetString("mediaCloudFolder"),
			MaxVideoSize:    conf.GetInt64("mediaMaxVideoSize"),
			MaxDocumentSize: conf.GetInt64("mediaMaxDocumentSize"),
		},
		Invite: inviteConfig{
			SenderName:          conf.GetString("inviteSenderName"),
			SenderEmail:         conf.GetString("inviteSenderEmail"),
			TemplateID:          conf.GetString("inviteTemplateID"),
			RegistrationBaseURL: conf.GetString("inviteRegistrationBaseURL"),
			LockTTL:             conf.GetDuration("inviteLockTTL"),
		},
	}
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.defaultFromEmail)
	if err != nil {
		return mail.Address{Address: c.defaultFromEmail}
	}
	return *addr
}

func (c *Config) InviteSender() mail.Address {
	return mail.Address{Name: c.Invite.SenderName, Address: c.Invite.SenderEmail}
}
