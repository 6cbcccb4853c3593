package configs

import (
	"log"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var loadEnvOnce sync.Once

// loadEnv pulls in a .env file when one exists. Running without one is
// fine; deployments set real environment variables.
func loadEnv() {
	loadEnvOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Println("configs: no .env file loaded, using process environment")
		}
	})
}

func EnvMongoURI() string {
	loadEnv()
	return os.Getenv("MONGOURI")
}

func EnvMongoDatabase() string {
	loadEnv()
	if name := os.Getenv("MONGO_DB"); name != "" {
		return name
	}
	return "storefront"
}

func EnvRedisAddr() string {
	loadEnv()
	return os.Getenv("REDIS_ADDR")
}

func EnvRazorpayKeyID() string {
	loadEnv()
	return os.Getenv("RAZORPAY_KEY_ID")
}

func EnvRazorpayKeySecret() string {
	loadEnv()
	return os.Getenv("RAZORPAY_KEY_SECRET")
}

func EnvBrevoAPIKey() string {
	loadEnv()
	return os.Getenv("BREVO_API_KEY")
}

func EnvBrevoFromEmail() string {
	loadEnv()
	if from := os.Getenv("BREVO_FROM_EMAIL"); from != "" {
		return from
	}
	return "noreply@example.com"
}

func EnvBrevoFromName() string {
	loadEnv()
	if name := os.Getenv("BREVO_FROM_NAME"); name != "" {
		return name
	}
	return "Storefront"
}

func EnvBrevoReplyTo() string {
	loadEnv()
	return os.Getenv("BREVO_REPLY_TO")
}

// EnvBrevoTimeout bounds a single email send attempt. The provider API can
// be slow with image-heavy bodies, hence the generous default.
func EnvBrevoTimeout() time.Duration {
	loadEnv()
	if raw := os.Getenv("BREVO_TIMEOUT_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 60 * time.Second
}

func EnvJWTSecret() string {
	loadEnv()
	return os.Getenv("JWT_SECRET")
}

func EnvPort() string {
	loadEnv()
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "3000"
}
