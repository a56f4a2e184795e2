package config

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"os"

	"github.com/joho/godotenv"

	"github.com/poofware/timeclock-service/internal/utils"
)

const AppName = "timeclock-service"

type Config struct {
	AppName string
	AppPort string
	AppUrl  string

	// Database
	DBUrl string

	// Auth: tokens are issued elsewhere; we only hold the verification key.
	RSAPublicKey *rsa.PublicKey

	// Flags
	SeedTestData       bool
	CORSAllowLocalhost bool
}

func LoadConfig() *Config {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	utils.Logger.Info("Loading config for app: ", AppName)

	appPort := os.Getenv("APP_PORT")
	if appPort == "" {
		utils.Logger.Fatal("APP_PORT env var is missing")
	}
	appUrl := os.Getenv("APP_URL")
	if appUrl == "" {
		utils.Logger.Fatal("APP_URL env var is missing")
	}
	dbUrl := os.Getenv("DB_URL")
	if dbUrl == "" {
		utils.Logger.Fatal("DB_URL env var is missing")
	}

	pubKeyB64 := os.Getenv("JWT_PUBLIC_KEY_BASE64")
	if pubKeyB64 == "" {
		utils.Logger.Fatal("JWT_PUBLIC_KEY_BASE64 env var is missing")
	}
	pubKey, err := parseRSAPublicKeyB64(pubKeyB64)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse JWT_PUBLIC_KEY_BASE64")
	}

	return &Config{
		AppName:            AppName,
		AppPort:            appPort,
		AppUrl:             appUrl,
		DBUrl:              dbUrl,
		RSAPublicKey:       pubKey,
		SeedTestData:       os.Getenv("SEED_TEST_DATA") == "true",
		CORSAllowLocalhost: os.Getenv("CORS_ALLOW_LOCALHOST") == "true",
	}
}

func parseRSAPublicKeyB64(b64 string) (*rsa.PublicKey, error) {
	pemBytes, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	block, _ := pem.Decode(pemBytes)
	if block == nil {
		return nil, errors.New("no PEM block found")
	}
	parsed, err := x509.ParsePKIXPublicKey(block.Bytes)
	if err != nil {
		return nil, err
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, errors.New("key is not RSA")
	}
	return pub, nil
}
