package utils

import (
	"gopkg.in/yaml.v2"
	"log"
	"os"
	"strings"
)

type Config struct {
	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// Server
	AppPort  string `yaml:"APP_PORT"`
	Timezone string `yaml:"TIMEZONE"`

	// Session keys
	JWTSecret    string `yaml:"JWT_SECRET"`
	AdminPinHash string `yaml:"ADMIN_PIN_HASH"`
	StaffPinHash string `yaml:"STAFF_PIN_HASH"`

	// Mailing configuration
	SMTPHost         string `yaml:"SMTP_HOST"`
	SMTPPort         string `yaml:"SMTP_PORT"`
	SMTPSenderName   string `yaml:"SMTP_SENDER_NAME"`
	SMTPAuthEmail    string `yaml:"SMTP_AUTH_EMAIL"`
	SMTPAuthPassword string `yaml:"SMTP_AUTH_PASSWORD"`
	KitchenEmail     string `yaml:"KITCHEN_EMAIL"`

	// AWS S3 configuration
	AWSS3Bucket  string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region  string `yaml:"AWS_S3_REGION"`
	AWSAccessKey string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey string `yaml:"AWS_SECRET_KEY"`

	// Gemini API configuration
	GeminiAPIKey         string `yaml:"GEMINI_API_KEY"`
	GeminiModel          string `yaml:"GEMINI_MODEL"`
	GeminiTimeoutSeconds string `yaml:"GEMINI_TIMEOUT_SECONDS"`

	// Kitchen event stream
	KafkaBrokers string `yaml:"KAFKA_BROKERS"`
	KafkaTopic   string `yaml:"KAFKA_TOPIC"`
}

var config Config

var configPath = "config.yaml"

// SetConfigPath changes the file LoadConfig reads.
func SetConfigPath(path string) {
	if path != "" {
		configPath = path
	}
}

func LoadConfig() {
	file, err := os.ReadFile(configPath)
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}

	// Set environment variables for keys that should be accessible via os.Getenv
	os.Setenv("JWT_SECRET", config.JWTSecret)
	os.Setenv("AWS_S3_BUCKET", config.AWSS3Bucket)
	os.Setenv("AWS_S3_REGION", config.AWSS3Region)
	os.Setenv("AWS_ACCESS_KEY", config.AWSAccessKey)
	os.Setenv("AWS_SECRET_KEY", config.AWSSecretKey)
	os.Setenv("GEMINI_API_KEY", config.GeminiAPIKey)
}

// GetConfig returns the value loaded from config.yaml, falling back to the
// process environment when the file leaves the key empty.
func GetConfig(key string) string {
	if value := lookup(key); value != "" {
		return value
	}
	return os.Getenv(key)
}

func lookup(key string) string {
	switch key {
	case "DB_USER":
		return config.DBUser
	case "DB_NAME":
		return config.DBName
	case "DB_PASSWORD":
		return config.DBPassword
	case "DB_PORT":
		return config.DBPort
	case "DB_HOST":
		return config.DBHost
	case "APP_PORT":
		return config.AppPort
	case "TIMEZONE":
		return config.Timezone
	case "JWT_SECRET":
		return config.JWTSecret
	case "ADMIN_PIN_HASH":
		return config.AdminPinHash
	case "STAFF_PIN_HASH":
		return config.StaffPinHash
	case "SMTP_HOST":
		return config.SMTPHost
	case "SMTP_PORT":
		return config.SMTPPort
	case "SMTP_SENDER_NAME":
		return config.SMTPSenderName
	case "SMTP_AUTH_EMAIL":
		return config.SMTPAuthEmail
	case "SMTP_AUTH_PASSWORD":
		return config.SMTPAuthPassword
	case "KITCHEN_EMAIL":
		return config.KitchenEmail
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return config.GeminiModel
	case "GEMINI_TIMEOUT_SECONDS":
		return config.GeminiTimeoutSeconds
	case "KAFKA_BROKERS":
		return config.KafkaBrokers
	case "KAFKA_TOPIC":
		return config.KafkaTopic
	default:
		return ""
	}
}

// GetConfigList splits a comma separated value, dropping blanks.
func GetConfigList(key string) []string {
	var out []string
	for _, part := range strings.Split(GetConfig(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
