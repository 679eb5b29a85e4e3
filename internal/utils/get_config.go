package utils

import (
	"gopkg.in/yaml.v2"
	"log"
	"os"
)

type Config struct {
	// Server configuration
	Port string `yaml:"PORT"`

	// Database configuration
	DBUser     string `yaml:"DB_USER"`
	DBName     string `yaml:"DB_NAME"`
	DBPassword string `yaml:"DB_PASSWORD"`
	DBPort     string `yaml:"DB_PORT"`
	DBHost     string `yaml:"DB_HOST"`

	// File storage configuration
	StorageBackend  string `yaml:"STORAGE_BACKEND"` // "s3" or "local"
	LocalStorageDir string `yaml:"LOCAL_STORAGE_DIR"`
	AWSS3Bucket     string `yaml:"AWS_S3_BUCKET"`
	AWSS3Region     string `yaml:"AWS_S3_REGION"`
	AWSAccessKey    string `yaml:"AWS_ACCESS_KEY"`
	AWSSecretKey    string `yaml:"AWS_SECRET_KEY"`

	// Upload limits
	MaxUploadSize    string `yaml:"MAX_UPLOAD_SIZE"`
	AllowedMimeTypes string `yaml:"ALLOWED_MIME_TYPES"`

	// Gemini structured extraction configuration
	GeminiAPIKey string `yaml:"GEMINI_API_KEY"`
	GeminiModel  string `yaml:"GEMINI_MODEL"`

	// Google Cloud Vision OCR configuration
	GCPProjectID   string `yaml:"GCP_PROJECT_ID"`
	GCPPrivateKey  string `yaml:"GCP_PRIVATE_KEY"`
	GCPClientEmail string `yaml:"GCP_CLIENT_EMAIL"`

	// Local OCR configuration
	TesseractLanguages string `yaml:"TESSERACT_LANGUAGES"`
}

var config Config

func LoadConfig() {
	file, err := os.ReadFile("config.yaml")
	if err != nil {
		log.Printf("Error reading YAML file: %s\n", err)
		return
	}

	err = yaml.Unmarshal(file, &config)
	if err != nil {
		log.Printf("Error parsing YAML file: %s\n", err)
		return
	}
}

// GetConfig resolves a configuration key, letting environment variables
// override values from config.yaml.
func GetConfig(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	switch key {
	case "PORT":
		return config.Port
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
	case "STORAGE_BACKEND":
		return config.StorageBackend
	case "LOCAL_STORAGE_DIR":
		return config.LocalStorageDir
	case "AWS_S3_BUCKET":
		return config.AWSS3Bucket
	case "AWS_S3_REGION":
		return config.AWSS3Region
	case "AWS_ACCESS_KEY":
		return config.AWSAccessKey
	case "AWS_SECRET_KEY":
		return config.AWSSecretKey
	case "MAX_UPLOAD_SIZE":
		return config.MaxUploadSize
	case "ALLOWED_MIME_TYPES":
		return config.AllowedMimeTypes
	case "GEMINI_API_KEY":
		return config.GeminiAPIKey
	case "GEMINI_MODEL":
		return config.GeminiModel
	case "GCP_PROJECT_ID":
		return config.GCPProjectID
	case "GCP_PRIVATE_KEY":
		return config.GCPPrivateKey
	case "GCP_CLIENT_EMAIL":
		return config.GCPClientEmail
	case "TESSERACT_LANGUAGES":
		return config.TesseractLanguages
	default:
		return ""
	}
}
