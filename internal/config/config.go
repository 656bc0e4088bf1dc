package config

import (
	"time"
)

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
	}
	RedisServer string
	Jwt         struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	KafkaServers string
	Bank         struct {
		// ProcessingDelay is the artificial wait applied to simulated bank
		// deposits and withdrawals. Latency modelling only.
		ProcessingDelay time.Duration
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
}
