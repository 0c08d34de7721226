package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath       = "config.yaml"
	defaultSettingsPath     = "./settings.json"
	defaultListenAddr       = "127.0.0.1:8085"
	defaultCallbackPath     = "/callback"
	defaultWaitSeconds      = 300
	defaultGeneratorCommand = "python3"
	defaultGeneratorScript  = "./video_generator/generate.py"
	defaultOutputDir        = "./output"
	defaultVideoType        = "general_knowledge"
	defaultQuestionTime     = 10
	defaultAnswerTime       = 5
	defaultDelaySeconds     = 5
	defaultContentPolicy    = "studio"
	defaultCount            = 1
	defaultCategoryID       = "22"
	defaultPrivacyStatus    = "public"
	defaultTemplatesPath    = "./templates.yaml"
	defaultArchivePrefix    = "published"
	defaultServerAddr       = "127.0.0.1:8090"
	defaultScheduleCron     = "0 * * * *"
	defaultScheduleShorts   = 2
	defaultScheduleLongForm = 2
	defaultScheduleDelay    = 60
)

type Config struct {
	YouTubeClientID     string
	YouTubeClientSecret string
	GCSBucket           string

	Settings   SettingsConfig   `yaml:"settings"`
	Auth       AuthConfig       `yaml:"auth"`
	Generator  GeneratorConfig  `yaml:"generator"`
	Automation AutomationConfig `yaml:"automation"`
	Upload     UploadConfig     `yaml:"upload"`
	Archive    ArchiveConfig    `yaml:"archive"`
	Server     ServerConfig     `yaml:"server"`
	Schedule   ScheduleConfig   `yaml:"schedule"`
}

type SettingsConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	CallbackPath string `yaml:"callback_path"`
	WaitSeconds  int    `yaml:"wait_seconds"`
}

func (c AuthConfig) Wait() time.Duration {
	return time.Duration(c.WaitSeconds) * time.Second
}

type GeneratorConfig struct {
	Command   string   `yaml:"command"`
	ExtraArgs []string `yaml:"extra_args"`
	OutputDir string   `yaml:"output_dir"`
}

type AutomationConfig struct {
	VideoType     string `yaml:"video_type"`
	NumQuestions  int    `yaml:"num_questions"`
	QuestionTime  int    `yaml:"question_time"`
	AnswerTime    int    `yaml:"answer_time"`
	Shorts        bool   `yaml:"shorts"`
	Resolution    string `yaml:"resolution"`
	Count         int    `yaml:"count"`
	DelaySeconds  int    `yaml:"delay_seconds"`
	ContentPolicy string `yaml:"content_policy"`
}

func (c AutomationConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

type UploadConfig struct {
	CategoryID    string `yaml:"category_id"`
	PrivacyStatus string `yaml:"privacy_status"`
	TemplatesPath string `yaml:"templates_path"`
}

type ArchiveConfig struct {
	GCS    bool   `yaml:"gcs"`
	Prefix string `yaml:"prefix"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type ScheduleConfig struct {
	Cron         string `yaml:"cron"`
	Shorts       int    `yaml:"shorts"`
	LongForm     int    `yaml:"long_form"`
	DelaySeconds int    `yaml:"delay_seconds"`
}

func (c ScheduleConfig) Delay() time.Duration {
	return time.Duration(c.DelaySeconds) * time.Second
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		YouTubeClientID:     os.Getenv("YOUTUBE_CLIENT_ID"),
		YouTubeClientSecret: os.Getenv("YOUTUBE_CLIENT_SECRET"),
		GCSBucket:           os.Getenv("GCS_BUCKET"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applySettingsDefaults(cfg)
	applyAuthDefaults(cfg)
	applyGeneratorDefaults(cfg)
	applyAutomationDefaults(cfg)
	applyUploadDefaults(cfg)
	applyArchiveDefaults(cfg)
	applyServerDefaults(cfg)
	applyScheduleDefaults(cfg)
}

func applySettingsDefaults(cfg *Config) {
	if cfg.Settings.Path == "" {
		cfg.Settings.Path = getEnvOrDefault("SETTINGS_PATH", defaultSettingsPath)
	}
}

func applyAuthDefaults(cfg *Config) {
	if cfg.Auth.ListenAddr == "" {
		cfg.Auth.ListenAddr = defaultListenAddr
	}
	if cfg.Auth.CallbackPath == "" {
		cfg.Auth.CallbackPath = defaultCallbackPath
	}
	if cfg.Auth.WaitSeconds == 0 {
		cfg.Auth.WaitSeconds = defaultWaitSeconds
	}
}

func applyGeneratorDefaults(cfg *Config) {
	if cfg.Generator.Command == "" {
		cfg.Generator.Command = defaultGeneratorCommand
		if len(cfg.Generator.ExtraArgs) == 0 {
			cfg.Generator.ExtraArgs = []string{defaultGeneratorScript}
		}
	}
	if cfg.Generator.OutputDir == "" {
		cfg.Generator.OutputDir = defaultOutputDir
	}
}

func applyAutomationDefaults(cfg *Config) {
	if cfg.Automation.VideoType == "" {
		cfg.Automation.VideoType = defaultVideoType
	}
	if cfg.Automation.QuestionTime == 0 {
		cfg.Automation.QuestionTime = defaultQuestionTime
	}
	if cfg.Automation.AnswerTime == 0 {
		cfg.Automation.AnswerTime = defaultAnswerTime
	}
	if cfg.Automation.Count == 0 {
		cfg.Automation.Count = defaultCount
	}
	if cfg.Automation.DelaySeconds == 0 {
		cfg.Automation.DelaySeconds = defaultDelaySeconds
	}
	if cfg.Automation.ContentPolicy == "" {
		cfg.Automation.ContentPolicy = defaultContentPolicy
	}
}

func applyUploadDefaults(cfg *Config) {
	if cfg.Upload.CategoryID == "" {
		cfg.Upload.CategoryID = defaultCategoryID
	}
	if cfg.Upload.PrivacyStatus == "" {
		cfg.Upload.PrivacyStatus = defaultPrivacyStatus
	}
	if cfg.Upload.TemplatesPath == "" {
		cfg.Upload.TemplatesPath = defaultTemplatesPath
	}
}

func applyArchiveDefaults(cfg *Config) {
	if cfg.Archive.Prefix == "" {
		cfg.Archive.Prefix = defaultArchivePrefix
	}
}

func applyServerDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultServerAddr
	}
}

func applyScheduleDefaults(cfg *Config) {
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = defaultScheduleCron
	}
	if cfg.Schedule.Shorts == 0 {
		cfg.Schedule.Shorts = defaultScheduleShorts
	}
	if cfg.Schedule.LongForm == 0 {
		cfg.Schedule.LongForm = defaultScheduleLongForm
	}
	if cfg.Schedule.DelaySeconds == 0 {
		cfg.Schedule.DelaySeconds = defaultScheduleDelay
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
