package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	"github.com/kirsle/configdir"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	MongoURI      string
	Database      string
	UserName      string
	SaveDirectory string
	Offline       bool
}

// loadConfig reads ~/.ermitrc (key=value lines, # comments). Missing file
// or unreadable lines fall back to defaults; flags override afterwards.
func loadConfig() *Config {
	config := &Config{
		MongoURI: "mongodb://localhost:27017",
		Database: "ermit",
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return config
	}

	configPath := filepath.Join(homeDir, ".ermitrc")
	file, err := os.Open(configPath)
	if err != nil {
		return config
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		switch strings.ToLower(key) {
		case "uri", "mongo_uri", "mongouri":
			config.MongoURI = value
		case "database", "db":
			config.Database = value
		case "user", "username", "user_name":
			config.UserName = value
		case "savedirectory", "save_directory", "savedir":
			if strings.HasPrefix(value, "~") {
				value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
			}
			if !filepath.IsAbs(value) {
				if absPath, err := filepath.Abs(value); err == nil {
					value = absPath
				}
			}
			config.SaveDirectory = value
		case "offline":
			config.Offline = strings.ToLower(value) == "true"
		}
	}

	return config
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

// dataDir is where the autosave slot and log file live.
func dataDir() (string, error) {
	dir := configdir.LocalConfig("ermit")
	if err := configdir.MakePath(dir); err != nil {
		return "", err
	}
	return dir, nil
}

// newLogger builds a file-backed sugared logger. The terminal belongs to
// the UI, so nothing may log to stdout; when even the log file cannot be
// opened, logging goes to the void rather than corrupting the screen.
func newLogger() *zap.SugaredLogger {
	dir, err := dataDir()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{filepath.Join(dir, "ermit.log")}
	cfg.ErrorOutputPaths = cfg.OutputPaths
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}
