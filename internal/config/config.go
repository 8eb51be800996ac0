package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Neo4jConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type LLMConfig struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	BaseURL  string `toml:"base_url"`
}

type QuizConfig struct {
	// Topics offered on game start.
	Topics []string `toml:"topics"`
	// AvoidWindow is how many recent answers are passed to the generator as
	// themes to avoid. A tunable, not a contract.
	AvoidWindow int `toml:"avoid_window"`
}

type QuizPrompts struct {
	NextTopic string `toml:"next_topic"`
	Question  string `toml:"question"`
}

type Config struct {
	Neo4j   Neo4jConfig `toml:"neo4j"`
	LLM     LLMConfig   `toml:"llm"`
	Quiz    QuizConfig  `toml:"quiz"`
	Prompts QuizPrompts `toml:"prompts"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return &cfg, nil
}
