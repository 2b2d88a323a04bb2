// Package config loads the gateway configuration from the environment and
// an optional config.yaml.
//
// Secrets and deployment identity come from environment variables (with .env
// support for local development); everything tunable but non-secret lives in
// the YAML file. Missing hosted-service coordinates are a fatal startup
// condition, reported as an error from Load so the composition root can
// log.Fatalf.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default values applied when config.yaml is absent or leaves fields unset.
const (
	DefaultAddr            = ":8000"
	DefaultConnectionsFile = "connections.json"
	DefaultPlotsDir        = "plots"
	DefaultAgentName       = "support-agent"
	DefaultRunTimeout      = 2 * time.Minute
	DefaultPollInterval    = time.Second
)

// DefaultInstructions is the system prompt of the database exploration
// agent. Overridable via agent_instructions in config.yaml.
const DefaultInstructions = `Vous êtes un agent d'exploration de base de données.
Lorsque l'utilisateur a besoin d'informations sur la base de données, vous lui demandez quelles informations spécifiques il souhaite récolter.

Suivez ces étapes :
1. Demandez à l'utilisateur de préciser les données qu'il souhaite explorer (par exemple, des colonnes spécifiques, des enregistrements, des statistiques, des relations entre tables, etc.).
2. Une fois que l'utilisateur vous a fourni ses critères, explorez la base de données en fonction de ces informations.
3. Fournissez à l'utilisateur les résultats sous la forme la plus claire possible (tableaux, résumés, graphiques, etc.).
4. Si nécessaire, donnez des informations supplémentaires ou des suggestions pour affiner la recherche si les résultats sont trop généraux ou imprécis.

N'oubliez pas de demander des clarifications si la requête de l'utilisateur est vague ou ambiguë.`

// Config holds everything the front ends and services need.
type Config struct {
	// ProjectConnectionString is the hosted agent service endpoint. Required.
	ProjectConnectionString string `yaml:"-"`
	// ModelDeployment is the model deployment identifier. Required.
	ModelDeployment string `yaml:"-"`
	// APIKey authenticates against the hosted service.
	APIKey string `yaml:"-"`
	// RedisAddr, when set, switches conversation bookkeeping to redis.
	RedisAddr string `yaml:"redis_addr"`

	Addr            string   `yaml:"addr"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	ConnectionsFile string   `yaml:"connections_file"`
	PlotsDir        string   `yaml:"plots_dir"`
	SessionCapacity int      `yaml:"session_capacity"`

	AgentName         string        `yaml:"agent_name"`
	AgentInstructions string        `yaml:"agent_instructions"`
	RunTimeout        time.Duration `yaml:"run_timeout"`
	PollInterval      time.Duration `yaml:"poll_interval"`
}

// Load reads configuration from yamlPath (defaults apply when the file is
// absent) and the environment. A .env file is honored outside release mode;
// release deployments are expected to provide real environment variables.
func Load(yamlPath string) (*Config, error) {
	if os.Getenv("GIN_MODE") != "release" {
		if err := godotenv.Load(); err != nil {
			log.Println("WARNING: No .env file found for local development.")
		}
	}

	cfg := &Config{
		Addr:            DefaultAddr,
		AllowedOrigins:  []string{"http://localhost:5173"},
		ConnectionsFile: DefaultConnectionsFile,
		PlotsDir:        DefaultPlotsDir,
		AgentName:       DefaultAgentName,
		RunTimeout:      DefaultRunTimeout,
		PollInterval:    DefaultPollInterval,
	}

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case os.IsNotExist(err):
			// Defaults are fine; only the environment is required.
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", yamlPath, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", yamlPath, err)
			}
		}
	}

	cfg.ProjectConnectionString = os.Getenv("AGENT_PROJECT_CONNECTION_STRING")
	cfg.ModelDeployment = os.Getenv("AGENT_MODEL_DEPLOYMENT_NAME")
	cfg.APIKey = os.Getenv("AGENT_API_KEY")
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.RedisAddr = addr
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Addr = ":" + port
	}

	if cfg.AgentInstructions == "" {
		cfg.AgentInstructions = DefaultInstructions
	}

	if cfg.ProjectConnectionString == "" {
		return nil, fmt.Errorf("AGENT_PROJECT_CONNECTION_STRING environment variable is not set")
	}
	if cfg.ModelDeployment == "" {
		return nil, fmt.Errorf("AGENT_MODEL_DEPLOYMENT_NAME environment variable is not set")
	}
	return cfg, nil
}
