package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App      AppConfig                 `yaml:"app"`
	Server   ServerConfig              `yaml:"server"`
	Gateways map[string]GatewayConfig  `yaml:"gateways"`
	LLM      map[string]ProviderConfig `yaml:"llm"`
	Services ServicesConfig            `yaml:"services"`
	Planner  PlannerConfig             `yaml:"planner"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	PromptsDir string `yaml:"prompts_dir"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type GatewayConfig struct {
	Token   string `yaml:"token"`
	Enabled bool   `yaml:"enabled"`
}

type ProviderConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url,omitempty"`
	Enabled bool   `yaml:"enabled"`
}

type ServicesConfig struct {
	Weather  ServiceConfig `yaml:"weather"`
	Places   ServiceConfig `yaml:"places"`
	Unsplash ServiceConfig `yaml:"unsplash"`
}

type ServiceConfig struct {
	APIKey string `yaml:"api_key"`
}

// Coordinates locates a city centre. Country is informational only.
type Coordinates struct {
	Lat     float64 `yaml:"lat"`
	Lon     float64 `yaml:"lon"`
	Country string  `yaml:"country"`
}

// Bracket maps a budget ceiling to a venue price level.
type Bracket struct {
	Below float64 `yaml:"below"`
	Level int     `yaml:"level"`
}

// PlannerConfig carries the plain lookup data the planner needs. Cities and
// brackets are editable in the config file; the defaults below are the
// canonical set the rest of the system (and the tests) rely on.
type PlannerConfig struct {
	Currency string                 `yaml:"currency"`
	Cities   map[string]Coordinates `yaml:"cities"`
	Brackets []Bracket              `yaml:"brackets"`
}

// DefaultCities is the static city lookup table used in place of geocoding.
// Keys are lower-cased city names.
func DefaultCities() map[string]Coordinates {
	return map[string]Coordinates{
		"mumbai":    {Lat: 19.0760, Lon: 72.8777, Country: "IN"},
		"delhi":     {Lat: 28.7041, Lon: 77.1025, Country: "IN"},
		"bangalore": {Lat: 12.9716, Lon: 77.5946, Country: "IN"},
		"bengaluru": {Lat: 12.9716, Lon: 77.5946, Country: "IN"},
		"pune":      {Lat: 18.5204, Lon: 73.8567, Country: "IN"},
		"hyderabad": {Lat: 17.3850, Lon: 78.4867, Country: "IN"},
		"chennai":   {Lat: 13.0827, Lon: 80.2707, Country: "IN"},
		"kolkata":   {Lat: 22.5726, Lon: 88.3639, Country: "IN"},
		"ahmedabad": {Lat: 23.0225, Lon: 72.5714, Country: "IN"},
		"jaipur":    {Lat: 26.9124, Lon: 75.7873, Country: "IN"},
		"goa":       {Lat: 15.2993, Lon: 74.1240, Country: "IN"},
	}
}

// DefaultBrackets are the budget-to-price-level thresholds: <500 is level 1,
// <1500 level 2, <3000 level 3, everything above level 4.
func DefaultBrackets() []Bracket {
	return []Bracket{
		{Below: 500, Level: 1},
		{Below: 1500, Level: 2},
		{Below: 3000, Level: 3},
	}
}

// Load reads the YAML config at path, after loading a .env file if one is
// present. A missing config file is not an error: defaults plus environment
// variables are enough to run.
func Load(path string) (*Config, error) {
	// Best effort; absence of .env just means plain environment variables.
	_ = godotenv.Load()

	cfg := &Config{}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	applyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "rendezvous"
	}
	if cfg.App.PromptsDir == "" {
		cfg.App.PromptsDir = "./prompts"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	if cfg.Planner.Currency == "" {
		cfg.Planner.Currency = "INR"
	}
	if len(cfg.Planner.Cities) == 0 {
		cfg.Planner.Cities = DefaultCities()
	}
	if len(cfg.Planner.Brackets) == 0 {
		cfg.Planner.Brackets = DefaultBrackets()
	}
	if cfg.Gateways == nil {
		cfg.Gateways = map[string]GatewayConfig{}
	}
	if cfg.LLM == nil {
		cfg.LLM = map[string]ProviderConfig{}
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("OPENWEATHER_API_KEY"); v != "" {
		cfg.Services.Weather.APIKey = v
	}
	if v := os.Getenv("GOOGLE_PLACES_API_KEY"); v != "" {
		cfg.Services.Places.APIKey = v
	}
	if v := os.Getenv("UNSPLASH_ACCESS_KEY"); v != "" {
		cfg.Services.Unsplash.APIKey = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		p := cfg.LLM["openai"]
		p.APIKey = v
		p.Enabled = true
		cfg.LLM["openai"] = p
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		g := cfg.Gateways["telegram"]
		g.Token = v
		g.Enabled = true
		cfg.Gateways["telegram"] = g
	}
	if v := os.Getenv("DISCORD_BOT_TOKEN"); v != "" {
		g := cfg.Gateways["discord"]
		g.Token = v
		g.Enabled = true
		cfg.Gateways["discord"] = g
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// LookupCity resolves a city name to coordinates. Unknown cities map to the
// (0, 0) sentinel rather than an error; that is a deliberate simplification
// in place of real geocoding.
func (p PlannerConfig) LookupCity(city string) Coordinates {
	key := strings.ToLower(strings.TrimSpace(city))
	if c, ok := p.Cities[key]; ok {
		return c
	}
	return Coordinates{Lat: 0.0, Lon: 0.0, Country: "UNKNOWN"}
}

// PriceBracket converts a per-person budget into a 1-4 venue price level.
// A missing budget defaults to moderate (2).
func (p PlannerConfig) PriceBracket(budget *float64) int {
	if budget == nil || *budget <= 0 {
		return 2
	}
	for _, b := range p.Brackets {
		if *budget < b.Below {
			return b.Level
		}
	}
	return 4
}

// GetDefaultLLM returns the first enabled LLM provider.
func (c *Config) GetDefaultLLM() (string, ProviderConfig) {
	for name, p := range c.LLM {
		if p.Enabled {
			return name, p
		}
	}
	return "", ProviderConfig{}
}

// GetGateway returns a gateway config if it is enabled and has a token.
func (c *Config) GetGateway(name string) (GatewayConfig, bool) {
	g, ok := c.Gateways[name]
	if ok && g.Enabled && g.Token != "" {
		return g, true
	}
	return GatewayConfig{}, false
}
