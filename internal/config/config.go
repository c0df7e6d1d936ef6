package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"werewolf-toolbox/internal/models"
)

// StandardDeck is the 12-seat role deck.
var StandardDeck = []models.Role{
	models.RoleWerewolf, models.RoleWerewolf, models.RoleWerewolf, models.RoleWerewolf,
	models.RoleVillager, models.RoleVillager, models.RoleVillager, models.RoleVillager,
	models.RoleSeer, models.RoleWitch, models.RoleHunter, models.RoleGuard,
}

// DefaultNames seat the default roster.
var DefaultNames = []string{"Alice", "Bob", "Charlie", "Dave", "Eve", "Frank", "Grace", "Heidi", "Ivan", "Judy", "Mallory", "Oscar"}

// Pacing holds the narrative delays. All zero in a non-interactive harness.
type Pacing struct {
	Beat     time.Duration `mapstructure:"beat"`
	Announce time.Duration `mapstructure:"announce"`
	Speech   time.Duration `mapstructure:"speech"`
}

// AIEndpoint is the default endpoint for AI seats plus the HTTP timeout.
type AIEndpoint struct {
	models.AIConfig `mapstructure:",squash"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type Server struct {
	Addr          string `mapstructure:"addr"`
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// Seat is one roster entry supplied by the host.
type Seat struct {
	ID   int              `yaml:"id" json:"id"`
	Name string           `yaml:"name" json:"name"`
	Kind models.ActorKind `yaml:"kind" json:"kind"`
	AI   *models.AIConfig `yaml:"ai,omitempty" json:"ai,omitempty"`
}

// GameConfig holds everything needed to set up and pace a match.
type GameConfig struct {
	Deck        []models.Role `mapstructure:"deck"`
	Names       []string      `mapstructure:"names"`
	HumanSeats  []int         `mapstructure:"human_seats"`
	AI          AIEndpoint    `mapstructure:"ai"`
	Pacing      Pacing        `mapstructure:"pacing"`
	Parallelism int           `mapstructure:"parallelism"`
	MaxDays     int           `mapstructure:"max_days"`
	Server      Server        `mapstructure:"server"`
	Log         Log           `mapstructure:"log"`
}

// Default returns the built-in configuration.
func Default() *GameConfig {
	return &GameConfig{
		Deck:        append([]models.Role(nil), StandardDeck...),
		Names:       append([]string(nil), DefaultNames...),
		HumanSeats:  []int{1},
		AI:          AIEndpoint{AIConfig: models.AIConfig{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", Temperature: 0.7}, Timeout: 60 * time.Second},
		Pacing:      Pacing{Beat: 500 * time.Millisecond, Announce: 2 * time.Second, Speech: time.Second},
		Parallelism: 8,
		Server:      Server{Addr: ":8080", AllowedOrigin: "*"},
		Log:         Log{Level: "info"},
	}
}

// Load reads the configuration from path (optional) and WEREWOLF_* environment variables.
func Load(path string) (*GameConfig, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix("werewolf")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &GameConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadIfPresent is Load, except that a missing file at path falls back to the
// built-in defaults and the environment.
func LoadIfPresent(path string) (*GameConfig, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Load("")
	}
	return cfg, err
}

func setDefaults(v *viper.Viper, d *GameConfig) {
	deck := make([]string, len(d.Deck))
	for i, r := range d.Deck {
		deck[i] = string(r)
	}
	v.SetDefault("deck", deck)
	v.SetDefault("names", d.Names)
	v.SetDefault("human_seats", d.HumanSeats)
	v.SetDefault("ai.base_url", d.AI.BaseURL)
	v.SetDefault("ai.api_key", "")
	v.SetDefault("ai.model", d.AI.Model)
	v.SetDefault("ai.temperature", d.AI.Temperature)
	v.SetDefault("ai.timeout", d.AI.Timeout)
	v.SetDefault("pacing.beat", d.Pacing.Beat)
	v.SetDefault("pacing.announce", d.Pacing.Announce)
	v.SetDefault("pacing.speech", d.Pacing.Speech)
	v.SetDefault("parallelism", d.Parallelism)
	v.SetDefault("max_days", d.MaxDays)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origin", d.Server.AllowedOrigin)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks the deck only holds known roles.
func (c *GameConfig) Validate() error {
	if len(c.Deck) == 0 {
		return fmt.Errorf("config: deck is empty")
	}
	for _, r := range c.Deck {
		switch r {
		case models.RoleVillager, models.RoleWerewolf, models.RoleSeer, models.RoleWitch, models.RoleHunter, models.RoleGuard:
		default:
			return fmt.Errorf("config: unknown role %q in deck", r)
		}
	}
	if c.Parallelism < 1 {
		c.Parallelism = 1
	}
	return nil
}

// DefaultRoster seats one player per deck card. Seats listed in HumanSeats are
// human; the rest use the default AI endpoint.
func (c *GameConfig) DefaultRoster() []Seat {
	humans := make(map[int]bool, len(c.HumanSeats))
	for _, id := range c.HumanSeats {
		humans[id] = true
	}
	seats := make([]Seat, len(c.Deck))
	for i := range seats {
		id := i + 1
		name := fmt.Sprintf("Player %d", id)
		if i < len(c.Names) {
			name = c.Names[i]
		}
		seats[i] = Seat{ID: id, Name: name, Kind: models.KindAI}
		if humans[id] {
			seats[i].Kind = models.KindHuman
			continue
		}
		ai := c.AI.AIConfig
		seats[i].AI = &ai
	}
	return seats
}

// LoadRoster reads a YAML roster file. AI seats without an endpoint inherit the
// configured default; seats without ids are numbered in file order.
func (c *GameConfig) LoadRoster(path string) ([]Seat, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var doc struct {
		Players []Seat `yaml:"players"`
	}
	if err := yaml.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding roster %s: %w", path, err)
	}
	return c.FillRoster(doc.Players), nil
}

// FillRoster completes host-supplied seats with ids, kinds and default AI endpoints.
func (c *GameConfig) FillRoster(seats []Seat) []Seat {
	out := make([]Seat, len(seats))
	for i, s := range seats {
		if s.ID == 0 {
			s.ID = i + 1
		}
		if s.Kind == "" {
			s.Kind = models.KindAI
		}
		if s.Name == "" {
			s.Name = fmt.Sprintf("Player %d", s.ID)
		}
		if s.Kind == models.KindAI {
			ai := c.AI.AIConfig
			if s.AI != nil {
				if s.AI.BaseURL != "" {
					ai.BaseURL = s.AI.BaseURL
				}
				if s.AI.APIKey != "" {
					ai.APIKey = s.AI.APIKey
				}
				if s.AI.Model != "" {
					ai.Model = s.AI.Model
				}
				if s.AI.Temperature != 0 {
					ai.Temperature = s.AI.Temperature
				}
			}
			s.AI = &ai
		} else {
			s.AI = nil
		}
		out[i] = s
	}
	return out
}

// DeepCopy creates a new GameConfig with all slices copied to prevent shared state.
func (c *GameConfig) DeepCopy() *GameConfig {
	newCfg := *c
	newCfg.Deck = append([]models.Role(nil), c.Deck...)
	newCfg.Names = append([]string(nil), c.Names...)
	newCfg.HumanSeats = append([]int(nil), c.HumanSeats...)
	return &newCfg
}
