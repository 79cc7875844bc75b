package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "CALASSIST_"

type Application struct {
	Storage  Storage `koanf:"storage"`
	Auth     Auth    `koanf:"auth"`
	Chat     Chat    `koanf:"chat"`
	Web      Web     `koanf:"web"`
	TUI      TUI     `koanf:"tui"`
	Log      Log     `koanf:"log"`
	DebugLog string  `koanf:"debug_log"`
}

type Storage struct {
	Dir string `koanf:"dir"`
}

type Auth struct {
	Key         string        `koanf:"key"`
	LoginDelay  time.Duration `koanf:"login_delay"`
	LogoutDelay time.Duration `koanf:"logout_delay"`
}

type Chat struct {
	// DelayScale multiplies every simulated reply delay. 0 makes replies instant.
	DelayScale      float64  `koanf:"delay_scale"`
	DisabledIntents []string `koanf:"disabled_intents"`
}

type Web struct {
	Addr string `koanf:"addr"`
}

type TUI struct {
	Sidebar bool `koanf:"sidebar"`
}

type Log struct {
	Level string `koanf:"level"`
}

// Defaults returns the configuration used when nothing else is provided.
func Defaults() Application {
	return Application{
		Storage: Storage{Dir: defaultDataDir()},
		Auth: Auth{
			Key:         "calendar_assistant_auth",
			LoginDelay:  time.Second,
			LogoutDelay: 500 * time.Millisecond,
		},
		Chat:     Chat{DelayScale: 1},
		Web:      Web{Addr: ":8080"},
		TUI:      TUI{Sidebar: true},
		Log:      Log{Level: "info"},
		DebugLog: filepath.Join("bin", "intents.debug.jsonl"),
	}
}

// Load layers struct defaults, the optional yaml file at path and CALASSIST_*
// environment variables, in that order. A .env file in the working directory
// is loaded into the environment first.
func Load(path string) (Application, error) {
	_ = godotenv.Load()

	var k = koanf.New(".")

	if err := k.Load(structs.Provider(Defaults(), "koanf"), nil); err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if os.IsNotExist(err) {
				log.Debugf("Config file not found at %s, using defaults and environment variables", path)
			} else {
				log.Errorf("error loading config from YAML: %v", err)
				return Application{}, err
			}
		} else {
			log.Debugf("Loaded configuration from file: %s", path)
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = envKey(k)
			if k == "chat.disabled_intents" {
				return k, splitList(v)
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}
	return app, nil
}

// Save writes app to path as yaml, in the shape Load reads back. Durations
// are written in their string form.
func Save(path string, app Application) error {
	k := koanf.New(".")
	if err := k.Load(structs.Provider(app, "koanf"), nil); err != nil {
		return fmt.Errorf("failed to flatten config: %w", err)
	}
	for key, d := range map[string]time.Duration{
		"auth.login_delay":  app.Auth.LoginDelay,
		"auth.logout_delay": app.Auth.LogoutDelay,
	} {
		if err := k.Set(key, d.String()); err != nil {
			return err
		}
	}

	data, err := k.Marshal(yaml.Parser())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	log.Infof("Configuration saved to %s", path)
	return nil
}

// envKey maps CALASSIST_AUTH_LOGIN_DELAY to auth.login_delay. Only the first
// underscore separates the section, the rest belong to the field name.
func envKey(k string) string {
	k = strings.ToLower(strings.TrimPrefix(k, envPrefix))
	if k == "debug_log" {
		return k
	}
	section, field, ok := strings.Cut(k, "_")
	if !ok {
		return k
	}
	return section + "." + field
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join("bin", "data")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "calassist")
}
