package config

import (
	"bytes"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// NewViper loads the file at pathFile and watches it for changes.
//
// The format is inferred from the file extension.
func NewViper(pathFile string) (*Viper, error) {
	v := newViper()
	v.SetConfigFile(filepath.Clean(pathFile))

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	v.OnConfigChange(func(ev fsnotify.Event) {
		slog.Info("config reloaded", "path", pathFile, "op", ev.Op.String())
	})
	v.WatchConfig()

	return &Viper{v: v}, nil
}

// NewViperFromBytes loads configuration held in memory.
// configType is a format supported by Viper ("yaml", "json", "toml").
func NewViperFromBytes(configType string, data []byte) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper()
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func (vc *Viper) GetBool(key string) bool { return vc.v.GetBool(key) }

func (vc *Viper) GetInt(key string) int { return vc.v.GetInt(key) }

func (vc *Viper) GetFloat64(key string) float64 { return vc.v.GetFloat64(key) }

func (vc *Viper) GetString(key string) string { return vc.v.GetString(key) }

func (vc *Viper) IsSet(key string) bool { return vc.v.IsSet(key) }

func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

func (vc *Viper) GetMinute(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Minute
}

func (vc *Viper) GetArray(key string) []string {
	if raw, ok := vc.v.Get(key).([]any); ok {
		out := make([]string, 0, len(raw))
		for _, item := range raw {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	}

	parts := strings.Split(vc.v.GetString(key), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (vc *Viper) GetMap(key string) map[string]string {
	m := make(map[string]string)
	for _, pair := range strings.Split(vc.v.GetString(key), ",") {
		k, val, ok := strings.Cut(pair, ":")
		if ok {
			m[strings.TrimSpace(k)] = strings.TrimSpace(val)
		}
	}
	return m
}

// Close implements io.Closer; Viper holds no resources.
func (vc *Viper) Close() error {
	return nil
}
