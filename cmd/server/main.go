package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/watchroom/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 8080,
	}
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	databaseURL = configVar[string]{
		envKey:       "DATABASE_URL",
		flagKey:      "database-url",
		defaultValue: "watchroom.db",
	}
	redisAddr = configVar[string]{
		envKey:       "REDIS_ADDR",
		flagKey:      "redis-addr",
		defaultValue: "",
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	mediaProviders = configVar[string]{
		envKey:       "MEDIA_PROVIDERS",
		flagKey:      "media-providers",
		defaultValue: "https://yewtu.be",
	}
	playlistLimit = configVar[int]{
		envKey:       "SERVER_PLAYLIST_LIMIT",
		flagKey:      "playlist-limit",
		defaultValue: 100,
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(databaseURL.flagKey, databaseURL.defaultValue, "Database connection string (postgres DSN or sqlite path)")
	pflag.String(redisAddr.flagKey, redisAddr.defaultValue, "Redis address for the media cache (empty disables caching)")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.String(mediaProviders.flagKey, mediaProviders.defaultValue, "Comma-separated metadata provider base URLs, tried in order")
	pflag.Int(playlistLimit.flagKey, playlistLimit.defaultValue, "Maximum number of videos in a playlist")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(databaseURL.flagKey, databaseURL.envKey)
	viper.BindEnv(redisAddr.flagKey, redisAddr.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(mediaProviders.flagKey, mediaProviders.envKey)
	viper.BindEnv(playlistLimit.flagKey, playlistLimit.envKey)

	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(databaseURL.flagKey, databaseURL.defaultValue)
	viper.SetDefault(redisAddr.flagKey, redisAddr.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(mediaProviders.flagKey, mediaProviders.defaultValue)
	viper.SetDefault(playlistLimit.flagKey, playlistLimit.defaultValue)

	providers := []string{}
	for _, p := range strings.Split(viper.GetString(mediaProviders.flagKey), ",") {
		if p = strings.TrimSpace(p); p != "" {
			providers = append(providers, p)
		}
	}

	return &app.AppConfig{
		Host:           viper.GetString(host.flagKey),
		Port:           viper.GetInt(port.flagKey),
		LogLevel:       viper.GetString(logLevel.flagKey),
		DatabaseURL:    viper.GetString(databaseURL.flagKey),
		RedisAddr:      viper.GetString(redisAddr.flagKey),
		RedisPassword:  viper.GetString(redisPassword.flagKey),
		MediaProviders: providers,
		PlaylistLimit:  viper.GetInt(playlistLimit.flagKey),
	}
}

func main() {
	ctx := context.Background()

	godotenv.Load()

	appConfig := loadAppConfig()

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
