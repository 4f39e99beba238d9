package configs

import (
	"flag"
	"os"

	"github.com/hilthontt/chatroom/internal/infrastructure/env"
)

// DetermineConfigPath returns the first config file found from --config,
// CHATROOM_CONFIG or the usual locations. An empty result means the service
// runs on defaults and environment overrides only.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("CHATROOM_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"./tmp/config.yaml",
			"/etc/chatroom/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}
