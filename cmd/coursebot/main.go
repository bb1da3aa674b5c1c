package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "coursebot/core/cmd"
	"coursebot/internal/bot"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		DefaultConfigPath: "configs/config.yaml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return bot.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			return bot.New(cfg.(*bot.Config))
		},
	})
	if err != nil {
		log.Fatalf("coursebot: %v", err)
	}
}
