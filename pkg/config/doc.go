// Package config loads typed configuration structs from environment
// variables using github.com/caarlos0/env, after reading an optional .env
// file with github.com/joho/godotenv.
//
// Every package in notifykit that needs settings exposes a Config struct
// with env tags; the process entry point loads each one with Load:
//
//	var schedCfg scheduler.Config
//	config.MustLoad(&schedCfg)
//
// Parsed values are cached per type, so repeated loads are cheap and
// consistent for the lifetime of the process.
package config
