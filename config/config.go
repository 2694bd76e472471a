package config

import (
	"log"

	"github.com/spf13/viper"
)

// AppConfig holds the application-level configuration. Conversion
// parameters here are defaults only; per-run flags and presets override
// them.
type AppConfig struct {
	OutputDir        string `mapstructure:"output_dir"`
	LedgerPath       string `mapstructure:"ledger_path"`
	ParallelismRatio int    `mapstructure:"parallelism_ratio"`
	ChunkSize        int    `mapstructure:"chunk_size"`
	Effort           int    `mapstructure:"effort"`
	QRVersion        int    `mapstructure:"qr_version"`
	ECLevel          string `mapstructure:"ec_level"`
}

var Config *AppConfig

func LoadConfig(path string) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AutomaticEnv()

	viper.SetDefault("output_dir", "./qr_out")
	viper.SetDefault("ledger_path", "")
	viper.SetDefault("parallelism_ratio", 2)
	viper.SetDefault("chunk_size", 768)
	viper.SetDefault("effort", 9)
	viper.SetDefault("qr_version", 40)
	viper.SetDefault("ec_level", "H")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("⚠️ Could not read config file, using defaults: %v", err)
	}

	var appConfig AppConfig
	if err := viper.Unmarshal(&appConfig); err != nil {
		log.Fatalf("❌ Unable to decode config into struct: %v", err)
	}

	Config = &appConfig
}
