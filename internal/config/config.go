package config

const (
	EnvDev   = "dev"
	EnvProd  = "prod"
	EnvLocal = "local"
)

type Config struct {
	Env            string `yaml:"env" env:"FTIMER_ENV" env-default:"prod"`
	LogLevel       string `yaml:"log_level" env:"FTIMER_LOG_LEVEL"`
	DBPath         string `yaml:"db_path" env:"FTIMER_DB_PATH"`
	StoreShards    int    `yaml:"store_shards" env:"FTIMER_STORE_SHARDS" env-default:"16"`
	BaselinePolicy string `yaml:"baseline_policy" env:"FTIMER_BASELINE_POLICY" env-default:"overwrite"`
}
