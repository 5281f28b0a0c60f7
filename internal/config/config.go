package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Port           string   `mapstructure:"port"`
		Env            string   `mapstructure:"env"`
		LogLevel       string   `mapstructure:"log_level"`
		AllowedOrigins []string `mapstructure:"allowed_origins"`
	} `mapstructure:"app"`
	DB struct {
		DSN            string `mapstructure:"dsn"`
		MigrationsPath string `mapstructure:"migrations_path"`
	} `mapstructure:"db"`
	Redis struct {
		Addr     string        `mapstructure:"addr"`
		Password string        `mapstructure:"password"`
		CacheTTL time.Duration `mapstructure:"cache_ttl"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
	} `mapstructure:"kafka"`
	Auth struct {
		JWTSecret       string        `mapstructure:"jwt_secret"`
		RefreshSecret   string        `mapstructure:"refresh_secret"`
		TokenLifespan   time.Duration `mapstructure:"token_lifespan"`
		RefreshLifespan time.Duration `mapstructure:"refresh_lifespan"`
	} `mapstructure:"auth"`
	Cloudinary struct {
		CloudName string `mapstructure:"cloud_name"`
		ApiKey    string `mapstructure:"api_key"`
		ApiSecret string `mapstructure:"api_secret"`
	} `mapstructure:"cloudinary"`
	Tracing struct {
		OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
		SampleRatio  float64 `mapstructure:"sample_ratio"`
	} `mapstructure:"tracing"`
	Portfolio struct {
		OwnerUsername string `mapstructure:"owner_username"`
		SiteURL       string `mapstructure:"site_url"`
		FeedTitle     string `mapstructure:"feed_title"`
	} `mapstructure:"portfolio"`
	RateLimit struct {
		Window time.Duration `mapstructure:"window"`
		Limit  int           `mapstructure:"limit"`
	} `mapstructure:"rate_limit"`
}

// LoadConfig reads .env and config.yaml from the given directories (the
// working directory when none is given) and lets the environment override both.
func LoadConfig(paths ...string) (cfg Config, err error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	envFiles := make([]string, 0, len(paths))
	for _, p := range paths {
		envFiles = append(envFiles, strings.TrimSuffix(p, "/")+"/.env")
	}
	if err := godotenv.Load(envFiles...); err != nil {
		log.Println("warning: .env file not found, use default.")
	}

	v := viper.New()
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if err = v.ReadInConfig(); err != nil {
		log.Printf("note: config.yaml not found, read .env only. Error: %v", err)
	}

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("app.port", "APP_PORT")
	v.BindEnv("app.env", "APP_ENV")
	v.BindEnv("app.log_level", "LOG_LEVEL")
	v.BindEnv("app.allowed_origins", "ALLOWED_ORIGINS")
	v.BindEnv("db.dsn", "DB_DSN")
	v.BindEnv("db.migrations_path", "DB_MIGRATIONS_PATH")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.cache_ttl", "REDIS_CACHE_TTL")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("auth.refresh_secret", "JWT_REFRESH_SECRET")
	v.BindEnv("auth.token_lifespan", "TOKEN_LIFESPAN")
	v.BindEnv("auth.refresh_lifespan", "REFRESH_LIFESPAN")
	v.BindEnv("tracing.otlp_endpoint", "OTLP_ENDPOINT")
	v.BindEnv("tracing.sample_ratio", "TRACING_SAMPLE_RATIO")
	v.BindEnv("portfolio.owner_username", "PORTFOLIO_OWNER_USERNAME")
	v.BindEnv("portfolio.site_url", "PORTFOLIO_SITE_URL")
	v.BindEnv("portfolio.feed_title", "PORTFOLIO_FEED_TITLE")
	v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	v.BindEnv("rate_limit.limit", "RATE_LIMIT_LIMIT")

	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	err = v.Unmarshal(&cfg)
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("auth.token_lifespan", 15*time.Minute)
	v.SetDefault("auth.refresh_lifespan", 7*24*time.Hour)
	v.SetDefault("tracing.sample_ratio", 1.0)
	v.SetDefault("rate_limit.window", time.Minute)
	v.SetDefault("rate_limit.limit", 20)
	v.SetDefault("portfolio.site_url", "http://localhost:3000")
	v.SetDefault("portfolio.feed_title", "Portfolio - Projects")
}
