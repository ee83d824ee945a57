package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Port           string `mapstructure:"PORT"`
	Mode           string `mapstructure:"MODE"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	MongoURI string `mapstructure:"MONGO_URI"`
	MongoDB  string `mapstructure:"MONGO_DB"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	RedisAddr string `mapstructure:"REDIS_ADDR"`

	AccessSecret  string `mapstructure:"ACCESS_SECRET"`
	RefreshSecret string `mapstructure:"REFRESH_SECRET"`

	SendgridKey string `mapstructure:"SENDGRID_KEY"`
	SenderEmail string `mapstructure:"SENDER_EMAIL"`

	CloudName      string `mapstructure:"CLOUDINARY_CLOUD_NAME"`
	CloudAPIKey    string `mapstructure:"CLOUDINARY_API_KEY"`
	CloudAPISecret string `mapstructure:"CLOUDINARY_API_SECRET"`

	VdoCipherSecret string `mapstructure:"VDOCIPHER_API_SECRET"`
}

func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	viper.AutomaticEnv()

	// ВАЖНО: Явно биндим переменные, чтобы Viper их видел без файла
	viper.BindEnv("PORT")
	viper.BindEnv("MODE")
	viper.BindEnv("ALLOWED_ORIGINS")
	viper.BindEnv("MONGO_URI")
	viper.BindEnv("MONGO_DB")
	viper.BindEnv("DB_HOST")
	viper.BindEnv("DB_PORT")
	viper.BindEnv("DB_USER")
	viper.BindEnv("DB_PASSWORD")
	viper.BindEnv("DB_NAME")
	viper.BindEnv("REDIS_ADDR")
	viper.BindEnv("ACCESS_SECRET")
	viper.BindEnv("REFRESH_SECRET")
	viper.BindEnv("SENDGRID_KEY")
	viper.BindEnv("SENDER_EMAIL")
	viper.BindEnv("CLOUDINARY_CLOUD_NAME")
	viper.BindEnv("CLOUDINARY_API_KEY")
	viper.BindEnv("CLOUDINARY_API_SECRET")
	viper.BindEnv("VDOCIPHER_API_SECRET")

	// Пытаемся прочитать файл, но не умираем, если его нет
	err = viper.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return
		}
		// Файла нет? Ну и ладно, работаем на ENV
	}

	err = viper.Unmarshal(&config)
	return
}
