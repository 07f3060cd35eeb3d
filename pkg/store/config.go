package store

import (
	"log"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config carries the settings the client needs to find its local records and
// the shared remote store.
type Config interface {
	BasePath() string
	RemoteURL() string
	Author() string
}

// LoadConfig reads the .noday config file and NODAY_* environment variables.
func LoadConfig() (Config, error) {
	viper.SetDefault("path", "~/.noday")
	viper.SetDefault("remote", "https://nodayz.onrender.com")
	viper.SetDefault("name", "")
	viper.SetConfigName(".noday") // .yaml is implicit
	viper.SetEnvPrefix("NODAY")
	viper.AutomaticEnv()

	viper.AddConfigPath("$HOME")
	viper.AddConfigPath("./")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("error reading config file: %v", err)
			return nil, err
		}
	}

	path := viper.GetString("path")
	if expanded, err := homedir.Expand(path); err == nil {
		path = expanded
	}

	return &fileConfig{
		Path:   path,
		Remote: viper.GetString("remote"),
		Name:   viper.GetString("name"),
	}, nil
}

type fileConfig struct {
	Path   string `json:"path"`
	Remote string `json:"remote"`
	Name   string `json:"name"`
}

func (f *fileConfig) BasePath() string  { return f.Path }
func (f *fileConfig) RemoteURL() string { return f.Remote }
func (f *fileConfig) Author() string    { return f.Name }
