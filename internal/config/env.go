package config

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/joho/godotenv"
)

var envOnce sync.Once

// LoadEnv loads a .env file from the working directory or its parent, once.
// A missing file is not an error; existing variables are never overwritten.
func LoadEnv() {
	envOnce.Do(func() {
		for _, candidate := range envCandidates() {
			if _, err := os.Stat(candidate); err == nil {
				_ = godotenv.Load(candidate)
				return
			}
		}
	})
}

func envCandidates() []string {
	candidates := []string{".env"}
	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(filepath.Dir(wd), ".env"))
	}
	return candidates
}
