package env

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// Load reads KEY=VALUE pairs from path (e.g. ".env") into the process environment.
// Variables already set in the environment win over the file. A missing file is not an error.
func Load(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
