// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves API credentials for the language model providers.
//
// Three sources are consulted, highest precedence first: the process
// environment, a dotenv file at the project root, and a directory of
// plain-text files where the filename is the key name and the trimmed
// contents are the value. Supported key files: openai-api-key, anthropic-api-key.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			log.Warn().Str("secret", name).Err(err).Msg("could not read secret")
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// LoadDotEnv parses a KEY=value file. Keys are returned lowercased. A
// missing file yields an empty map.
func LoadDotEnv(path string) (map[string]string, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return map[string]string{}, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	out := make(map[string]string)
	for _, k := range v.AllKeys() {
		if val := strings.TrimSpace(v.GetString(k)); val != "" {
			out[strings.ToLower(k)] = val
		}
	}
	return out, nil
}

// Store holds credentials from every source.
type Store struct {
	getenv func(string) string
	dotenv map[string]string
	files  map[string]string
}

// Open loads root/.env and root/.secrets.
func Open(root string) (*Store, error) {
	dotenv, err := LoadDotEnv(filepath.Join(root, ".env"))
	if err != nil {
		return nil, err
	}
	files, err := Load(filepath.Join(root, ".secrets"))
	if err != nil {
		return nil, err
	}
	return &Store{getenv: os.Getenv, dotenv: dotenv, files: files}, nil
}

// FileName maps an environment variable name to its key file name:
// OPENAI_API_KEY becomes openai-api-key.
func FileName(envName string) string {
	return strings.ReplaceAll(strings.ToLower(envName), "_", "-")
}

// Lookup returns the first non-empty value for envName and the source it
// came from ("env", ".env", ".secrets"), or empty strings when unset.
func (s *Store) Lookup(envName string) (value, source string) {
	if s.getenv != nil {
		if v := strings.TrimSpace(s.getenv(envName)); v != "" {
			return v, "env"
		}
	}
	if v := s.dotenv[strings.ToLower(envName)]; v != "" {
		return v, ".env"
	}
	if v := s.files[FileName(envName)]; v != "" {
		return v, ".secrets"
	}
	return "", ""
}
