package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvFile copies KEY=VALUE pairs from a dotenv file into the process
// environment. A missing file is a no-op. Blank lines, # comments and lines
// without '=' are skipped. Keys already set to a non-empty value are left alone.
//
// Values are literal: one pair of matching outer quotes is removed, and
// nothing else is interpreted ($VAR, " #" comments and escapes are kept).
//
// Multi-line quoted values are not supported; each line stands alone.
func LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read env file: %w", err)
	}

	vars, err := parseEnvLines(data)
	if err != nil {
		return fmt.Errorf("parse env file %s: %w", path, err)
	}

	for k, v := range vars {
		if os.Getenv(k) != "" {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// parseEnvLines filters the file down to well-formed assignments. Each one
// goes through godotenv single-quoted, which godotenv reads verbatim.
func parseEnvLines(data []byte) (map[string]string, error) {
	vars := make(map[string]string)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		key := strings.TrimSpace(strings.TrimPrefix(line[:eq], "export "))
		if key == "" || strings.ContainsAny(key, " \t") {
			continue
		}

		value := unquote(strings.TrimSpace(line[eq+1:]))
		if strings.Contains(value, "'") || strings.HasSuffix(value, `\`) {
			// godotenv would misread these inside single quotes.
			vars[key] = value
			continue
		}
		parsed, err := godotenv.Unmarshal(key + "='" + value + "'")
		if err != nil {
			continue
		}
		for k, v := range parsed {
			vars[k] = v
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// unquote removes one pair of matching outer quotes.
func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}
