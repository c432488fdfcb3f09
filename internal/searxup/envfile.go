package searxup

import (
	"bufio"
	"os"
	"strings"
)

// ReadDotEnv parses KEY=value lines, skipping comments and blanks.
func ReadDotEnv(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	vars := map[string]string{}
	s := bufio.NewScanner(file)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		k := strings.TrimSpace(parts[0])
		v := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		vars[k] = v
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return vars, nil
}

// UpdateDotEnv rewrites path with the given values while preserving
// comments, blank lines and the original key order. Keys absent from
// the original file are appended. Commented-out optional keys stay
// commented unless a value is supplied for them.
func UpdateDotEnv(path string, vars map[string]string) error {
	original, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
		original = nil
	}

	written := map[string]bool{}
	var lines []string
	for _, line := range strings.Split(string(original), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			lines = append(lines, line)
			continue
		}
		if strings.HasPrefix(trimmed, "#") {
			// Uncomment "# KEY=..." when a value for KEY is now selected.
			candidate := strings.TrimSpace(strings.TrimPrefix(trimmed, "#"))
			if key, _, ok := strings.Cut(candidate, "="); ok {
				key = strings.TrimSpace(key)
				if val, selected := vars[key]; selected && !written[key] {
					lines = append(lines, key+"="+val)
					written[key] = true
					continue
				}
			}
			lines = append(lines, line)
			continue
		}
		key, _, ok := strings.Cut(trimmed, "=")
		if !ok {
			lines = append(lines, line)
			continue
		}
		key = strings.TrimSpace(key)
		if val, selected := vars[key]; selected {
			lines = append(lines, key+"="+val)
			written[key] = true
		} else {
			lines = append(lines, line)
		}
	}

	// Drop the trailing empty element produced by a final newline.
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}

	for _, key := range sortedKeys(vars) {
		if !written[key] {
			lines = append(lines, key+"="+vars[key])
		}
	}

	content := strings.Join(lines, "\n") + "\n"
	return os.WriteFile(path, []byte(content), 0o640)
}
