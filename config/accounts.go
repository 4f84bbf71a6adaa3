package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// LoadAccounts reads newline-separated account secret keys. Blank lines are
// skipped; at least one key is required.
func LoadAccounts(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var keys []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		keys = append(keys, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no account keys found in %s", path)
	}
	return keys, nil
}

// LoadProxies reads the newline-separated proxy list. Entries align by index
// with the account list and blank lines stay in place, meaning direct
// connection for that account. A missing file means no proxies at all.
func LoadProxies(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	lines := strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
	proxies := make([]string, len(lines))
	for i, line := range lines {
		proxies[i] = strings.TrimSpace(line)
	}
	for len(proxies) > 0 && proxies[len(proxies)-1] == "" {
		proxies = proxies[:len(proxies)-1]
	}
	return proxies, nil
}
