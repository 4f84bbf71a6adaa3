package bot

import (
	"fmt"

	"creekbot/crypto"
)

// Account pairs one signing key with its optional forward proxy. Proxies
// align with accounts by list index; an empty proxy means a direct
// connection.
type Account struct {
	Index int
	Key   *crypto.PrivateKey
	Proxy string
}

// BuildAccounts decodes the loaded secret keys and aligns them with the
// proxy list. A proxy list shorter than the account list leaves the
// remaining accounts direct.
func BuildAccounts(keys, proxies []string) ([]Account, error) {
	accounts := make([]Account, 0, len(keys))
	for i, raw := range keys {
		key, err := crypto.PrivateKeyFromHex(raw)
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", i+1, err)
		}
		account := Account{Index: i + 1, Key: key}
		if i < len(proxies) {
			account.Proxy = proxies[i]
		}
		accounts = append(accounts, account)
	}
	return accounts, nil
}
