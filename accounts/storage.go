package accounts

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// defaultChannelKey is the reserved top level key naming the channel whose
// account is used when none is requested explicitly.
const defaultChannelKey = "default_channel"

// Save writes an account under the given name. An existing entry, or a
// differing stored default_channel, is only replaced when overwrite is set.
func Save(filename, name string, account *Account, overwrite bool, defaultChannel string) error {
	log.Debugf("save configuration data for %q in %q", name, filename)

	if name == defaultChannelKey {
		return fmt.Errorf("%q is a reserved account name", defaultChannelKey)
	}
	if err := account.Validate(); err != nil {
		return fmt.Errorf("invalid account %q: %w", name, err)
	}
	if err := ensureFileExists(filename); err != nil {
		return err
	}

	data, storedDefault, err := readFile(filename)
	if err != nil {
		return err
	}
	if _, exists := data[name]; exists && !overwrite {
		return fmt.Errorf("named account (%s): %w, set overwrite to replace it", name, ErrAccountAlreadyExists)
	}
	if defaultChannel != "" && storedDefault != "" && storedDefault != defaultChannel && !overwrite {
		return fmt.Errorf("default_channel (%s): %w, set overwrite to replace it", storedDefault, ErrAccountAlreadyExists)
	}

	data[name] = account
	out := make(map[string]interface{}, len(data)+1)
	for accountName, acct := range data {
		out[accountName] = acct
	}
	if defaultChannel != "" {
		out[defaultChannelKey] = defaultChannel
	} else if storedDefault != "" {
		out[defaultChannelKey] = storedDefault
	}
	return writeFile(filename, out)
}

// Read returns the named account from the file.
func Read(filename, name string) (*Account, error) {
	log.Debugf("read configuration data for %q from %q", name, filename)

	data, _, err := readFile(filename)
	if err != nil {
		return nil, err
	}
	acct, ok := data[name]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	return acct, nil
}

// ReadAll returns every stored account keyed by name, along with the stored
// default channel, if any.
func ReadAll(filename string) (map[string]*Account, string, error) {
	return readFile(filename)
}

// Delete removes the named account and reports whether it was present.
func Delete(filename, name string) (bool, error) {
	log.Debugf("delete configuration data for %q from %q", name, filename)

	if err := ensureFileExists(filename); err != nil {
		return false, err
	}
	data, storedDefault, err := readFile(filename)
	if err != nil {
		return false, err
	}
	if _, ok := data[name]; !ok {
		return false, nil
	}
	delete(data, name)

	out := make(map[string]interface{}, len(data)+1)
	for accountName, acct := range data {
		out[accountName] = acct
	}
	if storedDefault != "" {
		out[defaultChannelKey] = storedDefault
	}
	return true, writeFile(filename, out)
}

func readFile(filename string) (map[string]*Account, string, error) {
	if err := ensureFileExists(filename); err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, "", fmt.Errorf("cannot read account file %s: %w", filename, err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, "", fmt.Errorf("malformed account file %s: %w", filename, err)
	}

	accounts := make(map[string]*Account, len(entries))
	var defaultChannel string
	for name, entry := range entries {
		if name == defaultChannelKey {
			if err := json.Unmarshal(entry, &defaultChannel); err != nil {
				return nil, "", fmt.Errorf("malformed %s in %s: %w", defaultChannelKey, filename, err)
			}
			continue
		}
		acct := new(Account)
		if err := json.Unmarshal(entry, acct); err != nil {
			return nil, "", fmt.Errorf("malformed account %q in %s: %w", name, filename, err)
		}
		accounts[name] = acct
	}
	return accounts, defaultChannel, nil
}

func writeFile(filename string, data map[string]interface{}) error {
	// json.Marshal sorts map keys, matching the sorted file layout readers
	// of this file expect.
	raw, err := json.MarshalIndent(data, "", "    ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, raw, 0o600)
}

func ensureFileExists(filename string) error {
	if _, err := os.Stat(filename); err == nil {
		return nil
	}
	log.Debugf("create empty configuration file at %s", filename)

	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("cannot create account file directory: %w", err)
		}
	}
	return os.WriteFile(filename, []byte("{}"), 0o600)
}
