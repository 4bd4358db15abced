// Package accounts stores and resolves named credential sets for the
// runtime service in a local JSON file.
package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Channel names recognized by the service.
const (
	ChannelIBMQuantum = "ibm_quantum"
	ChannelIBMCloud   = "ibm_cloud"
	ChannelGeneric    = "generic"
)

// Environment variables that override values stored on disk.
const (
	EnvToken    = "QISKIT_IBM_TOKEN"
	EnvURL      = "QISKIT_IBM_URL"
	EnvChannel  = "QISKIT_IBM_CHANNEL"
	EnvInstance = "QISKIT_IBM_INSTANCE"
)

// DefaultConfigFile is the account file location relative to the user's
// home directory.
const DefaultConfigFile = ".qiskit/qiskit-ibm.json"

var (
	// ErrAccountAlreadyExists is returned by Save when the named account (or
	// a differing default_channel) is present and overwrite was not set.
	ErrAccountAlreadyExists = errors.New("account already exists")
	// ErrAccountNotFound is returned when no stored account matches.
	ErrAccountNotFound = errors.New("account not found")
)

// ProxyConfiguration holds the proxy settings stored with an account.
type ProxyConfiguration struct {
	HTTP         string `json:"http,omitempty"`
	HTTPS        string `json:"https,omitempty"`
	UsernameNTLM string `json:"username_ntlm,omitempty"`
	PasswordNTLM string `json:"password_ntlm,omitempty"`
}

// Validate checks that NTLM credentials come in pairs.
func (p *ProxyConfiguration) Validate() error {
	if (p.UsernameNTLM == "") != (p.PasswordNTLM == "") {
		return fmt.Errorf("invalid proxy configuration: username_ntlm and password_ntlm must be set together")
	}
	return nil
}

// Account is one named credential set in the configuration file.
type Account struct {
	Channel         string              `json:"channel"`
	Token           string              `json:"token"`
	URL             string              `json:"url,omitempty"`
	Instance        string              `json:"instance,omitempty"`
	Proxies         *ProxyConfiguration `json:"proxies,omitempty"`
	Verify          *bool               `json:"verify,omitempty"`
	PrivateEndpoint bool                `json:"private_endpoint,omitempty"`
}

// Validate checks the field level constraints of an account.
func (a *Account) Validate() error {
	switch a.Channel {
	case ChannelIBMQuantum, ChannelIBMCloud, ChannelGeneric:
	default:
		return fmt.Errorf("invalid channel %q, expected one of %q, %q, %q",
			a.Channel, ChannelIBMQuantum, ChannelIBMCloud, ChannelGeneric)
	}
	if a.Token == "" {
		return fmt.Errorf("token is required")
	}
	if a.Channel == ChannelIBMCloud && a.Instance == "" {
		return fmt.Errorf("instance (service CRN) is required for the %s channel", ChannelIBMCloud)
	}
	if a.Channel == ChannelGeneric && a.URL == "" {
		return fmt.Errorf("url is required for the %s channel", ChannelGeneric)
	}
	if a.Proxies != nil {
		return a.Proxies.Validate()
	}
	return nil
}

// VerifyTLS reports whether server certificates should be verified. The
// zero value means verify.
func (a *Account) VerifyTLS() bool {
	return a.Verify == nil || *a.Verify
}

// DefaultPath returns the default location of the account file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot locate home directory: %w", err)
	}
	return filepath.Join(home, filepath.FromSlash(DefaultConfigFile)), nil
}

// Resolve returns the account to use, by precedence: environment variables,
// the named entry, then the entry selected by the file's default_channel key.
// An empty name selects the default.
func Resolve(filename, name string) (*Account, error) {
	v := viper.New()
	v.AutomaticEnv()

	if token := v.GetString(EnvToken); token != "" {
		acct := &Account{
			Channel:  v.GetString(EnvChannel),
			Token:    token,
			URL:      v.GetString(EnvURL),
			Instance: v.GetString(EnvInstance),
		}
		if acct.Channel == "" {
			acct.Channel = ChannelIBMQuantum
		}
		if err := acct.Validate(); err != nil {
			return nil, fmt.Errorf("invalid account from environment: %w", err)
		}
		return acct, nil
	}

	if name != "" {
		acct, err := Read(filename, name)
		if err != nil {
			return nil, err
		}
		if err := acct.Validate(); err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", name, err)
		}
		return acct, nil
	}

	all, defaultChannel, err := ReadAll(filename)
	if err != nil {
		return nil, err
	}
	if defaultChannel != "" {
		for accountName, acct := range all {
			if acct.Channel == defaultChannel {
				if err := acct.Validate(); err != nil {
					return nil, fmt.Errorf("invalid account %q: %w", accountName, err)
				}
				return acct, nil
			}
		}
	}
	if acct, ok := all["default"]; ok {
		if err := acct.Validate(); err != nil {
			return nil, fmt.Errorf("invalid account %q: %w", "default", err)
		}
		return acct, nil
	}
	return nil, ErrAccountNotFound
}
