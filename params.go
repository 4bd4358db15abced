package qiskitruntime

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/Zaba505/qiskit-runtime-go/accounts"
)

// Channel names, re-exported from the accounts package.
const (
	ChannelIBMQuantum = accounts.ChannelIBMQuantum
	ChannelIBMCloud   = accounts.ChannelIBMCloud
	ChannelGeneric    = accounts.ChannelGeneric
)

const (
	// DefaultQuantumURL is the default quantum channel API endpoint.
	DefaultQuantumURL = "https://auth.quantum-computing.ibm.com/api"
	// DefaultCloudURL is the default cloud channel API endpoint.
	DefaultCloudURL = "https://quantum-computing.cloud.ibm.com"
)

// URLResolver builds the runtime API base URL for a cloud channel account.
type URLResolver func(rawURL, instance string, privateEndpoint bool) string

// ClientParameters is everything needed to reach the runtime API on behalf
// of one account.
type ClientParameters struct {
	Channel         string
	Token           string
	URL             string
	Instance        string
	Proxies         *accounts.ProxyConfiguration
	Verify          bool
	PrivateEndpoint bool

	// URLResolver overrides DefaultURLResolver when set.
	URLResolver URLResolver
}

// ParamsFromAccount maps a stored account onto client parameters.
func ParamsFromAccount(acct *accounts.Account) ClientParameters {
	return ClientParameters{
		Channel:         acct.Channel,
		Token:           acct.Token,
		URL:             acct.URL,
		Instance:        acct.Instance,
		Proxies:         acct.Proxies,
		Verify:          acct.VerifyTLS(),
		PrivateEndpoint: acct.PrivateEndpoint,
	}
}

// AuthHandler returns the authentication handler for the channel.
func (p ClientParameters) AuthHandler() AuthHandler {
	switch p.Channel {
	case ChannelIBMCloud:
		return &CloudAuth{APIKey: p.Token, CRN: p.Instance}
	case ChannelGeneric:
		return &GenericAuth{APIKey: p.Token, CRN: p.Instance}
	default:
		return &QuantumAuth{AccessToken: p.Token}
	}
}

// BaseURL resolves the runtime API base URL. The generic channel uses the
// configured URL verbatim; the cloud channel derives a location scoped URL
// from the service CRN.
func (p ClientParameters) BaseURL() string {
	switch p.Channel {
	case ChannelGeneric:
		return p.URL
	case ChannelIBMCloud:
		resolver := p.URLResolver
		if resolver == nil {
			resolver = DefaultURLResolver
		}
		return resolver(p.URL, p.Instance, p.PrivateEndpoint)
	default:
		if p.URL == "" {
			return DefaultQuantumURL
		}
		return p.URL
	}
}

// DefaultURLResolver derives the runtime URL from the CRN's location
// segment, e.g. crn:v1:bluemix:public:quantum-computing:us-east:... maps to
// https://us-east.quantum-computing.cloud.ibm.com.
func DefaultURLResolver(rawURL, instance string, privateEndpoint bool) string {
	if rawURL != "" {
		return rawURL
	}
	segments := strings.Split(instance, ":")
	if len(segments) < 6 || segments[5] == "" {
		return DefaultCloudURL
	}
	host := fmt.Sprintf("%s.quantum-computing.cloud.ibm.com", segments[5])
	if privateEndpoint {
		host = fmt.Sprintf("private.%s", host)
	}
	return "https://" + host
}

// transport builds an HTTP transport honoring the proxy and TLS settings.
func (p ClientParameters) transport() (*http.Transport, error) {
	t := &http.Transport{Proxy: http.ProxyFromEnvironment}

	if p.Proxies != nil {
		if err := p.Proxies.Validate(); err != nil {
			return nil, err
		}
		httpsProxy := p.Proxies.HTTPS
		if httpsProxy == "" {
			httpsProxy = p.Proxies.HTTP
		}
		if httpsProxy != "" {
			proxyURL, err := url.Parse(httpsProxy)
			if err != nil {
				return nil, fmt.Errorf("invalid proxy url %q: %w", httpsProxy, err)
			}
			if p.Proxies.UsernameNTLM != "" {
				proxyURL.User = url.UserPassword(p.Proxies.UsernameNTLM, p.Proxies.PasswordNTLM)
			}
			t.Proxy = http.ProxyURL(proxyURL)
		}
	}
	if !p.Verify {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t, nil
}

// validate checks the parameters before dialing.
func (p ClientParameters) validate() error {
	switch p.Channel {
	case ChannelIBMQuantum, ChannelIBMCloud, ChannelGeneric:
	default:
		return NewCredentialsErr(
			fmt.Sprintf("unknown channel %q", p.Channel),
			fmt.Sprintf("channel must be one of %q, %q, %q", ChannelIBMQuantum, ChannelIBMCloud, ChannelGeneric),
		)
	}
	if p.Token == "" {
		return NewCredentialsErr(
			"missing credentials",
			"provide an API token for the selected channel",
		)
	}
	if p.Channel == ChannelIBMCloud && p.Instance == "" {
		return NewCredentialsErr(
			"missing service instance",
			"the ibm_cloud channel requires the service CRN as instance",
		)
	}
	if p.Channel == ChannelGeneric && p.URL == "" {
		return NewCredentialsErr(
			"missing endpoint url",
			"the generic channel requires an explicit API url",
		)
	}
	return nil
}
