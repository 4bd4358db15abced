package qiskitruntime

import "net/http"

// AuthHandler stamps authentication headers onto outgoing requests.
type AuthHandler interface {
	Apply(req *http.Request)
}

// QuantumAuth authenticates with an access token obtained from the quantum
// channel login endpoint.
type QuantumAuth struct {
	AccessToken string
}

func (a *QuantumAuth) Apply(req *http.Request) {
	req.Header.Set("X-Access-Token", a.AccessToken)
}

// CloudAuth authenticates with an IBM Cloud API key and service CRN.
type CloudAuth struct {
	APIKey string
	CRN    string
}

func (a *CloudAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "apikey "+a.APIKey)
	req.Header.Set("Service-CRN", a.CRN)
}

// GenericAuth authenticates against a self-hosted deployment with an API key
// and, optionally, a CRN.
type GenericAuth struct {
	APIKey string
	CRN    string
}

func (a *GenericAuth) Apply(req *http.Request) {
	req.Header.Set("Authorization", "apikey "+a.APIKey)
	if a.CRN != "" {
		req.Header.Set("Service-CRN", a.CRN)
	}
}
