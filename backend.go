package qiskitruntime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Gates the service reports that are filtered depending on the fractional
// gate setting.
var (
	fractionalGates     = map[string]bool{"rzz": true, "rx": true}
	dynamicInstructions = map[string]bool{
		"if_else": true, "while_loop": true, "for_loop": true, "switch_case": true,
	}
)

// Complex is a complex128 that marshals as a [real, imag] pair, the format
// the service uses on the wire. A bare number is accepted as a real value.
type Complex complex128

func (c Complex) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{real(complex128(c)), imag(complex128(c))})
}

func (c *Complex) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err == nil {
		*c = Complex(complex(pair[0], pair[1]))
		return nil
	}
	var re float64
	if err := json.Unmarshal(data, &re); err == nil {
		*c = Complex(complex(re, 0))
		return nil
	}
	return fmt.Errorf("%s is not in a valid complex number format", data)
}

// isoLayouts covers the date formats observed in server payloads.
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
}

// ISOTime is a time.Time that unmarshals from the service's assorted
// ISO 8601 spellings.
type ISOTime struct {
	time.Time
}

func (t ISOTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Format(time.RFC3339Nano))
}

func (t *ISOTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for _, layout := range isoLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("%q is not a recognized ISO 8601 date", s)
}

// GateConfig describes one gate supported by a backend.
type GateConfig struct {
	Name        string   `json:"name"`
	Parameters  []string `json:"parameters,omitempty"`
	QasmDef     string   `json:"qasm_def,omitempty"`
	CouplingMap [][]int  `json:"coupling_map,omitempty"`
}

// UChannelLO is one local oscillator on a control channel.
type UChannelLO struct {
	Q     int     `json:"q"`
	Scale Complex `json:"scale"`
}

// BackendConfiguration is the static description of a backend.
type BackendConfiguration struct {
	BackendName           string         `json:"backend_name"`
	BackendVersion        string         `json:"backend_version,omitempty"`
	NumQubits             int            `json:"n_qubits"`
	BasisGates            []string       `json:"basis_gates"`
	Gates                 []GateConfig   `json:"gates"`
	CouplingMap           [][]int        `json:"coupling_map,omitempty"`
	SupportedInstructions []string       `json:"supported_instructions,omitempty"`
	SupportedFeatures     []string       `json:"supported_features,omitempty"`
	OnlineDate            ISOTime        `json:"online_date"`
	MaxShots              int            `json:"max_shots,omitempty"`
	Simulator             bool           `json:"simulator,omitempty"`
	Local                 bool           `json:"local,omitempty"`
	OpenPulse             bool           `json:"open_pulse,omitempty"`
	UChannelLO            [][]UChannelLO `json:"u_channel_lo,omitempty"`
}

func filterStrings(in []string, drop map[string]bool) []string {
	if in == nil {
		return nil
	}
	out := in[:0]
	for _, s := range in {
		if !drop[s] {
			out = append(out, s)
		}
	}
	return out
}

// filterFractional removes either the fractional gates or, when fractional
// gates are kept, the dynamic-circuit instructions: the service cannot serve
// both at once.
func (cfg *BackendConfiguration) filterFractional(useFractionalGates bool) {
	if useFractionalGates {
		cfg.SupportedInstructions = filterStrings(cfg.SupportedInstructions, dynamicInstructions)
		cfg.SupportedFeatures = filterStrings(cfg.SupportedFeatures, map[string]bool{"qasm3": true})
		return
	}
	cfg.BasisGates = filterStrings(cfg.BasisGates, fractionalGates)
	cfg.SupportedInstructions = filterStrings(cfg.SupportedInstructions, fractionalGates)
	gates := cfg.Gates[:0]
	for _, g := range cfg.Gates {
		if !fractionalGates[g.Name] {
			gates = append(gates, g)
		}
	}
	cfg.Gates = gates
}

// ConfigurationFromServerData decodes a raw backend configuration. Malformed
// configurations are logged and reported as nil so one bad backend does not
// break a listing.
func ConfigurationFromServerData(raw json.RawMessage, instance string, useFractionalGates bool) *BackendConfiguration {
	cfg := new(BackendConfiguration)
	if err := json.Unmarshal(raw, cfg); err != nil || cfg.BackendName == "" {
		logger.Warnf("remote backend for service instance %q could not be decoded: invalid server-side configuration", instance)
		logger.Debugf("invalid device configuration: %v", err)
		return nil
	}
	cfg.filterFractional(useFractionalGates)
	return cfg
}

// Nduv is a name-date-unit-value tuple, the unit properties are reported in.
type Nduv struct {
	Date  ISOTime `json:"date"`
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
}

// GateProperties carries the measured parameters of one gate.
type GateProperties struct {
	Gate       string `json:"gate"`
	Qubits     []int  `json:"qubits"`
	Parameters []Nduv `json:"parameters"`
}

// BackendProperties is the measured snapshot of a backend: qubit T1/T2,
// frequencies, readout and gate errors.
type BackendProperties struct {
	BackendName    string           `json:"backend_name"`
	BackendVersion string           `json:"backend_version,omitempty"`
	LastUpdateDate ISOTime          `json:"last_update_date"`
	Qubits         [][]Nduv         `json:"qubits"`
	Gates          []GateProperties `json:"gates"`
	General        []Nduv           `json:"general"`
}

// PropertiesFromServerData decodes raw backend properties.
func PropertiesFromServerData(raw json.RawMessage) (*BackendProperties, error) {
	props := new(BackendProperties)
	if err := json.Unmarshal(raw, props); err != nil {
		return nil, fmt.Errorf("cannot decode backend properties: %w", err)
	}
	return props, nil
}

// Qubit returns the named property of one qubit, if present.
func (p *BackendProperties) Qubit(qubit int, name string) (Nduv, bool) {
	if qubit < 0 || qubit >= len(p.Qubits) {
		return Nduv{}, false
	}
	for _, nduv := range p.Qubits[qubit] {
		if nduv.Name == name {
			return nduv, true
		}
	}
	return Nduv{}, false
}

// PulseParameters are the knobs of a parametric pulse.
type PulseParameters struct {
	Amp      *Complex `json:"amp,omitempty"`
	Duration int      `json:"duration,omitempty"`
	Sigma    float64  `json:"sigma,omitempty"`
	Beta     float64  `json:"beta,omitempty"`
	Width    float64  `json:"width,omitempty"`
}

// PulseQobjInstruction is one instruction of a pulse command definition.
type PulseQobjInstruction struct {
	Name       string           `json:"name"`
	T0         int              `json:"t0"`
	Ch         string           `json:"ch,omitempty"`
	Val        *Complex         `json:"val,omitempty"`
	Phase      float64          `json:"phase,omitempty"`
	Parameters *PulseParameters `json:"parameters,omitempty"`
}

// PulseLibraryItem is a named list of complex samples.
type PulseLibraryItem struct {
	Name    string    `json:"name"`
	Samples []Complex `json:"samples"`
}

// Command maps a gate on specific qubits to its pulse sequence.
type Command struct {
	Name     string                 `json:"name"`
	Qubits   []int                  `json:"qubits,omitempty"`
	Sequence []PulseQobjInstruction `json:"sequence,omitempty"`
}

// PulseDefaults is the default pulse calibration of a backend.
type PulseDefaults struct {
	QubitFreqEst []float64          `json:"qubit_freq_est"`
	MeasFreqEst  []float64          `json:"meas_freq_est"`
	PulseLibrary []PulseLibraryItem `json:"pulse_library"`
	CmdDef       []Command          `json:"cmd_def"`
}

// DefaultsFromServerData decodes raw pulse defaults.
func DefaultsFromServerData(raw json.RawMessage) (*PulseDefaults, error) {
	defaults := new(PulseDefaults)
	if err := json.Unmarshal(raw, defaults); err != nil {
		return nil, fmt.Errorf("cannot decode pulse defaults: %w", err)
	}
	return defaults, nil
}

// BackendStatus is the live status of a backend.
type BackendStatus struct {
	BackendName string `json:"backend_name,omitempty"`
	Operational bool   `json:"state"`
	Status      string `json:"status,omitempty"`
	Message     string `json:"message,omitempty"`
	PendingJobs int    `json:"length_queue,omitempty"`
}

// Backend represents a backend available to run jobs on.
type Backend struct {
	Name string

	conn *Conn
	cfg  *BackendConfiguration
}

// Configuration returns the decoded configuration fetched when the backend
// was listed, possibly nil when the server data was malformed.
func (b *Backend) Configuration() *BackendConfiguration { return b.cfg }

// Status retrieves the live status of the backend.
func (b *Backend) Status(ctx context.Context) (*BackendStatus, error) {
	status := new(BackendStatus)
	if err := b.conn.get(ctx, fmt.Sprintf("backends/%s/status", b.Name), nil, status); err != nil {
		return nil, err
	}
	if status.BackendName == "" {
		status.BackendName = b.Name
	}
	return status, nil
}

// Properties retrieves the measured properties of the backend.
func (b *Backend) Properties(ctx context.Context) (*BackendProperties, error) {
	var raw json.RawMessage
	if err := b.conn.get(ctx, fmt.Sprintf("backends/%s/properties", b.Name), nil, &raw); err != nil {
		return nil, err
	}
	return PropertiesFromServerData(raw)
}

// Defaults retrieves the pulse defaults of the backend. Not every backend
// exposes them.
func (b *Backend) Defaults(ctx context.Context) (*PulseDefaults, error) {
	var raw json.RawMessage
	if err := b.conn.get(ctx, fmt.Sprintf("backends/%s/defaults", b.Name), nil, &raw); err != nil {
		return nil, err
	}
	return DefaultsFromServerData(raw)
}
