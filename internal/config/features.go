package config

import "encoding/json"

// InitializationType selects how the generated executable builds its
// application context.
type InitializationType string

const (
	// InitializationOriginal emits a per-invocation context factory.
	InitializationOriginal InitializationType = "original"
	// InitializationStreamlined emits an initializer interface in the HTTP
	// library and a single shared context.
	InitializationStreamlined InitializationType = "streamlined"
)

func (t *InitializationType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch InitializationType(s) {
	case InitializationOriginal, InitializationStreamlined:
		*t = InitializationType(s)
		return nil
	default:
		return configError("unknown initialization type %q", s)
	}
}

// OrDefault returns t, or InitializationOriginal when t is unset.
func (t InitializationType) OrDefault() InitializationType {
	if t == "" {
		return InitializationOriginal
	}
	return t
}

// FeatureStatus toggles an optional code generation feature.
type FeatureStatus string

const (
	FeatureEnabled  FeatureStatus = "enabled"
	FeatureDisabled FeatureStatus = "disabled"
)

func (s *FeatureStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch FeatureStatus(v) {
	case FeatureEnabled, FeatureDisabled:
		*s = FeatureStatus(v)
		return nil
	default:
		return configError("unknown feature status %q", v)
	}
}

// Enabled reports s == FeatureEnabled; an unset status is disabled.
func (s FeatureStatus) Enabled() bool { return s == FeatureEnabled }

// CodeGenFeatures are optional toggles for the generated application.
type CodeGenFeatures struct {
	// AsyncOperationStubs adds a context.Context parameter to every handler.
	AsyncOperationStubs FeatureStatus `json:"asyncOperationStubs,omitempty"`
	// TestDiscovery, when disabled, adds a TestMain to the operations package.
	TestDiscovery FeatureStatus `json:"testDiscovery,omitempty"`
	// MainAnnotation emits the application as a runnable type instead of a
	// bare main function.
	MainAnnotation FeatureStatus `json:"mainAnnotation,omitempty"`
	// AsyncInitialization passes a context.Context to the initializer.
	AsyncInitialization FeatureStatus `json:"asyncInitialization,omitempty"`
	// AddSendableConformance adds compile-time checks that the context type
	// is safe to share between goroutines.
	AddSendableConformance FeatureStatus `json:"addSendableConformance,omitempty"`
}

// DefaultCodeGenFeatures has test discovery enabled and everything else disabled.
func DefaultCodeGenFeatures() CodeGenFeatures {
	return CodeGenFeatures{
		AsyncOperationStubs:    FeatureDisabled,
		TestDiscovery:          FeatureEnabled,
		MainAnnotation:         FeatureDisabled,
		AsyncInitialization:    FeatureDisabled,
		AddSendableConformance: FeatureDisabled,
	}
}

// WithDefaults fills unset toggles from DefaultCodeGenFeatures.
func (f CodeGenFeatures) WithDefaults() CodeGenFeatures {
	d := DefaultCodeGenFeatures()
	pick := func(v, def FeatureStatus) FeatureStatus {
		if v == "" {
			return def
		}
		return v
	}
	return CodeGenFeatures{
		AsyncOperationStubs:    pick(f.AsyncOperationStubs, d.AsyncOperationStubs),
		TestDiscovery:          pick(f.TestDiscovery, d.TestDiscovery),
		MainAnnotation:         pick(f.MainAnnotation, d.MainAnnotation),
		AsyncInitialization:    pick(f.AsyncInitialization, d.AsyncInitialization),
		AddSendableConformance: pick(f.AddSendableConformance, d.AddSendableConformance),
	}
}
