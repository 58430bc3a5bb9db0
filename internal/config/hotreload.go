package config

// HotReloadConfig controls how build results reach connected browsers
type HotReloadConfig struct {
	AutoRefreshBrowser bool `json:"auto_refresh_browser" yaml:"auto_refresh_browser"`
	EnableCSSInjection bool `json:"enable_css_injection" yaml:"enable_css_injection"`
}

// DefaultHotReloadConfig returns default hot reload configuration
func DefaultHotReloadConfig() HotReloadConfig {
	return HotReloadConfig{
		AutoRefreshBrowser: true,
		EnableCSSInjection: true,
	}
}

// Validate validates hot reload configuration
func (h HotReloadConfig) Validate() error {
	return nil
}
