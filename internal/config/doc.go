// Package config loads tedit's editor configuration.
//
// Sources are merged with later sources overriding earlier ones:
//
//	defaults < config file (TOML or YAML) < TEDIT_ environment variables
//
// Settings are addressed by dotted paths such as "editor.tabWidth" and read
// through typed section accessors:
//
//	cfg, err := config.Load(config.DefaultPath())
//	if err != nil {
//		return err
//	}
//	depth := cfg.Editor().HistoryDepth
//
// Load validates the merged result; a Config returned without error always
// passes Validate.
package config
