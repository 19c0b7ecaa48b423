// Package config provides configuration management for the coffer CLI.
//
// This package handles loading, generating, and validating coffer's own
// configuration file: watched backup groups, storage backends, exclusion
// rules, retention policy, and envelope encryption settings. The engine
// consumes the loaded configuration read-only.
//
// # Configuration File
//
// The default configuration file location is ~/.config/coffer/config.yaml.
// The configuration file uses YAML format with the following structure:
//
//	version: 1
//	default_storage: local
//	groups:
//	  - name: documents
//	    source: /home/user/Documents
//	    kind: incremental
//	storage:
//	  local:
//	    type: local
//	    root: /mnt/backups
//	exclusions:
//	  patterns: ["*.tmp"]
//	  max_file_size: 1073741824
//	retention:
//	  keep_last: 5
//	encryption:
//	  enabled: true
//	  salt: <hex, generated once at init>
//	  iterations: 100000
//
// # Loading Configuration
//
// Use [Load] with an empty path to search the default locations with
// graceful fallback to defaults, or with an explicit path:
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    return fmt.Errorf("loading config: %w", err)
//	}
//
// # Validation
//
// Use [Validate] to check a loaded configuration:
//
//	errs := config.Validate(cfg)
//	if len(errs) > 0 {
//	    for _, e := range errs {
//	        fmt.Println(e)
//	    }
//	}
//
// # Encryption Settings
//
// The salt and iteration count are constant for the installation's
// lifetime: they are recorded in every envelope sidecar, so rotating them
// in the config never breaks decryption of existing artifacts. [Example]
// generates the salt exactly once, at init time.
package config
