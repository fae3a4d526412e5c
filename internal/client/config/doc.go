// Package config loads runtime configuration for the todokeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables and global CLI flags, applied by package cli.
//
// # JSON schema
//
//	{
//	  "server_url": "http://127.0.0.1:3000",
//	  "state_path": "/home/me/.config/todokeeper/state.db",
//	  "timeout": "10s"
//	}
package config
