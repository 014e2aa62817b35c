// Package config turns viper state into the typed run configuration:
// output location, silence gap, caption style, speech provider settings,
// media tool paths and the per-language voice profiles.
package config
