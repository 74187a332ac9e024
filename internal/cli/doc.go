// Package cli provides the zungenctl command line: offline inspection and
// maintenance of the translation storage file. It handles flag parsing,
// command creation, and configuration using cobra and viper.
package cli
