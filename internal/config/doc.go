// Package config defines the engine configuration consumed by the install
// plan, the build pipeline and the CLI.
//
// A [Config] is loaded from a YAML file (k8zenv.yaml by default) with
// [LoadFile], defaulted and validated. Operational timeouts are read from
// K8ZENV_* environment variables by [LoadTimeouts] so they can be tuned
// without touching the config file.
package config
