// Package config reads phonebook settings from CONTACTS_* environment
// variables with github.com/kelseyhightower/envconfig.
package config
