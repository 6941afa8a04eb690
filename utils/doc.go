// Package utils provides the named logrus loggers used across the module
// and small environment parsing helpers.
package utils
