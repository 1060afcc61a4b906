package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

// Validate checks the configuration for required fields and valid values.
func (c *Config) Validate() error {
	var errors ValidationErrors

	errors = append(errors, c.validateNeo4j()...)

	if c.RootDir == "" {
		errors = append(errors, ValidationError{
			Field:   "root_dir",
			Message: "download root directory is required",
		})
	}

	if c.RunMode != "" && c.RunMode != "prod" && c.RunMode != "test" {
		errors = append(errors, ValidationError{
			Field:   "run_mode",
			Message: fmt.Sprintf("invalid run mode %q (must be 'prod' or 'test')", c.RunMode),
		})
	}

	errors = append(errors, c.validateProcessing()...)
	errors = append(errors, c.validateVerification()...)
	errors = append(errors, c.validateLogging()...)

	if len(errors) > 0 {
		return errors
	}
	return nil
}

func (c *Config) validateNeo4j() ValidationErrors {
	var errors ValidationErrors

	if c.Neo4j.URI == "" {
		errors = append(errors, ValidationError{
			Field:   "neo4j.uri",
			Message: "connection URI is required",
		})
	} else if !strings.HasPrefix(c.Neo4j.URI, "bolt://") &&
		!strings.HasPrefix(c.Neo4j.URI, "bolt+s://") &&
		!strings.HasPrefix(c.Neo4j.URI, "neo4j://") &&
		!strings.HasPrefix(c.Neo4j.URI, "neo4j+s://") {
		errors = append(errors, ValidationError{
			Field:   "neo4j.uri",
			Message: fmt.Sprintf("unsupported URI scheme in %q (expected bolt:// or neo4j://)", c.Neo4j.URI),
		})
	}

	if c.Neo4j.User == "" {
		errors = append(errors, ValidationError{
			Field:   "neo4j.user",
			Message: "user is required",
		})
	}

	if c.Neo4j.MaxConnections < 0 {
		errors = append(errors, ValidationError{
			Field:   "neo4j.max_connections",
			Message: "must be zero or positive",
		})
	}

	return errors
}

func (c *Config) validateProcessing() ValidationErrors {
	var errors ValidationErrors

	if c.Processing.BatchSize <= 0 {
		errors = append(errors, ValidationError{
			Field:   "processing.batch_size",
			Message: "must be positive",
		})
	}

	switch c.Processing.DedupPolicy {
	case "", "overwrite", "reject":
	default:
		errors = append(errors, ValidationError{
			Field:   "processing.dedup_policy",
			Message: fmt.Sprintf("invalid policy %q (must be 'overwrite' or 'reject')", c.Processing.DedupPolicy),
		})
	}

	return errors
}

func (c *Config) validateVerification() ValidationErrors {
	var errors ValidationErrors

	switch c.Verification.Method {
	case "", "count", "none":
	default:
		errors = append(errors, ValidationError{
			Field:   "verification.method",
			Message: fmt.Sprintf("invalid method %q (must be 'count' or 'none')", c.Verification.Method),
		})
	}

	return errors
}

func (c *Config) validateLogging() ValidationErrors {
	var errors ValidationErrors

	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid level %q", c.Logging.Level),
		})
	}

	switch c.Logging.Format {
	case "", "json", "text":
	default:
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid format %q", c.Logging.Format),
		})
	}

	return errors
}
