package config

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

// EnvPrefix is prepended to every environment variable read by this package.
const EnvPrefix = "SILENCECUT_"

// Lookuper resolves environment variables; see envconfig.MapLookuper for tests.
type Lookuper = envconfig.Lookuper

// Runtime holds process-level settings that only come from the environment.
type Runtime struct {
	LogLevel string `env:"LOG_LEVEL, default=info" validate:"oneof=trace debug info warn warning error"`

	// Optional S3 settings for --upload; credentials fall back to the AWS default chain.
	S3Region          string `env:"S3_REGION"`
	S3Endpoint        string `env:"S3_ENDPOINT"`
	S3AccessKeyID     string `env:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `env:"S3_SECRET_ACCESS_KEY"`
}

// LoadRuntime reads SILENCECUT_* runtime settings (nil lookup means the process environment).
func LoadRuntime(ctx context.Context, lookup Lookuper) (Runtime, error) {
	var r Runtime
	if err := process(ctx, &r, lookup); err != nil {
		return r, err
	}
	if err := validate.Struct(r); err != nil {
		return r, fmt.Errorf("%w: %s%s: %q is not a log level", ErrInvalid, EnvPrefix, "LOG_LEVEL", r.LogLevel)
	}
	return r, nil
}

// applyEnv overlays SILENCECUT_* parameter variables onto p.
func applyEnv(ctx context.Context, p *Params, lookup Lookuper) error {
	return process(ctx, p, lookup)
}

func process(ctx context.Context, target any, lookup Lookuper) error {
	if lookup == nil {
		lookup = envconfig.OsLookuper()
	}
	err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: envconfig.PrefixLookuper(EnvPrefix, lookup),
	})
	if err != nil {
		return fmt.Errorf("%w: environment: %w", ErrInvalid, err)
	}
	return nil
}
