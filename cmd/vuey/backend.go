package main

import (
	"context"
	"database/sql"
	stderrors "errors"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "modernc.org/sqlite"

	"github.com/vango-dev/vuey/internal/config"
	vuerrors "github.com/vango-dev/vuey/internal/errors"
	"github.com/vango-dev/vuey/pkg/persist"
)

// loadConfig resolves vuey.json, applies VUEY_ overrides and validates the
// result. Without --config a missing file falls back to defaults.
func loadConfig(flags *globalFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Find(".")
		var ve *vuerrors.VuError
		if stderrors.As(err, &ve) && ve.Code == "V041" {
			warn("no %s found, using in-memory backends", config.ConfigFileName)
			cfg, err = config.New(), nil
		}
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(nil); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// backendConfig picks the section the record commands operate on.
func backendConfig(cfg *config.Config, flags *globalFlags) (string, config.BackendConfig) {
	if flags.session {
		return "session", cfg.Session
	}
	return "durable", cfg.Durable
}

// openBackend builds the backend described by bc. The returned closer
// releases whatever the backend holds open and is never nil.
func openBackend(cfg *config.Config, section string, bc config.BackendConfig) (persist.Backend, func() error, error) {
	noop := func() error { return nil }

	timeout, err := bc.TimeoutDuration()
	if err != nil {
		return nil, noop, err
	}

	switch bc.Kind {
	case config.KindMemory:
		m := persist.NewMemory()
		return m, m.Close, nil

	case config.KindFile:
		f, err := persist.NewFile(cfg.ResolvePath(bc.Dir))
		if err != nil {
			return nil, noop, unavailable(section, err)
		}
		return f, noop, nil

	case config.KindSQLite:
		db, err := sql.Open("sqlite", bc.DSN)
		if err != nil {
			return nil, noop, unavailable(section, err)
		}
		backend := persist.NewSQL(db,
			persist.WithSQLTable(bc.Table),
			persist.WithSQLTimeout(timeout),
		)
		if err := backend.EnsureSchema(); err != nil {
			db.Close()
			return nil, noop, unavailable(section, err)
		}
		return backend, db.Close, nil

	case config.KindS3:
		client := s3.New(s3.Options{
			Region:       bc.Region,
			BaseEndpoint: optional(bc.Endpoint),
			UsePathStyle: bc.Endpoint != "",
			Credentials:  envCredentials(),
		})
		return persist.NewS3(client, bc.Bucket,
			persist.WithS3Prefix(bc.Prefix),
			persist.WithS3Timeout(timeout),
		), noop, nil
	}

	return nil, noop, vuerrors.New("V042").
		WithDetail(section + ": unknown backend kind " + bc.Kind)
}

func unavailable(section string, err error) error {
	return vuerrors.New("V020").
		WithDetail("Could not open the " + section + " backend").
		Wrap(err)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}

// envCredentials reads the standard AWS_ access key variables.
func envCredentials() aws.CredentialsProvider {
	return aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
		creds := aws.Credentials{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
			Source:          "vuey environment",
		}
		if !creds.HasKeys() {
			return aws.Credentials{}, stderrors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY are not set")
		}
		return creds, nil
	})
}
