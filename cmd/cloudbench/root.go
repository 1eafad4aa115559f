package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore"
	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore/blobtypes"
)

var (
	flagBucket    string
	flagRegion    string
	flagEndpoint  string
	flagEnvFile   string
	flagPathStyle bool
)

var rootCmd = &cobra.Command{
	Use:           "cloudbench",
	Short:         "Benchmark chunked uploads and the cloud-backed KV engine",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagEnvFile == "" {
			return nil
		}
		if err := godotenv.Load(flagEnvFile); err != nil {
			return fmt.Errorf("load env file %s: %w", flagEnvFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagBucket, "bucket", "b", "", "target bucket")
	rootCmd.PersistentFlags().StringVarP(&flagRegion, "region", "r", "", "region override")
	rootCmd.PersistentFlags().StringVar(&flagEndpoint, "endpoint", "", "custom endpoint for S3-compatible stores")
	rootCmd.PersistentFlags().StringVar(&flagEnvFile, "env-file", "", "env file with credentials (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY)")
	rootCmd.PersistentFlags().BoolVar(&flagPathStyle, "path-style", false, "use path-style addressing")
}

// newClient builds a blobstore client from the persistent flags.
// Credentials come from the environment, optionally seeded by --env-file.
func newClient() (*blobstore.Client, error) {
	var options []blobtypes.Option
	if flagRegion != "" {
		options = append(options, blobstore.WithRegion(flagRegion))
	}
	if flagEndpoint != "" {
		options = append(options, blobstore.WithEndpoint(flagEndpoint))
	}
	if flagPathStyle {
		options = append(options, blobstore.WithForcePathStyle(true))
	}
	if ak, sk := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY"); ak != "" && sk != "" {
		options = append(options, blobstore.WithStaticCredentials(ak, sk, os.Getenv("AWS_SESSION_TOKEN")))
	}

	client, err := blobstore.New(options...)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}
	return client, nil
}

func requireBucket() error {
	if flagBucket == "" {
		return fmt.Errorf("--bucket is required")
	}
	return nil
}
