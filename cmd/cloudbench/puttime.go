package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	puttimeFile string
	puttimeKey  string
)

// puttimeCmd compares a local disk write with a single PUT of the same
// payload, giving a baseline before tuning the chunked paths.
var puttimeCmd = &cobra.Command{
	Use:   "puttime",
	Short: "Time a local disk write vs a single PUT of the same payload",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBucket(); err != nil {
			return err
		}

		data, err := os.ReadFile(puttimeFile)
		if err != nil {
			return fmt.Errorf("read %s: %w", puttimeFile, err)
		}

		localStart := time.Now()
		tmp, err := os.CreateTemp("", "puttime-*")
		if err != nil {
			return fmt.Errorf("create temp file: %w", err)
		}
		defer os.Remove(tmp.Name())
		if _, err := tmp.Write(data); err != nil {
			tmp.Close()
			return fmt.Errorf("local write: %w", err)
		}
		if err := tmp.Sync(); err != nil {
			tmp.Close()
			return fmt.Errorf("sync: %w", err)
		}
		tmp.Close()
		localTook := time.Since(localStart)

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		remoteStart := time.Now()
		if err := client.Put(cmd.Context(), flagBucket, puttimeKey, data); err != nil {
			return err
		}
		remoteTook := time.Since(remoteStart)

		slog.Info("puttime results",
			"size", humanize.Bytes(uint64(len(data))),
			"local_write", localTook.Round(time.Millisecond),
			"single_put", remoteTook.Round(time.Millisecond),
		)
		return nil
	},
}

func init() {
	puttimeCmd.Flags().StringVarP(&puttimeFile, "file", "f", "payload.bin", "payload file to upload")
	puttimeCmd.Flags().StringVarP(&puttimeKey, "key", "k", "cloudbench/puttime.bin", "object key")
	rootCmd.AddCommand(puttimeCmd)
}
