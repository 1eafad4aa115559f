package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore"
)

var (
	multipartFile        string
	multipartKey         string
	multipartPartSize    string
	multipartConcurrency int
	multipartRetries     int
)

var multipartCmd = &cobra.Command{
	Use:   "multipart",
	Short: "Chunked parallel multipart upload",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBucket(); err != nil {
			return err
		}

		partSize, err := humanize.ParseBytes(multipartPartSize)
		if err != nil {
			return fmt.Errorf("parse --part-size: %w", err)
		}

		file, err := os.Open(multipartFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", multipartFile, err)
		}
		defer file.Close()

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		start := time.Now()
		result, err := client.Upload(cmd.Context(), flagBucket, multipartKey, file,
			blobstore.WithUploadPartSize(int64(partSize)),
			blobstore.WithUploadConcurrency(multipartConcurrency),
			blobstore.WithPartRetries(multipartRetries),
		)
		if err != nil {
			return err
		}

		took := time.Since(start)
		slog.Info("multipart upload complete",
			"key", result.Key,
			"size", humanize.Bytes(uint64(result.Size)),
			"parts", result.Parts,
			"part_size", humanize.Bytes(partSize),
			"concurrency", multipartConcurrency,
			"took", took.Round(time.Millisecond),
			"throughput", fmt.Sprintf("%s/s", humanize.Bytes(uint64(float64(result.Size)/took.Seconds()))),
		)
		return nil
	},
}

func init() {
	multipartCmd.Flags().StringVarP(&multipartFile, "file", "f", "payload.bin", "payload file to upload")
	multipartCmd.Flags().StringVarP(&multipartKey, "key", "k", "cloudbench/multipart.bin", "object key")
	multipartCmd.Flags().StringVar(&multipartPartSize, "part-size", "8MB", "part size")
	multipartCmd.Flags().IntVar(&multipartConcurrency, "concurrency", 5, "in-flight part ceiling")
	multipartCmd.Flags().IntVar(&multipartRetries, "retries", 0, "additional attempts per part")
	rootCmd.AddCommand(multipartCmd)
}
