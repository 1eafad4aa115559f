package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/input-output-hk/catalyst-forge-libs/aws/blobstore"
)

var (
	scatterFile        string
	scatterKey         string
	scatterPartSize    string
	scatterConcurrency int
	scatterGather      bool
	scatterCleanup     bool
)

var scatterCmd = &cobra.Command{
	Use:   "scatter",
	Short: "PUT-per-part upload without the multipart protocol",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireBucket(); err != nil {
			return err
		}

		partSize, err := humanize.ParseBytes(scatterPartSize)
		if err != nil {
			return fmt.Errorf("parse --part-size: %w", err)
		}

		file, err := os.Open(scatterFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", scatterFile, err)
		}
		defer file.Close()

		client, err := newClient()
		if err != nil {
			return err
		}
		defer client.Close()

		start := time.Now()
		result, err := client.UploadScattered(cmd.Context(), flagBucket, scatterKey, file,
			blobstore.WithUploadPartSize(int64(partSize)),
			blobstore.WithUploadConcurrency(scatterConcurrency),
		)
		if err != nil {
			return err
		}

		slog.Info("scatter upload complete",
			"key", result.Key,
			"size", humanize.Bytes(uint64(result.Size)),
			"part_objects", len(result.PartKeys),
			"took", time.Since(start).Round(time.Millisecond),
		)

		if scatterGather {
			gatherStart := time.Now()
			dl, err := client.DownloadScattered(cmd.Context(), flagBucket, scatterKey, io.Discard)
			if err != nil {
				return err
			}
			slog.Info("gather complete",
				"size", humanize.Bytes(uint64(dl.Size)),
				"took", time.Since(gatherStart).Round(time.Millisecond),
			)
		}

		if scatterCleanup {
			del, err := client.DeleteScattered(cmd.Context(), flagBucket, scatterKey)
			if err != nil {
				return err
			}
			slog.Info("part objects deleted", "count", len(del.Deleted))
		}
		return nil
	},
}

func init() {
	scatterCmd.Flags().StringVarP(&scatterFile, "file", "f", "payload.bin", "payload file to upload")
	scatterCmd.Flags().StringVarP(&scatterKey, "key", "k", "cloudbench/scatter.bin", "logical object key")
	scatterCmd.Flags().StringVar(&scatterPartSize, "part-size", "8MB", "part size")
	scatterCmd.Flags().IntVar(&scatterConcurrency, "concurrency", 5, "in-flight part ceiling")
	scatterCmd.Flags().BoolVar(&scatterGather, "gather", false, "reassemble the payload after upload")
	scatterCmd.Flags().BoolVar(&scatterCleanup, "cleanup", false, "delete the part objects afterwards")
	rootCmd.AddCommand(scatterCmd)
}
