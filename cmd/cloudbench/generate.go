package main

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	generateSize string
	generateOut  string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a random payload file of the given size",
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := humanize.ParseBytes(generateSize)
		if err != nil {
			return fmt.Errorf("parse --size: %w", err)
		}

		file, err := os.Create(generateOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", generateOut, err)
		}
		defer file.Close()

		start := time.Now()
		if _, err := io.CopyN(file, rand.Reader, int64(size)); err != nil {
			return fmt.Errorf("write payload: %w", err)
		}

		slog.Info("payload written",
			"path", generateOut,
			"size", humanize.Bytes(size),
			"took", time.Since(start).Round(time.Millisecond),
		)
		return nil
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateSize, "size", "100MB", "payload size (e.g. 512KB, 100MB, 1GB)")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "payload.bin", "output file")
	rootCmd.AddCommand(generateCmd)
}
