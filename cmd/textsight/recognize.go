package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var withConfidence bool

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Extract text from a single image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, _, err := buildService()
		if err != nil {
			return err
		}
		path := args[0]
		if !svc.IsSupportedFormat(path) {
			return fmt.Errorf("unsupported file format: %s", path)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		if withConfidence {
			text, conf, err := svc.DetectDocumentWithConfidence(ctx, path)
			if err != nil {
				return err
			}
			fmt.Println(text)
			fmt.Fprintf(os.Stderr, "confidence: %.3f\n", conf)
			return nil
		}

		text, err := svc.DetectDocument(ctx, path)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

func init() {
	recognizeCmd.Flags().BoolVarP(&withConfidence, "confidence", "c", false,
		"also report the average confidence score")
	rootCmd.AddCommand(recognizeCmd)
}
