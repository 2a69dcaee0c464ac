package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rollmark/rollmark/internal/extractor"
)

var identifyCmd = &cobra.Command{
	Use:   "identify <image>",
	Short: "Identify the face in a photo against the gallery",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("threshold", 0, "Acceptance distance threshold (0 = configured default)")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	engine := a.engine
	if threshold := mustGetFloat64(cmd, "threshold"); threshold > 0 {
		engine = a.engineWithThreshold(threshold)
	}

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	match, err := engine.IdentifyImage(cmd.Context(), imageData)
	switch {
	case errors.Is(err, extractor.ErrNoFaceDetected):
		fmt.Println("No face detected in the image")
		return nil
	case errors.Is(err, extractor.ErrNoEmbedding):
		fmt.Println("A face was detected but no embedding could be extracted")
		return nil
	case err != nil:
		return fmt.Errorf("identifying face: %w", err)
	}

	if match == nil {
		fmt.Println("No enrolled student matched")
		return nil
	}
	fmt.Printf("Matched %s (%s), distance %.4f\n", match.FullName(), match.StudentID, match.Distance)
	return nil
}
