package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rollmark/rollmark/internal/extractor"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <student-id> <image>",
	Short: "Enroll a student's face from a photo",
	Long: `Enroll a student's face from a reference photo.
The photo is sent to the face extraction service; the resulting
embedding replaces any previous enrollment for the student and the
capture is stored in the photo directory.`,
	Args: cobra.ExactArgs(2),
	RunE: runEnroll,
}

var enrollBulkCmd = &cobra.Command{
	Use:   "enroll-bulk <dir>",
	Short: "Enroll every photo in a directory",
	Long: `Enroll every image in a directory. File names must be
<student-id>.jpg; the student ID is taken from the file name. Images
without a detectable face are reported and skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnrollBulk,
}

func init() {
	rootCmd.AddCommand(enrollCmd)
	rootCmd.AddCommand(enrollBulkCmd)

	enrollCmd.Flags().String("given-name", "", "Student's given name")
	enrollCmd.Flags().String("family-name", "", "Student's family name")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	studentID, imagePath := args[0], args[1]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("reading image: %w", err)
	}

	result, err := a.gallery.EnrollCapture(cmd.Context(), studentID,
		mustGetString(cmd, "given-name"), mustGetString(cmd, "family-name"), imageData)
	if err != nil {
		return fmt.Errorf("enrolling %s: %w", studentID, err)
	}

	verb := "updated"
	if result.Created {
		verb = "created"
	}
	fmt.Printf("Enrolled %s (%s, %d face(s) detected)\n", studentID, verb, result.FaceCount)
	fmt.Printf("Capture stored at %s\n", result.PhotoRef)
	return nil
}

func runEnrollBulk(cmd *cobra.Command, args []string) error {
	dir := args[0]

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory: %w", err)
	}

	var images []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".jpg", ".jpeg", ".png":
			images = append(images, entry.Name())
		}
	}
	if len(images) == 0 {
		return fmt.Errorf("no images found in %s", dir)
	}

	bar := progressbar.Default(int64(len(images)), "enrolling")
	enrolled, skipped := 0, 0
	for _, name := range images {
		imageData, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}

		studentID := strings.TrimSuffix(name, filepath.Ext(name))
		_, err = a.gallery.EnrollCapture(cmd.Context(), studentID, "", "", imageData)
		switch {
		case err == nil:
			enrolled++
		case errors.Is(err, extractor.ErrNoFaceDetected), errors.Is(err, extractor.ErrNoEmbedding):
			fmt.Printf("\nSkipping %s: no usable face\n", name)
			skipped++
		default:
			return fmt.Errorf("enrolling %s: %w", studentID, err)
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nEnrolled %d student(s), skipped %d\n", enrolled, skipped)
	return nil
}
