package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rollmark",
	Short: "Face-recognition attendance for class sessions",
	Long: `Rollmark records class attendance with face recognition.
Students enroll a reference photo once; during a session a camera
capture identifies them against the enrolled gallery and marks them
present. Attendance ratios are derived per student and per course.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
