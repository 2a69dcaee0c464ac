package cmd

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/rollmark/rollmark/internal/database/sis"
)

var syncRosterCmd = &cobra.Command{
	Use:   "sync-roster",
	Short: "Import course rosters and student names from the SIS mirror",
	Long: `Copy course definitions, rosters and student names from the
student information system's read-only MySQL mirror into the local
database. Existing face enrollments are untouched; only names and
course membership are updated.`,
	RunE: runSyncRoster,
}

func init() {
	rootCmd.AddCommand(syncRosterCmd)

	syncRosterCmd.Flags().Bool("students-only", false, "Import student names but not courses")
}

func runSyncRoster(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.SIS.DSN == "" {
		return fmt.Errorf("SIS_DATABASE_DSN environment variable is required")
	}

	pool, err := sis.NewPool(a.cfg.SIS.DSN)
	if err != nil {
		return fmt.Errorf("connecting to SIS: %w", err)
	}
	defer pool.Close()

	ctx := cmd.Context()

	students, err := pool.Students(ctx)
	if err != nil {
		return fmt.Errorf("loading SIS students: %w", err)
	}
	bar := progressbar.Default(int64(len(students)), "importing students")
	for _, s := range students {
		if err := a.identities.UpsertName(ctx, s.StudentID, s.GivenName, s.FamilyName); err != nil {
			return fmt.Errorf("importing student %s: %w", s.StudentID, err)
		}
		_ = bar.Add(1)
	}
	fmt.Printf("\nImported %d student name(s)\n", len(students))

	if mustGetBool(cmd, "students-only") {
		return nil
	}

	courses, err := pool.Courses(ctx)
	if err != nil {
		return fmt.Errorf("loading SIS courses: %w", err)
	}
	for _, course := range courses {
		if err := a.courses.UpsertCourse(ctx, course); err != nil {
			return fmt.Errorf("importing course %s: %w", course.Code, err)
		}
	}
	fmt.Printf("Imported %d course(s)\n", len(courses))
	return nil
}
