package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage class sessions",
}

var sessionsOpenCmd = &cobra.Command{
	Use:   "open",
	Short: "Open a session for a course",
	RunE:  runSessionsOpen,
}

var sessionsCloseCmd = &cobra.Command{
	Use:   "close <session-id>",
	Short: "Close a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsClose,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sessions of a course",
	RunE:  runSessionsList,
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsOpenCmd)
	sessionsCmd.AddCommand(sessionsCloseCmd)
	sessionsCmd.AddCommand(sessionsListCmd)

	sessionsOpenCmd.Flags().String("course", "", "Course code (required)")
	sessionsOpenCmd.Flags().String("teacher", "", "Teacher ID")
	sessionsOpenCmd.Flags().String("date", "", "Session date as YYYY-MM-DD (defaults to today)")
	_ = sessionsOpenCmd.MarkFlagRequired("course")

	sessionsListCmd.Flags().String("course", "", "Course code (required)")
	_ = sessionsListCmd.MarkFlagRequired("course")
}

func runSessionsOpen(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	date := time.Now()
	if raw := mustGetString(cmd, "date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid --date %q, expected YYYY-MM-DD", raw)
		}
	}

	session, err := a.ledger.OpenSession(cmd.Context(), mustGetString(cmd, "course"), mustGetString(cmd, "teacher"), date)
	if err != nil {
		return fmt.Errorf("opening session: %w", err)
	}

	fmt.Printf("Opened session %s\n", session.ID)
	fmt.Printf("  Course: %s (%s)\n", session.CourseCode, session.CourseTitle)
	fmt.Printf("  Date:   %s\n", session.Date.Format("2006-01-02"))
	fmt.Printf("  Roster: %d student(s)\n", len(session.Roster))
	return nil
}

func runSessionsClose(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.ledger.CloseSession(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	fmt.Printf("Closed session %s\n", args[0])
	return nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	sessions, err := a.sessions.ByCourse(cmd.Context(), mustGetString(cmd, "course"))
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %s  %-6s  present %d/%d\n",
			s.ID, s.Date.Format("2006-01-02"), s.Status, len(s.Present), len(s.Roster))
	}
	return nil
}
