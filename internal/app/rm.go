package app

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/devpulse/internal/output"
	"github.com/blackwell-systems/devpulse/internal/store"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a logged session",
	Args:  cobra.ExactArgs(1),
	RunE:  runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	_, db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	id := args[0]
	row, err := db.GetSession(id)
	if err == nil {
		err = db.DeleteSession(id)
	}
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return fmt.Errorf("no session with id %q (see 'devpulse sessions --json' for full ids)", id)
		}
		return fmt.Errorf("deleting session: %w", err)
	}

	if flagJSON {
		return writeJSON(cmd.OutOrStdout(), map[string]any{"deleted": row})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s session of %s from %s %s\n",
		row.Type,
		output.FormatMinutes(row.DurationMinutes),
		row.StartTime.Local().Format("2006-01-02 15:04"),
		output.StyleMuted.Render(row.ID))
	return nil
}
