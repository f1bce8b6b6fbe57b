package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/danieljhkim/layerorder/internal/engine"
	"github.com/danieljhkim/layerorder/internal/reconcile"
)

func renderInstall(w io.Writer, res *engine.InstallResult) {
	for _, r := range res.Targets {
		PrintSection(w, fmt.Sprintf("%s  %s", r.Target, r.Namespace))

		if r.Error != "" {
			PrintError(w, r.Error)
			if r.RolledBack {
				PrintWarning(w, "Restored the previous order")
			}
			if r.BackupID != "" {
				PrintLabelValue(w, "Backup", r.BackupID)
			}
			continue
		}

		switch {
		case res.DryRun:
			PrintInfo(w, "Planned order:")
			printSnapshot(w, r.After, func(i int, _ reconcile.Entry) bool { return i == 0 })
		case r.Settled:
			PrintSuccess(w, r.SelfName+" was already first")
		default:
			PrintSuccess(w, r.SelfName+" is now first")
		}

		PrintLabelValue(w, "Kept", PrintCount(r.Kept, "other layer", "other layers"))
		if len(r.Dropped) > 0 {
			PrintLabelValue(w, "Removed", strings.Join(r.Dropped, ", "))
		}
		if r.BackupID != "" {
			PrintLabelValue(w, "Backup", r.BackupID)
		}
	}
}

func renderStatus(w io.Writer, res *engine.StatusResult) {
	for _, t := range res.Targets {
		PrintSection(w, fmt.Sprintf("%s  %s", t.Target, t.Namespace))

		if t.Error != "" {
			PrintError(w, t.Error)
			continue
		}

		if len(t.Entries) == 0 {
			PrintEmptyState(w, "No layers registered")
		} else {
			items := make([]string, len(t.Entries))
			marked := make([]bool, len(t.Entries))
			for i, e := range t.Entries {
				items[i] = e.Name + " = " + e.Value
				marked[i] = e.Match
			}
			PrintEntries(w, items, marked)
		}

		switch {
		case t.Settled:
			PrintSuccess(w, "Layer is first")
		case t.Matches == 0:
			PrintWarning(w, "Layer is not registered")
		case t.Matches > 1:
			PrintWarning(w, fmt.Sprintf("Layer is registered %d times", t.Matches))
		default:
			PrintWarning(w, "Layer is registered but not first")
		}

		if rec := t.LastInstall; rec != nil {
			PrintLabelValue(w, "Last install", fmt.Sprintf("%s from %s", rec.InstalledAt.UTC().Format(time.RFC3339), rec.InstallDir))
		}
	}
}

func renderBackups(w io.Writer, res *engine.BackupsResult) {
	if len(res.Backups) == 0 {
		PrintEmptyState(w, "No backups")
		return
	}

	rows := make([][]string, 0, len(res.Backups))
	for _, b := range res.Backups {
		verified := "yes"
		if !b.Verified {
			verified = "NO"
		}
		rows = append(rows, []string{
			b.ID,
			b.Target,
			b.TakenAt.UTC().Format(time.RFC3339),
			b.Reason,
			fmt.Sprint(b.Entries),
			verified,
		})
	}
	PrintTable(w, []string{"ID", "TARGET", "TAKEN", "REASON", "ENTRIES", "VERIFIED"}, rows)
}

func renderRestore(w io.Writer, res *engine.RestoreResult, err error) {
	PrintSection(w, fmt.Sprintf("%s  %s", res.Target, res.Namespace))

	switch {
	case err != nil:
		PrintError(w, err.Error())
		if res.RolledBack {
			PrintWarning(w, "Restored the previous contents")
		}
	case res.DryRun:
		PrintInfo(w, "Would write:")
		printSnapshot(w, res.After, func(int, reconcile.Entry) bool { return false })
	default:
		PrintSuccess(w, fmt.Sprintf("Restored backup %s (%s)", res.BackupID, PrintCount(len(res.After), "entry", "entries")))
	}

	if res.SafetyBackupID != "" {
		PrintLabelValue(w, "Previous contents saved as", res.SafetyBackupID)
	}
}

func printSnapshot(w io.Writer, snap reconcile.Snapshot, mark func(int, reconcile.Entry) bool) {
	if len(snap) == 0 {
		PrintEmptyState(w, "(empty)")
		return
	}
	items := make([]string, len(snap))
	marked := make([]bool, len(snap))
	for i, e := range snap {
		items[i] = e.Name + " = " + e.Value.String()
		marked[i] = mark(i, e)
	}
	PrintEntries(w, items, marked)
}
