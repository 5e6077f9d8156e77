package main

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/boopathiraja455/Voice-task-manager/internal/ops"
	"github.com/boopathiraja455/Voice-task-manager/internal/task"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "taskman-ops",
		Short: "Operational tooling for the task manager data directory",
	}

	rootCmd.AddCommand(backupCmd())
	rootCmd.AddCommand(restoreCmd())
	rootCmd.AddCommand(drillCmd())
	rootCmd.AddCommand(validateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func backupCmd() *cobra.Command {
	var dataDir, out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory to a .tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			if out == "" {
				ts := time.Now().UTC().Format("20060102T150405Z")
				out = filepath.Join("backups", "taskman-"+ts+".tar.gz")
			}
			if err := ops.BackupDataDir(dataDir, out); err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "path to data directory")
	cmd.Flags().StringVar(&out, "out", "", "output archive path (.tar.gz)")
	return cmd
}

func restoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return fmt.Errorf("--archive is required")
			}
			return ops.RestoreDataDir(archive, target)
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	return cmd
}

func drillCmd() *cobra.Command {
	var dataDir, workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Backup, restore and verify digests in a scratch directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(workDir, 0o755); err != nil {
				return err
			}
			ts := time.Now().UTC().Format("20060102T150405Z")
			archive := filepath.Join(workDir, "taskman-drill-"+ts+".tar.gz")
			restoreDir := filepath.Join(workDir, "taskman-drill-restore-"+ts)

			if err := ops.BackupDataDir(dataDir, archive); err != nil {
				return err
			}
			if err := ops.RestoreDataDir(archive, restoreDir); err != nil {
				return err
			}

			srcDigest, err := dirDigest(dataDir)
			if err != nil {
				return err
			}
			restoredDigest, err := dirDigest(restoreDir)
			if err != nil {
				return err
			}
			if srcDigest != restoredDigest {
				return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoredDigest)
			}

			fmt.Println("backup:", archive)
			fmt.Println("restored:", restoreDir)
			fmt.Println("digest:", srcDigest)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataDir, "data-dir", "data", "path to data directory")
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	return cmd
}

// validateCmd dry-runs an import file: every entry is validated the same way
// the import endpoint validates it, without touching the data directory.
func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file.json>",
		Short: "Dry-run validation of an import file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var items []json.RawMessage
			if err := json.Unmarshal(b, &items); err != nil {
				return fmt.Errorf("JSON must be an array of tasks: %w", err)
			}

			fmt.Printf("Validating %d tasks...\n", len(items))
			now := time.Now().UTC()
			valid, invalid := 0, 0
			for i, item := range items {
				var rec task.Record
				if err := json.Unmarshal(item, &rec); err != nil {
					invalid++
					fmt.Printf("FAIL task %d: %v\n", i+1, err)
					continue
				}
				t, err := task.ParseRecord(rec, now)
				if err != nil {
					invalid++
					fmt.Printf("FAIL task %d: %v\n", i+1, err)
					continue
				}
				valid++
				fmt.Printf("ok   task %d: %s\n", i+1, truncate(t.Description, 50))
			}

			fmt.Printf("\nSummary: %d valid, %d invalid\n", valid, invalid)
			if invalid > 0 {
				os.Exit(1)
			}
			return nil
		},
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
