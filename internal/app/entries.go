package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/store"
)

var (
	entriesLimit   int
	entriesSearch  string
	entriesEmotion string
)

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "List or search recent entries",
	Long: `List your most recent journal entries, newest first. Use --search to
match entry text and --emotion to restrict to one label.`,
	RunE: runEntries,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	entriesCmd.Flags().IntVar(&entriesLimit, "limit", store.DefaultListLimit, "Maximum number of entries to show")
	entriesCmd.Flags().StringVar(&entriesSearch, "search", "", "Only entries containing this text")
	entriesCmd.Flags().StringVar(&entriesEmotion, "emotion", "", "Only entries with this emotion")
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(deleteCmd)
}

func runEntries(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.userID()
	if err != nil {
		return err
	}

	var entries []journal.Entry
	if entriesSearch != "" || entriesEmotion != "" {
		entries, err = e.store.Search(cmd.Context(), user, entriesSearch, journal.NormalizeEmotion(entriesEmotion), entriesLimit)
	} else {
		entries, err = e.store.List(cmd.Context(), user, entriesLimit)
	}
	if err != nil {
		return fmt.Errorf("listing entries: %w", err)
	}

	if flagJSON {
		if entries == nil {
			entries = []journal.Entry{}
		}
		return printJSON(entries)
	}

	renderEntries(entries, time.Now())
	return nil
}

func renderEntries(entries []journal.Entry, now time.Time) {
	fmt.Println(output.Section("Journal Entries"))
	fmt.Println()

	if len(entries) == 0 {
		fmt.Println(" No entries yet. Start with 'mindlens write'.")
		fmt.Println()
		return
	}

	tbl := output.NewTable("ID", "When", "Emotion", "Words", "Entry")
	for _, en := range entries {
		tbl.AddRow(
			strconv.FormatInt(en.ID, 10),
			output.RelativeTime(en.Timestamp, now),
			output.Emotion(en.Emotion),
			strconv.Itoa(en.WordCount),
			preview(en.Content, 48),
		)
	}
	tbl.Print()
	fmt.Println()
}

// preview returns the first line of s, cut to max runes.
func preview(s string, max int) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i] + " …"
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id < 1 {
		return fmt.Errorf("invalid entry id %q", args[0])
	}

	e, err := setup(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	user, err := e.userID()
	if err != nil {
		return err
	}

	removed, err := e.store.Delete(cmd.Context(), id, user)
	if err != nil {
		return fmt.Errorf("deleting entry: %w", err)
	}
	if !removed {
		return fmt.Errorf("entry %d: %w", id, journal.ErrNotFound)
	}

	if flagJSON {
		return printJSON(map[string]any{"deleted": id})
	}
	fmt.Printf(" %s Deleted entry #%d\n", output.StyleSuccess.Render("✓"), id)
	return nil
}
