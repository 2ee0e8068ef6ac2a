package app

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/capture"
	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/journal"
	"github.com/blackwell-systems/mindlens/internal/logging"
	"github.com/blackwell-systems/mindlens/internal/output"
)

var (
	writeEmotion   string
	writeScore     float64
	writeNoReflect bool
	writePrompt    bool
)

var writeCmd = &cobra.Command{
	Use:   "write [text]",
	Short: "Record a journal entry",
	Long: `Record a journal entry. The text is taken from the arguments, or read
from stdin when no arguments are given. Unless --emotion is set, the entry
is labelled by the configured classifier, and a short reflection is
written back.

Examples:
  mindlens write "Finally finished the marathon today!"
  mindlens write --emotion sadness --score 70 "Missing home tonight."
  echo "Long day, but a good one." | mindlens write
  mindlens write --prompt`,
	RunE: runWrite,
}

func init() {
	writeCmd.Flags().StringVar(&writeEmotion, "emotion", "", "Label the entry yourself instead of classifying it (joy, love, surprise, neutral, fear, sadness, anger)")
	writeCmd.Flags().Float64Var(&writeScore, "score", 100, "Confidence 0-100 for --emotion")
	writeCmd.Flags().BoolVar(&writeNoReflect, "no-reflect", false, "Skip the reflection")
	writeCmd.Flags().BoolVar(&writePrompt, "prompt", false, "Print a writing prompt and exit")
	rootCmd.AddCommand(writeCmd)
}

func runWrite(cmd *cobra.Command, args []string) error {
	if writePrompt {
		fmt.Println(journal.PromptFor(time.Now().YearDay()))
		return nil
	}

	text, err := readEntryText(args, os.Stdin)
	if err != nil {
		return err
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

	classifier := buildClassifierOrDisabled(e)
	rec := capture.NewRecorder(e.store, classifier, buildReflector(e.cfg, e.log), logging.Component(e.log, "capture"))

	req := capture.Request{
		UserID:         user,
		Content:        text,
		Emotion:        writeEmotion,
		SkipReflection: writeNoReflect,
	}
	if cmd.Flags().Changed("score") {
		req.Score = &writeScore
	}

	res, err := rec.Record(cmd.Context(), req)
	if err != nil {
		return fmt.Errorf("recording entry: %w", err)
	}

	if flagJSON {
		return printJSON(res)
	}
	renderEntry(res)
	return nil
}

// buildClassifierOrDisabled falls back to manual labels when the
// classifier is misconfigured, so --emotion still works.
func buildClassifierOrDisabled(e *env) classify.Classifier {
	c, err := buildClassifier(e.cfg)
	if err != nil {
		e.log.Debug().Err(err).Msg("classifier disabled")
		return nil
	}
	return c
}

// readEntryText joins the arguments, or reads r when there are none.
func readEntryText(args []string, r io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("reading stdin: %w", err)
	}
	return string(data), nil
}

func renderEntry(res *capture.Result) {
	entry := res.Entry

	fmt.Println(output.Section(fmt.Sprintf("Entry #%d", entry.ID)))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Emotion"),
		output.Emotion(entry.Emotion))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Confidence"),
		output.ScoreBar(entry.EmotionScore, 100, 20))
	fmt.Printf(" %s %s\n",
		output.StyleLabel.Render("Words"),
		output.StyleValue.Render(fmt.Sprintf("%d", entry.WordCount)))
	fmt.Printf(" %s\n", output.StyleMuted.Render(journal.Describe(entry.Emotion)))

	for _, w := range res.Warnings {
		fmt.Printf(" %s %s\n", output.StyleWarning.Render("!"), w)
	}

	if entry.Reflection != "" {
		fmt.Println(output.Section("Reflection"))
		fmt.Println()
		for _, para := range strings.Split(entry.Reflection, "\n") {
			fmt.Printf(" %s\n", para)
		}
	}
	fmt.Println()
}
