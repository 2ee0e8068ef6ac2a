package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/mindlens/internal/classify"
	"github.com/blackwell-systems/mindlens/internal/config"
	"github.com/blackwell-systems/mindlens/internal/output"
	"github.com/blackwell-systems/mindlens/internal/store"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check whether the mindlens setup is healthy",
	Long: `Run a series of health checks against your mindlens configuration,
database and emotion classifier. Prints a pass/fail line for each check
and a summary of how many checks passed.`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

// doctorCheck holds the result of a single health check.
type doctorCheck struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message"`
}

// doctorOutput is the JSON-serializable result of the doctor command.
type doctorOutput struct {
	Checks      []doctorCheck `json:"checks"`
	PassedCount int           `json:"passed"`
	TotalCount  int           `json:"total"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	if flagNoColor {
		output.SetNoColor(true)
	}

	cfg, err := config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	var checks []doctorCheck

	// 1. Timezone resolves.
	checks = append(checks, checkTimezone(cfg))

	// 2. Database opens and answers a ping.
	dbCheck, st := checkDatabase(ctx, cfg)
	checks = append(checks, dbCheck)

	// 3. Journal has entries for the local user.
	if st != nil {
		user, err := cfg.ResolveUserID(flagUser, config.ConfigDir())
		if err == nil {
			checks = append(checks, checkJournal(ctx, st, user))
		}
		_ = st.Close()
	}

	// 4. Classifier is configured and reachable.
	checks = append(checks, checkClassifier(ctx, cfg))

	// 5. API key for OpenAI-backed providers.
	checks = append(checks, checkAPIKey(cfg))

	// Count passes.
	passed := 0
	for _, c := range checks {
		if c.Passed {
			passed++
		}
	}

	if flagJSON {
		return printJSON(doctorOutput{
			Checks:      checks,
			PassedCount: passed,
			TotalCount:  len(checks),
		})
	}

	// Render styled output.
	fmt.Println(output.Section("Doctor"))
	fmt.Println()

	for _, c := range checks {
		renderDoctorCheck(c)
	}

	fmt.Println()
	summary := fmt.Sprintf("%d/%d checks passed", passed, len(checks))
	if passed == len(checks) {
		fmt.Printf(" %s\n\n", output.StyleSuccess.Render(summary))
	} else {
		fmt.Printf(" %s\n\n", output.StyleWarning.Render(summary))
	}

	return nil
}

// renderDoctorCheck prints a single check result line.
func renderDoctorCheck(c doctorCheck) {
	var indicator string
	if c.Passed {
		indicator = output.StyleSuccess.Render("✓")
	} else {
		indicator = output.StyleWarning.Render("✗")
	}
	label := output.StyleBold.Render(c.Name)
	detail := output.StyleMuted.Render(c.Message)
	fmt.Printf("  %s  %-30s %s\n", indicator, label, detail)
}

// checkTimezone verifies that the configured timezone loads.
func checkTimezone(cfg *config.Config) doctorCheck {
	loc, err := cfg.Location()
	if err != nil {
		return doctorCheck{Name: "Timezone", Passed: false, Message: err.Error()}
	}
	return doctorCheck{Name: "Timezone", Passed: true, Message: loc.String()}
}

// checkDatabase opens the configured store and pings it. The open store is
// returned for further checks when the ping succeeds.
func checkDatabase(ctx context.Context, cfg *config.Config) (doctorCheck, store.Store) {
	name := "Database (" + cfg.Database.Driver + ")"
	target := cfg.Database.Path
	if cfg.Database.Driver == "postgres" {
		target = "postgres"
	} else if _, err := os.Stat(target); err != nil {
		return doctorCheck{
			Name:    name,
			Passed:  false,
			Message: fmt.Sprintf("not found at %s (run 'mindlens write' to create)", target),
		}, nil
	}

	loc, err := cfg.Location()
	if err != nil {
		loc = time.UTC
	}
	st, err := openStore(ctx, cfg, loc)
	if err != nil {
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("open failed: %v", err)}, nil
	}
	if err := st.Ping(ctx); err != nil {
		_ = st.Close()
		return doctorCheck{Name: name, Passed: false, Message: fmt.Sprintf("ping failed: %v", err)}, nil
	}
	return doctorCheck{Name: name, Passed: true, Message: target}, st
}

// checkJournal reports whether the user has written anything yet.
func checkJournal(ctx context.Context, st store.Store, user string) doctorCheck {
	entries, err := st.List(ctx, user, 1)
	if err != nil {
		return doctorCheck{Name: "Journal", Passed: false, Message: fmt.Sprintf("error reading entries: %v", err)}
	}
	if len(entries) == 0 {
		return doctorCheck{Name: "Journal", Passed: false, Message: fmt.Sprintf("no entries for user %s", user)}
	}
	return doctorCheck{
		Name:    "Journal",
		Passed:  true,
		Message: fmt.Sprintf("last entry %s", output.RelativeTime(entries[0].Timestamp, time.Now())),
	}
}

// checkClassifier verifies the classifier configuration and, for the HTTP
// provider, that the model service is up.
func checkClassifier(ctx context.Context, cfg *config.Config) doctorCheck {
	name := "Classifier (" + cfg.Classifier.Provider + ")"
	switch cfg.Classifier.Provider {
	case "none":
		return doctorCheck{Name: name, Passed: true, Message: "disabled, entries need --emotion"}
	case "http":
		if err := classify.NewService(cfg.Classifier.BaseURL, 5*time.Second).Health(ctx); err != nil {
			return doctorCheck{Name: name, Passed: false, Message: err.Error()}
		}
		return doctorCheck{Name: name, Passed: true, Message: cfg.Classifier.BaseURL}
	default:
		if _, err := buildClassifier(cfg); err != nil {
			return doctorCheck{Name: name, Passed: false, Message: err.Error()}
		}
		return doctorCheck{Name: name, Passed: true, Message: "model " + cfg.Classifier.Model}
	}
}

// checkAPIKey verifies that an OpenAI key is available when a provider needs it.
func checkAPIKey(cfg *config.Config) doctorCheck {
	needed := cfg.Classifier.Provider == "openai" || cfg.Reflector.Provider == "openai"
	val := cfg.OpenAI.APIKey
	if val == "" {
		return doctorCheck{
			Name:    "API key",
			Passed:  !needed,
			Message: "OPENAI_API_KEY is not set (reflections fall back to static messages)",
		}
	}
	// Show only the first few characters for security.
	masked := val[:min(8, len(val))] + "..."
	return doctorCheck{
		Name:    "API key",
		Passed:  true,
		Message: fmt.Sprintf("OpenAI key set (%s)", masked),
	}
}
