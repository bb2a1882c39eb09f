package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/codelens/codelens/internal/config"
	"github.com/codelens/codelens/internal/pipeline"
	"github.com/codelens/codelens/internal/render"
	"github.com/codelens/codelens/pkg/codelens"
)

var (
	configPath    string
	jsonOutput    bool
	badgeOutput   bool
	historyDBFlag string
	maxFindings   int
	failUnder     float64
)

var scanCmd = &cobra.Command{
	Use:   "scan <directory>",
	Short: "Scan a project for code-quality findings",
	Long: `Scan a project directory and report ranked code-quality findings.

Supported languages: Go, Python, TypeScript
Each file's language is detected from its file extension. The directory must
contain a project file (go.mod, pyproject.toml, tsconfig.json, etc.) or a supported source file.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("cannot resolve path: %s", err)
		}

		if err := pipeline.ValidateProject(dir); err != nil {
			return err
		}

		overrides := map[string]interface{}{}
		if historyDBFlag != "" {
			overrides["history_db_path"] = historyDBFlag
		}
		if maxFindings > 0 {
			overrides["max_findings"] = maxFindings
		}

		settings, err := config.Load(dir, configPath, overrides)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		spinner := pipeline.NewSpinner(os.Stderr)
		onProgress := func(stage, detail string) {
			spinner.Update(detail)
		}
		spinner.Start("Scanning...")

		p := pipeline.New(cmd.ErrOrStderr(), verbose, settings, onProgress)
		result, err := p.Run(dir)
		if err != nil {
			spinner.Stop("")
			return err
		}
		spinner.Stop("Done.")

		if jsonOutput {
			return render.RenderJSON(cmd.OutOrStdout(), result)
		}

		out := cmd.OutOrStdout()
		render.RenderSummary(out, result)
		render.RenderFindings(out, result.Findings, verbose)
		render.RenderWarnings(out, result.Diagnostics.Warnings)

		if badgeOutput {
			fmt.Fprintln(out)
			render.RenderBadge(out, result)
		}

		if failUnder > 0 && result.Field.Global.CodebaseHealth < failUnder {
			return &codelens.ExitError{Code: 2, Message: fmt.Sprintf("codebase health %.2f below --fail-under %.2f", result.Field.Global.CodebaseHealth, failUnder)}
		}
		return nil
	},
}

func init() {
	scanCmd.Flags().StringVar(&configPath, "config", "", "path to .codelens.yml project config file")
	scanCmd.Flags().BoolVar(&jsonOutput, "json", false, "output results as JSON")
	scanCmd.Flags().BoolVar(&badgeOutput, "badge", false, "print a shields.io badge markdown line after the report")
	scanCmd.Flags().StringVar(&historyDBFlag, "history-db", "", "path to a signal-field history database for trend snapshots")
	scanCmd.Flags().IntVar(&maxFindings, "max-findings", 0, "cap the number of reported findings (0 = use config default)")
	scanCmd.Flags().Float64Var(&failUnder, "fail-under", 0, "exit with code 2 if codebase health falls below this value (0 = disabled)")
	rootCmd.AddCommand(scanCmd)
}
