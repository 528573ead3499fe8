package cmd

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/mathstep/internal/i18n"
	"github.com/abhisek/mathstep/internal/media"
	"github.com/abhisek/mathstep/internal/screens/result"
	"github.com/abhisek/mathstep/internal/solution"
	"github.com/abhisek/mathstep/internal/tutor"
	"github.com/abhisek/mathstep/internal/ui/components"
)

const solveWidth = 80

var solveCmd = &cobra.Command{
	Use:   "solve [problem]",
	Short: "Analyze one problem and walk through its solution",
	Long: "Sends one problem (text, an image, or both) to the model. In text format each press of\n" +
		"Enter reveals the next step; --all prints every step at once. Use \"-\" to read the\n" +
		"problem from stdin.",
	Example: `  mathstep solve "A shop sells 5 kg of oranges at 40 baht per kg. What is the total?"
  mathstep solve --image worksheet.jpg --lang en
  mathstep solve --format json "2x + 3 = 11"`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().StringP("image", "i", "", "Path to a PNG, JPEG, WebP or GIF of the problem")
	solveCmd.Flags().StringP("lang", "l", "", "Answer language: th or en (default from ui.language)")
	solveCmd.Flags().BoolP("all", "a", false, "Print every step without waiting")
	solveCmd.Flags().StringP("format", "f", "text", "Output format: text, json or yaml")
}

func runSolve(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lang := cfg.Language()
	if v, _ := cmd.Flags().GetString("lang"); v != "" {
		if lang, err = i18n.ParseLanguage(v); err != nil {
			return err
		}
	}

	text := strings.Join(args, " ")
	if text == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read problem: %w", err)
		}
		text = string(data)
	}

	var img *media.Image
	if path, _ := cmd.Flags().GetString("image"); path != "" {
		if img, err = media.Load(path); err != nil {
			return errors.New(tutor.Describe(lang, err))
		}
	}
	if strings.TrimSpace(text) == "" && img == nil {
		return errors.New(i18n.Lookup(lang, "warn_empty"))
	}

	logger, closeLog, err := newLogger(cfg.Log, true)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := newClient(cmd.Context(), cfg, "", st.EventRepo(), logger)
	if err != nil {
		return fmt.Errorf("%s: %w", i18n.Lookup(lang, "err_no_key"), err)
	}

	sess := tutor.New(lang, true)
	fmt.Fprintln(cmd.ErrOrStderr(), i18n.Lookup(lang, "spinner"))
	if err := sess.Submit(cmd.Context(), client, text, img); err != nil {
		logger.Error("solve failed", "session_id", sess.ID(), "error", err)
		return errors.New(tutor.Describe(lang, err))
	}

	all, _ := cmd.Flags().GetBool("all")
	out := cmd.OutOrStdout()
	switch format {
	case "json", "yaml":
		return writeSolution(out, format, sess.Solution())
	default:
		return walkSteps(cmd.InOrStdin(), out, sess, all)
	}
}

// writeSolution prints sol as JSON or YAML.
func writeSolution(w io.Writer, format string, sol *solution.Solution) error {
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(sol); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(sol)
}

// walkSteps prints the analysis, then one step per line read from in.
// When in runs dry, or all is set, the remaining steps print at once.
func walkSteps(in io.Reader, out io.Writer, sess *tutor.Session, all bool) error {
	lang := sess.Language()
	if _, err := lipgloss.Fprintln(out, result.RenderAnalysis(sess, solveWidth)); err != nil {
		return err
	}
	lipgloss.Fprintln(out, "\n"+components.Legend(lang)+"\n")

	reader := bufio.NewReader(in)
	for {
		visible, total := sess.Progress()
		if visible >= total {
			break
		}
		if !all {
			prompt := fmt.Sprintf("%s %d / %d [Enter]", strings.TrimSpace(i18n.Lookup(lang, "next_step")), visible+1, total)
			lipgloss.Fprintln(out, components.NewButton(prompt, true).View())
			if _, err := reader.ReadString('\n'); err != nil {
				all = true
			}
		}
		sess.RevealNext()
		lipgloss.Fprintln(out, result.RenderStep(sess, visible, solveWidth))
	}
	_, err := lipgloss.Fprintln(out, result.RenderDone(lang, solveWidth))
	return err
}
